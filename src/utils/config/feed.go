package config

import (
	"time"

	"github.com/spf13/viper"
)

type Feed struct {
	// Is the live trade feed listener enabled
	Enabled bool

	// Websocket endpoint of the trade feed
	Url string

	// Channels subscribed to upon connecting
	Channels []string

	// Delay before reconnecting a dropped connection
	ReconnectDelay time.Duration
}

func setFeedDefaults() {
	viper.SetDefault("Feed.Enabled", "false")
	viper.SetDefault("Feed.Url", "ws://localhost:8081/ws")
	viper.SetDefault("Feed.Channels", "trades")
	viper.SetDefault("Feed.ReconnectDelay", "5s")
}
