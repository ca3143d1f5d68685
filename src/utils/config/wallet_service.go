package config

import (
	"time"

	"github.com/spf13/viper"
)

type WalletService struct {
	// Base URL of the Ark wallet daemon
	Url string

	// Time limit for a single request
	RequestTimeout time.Duration

	// Transport setup
	DialerTimeout       time.Duration
	DialerKeepAlive     time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
}

func setWalletServiceDefaults() {
	viper.SetDefault("WalletService.Url", "http://localhost:7070")
	viper.SetDefault("WalletService.RequestTimeout", "30s")
	viper.SetDefault("WalletService.DialerTimeout", "30s")
	viper.SetDefault("WalletService.DialerKeepAlive", "15s")
	viper.SetDefault("WalletService.TLSHandshakeTimeout", "10s")
	viper.SetDefault("WalletService.IdleConnTimeout", "31s")
}
