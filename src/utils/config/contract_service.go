package config

import (
	"time"

	"github.com/spf13/viper"
)

type ContractService struct {
	// Base URL of the contract backend
	Url string

	// Time limit for a single request
	RequestTimeout time.Duration

	// Number of retries upon 5xx responses
	RetryCount int

	// Transport setup
	DialerTimeout       time.Duration
	DialerKeepAlive     time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration

	// Rate limiting, one limiter per host
	LimiterInterval  time.Duration
	LimiterBurstSize int
}

func setContractServiceDefaults() {
	viper.SetDefault("ContractService.Url", "http://localhost:8080")
	viper.SetDefault("ContractService.RequestTimeout", "30s")
	viper.SetDefault("ContractService.RetryCount", "1")
	viper.SetDefault("ContractService.DialerTimeout", "30s")
	viper.SetDefault("ContractService.DialerKeepAlive", "15s")
	viper.SetDefault("ContractService.TLSHandshakeTimeout", "10s")
	viper.SetDefault("ContractService.IdleConnTimeout", "31s")
	viper.SetDefault("ContractService.LimiterInterval", "1s")
	viper.SetDefault("ContractService.LimiterBurstSize", "10")
}
