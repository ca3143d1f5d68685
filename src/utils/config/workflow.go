package config

import (
	"time"

	"github.com/spf13/viper"
)

type Workflow struct {
	// Bitcoin network used to validate funding addresses.
	// One of: mainnet, testnet3, regtest, simnet
	Network string

	// Fee rate in sat/vB used for on-chain funding sends
	DefaultFeeRate int64

	// How long resolved contract transactions stay cached
	TransactionCacheTTL             time.Duration
	TransactionCacheCleanupInterval time.Duration
}

func setWorkflowDefaults() {
	viper.SetDefault("Workflow.Network", "testnet3")
	viper.SetDefault("Workflow.DefaultFeeRate", "2")
	viper.SetDefault("Workflow.TransactionCacheTTL", "5m")
	viper.SetDefault("Workflow.TransactionCacheCleanupInterval", "10m")
}
