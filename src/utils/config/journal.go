package config

import (
	"time"

	"github.com/spf13/viper"
)

type Journal struct {
	// Is the workflow event journal enabled
	Enabled bool

	// One of: postgres, sqlite
	Driver string

	// Postgres connection
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SslMode  string

	// Connection pool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Sqlite file path, ":memory:" for an in-memory journal
	SqlitePath string

	// Batching of event inserts
	BatchSize     int
	FlushInterval time.Duration

	// Backoff of failed flushes
	BackoffMaxElapsedTime time.Duration
	BackoffMaxInterval    time.Duration
}

func setJournalDefaults() {
	viper.SetDefault("Journal.Enabled", "false")
	viper.SetDefault("Journal.Driver", "sqlite")
	viper.SetDefault("Journal.Host", "127.0.0.1")
	viper.SetDefault("Journal.Port", "5432")
	viper.SetDefault("Journal.User", "hashhedge")
	viper.SetDefault("Journal.Password", "hashhedge")
	viper.SetDefault("Journal.Name", "hashhedge")
	viper.SetDefault("Journal.SslMode", "disable")
	viper.SetDefault("Journal.MaxOpenConns", "10")
	viper.SetDefault("Journal.MaxIdleConns", "2")
	viper.SetDefault("Journal.ConnMaxLifetime", "1h")
	viper.SetDefault("Journal.SqlitePath", ":memory:")
	viper.SetDefault("Journal.BatchSize", "50")
	viper.SetDefault("Journal.FlushInterval", "2s")
	viper.SetDefault("Journal.BackoffMaxElapsedTime", "30s")
	viper.SetDefault("Journal.BackoffMaxInterval", "8s")
}
