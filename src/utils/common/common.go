package common

import (
	"context"

	"github.com/hashhedge/workflow/src/utils/config"
)

type contextKey int

const configKey contextKey = iota

// Attaches the configuration to the context
func SetConfig(ctx context.Context, conf *config.Config) context.Context {
	return context.WithValue(ctx, configKey, conf)
}

// Gets the configuration from the context, nil if it's not there
func GetConfig(ctx context.Context) *config.Config {
	conf, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return conf
}
