package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// config is the global shard's startup configuration, read once via
// spf13/viper per SPEC_FULL.md §B, mirroring region-server's config.go.
type config struct {
	Env           string
	ListenAddr    string
	StorePath     string
	RelayInterval time.Duration
}

func loadConfig() (config, error) {
	v := viper.New()
	v.SetEnvPrefix("worldshard")
	v.AutomaticEnv()
	v.SetConfigName("global-server")
	v.AddConfigPath(".")
	v.SetDefault("env", "development")
	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("store_path", "global.db")
	v.SetDefault("relay_interval", "500ms")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return config{}, fmt.Errorf("global-server: read config: %w", err)
		}
	}

	return config{
		Env:           v.GetString("env"),
		ListenAddr:    v.GetString("listen_addr"),
		StorePath:     v.GetString("store_path"),
		RelayInterval: v.GetDuration("relay_interval"),
	}, nil
}
