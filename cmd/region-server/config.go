package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// config is one region shard's startup configuration, read once at boot
// per SPEC_FULL.md §B ("configuration via spf13/viper, read once at
// cmd/*/main.go startup, replacing the teacher's bare os.Getenv
// pattern"). Every field has a WORLDSHARD_-prefixed environment variable
// override and a config-file equivalent; viper resolves both, reading a
// config file named region-server from the working directory if present.
type config struct {
	RegionIndex   uint8
	Env           string
	ListenAddr    string
	AdvertiseAddr string
	StorePath     string
	GlobalAddr    string
	TickInterval  time.Duration
	TimerBatch    int
	RelayInterval time.Duration
	// Peers maps every other region's index to its region-server base
	// URL, used to resolve DestRegion/DestAllOtherRegions mesh sends.
	Peers map[uint8]string
}

func loadConfig() (config, error) {
	v := viper.New()
	v.SetEnvPrefix("worldshard")
	v.AutomaticEnv()
	v.SetConfigName("region-server")
	v.AddConfigPath(".")
	v.SetDefault("region_index", 1)
	v.SetDefault("env", "development")
	v.SetDefault("listen_addr", ":8081")
	v.SetDefault("store_path", "region.db")
	v.SetDefault("global_addr", "http://localhost:8090")
	v.SetDefault("tick_interval", "1s")
	v.SetDefault("timer_batch", 50)
	v.SetDefault("relay_interval", "500ms")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return config{}, fmt.Errorf("region-server: read config: %w", err)
		}
	}

	peers := map[uint8]string{}
	for k, addr := range v.GetStringMapString("peers") {
		idx, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return config{}, fmt.Errorf("region-server: peers key %q is not a region index: %w", k, err)
		}
		peers[uint8(idx)] = addr
	}

	advertiseAddr := v.GetString("advertise_addr")
	if advertiseAddr == "" {
		advertiseAddr = "http://localhost" + v.GetString("listen_addr")
	}

	return config{
		RegionIndex:   uint8(v.GetUint("region_index")),
		Env:           v.GetString("env"),
		ListenAddr:    v.GetString("listen_addr"),
		AdvertiseAddr: advertiseAddr,
		StorePath:     v.GetString("store_path"),
		GlobalAddr:    v.GetString("global_addr"),
		TickInterval:  v.GetDuration("tick_interval"),
		TimerBatch:    v.GetInt("timer_batch"),
		RelayInterval: v.GetDuration("relay_interval"),
		Peers:         peers,
	}, nil
}
