// Command region-server boots one regional shard: its own bbolt-backed
// store, the scheduled-agent dispatch loop, the inter-shard mesh relay,
// and an HTTP surface for peer delivery and health/metrics polling.
//
// Configuration is read once at startup via spf13/viper (region-server.yaml
// or WORLDSHARD_-prefixed environment variables); see config.go.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/telemetry"
	"github.com/dreamware/worldshard/internal/transport"
)

// registerWithGlobal announces this region to the global shard, retrying
// a handful of times since the two binaries commonly boot in either
// order during local development and in a fresh cluster rollout.
func registerWithGlobal(cfg config, logger *zap.Logger) {
	req := map[string]any{"region_id": cfg.RegionIndex, "addr": cfg.AdvertiseAddr}
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := transport.PostJSON(ctx, cfg.GlobalAddr+"/register", req, nil)
		cancel()
		if err == nil {
			logger.Info("registered with global shard", zap.String("global_addr", cfg.GlobalAddr))
			return
		}
		logger.Warn("register with global shard failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	logger.Error("giving up registering with global shard")
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := telemetry.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	engine, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		logger.Fatal("open store", zap.String("path", cfg.StorePath), zap.Error(err))
	}
	defer engine.Close()

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	srv := &server{engine: engine, cfg: cfg, logger: logger, started: time.Now()}
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.mux(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan struct{})
	disp := newDispatcher(engine, cfg, logger, metrics)
	go disp.run(stop)

	rel := newRelay(engine, cfg, logger)
	go rel.run(stop)

	go registerWithGlobal(cfg, logger)

	go func() {
		logger.Info("region-server listening", zap.String("addr", cfg.ListenAddr), zap.Uint8("region_index", cfg.RegionIndex))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("region-server shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}
