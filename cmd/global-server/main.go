// Command global-server boots the global shard: the cross-region
// singleton tables (RegionConnectionInfo, RegionSignInParameters,
// IdentityRole, BlockedIdentity, UserRegionState) and the region-registry
// HTTP surface other shards register against at boot.
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
)

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
	telemetry.NewMetrics(reg)

	srv := &server{engine: engine, cfg: cfg, logger: logger, started: time.Now()}
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.mux(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan struct{})
	rel := newRelay(engine, cfg, logger)
	go rel.run(stop)

	go func() {
		logger.Info("global-server listening", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("global-server shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}
