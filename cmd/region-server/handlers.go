package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// server bundles the dependencies region-server's HTTP handlers need,
// mirroring the teacher coordinator's server struct.
type server struct {
	engine  store.Engine
	cfg     config
	logger  *zap.Logger
	started time.Time
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       "ok",
		"region_index": s.cfg.RegionIndex,
		"uptime":       time.Since(s.started).String(),
	})
}

// handleMeshInbound processes one inter-shard message delivered by a
// peer's relay (§4.5 point 3) and writes back the reply message the
// caller's relay then runs ProcessReply against.
func (s *server) handleMeshInbound(w http.ResponseWriter, r *http.Request) {
	var msg mesh.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := s.engine.Begin(true)
	if err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	now := time.Now().UTC()
	ctx := reducer.NewCtx(tx, serverIdentity(s.cfg.RegionIndex), true, reducer.RoleRelay, now, uint64(now.UnixNano()))
	reply := mesh.ProcessInbound(ctx, msg)

	if cerr := tx.Commit(); cerr != nil {
		tx.Rollback()
		s.logger.Error("mesh inbound: commit", zap.Error(cerr))
		http.Error(w, "commit failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}

// mux builds the HTTP handler tree this region-server exposes. metricsHandler
// is passed in rather than built here so main can wire it against the same
// prometheus.Registry the dispatcher's telemetry.Metrics uses.
func (s *server) mux(metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/mesh/inbound", s.handleMeshInbound)
	mux.Handle("/metrics", metricsHandler)
	return mux
}
