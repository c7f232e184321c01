package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
)

type server struct {
	engine  store.Engine
	cfg     config
	logger  *zap.Logger
	started time.Time
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

// handleRegister records a region shard's address, the global shard's
// equivalent of the teacher coordinator's handleRegister — adapted from
// an in-memory node slice to a RegionConnectionInfo table row so it
// survives a global-server restart.
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RegionID uint8  `json:"region_id"`
		Addr     string `json:"addr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := s.engine.Begin(true)
	if err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	if rerr := session.RegisterRegion(tx, req.RegionID, req.Addr, time.Now().UTC()); rerr != nil {
		tx.Rollback()
		http.Error(w, rerr.Message, http.StatusInternalServerError)
		return
	}
	if cerr := tx.Commit(); cerr != nil {
		s.logger.Error("register: commit", zap.Error(cerr))
		http.Error(w, "commit failed", http.StatusInternalServerError)
		return
	}
	s.logger.Info("region registered", zap.Uint8("region_id", req.RegionID), zap.String("addr", req.Addr))
	w.WriteHeader(http.StatusNoContent)
}

// handleListRegions reports every region the global shard knows about,
// the teacher coordinator's handleListNodes equivalent.
func (s *server) handleListRegions(w http.ResponseWriter, _ *http.Request) {
	tx, err := s.engine.Begin(false)
	if err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	defer tx.Rollback()

	regions, rerr := session.ListRegions(tx)
	if rerr != nil {
		http.Error(w, rerr.Message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(regions)
}

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
	ctx := reducer.NewCtx(tx, 0, true, reducer.RoleRelay, now, uint64(now.UnixNano()))
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

func (s *server) mux(metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/regions", s.handleListRegions)
	mux.HandleFunc("/mesh/inbound", s.handleMeshInbound)
	mux.Handle("/metrics", metricsHandler)
	return mux
}
