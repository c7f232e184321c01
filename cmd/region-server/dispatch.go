package main

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/worldshard/internal/agents"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/telemetry"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// serverIdentity is the synthetic sender every server-originated
// invocation on this region carries, per internal/reducer.Ctx's doc
// comment on IsServer: a fixed, unforgeable EID distinct from any real
// player so server-only reducer gates can't be spoofed by a player who
// guesses it.
func serverIdentity(regionIndex uint8) eid.ID {
	return eid.New(regionIndex, 0)
}

// dispatcher owns the agent-tick loop: once per TickInterval it scans
// every agent's due timers and invokes them through agents.Registry,
// each in its own transaction so one agent's failure can't roll back
// another's progress.
type dispatcher struct {
	engine   store.Engine
	cfg      config
	logger   *zap.Logger
	metrics  *telemetry.Metrics
	registry map[string]agents.TickFunc
	rngSeed  uint64
}

// defaultMaxSignedIn is the admission cap a region falls back to before
// global-server has replicated a RegionSignInParameters row for it.
const defaultMaxSignedIn = 100

func newDispatcher(engine store.Engine, cfg config, logger *zap.Logger, metrics *telemetry.Metrics) *dispatcher {
	d := &dispatcher{engine: engine, cfg: cfg, logger: logger, metrics: metrics}
	d.registry = agents.Registry(d.loadWorldconfig)
	d.registry[entity.RespawnReducer] = d.respawnTick
	d.registry[session.EndGracePeriodReducer] = d.endGracePeriodTick
	return d
}

// respawnTick decodes the entity.RespawnTimer payload Die scheduled and
// runs the respawn transition — a one-shot timer rather than a repeating
// agent, so it lives outside agents.Registry's periodic-tick set even
// though dispatch fires it the same way.
func (d *dispatcher) respawnTick(ctx *reducer.Ctx, scheduledID uint64, payload json.RawMessage) *reducer.Error {
	var t entity.RespawnTimer
	if err := json.Unmarshal(payload, &t); err != nil {
		return reducer.InternalError("dispatch: decode RespawnTimer: %v", err)
	}
	return entity.Respawn(ctx, t.Player, t.TeleportHome)
}

// endGracePeriodTick decodes session.EndGracePeriodTimer and runs the
// grace-expiry transition §4.6 describes: a confirmed sign-in is a
// no-op, an unconfirmed one revokes the provisional slot and gives
// ProcessQueue a chance to admit the next queued candidate.
func (d *dispatcher) endGracePeriodTick(ctx *reducer.Ctx, scheduledID uint64, payload json.RawMessage) *reducer.Error {
	var t session.EndGracePeriodTimer
	if err := json.Unmarshal(payload, &t); err != nil {
		return reducer.InternalError("dispatch: decode EndGracePeriodTimer: %v", err)
	}

	signedIn := false
	if player, ok, err := session.ResolveSender(ctx.Tx, t.Identity); err != nil {
		return err
	} else if ok {
		signedIn, err = session.IsSignedIn(ctx.Tx, player)
		if err != nil {
			return err
		}
	}

	return session.FireEndGracePeriodTimer(ctx, t, signedIn,
		nil,
		func(ctx *reducer.Ctx, regionID uint8) *reducer.Error { return d.admitQueued(ctx, regionID) },
		func(ctx *reducer.Ctx, ident session.Identity) *reducer.Error { return session.Dequeue(ctx.Tx, ident) },
	)
}

// admitQueued runs ProcessQueue for regionID once a slot has freed up,
// starting a fresh sign-in grace timer for whichever identity it admits
// rather than signing them in outright — mirrors the admit closure
// TestQueueAdmissionScenario exercises.
func (d *dispatcher) admitQueued(ctx *reducer.Ctx, regionID uint8) *reducer.Error {
	params, perr := session.LoadSignInParams(ctx.Tx, regionID, defaultMaxSignedIn)
	if perr != nil {
		return perr
	}
	count, cerr := session.CountSignedIn(ctx.Tx, regionID)
	if cerr != nil {
		return cerr
	}
	return session.ProcessQueue(ctx.Tx, params, count, func(tx store.Tx, ident session.Identity) *reducer.Error {
		_, err := session.EnqueueGraceTimer(ctx, session.GraceSignIn, ident, regionID, params.GracePeriodSeconds)
		return err
	})
}

// loadWorldconfig is the closure agents.Registry calls on every dispatch
// to resolve the current AgentsEnabled flag and Parameters row, so an
// admin_set_agents_enabled call takes effect on the very next tick
// without restarting the process.
func (d *dispatcher) loadWorldconfig() (bool, worldconfig.Parameters) {
	tx, err := d.engine.Begin(false)
	if err != nil {
		d.logger.Error("dispatch: open read tx for worldconfig", zap.Error(err))
		return true, worldconfig.Defaults()
	}
	defer tx.Rollback()

	cfg, cerr := worldconfig.Load(tx)
	if cerr != nil {
		d.logger.Error("dispatch: load config", zap.String("err", cerr.Message))
		return true, worldconfig.Defaults()
	}
	params, perr := worldconfig.LoadParameters(tx)
	if perr != nil {
		d.logger.Error("dispatch: load parameters", zap.String("err", perr.Message))
		return cfg.AgentsEnabled, worldconfig.Defaults()
	}
	return cfg.AgentsEnabled, params
}

// run seeds every agent's first timer then ticks forever until stop is
// closed.
func (d *dispatcher) run(stop <-chan struct{}) {
	if err := d.seed(); err != nil {
		d.logger.Error("dispatch: seed agents", zap.String("err", err.Message))
	}

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.sweep()
		}
	}
}

func (d *dispatcher) seed() *reducer.Error {
	tx, err := d.engine.Begin(true)
	if err != nil {
		return reducer.InternalError("dispatch: open seed tx: %v", err)
	}
	now := time.Now().UTC()
	params, perr := worldconfig.LoadParameters(tx)
	if perr != nil {
		tx.Rollback()
		return perr
	}
	if serr := agents.SeedAll(tx, now, params); serr != nil {
		tx.Rollback()
		return serr
	}
	if cerr := tx.Commit(); cerr != nil {
		return reducer.InternalError("dispatch: commit seed tx: %v", cerr)
	}
	return nil
}

// sweep scans every registered agent's due timers and fires each in its
// own transaction.
func (d *dispatcher) sweep() {
	now := time.Now().UTC()
	for reducerName, tick := range d.registry {
		due, err := d.dueTimers(reducerName, now)
		if err != nil {
			d.logger.Error("dispatch: list due timers", zap.String("reducer", reducerName), zap.String("err", err.Message))
			continue
		}
		for _, t := range due {
			d.fire(reducerName, tick, t.ScheduledID, t.Payload, now)
		}
	}
}

func (d *dispatcher) dueTimers(reducerName string, now time.Time) ([]scheduler.Timer, *reducer.Error) {
	tx, err := d.engine.Begin(false)
	if err != nil {
		return nil, reducer.InternalError("dispatch: open read tx: %v", err)
	}
	defer tx.Rollback()
	return scheduler.DueTimers(tx, reducerName, now, d.cfg.TimerBatch)
}

func (d *dispatcher) fire(reducerName string, tick agents.TickFunc, scheduledID uint64, payload json.RawMessage, now time.Time) {
	started := time.Now()
	tx, err := d.engine.Begin(true)
	if err != nil {
		d.logger.Error("dispatch: open write tx", zap.String("reducer", reducerName), zap.Error(err))
		return
	}
	d.rngSeed++
	ctx := reducer.NewCtx(tx, serverIdentity(d.cfg.RegionIndex), true, reducer.RoleRelay, now, uint64(now.UnixNano())+d.rngSeed)
	rerr := tick(ctx, scheduledID, payload)
	d.metrics.TimerFires.WithLabelValues(reducerName).Inc()
	d.metrics.AgentTickDuration.WithLabelValues(reducerName).Observe(time.Since(started).Seconds())
	d.metrics.ObserveReducer(reducerName, rerr, rerr != nil && rerr.UserFacing)

	if rerr != nil {
		tx.Rollback()
		telemetry.WithReducer(d.logger, reducerName, uint64(ctx.Sender), true).
			Error("agent tick failed", zap.String("err", rerr.Message), zap.Bool("user_facing", rerr.UserFacing))
		return
	}
	if cerr := tx.Commit(); cerr != nil {
		d.logger.Error("dispatch: commit tick", zap.String("reducer", reducerName), zap.Error(cerr))
	}
}
