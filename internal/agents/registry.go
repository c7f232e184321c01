package agents

import (
	"encoding/json"
	"time"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// TickFunc is the uniform shape every agent's Tick function is adapted to:
// a bound reducer invoked with the scheduledID and raw Payload of the
// timer row that fired it. region-server's dispatch loop only ever calls
// through this shape, so it never needs to know any individual agent's
// own parameter list; most of this package's own agents scan their own
// table instead of decoding payload, and simply ignore it.
type TickFunc func(ctx *reducer.Ctx, scheduledID uint64, payload json.RawMessage) *reducer.Error

// Registry binds every reducer name this package owns to a TickFunc closed
// over the live worldconfig, so region-server's dispatch loop can look a
// timer's ReducerName up by string and invoke it without a type switch.
func Registry(cfg func() (bool, worldconfig.Parameters)) map[string]TickFunc {
	enabled := func() bool { e, _ := cfg(); return e }
	params := func() worldconfig.Parameters { _, p := cfg(); return p }

	return map[string]TickFunc{
		ChatCleanupReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return ChatCleanupTick(ctx, id, enabled(), params())
		},
		CrumbTrailCleanupReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return CrumbTrailCleanupTick(ctx, id, enabled(), params())
		},
		DayNightReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return DayNightTick(ctx, id)
		},
		DuelReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return DuelTick(ctx, id, enabled(), params())
		},
		EmpireDecayReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return EmpireDecayTick(ctx, id, enabled())
		},
		GrowthReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return GrowthTick(ctx, id, enabled(), params())
		},
		PlayerHousingIncomeReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return PlayerHousingIncomeTick(ctx, id, enabled())
		},
		RentCollectorReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return RentCollectorTick(ctx, id, enabled())
		},
		StarvingReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return StarvingTick(ctx, id, enabled(), params())
		},
		StorageLogCleanupReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return StorageLogCleanupTick(ctx, id, enabled(), params())
		},
		TeleportEnergyRegenReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return TeleportationEnergyRegenTick(ctx, id, enabled(), params())
		},
		TradeSessionsReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return TradeSessionsTick(ctx, id, enabled(), params())
		},
		TravelerTaskReducer: func(ctx *reducer.Ctx, id uint64, _ json.RawMessage) *reducer.Error {
			return TravelerTaskTick(ctx, id, enabled())
		},
	}
}

// seedIfAbsent arms reducerName's first timer only when it has no pending
// row, so repeated calls across server restarts stay idempotent instead of
// piling up duplicate timers.
func seedIfAbsent(tx store.Tx, reducerName string, schedule func() (uint64, *reducer.Error)) *reducer.Error {
	n, err := scheduler.CountPending(tx, reducerName)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = schedule()
	return err
}

// SeedAll arms the first timer for every agent that has none pending yet.
// Called once at region-server startup; safe to call on every boot since
// it is a no-op for agents that already have a pending timer.
func SeedAll(tx store.Tx, now time.Time, params worldconfig.Parameters) *reducer.Error {
	seeds := []struct {
		reducer  string
		schedule func() (uint64, *reducer.Error)
	}{
		{ChatCleanupReducer, func() (uint64, *reducer.Error) { return ScheduleInitialChatCleanup(tx, now) }},
		{CrumbTrailCleanupReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, CrumbTrailCleanupReducer, now.Add(10*time.Minute), nil)
		}},
		{DayNightReducer, func() (uint64, *reducer.Error) { return ScheduleInitialDayNight(tx, now) }},
		{DuelReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, DuelReducer, now.Add(time.Second), nil)
		}},
		{EmpireDecayReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, EmpireDecayReducer, now.Add(time.Minute), nil)
		}},
		{GrowthReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, GrowthReducer, now.Add(time.Duration(params.ResourceGrowthTickMS)*time.Millisecond), nil)
		}},
		{PlayerHousingIncomeReducer, func() (uint64, *reducer.Error) {
			return ScheduleInitialPlayerHousingIncome(tx, now)
		}},
		{RentCollectorReducer, func() (uint64, *reducer.Error) { return ScheduleInitialRentCollector(tx, now) }},
		{StarvingReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, StarvingReducer, now.Add(time.Duration(params.StarvingTickMS)*time.Millisecond), nil)
		}},
		{StorageLogCleanupReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, StorageLogCleanupReducer, now.Add(24*time.Hour), nil)
		}},
		{TeleportEnergyRegenReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, TeleportEnergyRegenReducer, now.Add(time.Duration(params.TeleportEnergyRegenMS)*time.Millisecond), nil)
		}},
		{TradeSessionsReducer, func() (uint64, *reducer.Error) {
			return scheduler.Schedule(tx, TradeSessionsReducer, now.Add(5*time.Second), nil)
		}},
		{TravelerTaskReducer, func() (uint64, *reducer.Error) { return ScheduleInitialTravelerTask(tx, now) }},
	}
	for _, s := range seeds {
		if err := seedIfAbsent(tx, s.reducer, s.schedule); err != nil {
			return err
		}
	}
	return nil
}
