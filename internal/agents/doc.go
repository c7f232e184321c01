// Package agents implements the concrete repeating reducers §4.2's
// canonical agents table names: chat_cleanup, crumb_trail_cleanup,
// day_night, duel, growth, player_housing_income, rent_collector,
// starving, storage_log_cleanup, teleportation_energy_regen,
// trade_sessions, traveler_task, empire_decay.
//
// Every agent shares the same shape: a Tick function that runs
// internal/scheduler.AgentPrelude, does bounded work if not skipped, and
// reschedules its own timer row through internal/scheduler.Reschedule
// before returning — matching §4.2's "if false, they reschedule without
// work" rule. When the prelude rejects the caller, Tick returns that
// error without rescheduling.
package agents
