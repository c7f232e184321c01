package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dreamware/worldshard/internal/reducer"
)

// AgentPrelude implements the common prelude every repeating agent shares
// per §4.2:
//
//	if !server_or_admin(ctx): log_error; return
//	if !config.agents_enabled: return
//	do_work()
//
// agentsEnabled is the caller's already-resolved Config.agents_enabled
// value (internal/worldconfig owns the config row; scheduler does not
// import it, to keep this package a low-level leaf). skipWork is true
// when the agent must reschedule itself without doing any work — either
// because the prelude rejected the caller, or because agents are
// administratively disabled. Whenever err is nil, callers reschedule
// regardless of skipWork, matching "if false, they reschedule without
// work"; on a non-nil err they return it without rescheduling.
func AgentPrelude(ctx *reducer.Ctx, agentsEnabled bool) (skipWork bool, err *reducer.Error) {
	if gateErr := ctx.RequireServer(); gateErr != nil {
		return true, gateErr
	}
	if !agentsEnabled {
		return true, nil
	}
	return false, nil
}

// NextDailyTick computes the next wall-clock instant a daily-at-time
// agent should fire, given the time of day (since midnight UTC) it is
// configured to run at. This implements §4.2's "scheduled-at-specific-
// time" timer type:
//
//	next_tick = floor(now/DAY)*DAY + time_of_day
//	if next_tick < now: next_tick += DAY
//
// computed via a robfig/cron minute/hour schedule rather than hand-
// rolled modular arithmetic, so the same cron expression parser used for
// configuring agent cadences in cmd/*'s admin surface also drives the
// first-fire computation. timeOfDay must be less than 24h; fractional
// minutes are truncated since cron schedules are minute-resolution.
func NextDailyTick(now time.Time, timeOfDay time.Duration) (time.Time, error) {
	if timeOfDay < 0 || timeOfDay >= 24*time.Hour {
		return time.Time{}, fmt.Errorf("scheduler: time of day %s out of range", timeOfDay)
	}
	hour := int(timeOfDay / time.Hour)
	minute := int((timeOfDay % time.Hour) / time.Minute)

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduler: parse daily schedule %q: %w", spec, err)
	}

	// cron.Schedule.Next returns the first activation strictly after the
	// given instant; subtracting a nanosecond lets an exact boundary hit
	// (now == the scheduled instant) still count as due, matching the
	// spec's "if next_tick < now" (not <=) comparison.
	return schedule.Next(now.UTC().Add(-time.Nanosecond)), nil
}
