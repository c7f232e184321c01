package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
)

// DayNightReducer is the bound reducer name for the dusk/dawn boundary
// timer.
const DayNightReducer = "day_night"

// dayLength is the in-world day's wall-clock length; dusk and dawn are
// its midpoint and start respectively. Kept as an untunable constant
// since no named Parameters field exists for it in spec.md or
// original_source/ — day_night never does any work, only re-arms.
const dayLength = 24 * time.Hour

// NextDuskOrDawn returns the next dusk or dawn boundary strictly after
// now, alternating between the two.
func NextDuskOrDawn(now time.Time, atDusk bool) time.Time {
	half := dayLength / 2
	boundary := now.Truncate(dayLength)
	if atDusk {
		boundary = boundary.Add(half)
	}
	for !boundary.After(now) {
		boundary = boundary.Add(half)
	}
	return boundary
}

// isDuskBoundary reports whether t itself sits on a dusk boundary rather
// than a dawn one, so DayNightTick can tell which edge just fired without
// a payload round-trip through the timer row.
func isDuskBoundary(t time.Time) bool {
	return t.Truncate(dayLength/2) != t.Truncate(dayLength)
}

// ScheduleInitialDayNight arms the first dusk/dawn boundary timer. Nothing
// else in this package seeds day_night; a freshly booted region calls this
// once at startup.
func ScheduleInitialDayNight(tx store.Tx, now time.Time) (uint64, *reducer.Error) {
	return scheduler.Schedule(tx, DayNightReducer, NextDuskOrDawn(now, isDuskBoundary(now)), nil)
}

// DayNightTick implements day_night: per original_source/, the body has
// no work beyond re-arming the next boundary (hooks reserved for
// lighting/NPC-schedule systems out of this core's scope). Which boundary
// just fired is recovered from ctx.Now itself, since the dispatcher always
// runs a timer at (or after) its ScheduledAt.
func DayNightTick(ctx *reducer.Ctx, scheduledID uint64) *reducer.Error {
	next := NextDuskOrDawn(ctx.Now, !isDuskBoundary(ctx.Now))
	return scheduler.Reschedule(ctx.Tx, scheduledID, next)
}
