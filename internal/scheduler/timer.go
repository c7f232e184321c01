package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// Timer is a single scheduled invocation: at ScheduledAt, the runtime
// invokes the reducer named Reducer with Payload as its argument. Every
// timer table in this codebase — chat_cleanup's timer, a respawn
// deferral, a claim-tech completion — is a row of this shape, following
// spec.md §4.2's "every timer is a row in a dedicated table" design.
type Timer struct {
	// ScheduledID is the #[auto_inc] primary key. Deleting the row by
	// this key cancels the timer; updating ScheduledAt and re-Putting
	// reschedules it.
	ScheduledID uint64
	// Reducer names the bound reducer this timer invokes on fire. Kept
	// as a plain string rather than a Go func value so timer rows
	// remain pure data, serializable and inspectable by admin tooling.
	Reducer string
	// ScheduledAt is the logical instant this timer is due. DueTimers
	// compares it against "now" as a full time.Time instant.
	ScheduledAt time.Time
	// Payload is the reducer argument, JSON-encoded so arbitrary timer
	// argument shapes can share one table without a union type.
	Payload json.RawMessage
}

// TimersTable is the scheduler's single timer table. Concrete agents that
// need their own argument shape still go through this table; there is no
// per-agent timer table in this implementation, simplifying the
// concurrent-timer-count check described below to one table scan filtered
// by Reducer name.
var TimersTable = store.NewTable[Timer]("scheduler_timers")

// Schedule inserts a new timer row and returns its allocated ScheduledID.
// payload is JSON-marshaled; pass nil for timers that carry no argument
// beyond their own row (most repeating agents).
func Schedule(tx store.Tx, reducerName string, at time.Time, payload any) (uint64, *reducer.Error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, reducer.InternalError("scheduler: encode payload for %s: %v", reducerName, err)
	}
	id, err := TimersTable.NextSequence(tx)
	if err != nil {
		return 0, reducer.Wrap(err)
	}
	t := Timer{ScheduledID: id, Reducer: reducerName, ScheduledAt: at, Payload: raw}
	if err := TimersTable.Put(tx, timerKey(id), t); err != nil {
		return 0, reducer.Wrap(err)
	}
	return id, nil
}

// Reschedule mutates an existing timer's ScheduledAt in place, preserving
// its ScheduledID and Payload. Rescheduling is idempotent: calling it
// twice with the same `at` leaves the row unchanged on the second call.
func Reschedule(tx store.Tx, scheduledID uint64, at time.Time) *reducer.Error {
	t, ok, err := TimersTable.Get(tx, timerKey(scheduledID))
	if err != nil {
		return reducer.Wrap(err)
	}
	if !ok {
		return reducer.InternalError("scheduler: reschedule of unknown timer %d", scheduledID)
	}
	t.ScheduledAt = at
	return reducer.Wrap(TimersTable.Put(tx, timerKey(scheduledID), t))
}

// Cancel deletes a timer by its PK. Deleting an already-fired or already-
// cancelled timer is not an error, matching store.Table's idempotent
// Delete.
func Cancel(tx store.Tx, scheduledID uint64) *reducer.Error {
	return reducer.Wrap(TimersTable.Delete(tx, timerKey(scheduledID)))
}

// DueTimers returns every timer row whose ScheduledAt is at or before now,
// bounded by limit (0 means unbounded). §4.2 requires every agent to
// bound its own per-tick work; passing a nonzero limit here is how
// "respawn agents only process due-before-now rows" stays bounded even
// when a bulk backlog accumulates after downtime.
func DueTimers(tx store.Tx, reducerName string, now time.Time, limit int) ([]Timer, *reducer.Error) {
	var due []Timer
	err := TimersTable.Iterate(tx, func(_ []byte, t Timer) error {
		if limit > 0 && len(due) >= limit {
			return nil
		}
		if t.Reducer != reducerName {
			return nil
		}
		if t.ScheduledAt.After(now) {
			return nil
		}
		due = append(due, t)
		return nil
	})
	if err != nil {
		return nil, reducer.Wrap(err)
	}
	return due, nil
}

// CountPending reports how many pending timers are bound to reducerName,
// used by the concurrent-timer-count check: §4.2 requires that two
// "chat cleanup" timers racing each other be detected (count > 1 logged)
// rather than silently tolerated or auto-merged.
func CountPending(tx store.Tx, reducerName string) (int, *reducer.Error) {
	n := 0
	err := TimersTable.Iterate(tx, func(_ []byte, t Timer) error {
		if t.Reducer == reducerName {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, reducer.Wrap(err)
	}
	return n, nil
}

func timerKey(id uint64) []byte {
	return []byte(fmt.Sprintf("timer:%020d", id))
}
