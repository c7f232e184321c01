package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
)

// TravelerTaskReducer is the bound reducer name for the daily
// NPC-task-pool regeneration tick.
const TravelerTaskReducer = "traveler_task"

// travelerTaskHour mirrors the other daily agents' "configured hour,
// unspecified in spec.md" status.
const travelerTaskHour = 6 * time.Hour

// TravelerTaskPoolState is one signed-in player's current NPC task pool.
type TravelerTaskPoolState struct {
	PlayerEntityID eid.ID
	TaskDescIDs    []uint32
}

var TravelerTaskTable = store.NewTable[TravelerTaskPoolState]("traveler_task_state")

func travelerTaskKey(id eid.ID) []byte { return []byte(id.String()) }

// GenerateTaskPool is the content-layer hook that rolls a fresh task
// pool for a player; left nil in tests that only exercise the
// wipe-and-iterate bookkeeping.
var GenerateTaskPool func(tx store.Tx, player eid.ID) ([]uint32, *reducer.Error)

// ScheduleInitialTravelerTask arms the first daily tick.
func ScheduleInitialTravelerTask(tx store.Tx, now time.Time) (uint64, *reducer.Error) {
	next, err := scheduler.NextDailyTick(now, travelerTaskHour)
	if err != nil {
		return 0, reducer.InternalError("agents: %v", err)
	}
	return scheduler.Schedule(tx, TravelerTaskReducer, next, nil)
}

// TravelerTaskTick implements traveler_task: wipe and regenerate each
// signed-in player's NPC task pool, then reschedule 24h out.
func TravelerTaskTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var signedIn []eid.ID
		if iterErr := session.SignedInTable.Iterate(ctx.Tx, func(_ []byte, row session.SignedInPlayerState) error {
			signedIn = append(signedIn, row.EntityID)
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, player := range signedIn {
			var tasks []uint32
			if GenerateTaskPool != nil {
				var genErr *reducer.Error
				tasks, genErr = GenerateTaskPool(ctx.Tx, player)
				if genErr != nil {
					return genErr
				}
			}
			if putErr := TravelerTaskTable.Put(ctx.Tx, travelerTaskKey(player), TravelerTaskPoolState{
				PlayerEntityID: player, TaskDescIDs: tasks,
			}); putErr != nil {
				return reducer.Wrap(putErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(24*time.Hour))
}
