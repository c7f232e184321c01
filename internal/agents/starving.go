package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// StarvingReducer is the bound reducer name for the starving tick.
const StarvingReducer = "starving"

// StarvingPlayerState marks a player whose hunger has reached zero and
// is now taking periodic damage until fed or killed.
type StarvingPlayerState struct {
	PlayerEntityID eid.ID
}

var StarvingTable = store.NewTable[StarvingPlayerState]("starving_player_state")

func starvingKey(id eid.ID) []byte { return []byte(id.String()) }

// MarkStarving inserts a StarvingPlayerState row; idempotent.
func MarkStarving(tx store.Tx, player eid.ID) *reducer.Error {
	return reducer.Wrap(StarvingTable.Put(tx, starvingKey(player), StarvingPlayerState{PlayerEntityID: player}))
}

// ClearStarving removes player's StarvingPlayerState row (fed, or dead).
func ClearStarving(tx store.Tx, player eid.ID) *reducer.Error {
	return reducer.Wrap(StarvingTable.Delete(tx, starvingKey(player)))
}

// ApplyDamage is the health/death pipeline hook this agent drives;
// returning true means the damage killed the player (the caller is
// expected to have already run the death pipeline before returning).
// Left nil in tests that only exercise the starving-set bookkeeping.
var ApplyDamage func(tx store.Tx, player eid.ID, damage float64) (died bool, rerr *reducer.Error)

// StarvingTick implements starving: for each signed-in starving player,
// apply starving_damage via the health/death pipeline, then reschedule
// at StarvingTickMS. A player killed by starvation damage is cleared
// from the starving set in the same pass, since a dead player is no
// longer "signed in and starving" by definition.
func StarvingTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var starving []eid.ID
		if iterErr := StarvingTable.Iterate(ctx.Tx, func(_ []byte, row StarvingPlayerState) error {
			starving = append(starving, row.PlayerEntityID)
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, player := range starving {
			signedIn, signedErr := session.IsSignedIn(ctx.Tx, player)
			if signedErr != nil {
				return signedErr
			}
			if !signedIn {
				continue
			}
			if ApplyDamage == nil {
				continue
			}
			died, dmgErr := ApplyDamage(ctx.Tx, player, params.StarvingDamage)
			if dmgErr != nil {
				return dmgErr
			}
			if died {
				if clearErr := ClearStarving(ctx.Tx, player); clearErr != nil {
					return clearErr
				}
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(time.Duration(params.StarvingTickMS)*time.Millisecond))
}
