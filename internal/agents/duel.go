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

// DuelReducer is the bound reducer name for the 1-second duel tick.
const DuelReducer = "duel"

// DuelState is one active duel between two players. OutOfRangeSince is
// zero while both participants are in range; it is set the moment one
// leaves range and cleared if they return before the grace period
// elapses.
type DuelState struct {
	DuelEntityID     eid.ID
	PlayerA          eid.ID
	PlayerB          eid.ID
	OutOfRangeSince  time.Time
	OutOfRangePlayer eid.ID
}

var DuelTable = store.NewTable[DuelState]("duel_state")

func duelKey(id eid.ID) []byte { return []byte(id.String()) }

// PutDuel seeds or replaces a duel's row.
func PutDuel(tx store.Tx, d DuelState) *reducer.Error {
	return reducer.Wrap(DuelTable.Put(tx, duelKey(d.DuelEntityID), d))
}

// InRange is the distance-check hook wired by the spatial layer;
// returning false means outOfRangePlayer left the duel's allowed range
// as of ctx.Now. Left nil in tests that drive DuelState.OutOfRangeSince
// directly.
var InRange func(tx store.Tx, duel DuelState) (inRange bool, outOfRangePlayer eid.ID)

// OnDuelResolved is called with the winner once a duel concludes (by
// sign-out, death, or out-of-range timeout); nil in tests that only
// check the resolution decision itself.
var OnDuelResolved func(tx store.Tx, duelID, winner, loser eid.ID) *reducer.Error

// IsDead is the health-pipeline hook a duel checks for each participant.
var IsDead func(tx store.Tx, player eid.ID) (bool, *reducer.Error)

// DuelTick implements duel: for each duel, if a participant signed out
// or died, that participant loses immediately; otherwise track
// out-of-range timestamps and resolve a loss once the grace period
// elapses, then reschedule every 1s.
func DuelTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var duels []DuelState
		if iterErr := DuelTable.Iterate(ctx.Tx, func(_ []byte, row DuelState) error {
			duels = append(duels, row)
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, d := range duels {
			if resolveErr := tickOneDuel(ctx, d, params); resolveErr != nil {
				return resolveErr
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(time.Second))
}

func tickOneDuel(ctx *reducer.Ctx, d DuelState, params worldconfig.Parameters) *reducer.Error {
	for _, pair := range [][2]eid.ID{{d.PlayerA, d.PlayerB}, {d.PlayerB, d.PlayerA}} {
		player, opponent := pair[0], pair[1]
		signedIn, signedErr := session.IsSignedIn(ctx.Tx, player)
		if signedErr != nil {
			return signedErr
		}
		dead := false
		if signedIn && IsDead != nil {
			var deadErr *reducer.Error
			dead, deadErr = IsDead(ctx.Tx, player)
			if deadErr != nil {
				return deadErr
			}
		}
		if !signedIn || dead {
			return concludeDuel(ctx, d, opponent, player)
		}
	}

	if InRange == nil {
		return nil
	}
	inRange, outOfRangePlayer := InRange(ctx.Tx, d)
	if inRange {
		if !d.OutOfRangeSince.IsZero() {
			d.OutOfRangeSince = time.Time{}
			d.OutOfRangePlayer = eid.None
			return reducer.Wrap(DuelTable.Put(ctx.Tx, duelKey(d.DuelEntityID), d))
		}
		return nil
	}
	if d.OutOfRangeSince.IsZero() {
		d.OutOfRangeSince = ctx.Now
		d.OutOfRangePlayer = outOfRangePlayer
		return reducer.Wrap(DuelTable.Put(ctx.Tx, duelKey(d.DuelEntityID), d))
	}
	grace := time.Duration(params.DuelOutOfRangeGraceSec) * time.Second
	if ctx.Now.Sub(d.OutOfRangeSince) < grace {
		return nil
	}
	winner := d.PlayerA
	if d.OutOfRangePlayer == d.PlayerA {
		winner = d.PlayerB
	}
	return concludeDuel(ctx, d, winner, d.OutOfRangePlayer)
}

func concludeDuel(ctx *reducer.Ctx, d DuelState, winner, loser eid.ID) *reducer.Error {
	if delErr := DuelTable.Delete(ctx.Tx, duelKey(d.DuelEntityID)); delErr != nil {
		return reducer.Wrap(delErr)
	}
	if OnDuelResolved != nil {
		return OnDuelResolved(ctx.Tx, d.DuelEntityID, winner, loser)
	}
	return nil
}
