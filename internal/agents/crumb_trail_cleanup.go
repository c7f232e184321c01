package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// CrumbTrailCleanupReducer is the bound reducer name for the 10-minute
// crumb-trail-cleanup tick.
const CrumbTrailCleanupReducer = "crumb_trail_cleanup"

// CrumbTrailState tracks one herd/resource trail's follower and its
// consecutive-absence strike count.
type CrumbTrailState struct {
	TrailEntityID  eid.ID
	FollowerID     eid.ID
	Strikes        int
	PrizeEntityIDs []eid.ID
}

var CrumbTrailTable = store.NewTable[CrumbTrailState]("crumb_trail_state")

func crumbTrailKey(id eid.ID) []byte {
	return []byte(id.String())
}

// PutCrumbTrail seeds or replaces a trail's row.
func PutCrumbTrail(tx store.Tx, t CrumbTrailState) *reducer.Error {
	return reducer.Wrap(CrumbTrailTable.Put(tx, crumbTrailKey(t.TrailEntityID), t))
}

// CrumbTrailCleanupTick implements crumb_trail_cleanup: for each trail,
// reset the strike counter if a signed-in follower exists, else
// increment it; at CrumbTrailStrikeLimit strikes, despawn the trail's
// prize resources/herds and delete the trail itself.
func CrumbTrailCleanupTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var trails []CrumbTrailState
		if iterErr := CrumbTrailTable.Iterate(ctx.Tx, func(_ []byte, row CrumbTrailState) error {
			trails = append(trails, row)
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, trail := range trails {
			followerSignedIn, signedErr := session.IsSignedIn(ctx.Tx, trail.FollowerID)
			if signedErr != nil {
				return signedErr
			}
			if followerSignedIn {
				trail.Strikes = 0
				if putErr := CrumbTrailTable.Put(ctx.Tx, crumbTrailKey(trail.TrailEntityID), trail); putErr != nil {
					return reducer.Wrap(putErr)
				}
				continue
			}
			trail.Strikes++
			if trail.Strikes < params.CrumbTrailStrikeLimit {
				if putErr := CrumbTrailTable.Put(ctx.Tx, crumbTrailKey(trail.TrailEntityID), trail); putErr != nil {
					return reducer.Wrap(putErr)
				}
				continue
			}
			for _, prize := range trail.PrizeEntityIDs {
				if delErr := entity.DeleteEntity(ctx.Tx, prize); delErr != nil {
					return delErr
				}
			}
			if delErr := CrumbTrailTable.Delete(ctx.Tx, crumbTrailKey(trail.TrailEntityID)); delErr != nil {
				return reducer.Wrap(delErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(10*time.Minute))
}
