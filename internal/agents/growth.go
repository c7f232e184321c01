package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// GrowthReducer is the bound reducer name for the resource-growth tick.
const GrowthReducer = "growth"

// GrowingResourceState is one resource entity mid-growth: GrownDescID
// names the resource description it becomes once EndTimestamp elapses.
type GrowingResourceState struct {
	ResourceEntityID eid.ID
	GrownDescID      uint32
	EndTimestamp     time.Time
}

var GrowingTable = store.NewTable[GrowingResourceState]("growing_resource_state")

func growingKey(id eid.ID) []byte {
	return []byte(id.String())
}

// PlantResource starts a resource growing, to finish at endTimestamp.
func PlantResource(tx store.Tx, resource eid.ID, grownDescID uint32, endTimestamp time.Time) *reducer.Error {
	return reducer.Wrap(GrowingTable.Put(tx, growingKey(resource), GrowingResourceState{
		ResourceEntityID: resource, GrownDescID: grownDescID, EndTimestamp: endTimestamp,
	}))
}

// OnResourceGrown is the hook the world-object layer wires to actually
// swap a resource entity's description once it finishes growing; left
// nil in tests that only exercise the growth-table bookkeeping.
var OnResourceGrown func(tx store.Tx, resource eid.ID, grownDescID uint32) *reducer.Error

// GrowthTick implements growth: evolve any resource whose growth
// end_timestamp < now into its recipe's grown resource, then reschedule
// at ResourceGrowthTickMS.
func GrowthTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var due []GrowingResourceState
		if iterErr := GrowingTable.Iterate(ctx.Tx, func(_ []byte, row GrowingResourceState) error {
			if row.EndTimestamp.Before(ctx.Now) {
				due = append(due, row)
			}
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, row := range due {
			if OnResourceGrown != nil {
				if grownErr := OnResourceGrown(ctx.Tx, row.ResourceEntityID, row.GrownDescID); grownErr != nil {
					return grownErr
				}
			}
			if delErr := GrowingTable.Delete(ctx.Tx, growingKey(row.ResourceEntityID)); delErr != nil {
				return reducer.Wrap(delErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(time.Duration(params.ResourceGrowthTickMS)*time.Millisecond))
}
