package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
)

// EmpireDecayReducer is the bound reducer name for the empire-node
// energy-decay tick.
const EmpireDecayReducer = "empire_decay"

// empireDecayInterval is kept as a constant: spec.md leaves the cadence
// as "configured" but neither it nor original_source/ names a
// Parameters field for it, unlike the other timed agents.
const empireDecayInterval = time.Minute

// EmpireNodeState is one active empire node draining energy at its
// upkeep rate until empty.
type EmpireNodeState struct {
	NodeEntityID eid.ID
	ClaimID      eid.ID
	Energy       int64
	Upkeep       int64
	Active       bool
}

var EmpireNodeTable = store.NewTable[EmpireNodeState]("empire_node_state")

func empireNodeKey(id eid.ID) []byte { return []byte(id.String()) }

// PutEmpireNode seeds or replaces an empire node's row.
func PutEmpireNode(tx store.Tx, n EmpireNodeState) *reducer.Error {
	return reducer.Wrap(EmpireNodeTable.Put(tx, empireNodeKey(n.NodeEntityID), n))
}

// EmpireDecayTick implements empire_decay: drain each active empire
// node's energy by its upkeep, deactivating it when empty, then
// reschedule.
func EmpireDecayTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var nodes []EmpireNodeState
		if iterErr := EmpireNodeTable.Iterate(ctx.Tx, func(_ []byte, row EmpireNodeState) error {
			if row.Active {
				nodes = append(nodes, row)
			}
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, n := range nodes {
			n.Energy -= n.Upkeep
			if n.Energy <= 0 {
				n.Energy = 0
				n.Active = false
			}
			if putErr := EmpireNodeTable.Put(ctx.Tx, empireNodeKey(n.NodeEntityID), n); putErr != nil {
				return reducer.Wrap(putErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(empireDecayInterval))
}
