package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// TeleportEnergyRegenReducer is the bound reducer name for the
// teleportation-energy regen tick.
const TeleportEnergyRegenReducer = "teleportation_energy_regen"

// TeleportEnergyState tracks one player's teleportation energy pool.
type TeleportEnergyState struct {
	PlayerEntityID eid.ID
	Energy         float64
	MaxEnergy      float64
}

var TeleportEnergyTable = store.NewTable[TeleportEnergyState]("teleport_energy_state")

func teleportEnergyKey(id eid.ID) []byte { return []byte(id.String()) }

// PutTeleportEnergy seeds or replaces a player's energy row.
func PutTeleportEnergy(tx store.Tx, s TeleportEnergyState) *reducer.Error {
	return reducer.Wrap(TeleportEnergyTable.Put(tx, teleportEnergyKey(s.PlayerEntityID), s))
}

// TeleportationEnergyRegenTick implements teleportation_energy_regen:
// clamp each player's TP energy toward max at the configured regen rate,
// then reschedule at TeleportEnergyRegenMS.
func TeleportationEnergyRegenTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var rows []TeleportEnergyState
		if iterErr := TeleportEnergyTable.Iterate(ctx.Tx, func(_ []byte, row TeleportEnergyState) error {
			if row.Energy < row.MaxEnergy {
				rows = append(rows, row)
			}
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, row := range rows {
			row.Energy += params.TeleportEnergyRegenRate
			if row.Energy > row.MaxEnergy {
				row.Energy = row.MaxEnergy
			}
			if putErr := TeleportEnergyTable.Put(ctx.Tx, teleportEnergyKey(row.PlayerEntityID), row); putErr != nil {
				return reducer.Wrap(putErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(time.Duration(params.TeleportEnergyRegenMS)*time.Millisecond))
}
