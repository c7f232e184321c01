package entity

import (
	"encoding/json"
	"fmt"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// DeployableState is a deployable entity's home-region truth: its owner,
// description id, whether it is hidden (stowed, or mid cross-shard
// transfer), and who/what currently rides it.
type DeployableState struct {
	EntityID      eid.ID
	OwnerPlayerID eid.ID
	DescID        uint32
	Hidden        bool
	PassengerIDs  []eid.ID
	TradeOrderIDs []uint64
}

// DeployableCollectibleStateV2 is a player's local, cached view of a
// deployable they own that lives on another region. It is rebuilt from
// scratch on every recovery request rather than kept in sync
// continuously — Scenario C's "delete stale local, rebuild from the
// vault" shape.
type DeployableCollectibleStateV2 struct {
	PlayerEntityID     eid.ID
	DeployableDescID   uint32
	DeployableEntityID eid.ID
	TradeOrderIDs      []uint64
}

var (
	DeployableTable  = store.NewTable[DeployableState]("deployable_state")
	CollectibleTable = store.NewTable[DeployableCollectibleStateV2]("deployable_collectible_state_v2")
)

func deployableKey(id eid.ID) []byte { return []byte(id.String()) }

func collectibleKey(player eid.ID, descID uint32) []byte {
	return []byte(fmt.Sprintf("%020d:%d", uint64(player), descID))
}

const (
	recoverDeployableKind     = "RecoverDeployable"
	onDeployableRecoveredKind = "OnDeployableRecovered"
)

// ExpelPassengers is the hook the claim/session layer wires at startup to
// kick every rider off a deployable being recovered remotely (dismount,
// clear their LocationState tie to the deployable). Left nil in tests
// that only exercise the recovery handshake itself, since an empty
// PassengerIDs slice makes the call a no-op either way.
var ExpelPassengers func(tx store.Tx, passengerIDs []eid.ID) *reducer.Error

func init() {
	mesh.RegisterHandler(recoverDeployableKind, func(ctx *reducer.Ctx, raw json.RawMessage) *reducer.Error {
		var req mesh.RecoverDeployable
		if err := json.Unmarshal(raw, &req); err != nil {
			return reducer.InternalError("entity: decode RecoverDeployable: %v", err)
		}
		d, found, err := findDeployable(ctx.Tx, req)
		if err != nil {
			return err
		}
		if !found {
			return reducer.UserError("no deployable owned by %s with desc %d on this region", req.PlayerEntityID, req.DeployableDescID)
		}
		if ExpelPassengers != nil {
			if err := ExpelPassengers(ctx.Tx, d.PassengerIDs); err != nil {
				return err
			}
		}
		d.PassengerIDs = nil
		d.Hidden = false
		if err := DeployableTable.Put(ctx.Tx, deployableKey(d.EntityID), d); err != nil {
			return reducer.Wrap(err)
		}
		return mesh.Send(ctx, ctx.Sender.RegionIndex(), onDeployableRecoveredKind, mesh.OnDeployableRecovered{
			PlayerEntityID:     d.OwnerPlayerID,
			DeployableEntityID: d.EntityID,
			DeployableDescID:   d.DescID,
			TradeOrderIDs:      d.TradeOrderIDs,
		}, mesh.Region(req.RequestingRegion))
	})

	mesh.RegisterSenderResultHandler(recoverDeployableKind, func(ctx *reducer.Ctx, raw json.RawMessage, errMsg *string) *reducer.Error {
		if errMsg != nil {
			return reducer.UserError("deployable recovery failed: %s", *errMsg)
		}
		// Success here only means the request reached a region that
		// found the deployable; the collectible row itself is finalized
		// below, once that region's own OnDeployableRecovered message
		// arrives with the full state.
		return nil
	})

	mesh.RegisterHandler(onDeployableRecoveredKind, func(ctx *reducer.Ctx, raw json.RawMessage) *reducer.Error {
		var rep mesh.OnDeployableRecovered
		if err := json.Unmarshal(raw, &rep); err != nil {
			return reducer.InternalError("entity: decode OnDeployableRecovered: %v", err)
		}
		row := DeployableCollectibleStateV2{
			PlayerEntityID:     rep.PlayerEntityID,
			DeployableDescID:   rep.DeployableDescID,
			DeployableEntityID: rep.DeployableEntityID,
			TradeOrderIDs:      rep.TradeOrderIDs,
		}
		return reducer.Wrap(CollectibleTable.Put(ctx.Tx, collectibleKey(row.PlayerEntityID, row.DeployableDescID), row))
	})

	mesh.RegisterSenderResultHandler(onDeployableRecoveredKind, func(ctx *reducer.Ctx, raw json.RawMessage, errMsg *string) *reducer.Error {
		// The owning region has already committed the expel-passengers
		// effect locally regardless of whether this follow-up message is
		// ever acknowledged, so there is nothing to compensate here.
		return nil
	})
}

// findDeployable resolves req against this region's deployable table. An
// explicit DeployableEntityID is matched directly; DeployableEntityID
// left at its zero value means the caller only knows the description id
// and must be matched by owner + description, the "collectible" path
// Scenario C exercises.
func findDeployable(tx store.Tx, req mesh.RecoverDeployable) (DeployableState, bool, *reducer.Error) {
	if !req.DeployableEntityID.IsNone() {
		d, ok, err := DeployableTable.Get(tx, deployableKey(req.DeployableEntityID))
		return d, ok, reducer.Wrap(err)
	}
	var found DeployableState
	ok := false
	err := DeployableTable.Iterate(tx, func(_ []byte, row DeployableState) error {
		if !ok && row.OwnerPlayerID == req.PlayerEntityID && row.DescID == req.DeployableDescID {
			found, ok = row, true
		}
		return nil
	})
	return found, ok, reducer.Wrap(err)
}

// DeployableStoreFromCollectibleID implements Scenario C's
// deployable_store_from_collectible_id reducer on the requesting region:
// delete any stale local collectible row, then broadcast a
// RecoverDeployable request to every other region so whichever one
// actually owns the deployable can respond.
func DeployableStoreFromCollectibleID(ctx *reducer.Ctx, player eid.ID, collectibleDescID uint32) *reducer.Error {
	if err := CollectibleTable.Delete(ctx.Tx, collectibleKey(player, collectibleDescID)); err != nil {
		return reducer.Wrap(err)
	}
	return mesh.Send(ctx, ctx.Sender.RegionIndex(), recoverDeployableKind, mesh.RecoverDeployable{
		PlayerEntityID:   player,
		DeployableDescID: collectibleDescID,
		RequestingRegion: ctx.Sender.RegionIndex(),
	}, mesh.AllOtherRegions())
}
