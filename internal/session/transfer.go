package session

import (
	"encoding/json"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// transferKind is the mesh.Message.Kind string both the handler and the
// sender-result handler register against.
const transferKind = "TransferPlayer"

// OnArrive and OnDeparted are the hooks the hosting binary wires at
// startup to move entity-level state (location, inventory, housing)
// alongside the identity rebinding this package owns. Left nil in tests
// that only exercise the identity bookkeeping.
var (
	OnArrive   func(tx store.Tx, t mesh.TransferPlayer) *reducer.Error
	OnDeparted func(tx store.Tx, t mesh.TransferPlayer) *reducer.Error
)

func init() {
	mesh.RegisterHandler(transferKind, func(ctx *reducer.Ctx, raw json.RawMessage) *reducer.Error {
		var t mesh.TransferPlayer
		if err := json.Unmarshal(raw, &t); err != nil {
			return reducer.InternalError("session: decode TransferPlayer: %v", err)
		}
		ident := Identity(t.Identity)
		if err := UserTable.Put(ctx.Tx, identityKey(ident), UserState{Identity: ident, EntityID: t.PlayerEntityID}); err != nil {
			return reducer.Wrap(err)
		}
		if err := RegionOfTable.Put(ctx.Tx, identityKey(ident), UserRegionState{Identity: ident, RegionID: t.ToRegion}); err != nil {
			return reducer.Wrap(err)
		}
		if OnArrive != nil {
			return OnArrive(ctx.Tx, t)
		}
		return nil
	})

	mesh.RegisterSenderResultHandler(transferKind, func(ctx *reducer.Ctx, raw json.RawMessage, errMsg *string) *reducer.Error {
		var t mesh.TransferPlayer
		if err := json.Unmarshal(raw, &t); err != nil {
			return reducer.InternalError("session: decode TransferPlayer reply: %v", err)
		}
		if errMsg != nil {
			// Destination rejected the transfer; the player stays put.
			return reducer.UserError("transfer failed: %s", *errMsg)
		}
		if err := SignedInTable.Delete(ctx.Tx, entityKeyOf(t.PlayerEntityID)); err != nil {
			return reducer.Wrap(err)
		}
		if OnDeparted != nil {
			if err := OnDeparted(ctx.Tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// TransferPlayer implements §4.6's cross-region transfer: send a
// TransferPlayer message to toRegion. The source region's own state is
// only cleared once the destination's reply confirms success (the
// SenderResultHandler above), so a transfer that never replies leaves
// the player signed in on the source region rather than stranding them.
func TransferPlayer(ctx *reducer.Ctx, player eid.ID, ident Identity, fromRegion, toRegion uint8) *reducer.Error {
	return mesh.Send(ctx, fromRegion, transferKind, mesh.TransferPlayer{
		PlayerEntityID: player,
		Identity:       string(ident),
		FromRegion:     fromRegion,
		ToRegion:       toRegion,
	}, mesh.Region(toRegion))
}
