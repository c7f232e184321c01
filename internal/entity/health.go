package entity

import (
	"time"

	"github.com/dreamware/worldshard/internal/coordinates"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
)

// lowHealth is the health a teleport_home=false respawn leaves a player
// at (Testable Property 8 point d): alive but fragile, rather than back
// at full health, since they chose to stay where they died.
const lowHealth = 10

// HealthState is the row shape of a living entity's health/max-health
// pair. A row's absence means the entity has no health pool at all
// (e.g. a deployable), not "full health" — callers that need a default
// must seed the row themselves at creation.
type HealthState struct {
	EntityID  eid.ID
	Health    float64
	MaxHealth float64
}

var HealthTable = store.NewTable[HealthState]("health_state")

// MountState is the row shape of a rider currently mounted on another
// entity (a deployable, a tamed creature). Its presence is the "mounted"
// state; deleting it is the only way to dismount.
type MountState struct {
	RiderEntityID eid.ID
	MountEntityID eid.ID
}

var MountTable = store.NewTable[MountState]("mount_state")

// CarriedCargo is the row shape of the single stack of cargo a player is
// currently carrying loose (not stowed in a claim's storage) — the
// representative "carried cargo" slot Testable Property 8's drop-on-death
// step references, not a full inventory system.
type CarriedCargo struct {
	PlayerEntityID eid.ID
	DescID         uint32
	Quantity       uint32
}

var CarriedCargoTable = store.NewTable[CarriedCargo]("carried_cargo_state")

// DroppedResource is a resource entity a death drop spawned at the
// player's last small-tile position, ready to be picked up by anyone.
type DroppedResource struct {
	EntityID eid.ID
	DescID   uint32
	Quantity uint32
}

var DroppedResourceTable = store.NewTable[DroppedResource]("dropped_resource_state")

func healthKey(id eid.ID) []byte { return []byte(id.String()) }

func init() {
	entityHooks := []struct {
		name string
		del  DeleteHook
	}{
		{"entity.health", func(tx store.Tx, id eid.ID) *reducer.Error { return reducer.Wrap(HealthTable.Delete(tx, healthKey(id))) }},
		{"entity.mount", func(tx store.Tx, id eid.ID) *reducer.Error { return reducer.Wrap(MountTable.Delete(tx, healthKey(id))) }},
		{"entity.carried_cargo", func(tx store.Tx, id eid.ID) *reducer.Error {
			return reducer.Wrap(CarriedCargoTable.Delete(tx, healthKey(id)))
		}},
	}
	for _, h := range entityHooks {
		RegisterDeleteHook(h.name, h.del)
	}
}

// DeathActionType is the PlayerActionState.ActionType value a dying
// player is parked under on reducer.LayerMovement: death blocks new
// movement actions the same way any other in-progress movement action
// would, until the respawn timer clears it.
const DeathActionType = "death"

// RespawnReducer is the scheduled-timer reducer name Die arms and the
// region-server dispatch loop routes to Respawn.
const RespawnReducer = "respawn"

// RespawnTimer is the one-shot scheduler payload Die schedules and
// Respawn decodes.
type RespawnTimer struct {
	Player       eid.ID
	TeleportHome bool
}

// HomeOf resolves a player's respawn point — normally their claim's home
// building or a region-default spawn tile. Left nil in tests that only
// exercise the local (teleport_home=false) respawn path.
var HomeOf func(tx store.Tx, player eid.ID) (coordinates.SmallHexTile, *reducer.Error)

// Die implements Testable Property 8's health-zero transition: park the
// player in PlayerActionState::Death, remove any mount, drop carried
// cargo as a resource entity at their last known tile, and schedule
// respawn after respawnSeconds. teleportHome is carried through to the
// eventual respawn call.
func Die(ctx *reducer.Ctx, player eid.ID, respawnSeconds int64, teleportHome bool) *reducer.Error {
	state := reducer.ActionState{
		Player: player, Layer: reducer.LayerMovement, ActionType: DeathActionType,
		StartTimestamp: ctx.Now,
	}
	if err := reducer.SetAction(ctx.Tx, state); err != nil {
		return err
	}

	if err := MountTable.Delete(ctx.Tx, healthKey(player)); err != nil {
		return reducer.Wrap(err)
	}

	if err := dropCarriedCargo(ctx, player); err != nil {
		return err
	}

	_, err := scheduler.Schedule(ctx.Tx, RespawnReducer, ctx.Now.Add(time.Duration(respawnSeconds)*time.Second), RespawnTimer{
		Player: player, TeleportHome: teleportHome,
	})
	return err
}

// dropCarriedCargo moves a player's CarriedCargo row, if any, into a
// freshly created DroppedResource entity at their last LocationState or
// MobileEntityState tile. A player with nothing carried is a no-op.
func dropCarriedCargo(ctx *reducer.Ctx, player eid.ID) *reducer.Error {
	cargo, ok, err := CarriedCargoTable.Get(ctx.Tx, healthKey(player))
	if err != nil {
		return reducer.Wrap(err)
	}
	if !ok || cargo.Quantity == 0 {
		return nil
	}
	tile, found, err2 := lastKnownTile(ctx.Tx, player)
	if err2 != nil {
		return err2
	}
	if !found {
		// Nowhere to drop it; the cargo is simply lost rather than
		// blocking the death transition on a missing location row.
		return reducer.Wrap(CarriedCargoTable.Delete(ctx.Tx, healthKey(player)))
	}
	dropped, allocErr := CreateEntity(ctx.Tx, ctx.Sender.RegionIndex())
	if allocErr != nil {
		return allocErr
	}
	if err := PutLocation(ctx.Tx, dropped, tile); err != nil {
		return err
	}
	if err := DroppedResourceTable.Put(ctx.Tx, healthKey(dropped), DroppedResource{
		EntityID: dropped, DescID: cargo.DescID, Quantity: cargo.Quantity,
	}); err != nil {
		return reducer.Wrap(err)
	}
	return reducer.Wrap(CarriedCargoTable.Delete(ctx.Tx, healthKey(player)))
}

func lastKnownTile(tx store.Tx, player eid.ID) (coordinates.SmallHexTile, bool, *reducer.Error) {
	if loc, ok, err := LocationTable.Get(tx, entityKey(player)); err != nil {
		return coordinates.SmallHexTile{}, false, reducer.Wrap(err)
	} else if ok {
		return loc.Tile(), true, nil
	}
	if mob, ok, err := MobileTable.Get(tx, entityKey(player)); err != nil {
		return coordinates.SmallHexTile{}, false, reducer.Wrap(err)
	} else if ok {
		return mob.Tile(), true, nil
	}
	return coordinates.SmallHexTile{}, false, nil
}

// Respawn implements Testable Property 8 point (d): teleport_home=true
// sets health to max and moves the player to HomeOf's tile;
// teleport_home=false sets health to lowHealth and leaves them where
// they died. Either way the Death action row is cleared. Called both
// from the scheduled RespawnTimer and directly by a player-triggered
// early respawn request, per §4.1's "respawn(teleport_home) reducer"
// framing.
func Respawn(ctx *reducer.Ctx, player eid.ID, teleportHome bool) *reducer.Error {
	if err := reducer.ClearAction(ctx.Tx, player, reducer.LayerMovement); err != nil {
		return err
	}

	health, ok, err := HealthTable.Get(ctx.Tx, healthKey(player))
	if err != nil {
		return reducer.Wrap(err)
	}
	if !ok {
		health = HealthState{EntityID: player, MaxHealth: 100}
	}

	if !teleportHome {
		health.Health = lowHealth
		return reducer.Wrap(HealthTable.Put(ctx.Tx, healthKey(player), health))
	}

	health.Health = health.MaxHealth
	if err := HealthTable.Put(ctx.Tx, healthKey(player), health); err != nil {
		return reducer.Wrap(err)
	}
	if HomeOf == nil {
		return nil
	}
	home, herr := HomeOf(ctx.Tx, player)
	if herr != nil {
		return herr
	}
	return PutLocation(ctx.Tx, player, home)
}
