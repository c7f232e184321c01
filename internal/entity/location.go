package entity

import (
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/coordinates"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// Location is the row shape of LocationState (§3): a static entity's
// position. chunk_index is stored redundantly alongside X/Z/Dim so
// chunk-scoped queries don't have to recompute it for every row scanned.
type Location struct {
	EntityID   eid.ID
	Dim        uint32
	X          int32
	Z          int32
	ChunkIndex int64
}

// Tile returns the small hex tile this location row occupies.
func (l Location) Tile() coordinates.SmallHexTile {
	return coordinates.SmallHexTile{X: l.X, Z: l.Z, Dim: l.Dim}
}

// Mobile is the row shape of MobileEntityState (§3): a moving entity,
// carrying the client-side interpolation hints (Destination/Duration)
// the spec calls out. Timestamp is the instant the move began, matching
// the original's "timestamp, destination, duration" triple.
type Mobile struct {
	EntityID    eid.ID
	Dim         uint32
	X           int32
	Z           int32
	ChunkIndex  int64
	Timestamp   time.Time
	Destination coordinates.SmallHexTile
	Duration    time.Duration
}

// Tile returns the small hex tile this mobile row's last known position
// occupies (not its interpolated destination).
func (m Mobile) Tile() coordinates.SmallHexTile {
	return coordinates.SmallHexTile{X: m.X, Z: m.Z, Dim: m.Dim}
}

// LocationTable and MobileTable back LocationState/MobileEntityState.
// §3 invariant 7: an entity appears in at most one of the two; every
// write path in this file enforces that by deleting from the other table
// first.
var (
	LocationTable = store.NewTable[Location]("location_state")
	MobileTable   = store.NewTable[Mobile]("mobile_entity_state")
)

func entityKey(id eid.ID) []byte {
	return []byte(fmt.Sprintf("entity:%020d", uint64(id)))
}

// PutLocation sets id as a static entity at tile, removing any
// MobileEntityState row for the same id so the two tables stay mutually
// exclusive.
func PutLocation(tx store.Tx, id eid.ID, tile coordinates.SmallHexTile) *reducer.Error {
	if err := MobileTable.Delete(tx, entityKey(id)); err != nil {
		return reducer.Wrap(err)
	}
	row := Location{
		EntityID:   id,
		Dim:        tile.Dim,
		X:          tile.X,
		Z:          tile.Z,
		ChunkIndex: coordinates.ChunkCoordinatesFromSmall(tile).Index(),
	}
	return reducer.Wrap(LocationTable.Put(tx, entityKey(id), row))
}

// PutMobile sets id as a moving entity, removing any LocationState row
// for the same id.
func PutMobile(tx store.Tx, id eid.ID, from coordinates.SmallHexTile, dest coordinates.SmallHexTile, startedAt time.Time, duration time.Duration) *reducer.Error {
	if err := LocationTable.Delete(tx, entityKey(id)); err != nil {
		return reducer.Wrap(err)
	}
	row := Mobile{
		EntityID:    id,
		Dim:         from.Dim,
		X:           from.X,
		Z:           from.Z,
		ChunkIndex:  coordinates.ChunkCoordinatesFromSmall(from).Index(),
		Timestamp:   startedAt,
		Destination: dest,
		Duration:    duration,
	}
	return reducer.Wrap(MobileTable.Put(tx, entityKey(id), row))
}

// RemoveLocation deletes any LocationState/MobileEntityState row for id,
// without touching any other table. Used by DeleteEntity and by reducers
// that remove an entity from the spatial world without deleting it
// outright (e.g. stowing a deployable into an inventory).
func RemoveLocation(tx store.Tx, id eid.ID) *reducer.Error {
	if err := LocationTable.Delete(tx, entityKey(id)); err != nil {
		return reducer.Wrap(err)
	}
	return reducer.Wrap(MobileTable.Delete(tx, entityKey(id)))
}

// AtLocation implements the at_location(coord) spatial query (§4.3):
// every entity_id whose LocationState or MobileEntityState row sits on
// tile. It iterates every row of both tables in table order and compares
// the row's chunk_index first, as a cheap pre-filter before the full
// tile comparison.
func AtLocation(tx store.Tx, tile coordinates.SmallHexTile) ([]eid.ID, *reducer.Error) {
	want := coordinates.ChunkCoordinatesFromSmall(tile).Index()
	var out []eid.ID
	if err := LocationTable.Iterate(tx, func(_ []byte, row Location) error {
		if row.ChunkIndex == want && row.X == tile.X && row.Z == tile.Z && row.Dim == tile.Dim {
			out = append(out, row.EntityID)
		}
		return nil
	}); err != nil {
		return nil, reducer.Wrap(err)
	}
	if err := MobileTable.Iterate(tx, func(_ []byte, row Mobile) error {
		if row.ChunkIndex == want && row.X == tile.X && row.Z == tile.Z && row.Dim == tile.Dim {
			out = append(out, row.EntityID)
		}
		return nil
	}); err != nil {
		return nil, reducer.Wrap(err)
	}
	return out, nil
}
