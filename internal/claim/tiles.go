package claim

import (
	"github.com/dreamware/worldshard/internal/coordinates"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// Limits bundles the tunable parameters claim_add_tile/claim_remove_tile
// check against — the "configurable list" and "function of its tech"
// quantities §4.4 leaves as named parameters rather than constants.
type Limits struct {
	MinDistanceBetweenClaims int32
	SafeMeadowsBiomes        map[string]struct{}
	// BiomeOf resolves the dominant biome of a large tile's parent, a
	// stand-in for the TerrainChunkState accessor §4.3 delegates biome
	// lookup to; callers wire this to their real terrain table.
	BiomeOf func(coordinates.LargeHexTile) string
	// MaxTiles computes a claim's tile cap as a function of its tech
	// (§4.4 point 8); callers wire this to ClaimTechState lookups.
	MaxTiles func(tx store.Tx, claimID eid.ID) (int, *reducer.Error)
}

func (l Limits) isSafeMeadows(tile coordinates.SmallHexTile) bool {
	if l.BiomeOf == nil || l.SafeMeadowsBiomes == nil {
		return false
	}
	large := coordinates.LargeHexTileFromSmall(tile)
	_, unsafe := l.SafeMeadowsBiomes[l.BiomeOf(large)]
	return unsafe
}

// AddTile implements claim_add_tile (§4.4). editor is the acting player;
// editorScore is their effective permission score on claimID (callers
// resolve it via EffectivePermission before calling, since the score
// also depends on building/tile overrides this function has no
// visibility into).
func AddTile(tx store.Tx, limits Limits, editor eid.ID, editorScore int, claimID eid.ID, tile coordinates.SmallHexTile) *reducer.Error {
	if editorScore < 3 {
		return reducer.UserError("only a co-owner may expand this claim")
	}
	if !eid.DimensionID(tile.Dim).IsOverworld() {
		return reducer.UserError("claims may only be expanded in the overworld")
	}
	if _, claimed, err := TileAt(tx, tile); err != nil {
		return err
	} else if claimed {
		return reducer.UserError("that tile is already claimed")
	}

	local, ok, err := LocalTable.Get(tx, key(claimID))
	if err != nil {
		return reducer.Wrap(err)
	}
	if !ok {
		return reducer.InternalError("claim: add_tile on claim %s with no ClaimLocalState row", claimID)
	}

	existing, err := TilesOf(tx, claimID)
	if err != nil {
		return err
	}
	adjacentCount := countAdjacent(tile, existing)
	if adjacentCount == 0 {
		return reducer.UserError("the new tile must be adjacent to one of this claim's tiles")
	}

	if limits.isSafeMeadows(tile) {
		return reducer.UserError("claims cannot expand into safe meadows")
	}

	if limits.MinDistanceBetweenClaims > 0 {
		if tooClose, err := anyOtherClaimWithin(tx, claimID, tile, limits.MinDistanceBetweenClaims); err != nil {
			return err
		} else if tooClose {
			return reducer.UserError("another claim is too close to this tile")
		}
	}

	center := local.Location
	if !coordinates.Raycast(tile, center, func(t coordinates.SmallHexTile) bool {
		if t == tile {
			return true
		}
		row, claimed, rerr := TileAt(tx, t)
		if rerr != nil {
			return false
		}
		return !claimed || row.ClaimID == claimID
	}) {
		return reducer.UserError("that tile would partially enclose another claim")
	}

	if limits.MaxTiles != nil {
		max, merr := limits.MaxTiles(tx, claimID)
		if merr != nil {
			return merr
		}
		if local.NumTiles+1 > max {
			return reducer.UserError("this claim cannot grow any further without more tech")
		}
	}

	newTileID, cerr := newTileEntity(tx, claimID, tile)
	if cerr != nil {
		return cerr
	}
	_ = newTileID

	local.NumTiles++
	local.NumTileNeighbors += 2 * adjacentCount
	return reducer.Wrap(LocalTable.Put(tx, key(claimID), local))
}

// RemoveTile implements claim_remove_tile (§4.4).
func RemoveTile(tx store.Tx, editorScore int, claimID eid.ID, tile coordinates.SmallHexTile, isInitialTile func(coordinates.SmallHexTile) bool, hasBuildingOrProject func(coordinates.SmallHexTile) bool) *reducer.Error {
	if editorScore < 3 {
		return reducer.UserError("only a co-owner may shrink this claim")
	}
	row, ok, err := TileAt(tx, tile)
	if err != nil {
		return err
	}
	if !ok || row.ClaimID != claimID {
		return reducer.UserError("that tile does not belong to this claim")
	}
	if isInitialTile != nil && isInitialTile(tile) {
		return reducer.UserError("the claim's home tile cannot be removed")
	}
	if hasBuildingOrProject != nil && hasBuildingOrProject(tile) {
		return reducer.UserError("remove the building or project on this tile first")
	}

	existing, err := TilesOf(tx, claimID)
	if err != nil {
		return err
	}
	remaining := make([]coordinates.SmallHexTile, 0, len(existing)-1)
	for _, t := range existing {
		if t.Tile != tile {
			remaining = append(remaining, t.Tile)
		}
	}
	local, ok, lerr := LocalTable.Get(tx, key(claimID))
	if lerr != nil {
		return reducer.Wrap(lerr)
	}
	if !ok {
		return reducer.InternalError("claim: remove_tile on claim %s with no ClaimLocalState row", claimID)
	}
	if !isSixConnected(local.Location, remaining) {
		return reducer.UserError("cannot orphan claimed area")
	}

	adjacentCount := countAdjacent(tile, existing)
	if err := TileTable.Delete(tx, key(row.EntityID)); err != nil {
		return reducer.Wrap(err)
	}
	local.NumTiles--
	local.NumTileNeighbors -= 2 * adjacentCount
	return reducer.Wrap(LocalTable.Put(tx, key(claimID), local))
}

func newTileEntity(tx store.Tx, claimID eid.ID, tile coordinates.SmallHexTile) (eid.ID, *reducer.Error) {
	// Claim tile entities are allocated on the same region as the claim
	// they belong to; callers running cross-region would route through
	// internal/mesh instead of calling AddTile directly.
	id, err := entity.CreateEntity(tx, claimID.RegionIndex())
	if err != nil {
		return eid.None, err
	}
	row := TileState{EntityID: id, ClaimID: claimID, Tile: tile}
	if werr := TileTable.Put(tx, key(id), row); werr != nil {
		return eid.None, reducer.Wrap(werr)
	}
	return id, nil
}

func countAdjacent(tile coordinates.SmallHexTile, tiles []TileState) int {
	n := 0
	neighbors := tile.Neighbors()
	for _, ts := range tiles {
		for _, nb := range neighbors {
			if ts.Tile == nb {
				n++
				break
			}
		}
	}
	return n
}

// isSixConnected reports whether every tile in tiles is six-connected
// reachable from home via a flood fill restricted to tiles, per §4.4
// point 4 / §3 invariant 4. Callers never remove a claim's home tile
// (RemoveTile rejects that before calling here), so home is always a
// member of tiles.
func isSixConnected(home coordinates.SmallHexTile, tiles []coordinates.SmallHexTile) bool {
	if len(tiles) == 0 {
		return true
	}
	set := make(map[coordinates.SmallHexTile]bool, len(tiles))
	for _, t := range tiles {
		set[t] = true
	}

	visited := map[coordinates.SmallHexTile]bool{home: true}
	queue := []coordinates.SmallHexTile{home}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range cur.Neighbors() {
			if set[nb] && !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return len(visited) == len(set)
}

func anyOtherClaimWithin(tx store.Tx, claimID eid.ID, tile coordinates.SmallHexTile, minDistance int32) (bool, *reducer.Error) {
	found := false
	err := TileTable.Iterate(tx, func(_ []byte, row TileState) error {
		if found || row.ClaimID == claimID {
			return nil
		}
		if row.Tile.Dim == tile.Dim && row.Tile.Distance(tile) < minDistance {
			found = true
		}
		return nil
	})
	return found, reducer.Wrap(err)
}
