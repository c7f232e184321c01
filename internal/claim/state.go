package claim

import (
	"fmt"

	"github.com/dreamware/worldshard/internal/coordinates"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// State is the row shape of ClaimState (§3): the long-lived claim entity.
type State struct {
	EntityID           eid.ID
	Name               string
	OwnerPlayerID      eid.ID
	OwnerBuildingID    eid.ID
	Neutral            bool
	Treasury           int64
	Supplies           int64
	AutoPurchaseSupply bool
}

// LocalState is the row shape of ClaimLocalState (§3): the mutable
// counters co-located with the claim's home region.
type LocalState struct {
	EntityID               eid.ID
	Treasury               int64
	Supplies               int64
	NumTiles               int
	NumTileNeighbors       int
	Location               coordinates.SmallHexTile
	SuppliesPurchaseThresh int64
	SuppliesPurchasePrice  int64
}

// TileState is the row shape of ClaimTileState (§3): one row per claimed
// small tile, keyed by its own entity id; TilesOf finds a claim's tiles by
// scanning the whole table for a matching ClaimID.
type TileState struct {
	EntityID eid.ID
	ClaimID  eid.ID
	Tile     coordinates.SmallHexTile
}

// MemberState is the row shape of ClaimMemberState (§3): a bag of
// per-player, per-claim permission flags.
type MemberState struct {
	EntityID       eid.ID
	PlayerEntityID eid.ID
	ClaimEntityID  eid.ID
	Inventory      bool
	Build          bool
	Officer        bool
	CoOwner        bool
}

// TechState is the row shape of ClaimTechState (§3): at most one research
// in flight per claim.
type TechState struct {
	EntityID    eid.ID
	Learned     map[uint32]struct{}
	Researching uint32
	StartTs     int64
	ScheduledID uint64
}

var (
	StateTable    = store.NewTable[State]("claim_state")
	LocalTable    = store.NewTable[LocalState]("claim_local_state")
	TileTable     = store.NewTable[TileState]("claim_tile_state")
	MemberTable   = store.NewTable[MemberState]("claim_member_state")
	TechTable     = store.NewTable[TechState]("claim_tech_state")
	PermissionTab = store.NewTable[PermissionState]("permission_state")
)

func key(id eid.ID) []byte { return []byte(fmt.Sprintf("claim:%020d", uint64(id))) }

// memberKey composes the (player, claim) index §3 calls out explicitly.
func memberKey(player, claimID eid.ID) []byte {
	return []byte(fmt.Sprintf("member:%020d:%020d", uint64(player), uint64(claimID)))
}

func init() {
	// §3 invariant 1: every EID appearing as a foreign key must resolve
	// to a live row or be 0. Deleting a claim must therefore also delete
	// every row that references it by ClaimID, not just the ClaimState/
	// ClaimLocalState rows keyed directly by the claim's own EID.
	entity.RegisterDeleteHook("claim.state", func(tx store.Tx, id eid.ID) *reducer.Error {
		if err := StateTable.Delete(tx, key(id)); err != nil {
			return reducer.Wrap(err)
		}
		if err := LocalTable.Delete(tx, key(id)); err != nil {
			return reducer.Wrap(err)
		}
		return reducer.Wrap(TechTable.Delete(tx, key(id)))
	})
	entity.RegisterDeleteHook("claim.tile", func(tx store.Tx, id eid.ID) *reducer.Error {
		return reducer.Wrap(TileTable.Delete(tx, key(id)))
	})
	entity.RegisterDeleteHook("claim.permission", func(tx store.Tx, id eid.ID) *reducer.Error {
		return reducer.Wrap(PermissionTab.Delete(tx, key(id)))
	})
}

// TilesOf returns every ClaimTileState row belonging to claimID, in
// stable key order.
func TilesOf(tx store.Tx, claimID eid.ID) ([]TileState, *reducer.Error) {
	var out []TileState
	err := TileTable.Iterate(tx, func(_ []byte, row TileState) error {
		if row.ClaimID == claimID {
			out = append(out, row)
		}
		return nil
	})
	return out, reducer.Wrap(err)
}

// TileAt resolves the ClaimTileState occupying tile, if any, by scanning
// the claim tile table — the "join on location" §4.4 describes, since
// ClaimTileState rows carry their own tile rather than indirecting
// through LocationState.
func TileAt(tx store.Tx, tile coordinates.SmallHexTile) (TileState, bool, *reducer.Error) {
	var found TileState
	ok := false
	err := TileTable.Iterate(tx, func(_ []byte, row TileState) error {
		if !ok && row.Tile == tile {
			found, ok = row, true
		}
		return nil
	})
	return found, ok, reducer.Wrap(err)
}

// CreditTreasury adds amount to claimID's ClaimLocalState.Treasury,
// no-op if the claim has no local state row. Exported for the daily
// income/rent agents, which otherwise have no way to touch claim-owned
// state without duplicating its storage key format.
func CreditTreasury(tx store.Tx, claimID eid.ID, amount int64) *reducer.Error {
	local, ok, err := LocalTable.Get(tx, key(claimID))
	if err != nil {
		return reducer.Wrap(err)
	}
	if !ok {
		return nil
	}
	local.Treasury += amount
	return reducer.Wrap(LocalTable.Put(tx, key(claimID), local))
}

// MemberOf returns player's ClaimMemberState on claimID, if any.
func MemberOf(tx store.Tx, player, claimID eid.ID) (MemberState, bool, *reducer.Error) {
	row, ok, err := MemberTable.Get(tx, memberKey(player, claimID))
	return row, ok, reducer.Wrap(err)
}
