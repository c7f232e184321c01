package claim

import (
	"fmt"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// PermissionState is the generic override graph layered above claim
// membership (§3, §4.4). Rank is an ordered integer: an editor may only
// assign a rank strictly below their own effective rank on Entity.
type PermissionState struct {
	EntityID         eid.ID
	OrdainedEntityID eid.ID
	AllowedEntityID  eid.ID
	Group            string
	Rank             int
}

func permissionKey(ordained, allowed eid.ID, group string) []byte {
	return []byte(fmt.Sprintf("perm:%020d:%020d:%s", uint64(ordained), uint64(allowed), group))
}

// Score ranks a ClaimMemberState's flags per §4.4: co_owner=3, officer=2,
// build/inventory=1, none=0. Most editing rules compare scores rather
// than flags directly.
func Score(m MemberState) int {
	switch {
	case m.CoOwner:
		return 3
	case m.Officer:
		return 2
	case m.Build || m.Inventory:
		return 1
	default:
		return 0
	}
}

// EffectivePermission implements the §4.4 precedence ladder (lowest to
// highest, higher overrides lower):
//
//  1. no permission (default deny)
//  2. claim member's claim-wide flags
//  3. explicit PermissionState at the building level
//  4. explicit PermissionState at the tile level
//  5. player housing owner rules (handled by the caller: EffectivePermission
//     only covers the claim/permission graph, not housing ACLs, since
//     housing ownership isn't a claim concept)
//  6. Role::Admin/GM override (the caller's reducer checks ctx.Role
//     separately; this function never elevates based on Role)
//
// buildingID/tileID may be eid.None when the caller has no tile- or
// building-scoped override to consult for this action.
func EffectivePermission(tx store.Tx, player, claimID, buildingID, tileID eid.ID) (int, *reducer.Error) {
	score := 0

	if member, ok, err := MemberOf(tx, player, claimID); err != nil {
		return 0, err
	} else if ok {
		score = Score(member)
	}

	if !buildingID.IsNone() {
		if row, ok, err := lookupPermission(tx, buildingID, player); err != nil {
			return 0, err
		} else if ok {
			score = row.Rank
		}
	}

	if !tileID.IsNone() {
		if row, ok, err := lookupPermission(tx, tileID, player); err != nil {
			return 0, err
		} else if ok {
			score = row.Rank
		}
	}

	return score, nil
}

func lookupPermission(tx store.Tx, ordained, allowed eid.ID) (PermissionState, bool, *reducer.Error) {
	row, ok, err := PermissionTab.Get(tx, permissionKey(ordained, allowed, ""))
	return row, ok, reducer.Wrap(err)
}

// SetPermission assigns allowed a rank on ordained, enforcing that editor
// may only grant a rank strictly below editor's own effective rank on the
// same entity (§4.4's "editor_score > target_score" convention, applied
// here to the override grant itself).
func SetPermission(tx store.Tx, editor, editorRank, ordained, allowed eid.ID, rank int) *reducer.Error {
	if rank >= editorRank {
		return reducer.UserError("you cannot grant a permission rank equal to or above your own")
	}
	row := PermissionState{
		EntityID:         ordained,
		OrdainedEntityID: ordained,
		AllowedEntityID:  allowed,
		Rank:             rank,
	}
	return reducer.Wrap(PermissionTab.Put(tx, permissionKey(ordained, allowed, ""), row))
}

// ClearPermission deletes allowed's override on ordained — "no override",
// falling back to lower precedence, per §4.4.
func ClearPermission(tx store.Tx, ordained, allowed eid.ID) *reducer.Error {
	return reducer.Wrap(PermissionTab.Delete(tx, permissionKey(ordained, allowed, "")))
}
