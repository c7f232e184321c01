package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// Identity is an opaque authenticated principal string (the wire
// framing that resolves a connection to one is out of scope per §1;
// this package only ever sees the resolved string).
type Identity string

// Token is an opaque per-connection session token, distinct from the
// player EID, minted at client-connect time and carried by the
// connection until sign-in resolves it to an identity/entity pair.
// Grounded on the domain-stack table's google/uuid wiring.
type Token string

// NewToken mints a fresh per-connection session token.
func NewToken() Token {
	return Token(uuid.NewString())
}

// UserAuthenticationState records that Identity has completed out-of-
// band authentication (OAuth, platform SSO — out of scope here); its
// mere presence is what ClientConnect checks.
type UserAuthenticationState struct {
	Identity Identity
}

// BlockedIdentity marks an identity as banned from connecting at all.
type BlockedIdentity struct {
	Identity Identity
	Reason   string
}

// IdentityRoleState stores an identity's authorization Role (§4.1).
type IdentityRoleState struct {
	Identity Identity
	Role     reducer.Role
}

// UserState maps an identity to its player entity (§4.6).
type UserState struct {
	Identity Identity
	EntityID eid.ID
}

// UserRegionState records which region owns an identity's player
// character — the authoritative owner maintained on the global shard
// per §4.6's cross-region transfer description.
type UserRegionState struct {
	Identity Identity
	RegionID uint8
}

var (
	AuthTable     = store.NewTable[UserAuthenticationState]("user_authentication_state")
	BlockedTable  = store.NewTable[BlockedIdentity]("blocked_identity")
	RoleTable     = store.NewTable[IdentityRoleState]("identity_role")
	UserTable     = store.NewTable[UserState]("user_state")
	RegionOfTable = store.NewTable[UserRegionState]("user_region_state")
)

func identityKey(id Identity) []byte {
	return []byte(fmt.Sprintf("identity:%s", id))
}

func init() {
	// IdentityRole/BlockedIdentity are §4.7's examples of tables "owned
	// by global, mirrored to regions" — the delete-hook sweep here only
	// covers the player-entity-keyed UserState row; the identity-keyed
	// rows above are looked up by Identity, not EntityID, so they are
	// not part of the entity delete sweep at all.
	entity.RegisterDeleteHook("session.user_state", func(tx store.Tx, id eid.ID) *reducer.Error {
		var toDelete []Identity
		if err := UserTable.Iterate(tx, func(_ []byte, row UserState) error {
			if row.EntityID == id {
				toDelete = append(toDelete, row.Identity)
			}
			return nil
		}); err != nil {
			return reducer.Wrap(err)
		}
		for _, ident := range toDelete {
			if err := UserTable.Delete(tx, identityKey(ident)); err != nil {
				return reducer.Wrap(err)
			}
		}
		return nil
	})
}

// ResolveSender implements §4.1 step 1's "Resolve ctx.sender ->
// UserState.entity_id".
func ResolveSender(tx store.Tx, ident Identity) (eid.ID, bool, *reducer.Error) {
	row, ok, err := UserTable.Get(tx, identityKey(ident))
	if err != nil {
		return eid.None, false, reducer.Wrap(err)
	}
	return row.EntityID, ok, nil
}

// RoleOf resolves an identity's authorization role, defaulting to
// RolePlayer if no IdentityRoleState row exists.
func RoleOf(tx store.Tx, ident Identity) (reducer.Role, *reducer.Error) {
	row, ok, err := RoleTable.Get(tx, identityKey(ident))
	if err != nil {
		return reducer.RolePlayer, reducer.Wrap(err)
	}
	if !ok {
		return reducer.RolePlayer, nil
	}
	return row.Role, nil
}

// IsBlocked reports whether ident has an active BlockedIdentity row.
func IsBlocked(tx store.Tx, ident Identity) (bool, *reducer.Error) {
	_, ok, err := BlockedTable.Get(tx, identityKey(ident))
	return ok, reducer.Wrap(err)
}

// IsAuthenticated reports whether ident has completed out-of-band
// authentication.
func IsAuthenticated(tx store.Tx, ident Identity) (bool, *reducer.Error) {
	_, ok, err := AuthTable.Get(tx, identityKey(ident))
	return ok, reducer.Wrap(err)
}
