package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

func TestResolveSenderAndRoleDefaults(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ident := Identity("steam:1234")
	_, ok, rerr := ResolveSender(tx, ident)
	require.Nil(t, rerr)
	assert.False(t, ok)

	role, rerr := RoleOf(tx, ident)
	require.Nil(t, rerr)
	assert.Equal(t, reducer.RolePlayer, role)

	player := eid.New(1, 7)
	require.NoError(t, UserTable.Put(tx, identityKey(ident), UserState{Identity: ident, EntityID: player}))
	require.NoError(t, RoleTable.Put(tx, identityKey(ident), IdentityRoleState{Identity: ident, Role: reducer.RoleMod}))

	resolved, ok, rerr := ResolveSender(tx, ident)
	require.Nil(t, rerr)
	assert.True(t, ok)
	assert.Equal(t, player, resolved)

	role, rerr = RoleOf(tx, ident)
	require.Nil(t, rerr)
	assert.Equal(t, reducer.RoleMod, role)
}

func TestIsBlockedAndIsAuthenticated(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ident := Identity("steam:5555")
	blocked, rerr := IsBlocked(tx, ident)
	require.Nil(t, rerr)
	assert.False(t, blocked)

	require.NoError(t, BlockedTable.Put(tx, identityKey(ident), BlockedIdentity{Identity: ident, Reason: "chargeback"}))
	blocked, rerr = IsBlocked(tx, ident)
	require.Nil(t, rerr)
	assert.True(t, blocked)

	authed, rerr := IsAuthenticated(tx, Identity("never-seen"))
	require.Nil(t, rerr)
	assert.False(t, authed)

	require.NoError(t, AuthTable.Put(tx, identityKey(ident), UserAuthenticationState{Identity: ident}))
	authed, rerr = IsAuthenticated(tx, ident)
	require.Nil(t, rerr)
	assert.True(t, authed)
}

func TestDeleteEntityClearsUserState(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ident := Identity("steam:9999")
	player := eid.New(1, 3)
	require.NoError(t, UserTable.Put(tx, identityKey(ident), UserState{Identity: ident, EntityID: player}))

	require.Nil(t, entity.DeleteEntity(tx, player))

	_, ok, rerr := ResolveSender(tx, ident)
	require.Nil(t, rerr)
	assert.False(t, ok, "UserState row must be swept by the entity delete hook")
}
