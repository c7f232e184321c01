package reducer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/store"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleMod))
	assert.True(t, RoleGM.AtLeast(RoleGM))
	assert.False(t, RolePlayer.AtLeast(RoleMod))
	assert.True(t, RoleRelay.AtLeast(RoleAdmin))
}

func TestErrorUserFacingPrefix(t *testing.T) {
	err := UserError("target is out of range")
	assert.Equal(t, "~target is out of range", err.String())

	internal := InternalError("invariant violated: %s", "claim tile orphaned")
	assert.Equal(t, "invariant violated: claim tile orphaned", internal.String())
	assert.False(t, internal.UserFacing)
}

func newTestCtx(t *testing.T, tx store.Tx) *Ctx {
	t.Helper()
	return NewCtx(tx, eid.New(1, 42), false, RolePlayer, time.Unix(1_700_000_000, 0), 7)
}

func TestRequireSignedIn(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ctx := newTestCtx(t, tx)
	assert.Nil(t, ctx.RequireSignedIn())

	anon := NewCtx(tx, eid.None, false, RolePlayer, ctx.Now, 1)
	assert.NotNil(t, anon.RequireSignedIn())
}

func TestRequireServer(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	serverCtx := NewCtx(tx, eid.None, true, RoleRelay, time.Now(), 1)
	assert.Nil(t, serverCtx.RequireServer())

	playerCtx := newTestCtx(t, tx)
	assert.NotNil(t, playerCtx.RequireServer())

	adminCtx := NewCtx(tx, eid.New(1, 1), false, RoleAdmin, time.Now(), 1)
	assert.Nil(t, adminCtx.RequireServer())
}

func TestActionStateStartCompleteLifecycle(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ctx := newTestCtx(t, tx)
	player := ctx.Sender

	scheduleCalled := false
	err2 := StartAction(ctx, player, LayerPassive, "craft", eid.None, 5*time.Second,
		func(ctx *Ctx, timingOnly bool) *Error { return nil },
		func(ctx *Ctx, state ActionState) *Error {
			scheduleCalled = true
			return nil
		})
	require.Nil(t, err2)
	assert.True(t, scheduleCalled)

	state, exists, rerr := GetAction(tx, player, LayerPassive)
	require.Nil(t, rerr)
	require.True(t, exists)
	assert.Equal(t, "craft", state.ActionType)

	dup := StartAction(ctx, player, LayerPassive, "craft", eid.None, time.Second, nil, nil)
	require.NotNil(t, dup)
	assert.Equal(t, "action_in_progress", dup.Code)

	applied := false
	completeErr := CompleteAction(ctx, player, LayerPassive,
		func(ctx *Ctx, timingOnly bool) *Error { return nil },
		func(ctx *Ctx, state ActionState) *Error {
			applied = true
			return nil
		})
	require.Nil(t, completeErr)
	assert.True(t, applied)

	_, exists, rerr = GetAction(tx, player, LayerPassive)
	require.Nil(t, rerr)
	assert.False(t, exists)
}

func TestActionStateCancelDoesNotApplyEffects(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ctx := newTestCtx(t, tx)
	player := ctx.Sender

	require.Nil(t, StartAction(ctx, player, LayerMovement, "teleport", eid.None, time.Second, nil, nil))

	cancelCalled := false
	require.Nil(t, CancelAction(ctx, player, LayerMovement, func(ctx *Ctx, state ActionState) *Error {
		cancelCalled = true
		return nil
	}))
	assert.True(t, cancelCalled)

	_, exists, rerr := GetAction(tx, player, LayerMovement)
	require.Nil(t, rerr)
	assert.False(t, exists)
}

func TestCompleteActionIsIdempotentOnDoubleFire(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ctx := newTestCtx(t, tx)
	player := ctx.Sender

	applyCount := 0
	apply := func(ctx *Ctx, state ActionState) *Error {
		applyCount++
		return nil
	}
	// No row present: CompleteAction must no-op rather than error, since
	// timer re-fire after crash recovery is expected (§4.1 idempotence).
	require.Nil(t, CompleteAction(ctx, player, LayerCombat, nil, apply))
	assert.Equal(t, 0, applyCount)
}
