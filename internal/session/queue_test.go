package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

func testCtx(tx store.Tx, sender eid.ID) *reducer.Ctx {
	return reducer.NewCtx(tx, sender, true, reducer.RoleRelay, time.Unix(0, 0), 1)
}

func TestClientConnectRejectsBlockedAndUnauthenticated(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	blocked := Identity("steam:blocked")
	require.NoError(t, BlockedTable.Put(tx, identityKey(blocked), BlockedIdentity{Identity: blocked}))
	rerr := ClientConnect(tx, blocked, false)
	require.NotNil(t, rerr)
	assert.True(t, rerr.UserFacing)

	unauth := Identity("steam:fresh")
	rerr = ClientConnect(tx, unauth, false)
	require.NotNil(t, rerr)

	require.NoError(t, AuthTable.Put(tx, identityKey(unauth), UserAuthenticationState{Identity: unauth}))
	rerr = ClientConnect(tx, unauth, false)
	assert.Nil(t, rerr)
}

func TestClientConnectSkipQueueRoleBypassesAuthentication(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ident := Identity("steam:partner")
	require.NoError(t, RoleTable.Put(tx, identityKey(ident), IdentityRoleState{Identity: ident, Role: 2}))

	rerr := ClientConnect(tx, ident, false)
	assert.Nil(t, rerr)
}

func TestSignInAndDisconnectRoundTrip(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	player := eid.New(1, 1)
	ctx := testCtx(tx, player)

	reconciled := false
	require.Nil(t, SignIn(ctx, player, func(*reducer.Ctx) *reducer.Error { reconciled = true; return nil }))
	assert.True(t, reconciled)

	ok, rerr := IsSignedIn(tx, player)
	require.Nil(t, rerr)
	assert.True(t, ok)

	require.Nil(t, Disconnect(tx, player))
	ok, rerr = IsSignedIn(tx, player)
	require.Nil(t, rerr)
	assert.False(t, ok)
}

func TestProcessQueueAdmitsUpToCapacityInFIFOOrder(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	first, rerr := Enqueue(tx, Identity("a"))
	require.Nil(t, rerr)
	_, rerr = Enqueue(tx, Identity("b"))
	require.Nil(t, rerr)
	_, rerr = Enqueue(tx, Identity("c"))
	require.Nil(t, rerr)
	assert.Equal(t, int64(1), first)

	n, rerr := QueueLen(tx)
	require.Nil(t, rerr)
	assert.Equal(t, 3, n)

	var admitted []Identity
	params := RegionSignInParameters{RegionID: 1, MaxSignedIn: 2}
	rerr = ProcessQueue(tx, params, 0, func(tx store.Tx, ident Identity) *reducer.Error {
		admitted = append(admitted, ident)
		return nil
	})
	require.Nil(t, rerr)

	assert.Equal(t, []Identity{"a", "b"}, admitted)
	n, rerr = QueueLen(tx)
	require.Nil(t, rerr)
	assert.Equal(t, 1, n, "c is left queued once capacity (2) is reached")
}

func TestProcessQueueNoopsWhenRegionBlocked(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	_, rerr := Enqueue(tx, Identity("a"))
	require.Nil(t, rerr)

	called := false
	params := RegionSignInParameters{RegionID: 1, IsBlocked: true, MaxSignedIn: 10}
	rerr = ProcessQueue(tx, params, 0, func(tx store.Tx, ident Identity) *reducer.Error {
		called = true
		return nil
	})
	require.Nil(t, rerr)
	assert.False(t, called)
}

// TestQueueAdmissionScenario reproduces Testable Property 10: with
// max_signed_in=2 and two signed-in players, a third connecting identity
// receives a queue slot; on one of the two disconnecting, the grace
// timer admits the queued identity; if that identity does not sign in
// within the grace period, its slot is released and the next candidate
// admitted.
func TestQueueAdmissionScenario(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	params := RegionSignInParameters{RegionID: 1, MaxSignedIn: 2, GracePeriodSeconds: 30}
	a, b, c, d := eid.New(1, 1), eid.New(1, 2), eid.New(1, 3), eid.New(1, 4)
	byIdent := map[Identity]eid.ID{"a": a, "b": b, "c": c, "d": d}
	signedInCount := 0
	ctx := testCtx(tx, eid.None)

	// admit mirrors what a real region does on a ProcessQueue admission:
	// start the sign-in grace timer rather than signing the identity in
	// immediately, so an admitted-but-unconfirmed slot can still lapse.
	admit := func(tx store.Tx, ident Identity) *reducer.Error {
		_, err := EnqueueGraceTimer(ctx, GraceSignIn, ident, params.RegionID, params.GracePeriodSeconds)
		return err
	}
	confirmSignIn := func(ident Identity) {
		require.Nil(t, SignIn(testCtx(tx, byIdent[ident]), byIdent[ident], nil))
		signedInCount++
	}

	confirmSignIn("a")
	confirmSignIn("b")

	// A third identity connects while both slots are full: it is queued,
	// not admitted.
	_, rerr := Enqueue(tx, "c")
	require.Nil(t, rerr)
	require.Nil(t, ProcessQueue(tx, params, signedInCount, admit))
	n, rerr := QueueLen(tx)
	require.Nil(t, rerr)
	assert.Equal(t, 1, n, "c stays queued while both slots are occupied")
	ok, rerr := IsSignedIn(tx, c)
	require.Nil(t, rerr)
	assert.False(t, ok)

	// One of the two signed-in players disconnects, freeing a slot;
	// ProcessQueue pops the queued identity off the queue and admit starts
	// its sign-in grace period, rather than signing it in outright.
	require.Nil(t, Disconnect(tx, a))
	signedInCount--
	require.Nil(t, ProcessQueue(tx, params, signedInCount, admit))
	n, rerr = QueueLen(tx)
	require.Nil(t, rerr)
	assert.Equal(t, 0, n, "c is popped off the queue once a's slot frees up")
	ok, rerr = IsSignedIn(tx, c)
	require.Nil(t, rerr)
	assert.False(t, ok, "admission starts c's grace timer; c is not signed in until it confirms")

	confirmSignIn("c")
	rerr = FireEndGracePeriodTimer(ctx, EndGracePeriodTimer{Kind: GraceSignIn, Identity: "c", RegionID: 1}, true, nil, nil, nil)
	require.Nil(t, rerr, "a confirmed sign-in is a no-op for the grace timer")
	ok, rerr = IsSignedIn(tx, c)
	require.Nil(t, rerr)
	assert.True(t, ok)

	// A fourth identity queues while both slots are occupied by b and c,
	// so ProcessQueue admits nobody. A sign-in grace timer for d then
	// fires with d never having called sign_in: d is revoked and the next
	// candidate is given a chance at the slot.
	_, rerr = Enqueue(tx, "d")
	require.Nil(t, rerr)
	require.Nil(t, ProcessQueue(tx, params, signedInCount, admit))
	ok, rerr = IsSignedIn(tx, d)
	require.Nil(t, rerr)
	assert.False(t, ok)

	revoked := false
	nextAdmitted := false
	rerr = FireEndGracePeriodTimer(ctx, EndGracePeriodTimer{Kind: GraceSignIn, Identity: "d", RegionID: 1}, false,
		func(ctx *reducer.Ctx, ident Identity) *reducer.Error { revoked = true; return nil },
		func(ctx *reducer.Ctx, regionID uint8) *reducer.Error { nextAdmitted = true; return nil },
		nil,
	)
	require.Nil(t, rerr)
	assert.True(t, revoked, "d's unconfirmed slot is released")
	assert.True(t, nextAdmitted, "the next queued candidate is given a chance at the freed slot")
}

func TestFireEndGracePeriodTimerRevokesUnconfirmedSignIn(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	ctx := testCtx(tx, eid.None)
	revoked := false
	admitted := false
	rerr := FireEndGracePeriodTimer(ctx, EndGracePeriodTimer{Kind: GraceSignIn, Identity: "a", RegionID: 1}, false,
		func(ctx *reducer.Ctx, ident Identity) *reducer.Error { revoked = true; return nil },
		func(ctx *reducer.Ctx, regionID uint8) *reducer.Error { admitted = true; return nil },
		nil,
	)
	require.Nil(t, rerr)
	assert.True(t, revoked)
	assert.True(t, admitted)
}
