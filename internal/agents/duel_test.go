package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func signIn(t *testing.T, tx store.Tx, player eid.ID) {
	t.Helper()
	require.Nil(t, session.SignIn(testAgentCtx(tx, time.Unix(0, 0)), player, nil))
}

func TestDuelTickLosesSignedOutParticipantImmediately(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	a, b := eid.New(1, 1), eid.New(1, 2)
	signIn(t, tx, a)
	// b never signs in.
	d := DuelState{DuelEntityID: eid.New(1, 9), PlayerA: a, PlayerB: b}
	require.Nil(t, PutDuel(tx, d))

	var winner, loser eid.ID
	OnDuelResolved = func(tx store.Tx, duelID, w, l eid.ID) *reducer.Error {
		winner, loser = w, l
		return nil
	}
	defer func() { OnDuelResolved = nil }()

	id := seedTimer(t, tx, DuelReducer, time.Unix(5, 0))
	require.Nil(t, DuelTick(testAgentCtx(tx, time.Unix(5, 0)), id, true, worldconfig.Defaults()))

	assert.Equal(t, a, winner)
	assert.Equal(t, b, loser)
	_, stillActive, rerr := DuelTable.Get(tx, duelKey(d.DuelEntityID))
	require.Nil(t, rerr)
	assert.False(t, stillActive)
}

func TestDuelTickResolvesAfterOutOfRangeGraceElapses(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	a, b := eid.New(1, 1), eid.New(1, 2)
	signIn(t, tx, a)
	signIn(t, tx, b)
	d := DuelState{DuelEntityID: eid.New(1, 9), PlayerA: a, PlayerB: b}
	require.Nil(t, PutDuel(tx, d))

	InRange = func(tx store.Tx, duel DuelState) (bool, eid.ID) { return false, b }
	defer func() { InRange = nil }()

	params := worldconfig.Defaults()
	start := time.Unix(1000, 0).UTC()
	id := seedTimer(t, tx, DuelReducer, start)
	require.Nil(t, DuelTick(testAgentCtx(tx, start), id, true, params))

	row, ok, rerr := DuelTable.Get(tx, duelKey(d.DuelEntityID))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, start, row.OutOfRangeSince)

	var resolved bool
	var winner eid.ID
	OnDuelResolved = func(tx store.Tx, duelID, w, l eid.ID) *reducer.Error {
		resolved = true
		winner = w
		return nil
	}
	defer func() { OnDuelResolved = nil }()

	withinGrace := start.Add(time.Duration(params.DuelOutOfRangeGraceSec-1) * time.Second)
	require.Nil(t, DuelTick(testAgentCtx(tx, withinGrace), id, true, params))
	assert.False(t, resolved, "must not resolve before the grace period elapses")

	afterGrace := start.Add(time.Duration(params.DuelOutOfRangeGraceSec+1) * time.Second)
	require.Nil(t, DuelTick(testAgentCtx(tx, afterGrace), id, true, params))
	assert.True(t, resolved)
	assert.Equal(t, a, winner)
}

func TestDuelTickClearsOutOfRangeTimestampOnReturn(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	a, b := eid.New(1, 1), eid.New(1, 2)
	signIn(t, tx, a)
	signIn(t, tx, b)
	d := DuelState{DuelEntityID: eid.New(1, 9), PlayerA: a, PlayerB: b, OutOfRangeSince: time.Unix(1000, 0), OutOfRangePlayer: b}
	require.Nil(t, PutDuel(tx, d))

	InRange = func(tx store.Tx, duel DuelState) (bool, eid.ID) { return true, eid.None }
	defer func() { InRange = nil }()

	id := seedTimer(t, tx, DuelReducer, time.Unix(1005, 0))
	require.Nil(t, DuelTick(testAgentCtx(tx, time.Unix(1005, 0)), id, true, worldconfig.Defaults()))

	row, ok, rerr := DuelTable.Get(tx, duelKey(d.DuelEntityID))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.True(t, row.OutOfRangeSince.IsZero())
}
