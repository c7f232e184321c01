package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func TestStarvingTickOnlyDamagesSignedInPlayers(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	online := eid.New(1, 1)
	offline := eid.New(1, 2)
	require.Nil(t, MarkStarving(tx, online))
	require.Nil(t, MarkStarving(tx, offline))
	require.Nil(t, session.SignIn(testAgentCtx(tx, time.Unix(0, 0)), online, nil))

	var damaged []eid.ID
	ApplyDamage = func(tx store.Tx, player eid.ID, damage float64) (bool, *reducer.Error) {
		damaged = append(damaged, player)
		return false, nil
	}
	defer func() { ApplyDamage = nil }()

	now := time.Unix(100, 0)
	id := seedTimer(t, tx, StarvingReducer, now)
	require.Nil(t, StarvingTick(testAgentCtx(tx, now), id, true, worldconfig.Defaults()))

	assert.Equal(t, []eid.ID{online}, damaged)
}

func TestStarvingTickClearsStarvingSetOnDeath(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	player := eid.New(1, 1)
	require.Nil(t, MarkStarving(tx, player))
	require.Nil(t, session.SignIn(testAgentCtx(tx, time.Unix(0, 0)), player, nil))

	ApplyDamage = func(tx store.Tx, p eid.ID, damage float64) (bool, *reducer.Error) { return true, nil }
	defer func() { ApplyDamage = nil }()

	id := seedTimer(t, tx, StarvingReducer, time.Unix(100, 0))
	require.Nil(t, StarvingTick(testAgentCtx(tx, time.Unix(100, 0)), id, true, worldconfig.Defaults()))

	_, stillStarving, rerr := StarvingTable.Get(tx, starvingKey(player))
	require.Nil(t, rerr)
	assert.False(t, stillStarving)
}

func TestStarvingTickReschedulesAtConfiguredCadence(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	params := worldconfig.Defaults()
	now := time.Unix(0, 0)
	id := seedTimer(t, tx, StarvingReducer, now)
	require.Nil(t, StarvingTick(testAgentCtx(tx, now), id, true, params))

	var timers []scheduler.Timer
	due, rerr := scheduler.DueTimers(tx, StarvingReducer, now.Add(time.Duration(params.StarvingTickMS)*time.Millisecond), 0)
	require.Nil(t, rerr)
	timers = due
	require.Len(t, timers, 1)
}
