package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func TestSeedAllArmsEveryAgentExactlyOnce(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	now := time.Unix(0, 0).UTC()
	params := worldconfig.Defaults()
	require.Nil(t, SeedAll(tx, now, params))

	reg := Registry(func() (bool, worldconfig.Parameters) { return true, params })
	for reducerName := range reg {
		n, cerr := scheduler.CountPending(tx, reducerName)
		require.Nil(t, cerr)
		assert.Equal(t, 1, n, "agent %s should have exactly one pending timer after seeding", reducerName)
	}
}

func TestSeedAllIsIdempotentAcrossRestarts(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	now := time.Unix(0, 0).UTC()
	params := worldconfig.Defaults()
	require.Nil(t, SeedAll(tx, now, params))
	require.Nil(t, SeedAll(tx, now.Add(time.Hour), params))

	n, cerr := scheduler.CountPending(tx, GrowthReducer)
	require.Nil(t, cerr)
	assert.Equal(t, 1, n, "a second boot must not insert a duplicate timer")
}

func TestRegistryDispatchesByReducerName(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	now := time.Unix(0, 0).UTC()
	id, serr := scheduler.Schedule(tx, EmpireDecayReducer, now, nil)
	require.Nil(t, serr)

	reg := Registry(func() (bool, worldconfig.Parameters) { return true, worldconfig.Defaults() })
	tick, ok := reg[EmpireDecayReducer]
	require.True(t, ok)
	require.Nil(t, tick(testAgentCtx(tx, now), id, nil))

	due, derr := scheduler.DueTimers(tx, EmpireDecayReducer, now.Add(time.Minute), 0)
	require.Nil(t, derr)
	require.Len(t, due, 1)
}
