package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/store"
)

func TestEmpireDecayTickDrainsActiveNodes(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	node := eid.New(1, 1)
	require.Nil(t, PutEmpireNode(tx, EmpireNodeState{NodeEntityID: node, Energy: 100, Upkeep: 30, Active: true}))

	id := seedTimer(t, tx, EmpireDecayReducer, time.Unix(0, 0))
	require.Nil(t, EmpireDecayTick(testAgentCtx(tx, time.Unix(0, 0)), id, true))

	row, ok, rerr := EmpireNodeTable.Get(tx, empireNodeKey(node))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, int64(70), row.Energy)
	assert.True(t, row.Active)
}

func TestEmpireDecayTickDeactivatesOnceEmpty(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	node := eid.New(1, 1)
	require.Nil(t, PutEmpireNode(tx, EmpireNodeState{NodeEntityID: node, Energy: 20, Upkeep: 30, Active: true}))

	id := seedTimer(t, tx, EmpireDecayReducer, time.Unix(0, 0))
	require.Nil(t, EmpireDecayTick(testAgentCtx(tx, time.Unix(0, 0)), id, true))

	row, ok, rerr := EmpireNodeTable.Get(tx, empireNodeKey(node))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, int64(0), row.Energy)
	assert.False(t, row.Active)
}

func TestEmpireDecayTickSkipsInactiveNodes(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	node := eid.New(1, 1)
	require.Nil(t, PutEmpireNode(tx, EmpireNodeState{NodeEntityID: node, Energy: 50, Upkeep: 30, Active: false}))

	id := seedTimer(t, tx, EmpireDecayReducer, time.Unix(0, 0))
	require.Nil(t, EmpireDecayTick(testAgentCtx(tx, time.Unix(0, 0)), id, true))

	row, ok, rerr := EmpireNodeTable.Get(tx, empireNodeKey(node))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, int64(50), row.Energy, "inactive nodes are not drained")
}
