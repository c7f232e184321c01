package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/coordinates"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/store"
)

func TestLocationAndMobileAreMutuallyExclusive(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	id, rerr := CreateEntity(tx, 1)
	require.Nil(t, rerr)
	tile := coordinates.SmallHexTile{X: 5, Z: -2, Dim: 1}

	require.Nil(t, PutLocation(tx, id, tile))
	_, ok, e := LocationTable.Get(tx, entityKey(id))
	require.NoError(t, e)
	assert.True(t, ok)

	dest := coordinates.SmallHexTile{X: 6, Z: -2, Dim: 1}
	require.Nil(t, PutMobile(tx, id, tile, dest, time.Unix(1_700_000_000, 0), 2*time.Second))

	_, ok, e = LocationTable.Get(tx, entityKey(id))
	require.NoError(t, e)
	assert.False(t, ok, "inserting a mobile row must clear any location row for the same entity")

	_, ok, e = MobileTable.Get(tx, entityKey(id))
	require.NoError(t, e)
	assert.True(t, ok)
}

func TestAtLocationFindsBothTableKinds(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	static, rerr := CreateEntity(tx, 1)
	require.Nil(t, rerr)
	moving, rerr := CreateEntity(tx, 1)
	require.Nil(t, rerr)

	tile := coordinates.SmallHexTile{X: 10, Z: 10, Dim: 1}
	require.Nil(t, PutLocation(tx, static, tile))
	require.Nil(t, PutMobile(tx, moving, tile, tile, time.Unix(0, 0), 0))

	found, rerr := AtLocation(tx, tile)
	require.Nil(t, rerr)
	assert.ElementsMatch(t, []uint64{uint64(static), uint64(moving)}, toUint64s(found))

	elsewhere, rerr := AtLocation(tx, coordinates.SmallHexTile{X: 99, Z: 99, Dim: 1})
	require.Nil(t, rerr)
	assert.Empty(t, elsewhere)
}

func toUint64s(ids []eid.ID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
