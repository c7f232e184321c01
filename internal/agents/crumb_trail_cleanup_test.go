package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func TestCrumbTrailCleanupResetsStrikesWhenFollowerSignedIn(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	follower := eid.New(1, 1)
	require.Nil(t, session.SignIn(testAgentCtx(tx, time.Unix(0, 0)), follower, nil))
	trail := eid.New(1, 9)
	require.Nil(t, PutCrumbTrail(tx, CrumbTrailState{TrailEntityID: trail, FollowerID: follower, Strikes: 2}))

	id := seedTimer(t, tx, CrumbTrailCleanupReducer, time.Unix(0, 0))
	require.Nil(t, CrumbTrailCleanupTick(testAgentCtx(tx, time.Unix(0, 0)), id, true, worldconfig.Defaults()))

	row, ok, rerr := CrumbTrailTable.Get(tx, crumbTrailKey(trail))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, 0, row.Strikes)
}

func TestCrumbTrailCleanupDespawnsAtStrikeLimit(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	follower := eid.New(1, 1) // never signs in
	trail := eid.New(1, 9)
	prize := eid.New(1, 10)
	params := worldconfig.Defaults()
	require.Nil(t, PutCrumbTrail(tx, CrumbTrailState{
		TrailEntityID: trail, FollowerID: follower,
		Strikes:        params.CrumbTrailStrikeLimit - 1,
		PrizeEntityIDs: []eid.ID{prize},
	}))

	id := seedTimer(t, tx, CrumbTrailCleanupReducer, time.Unix(0, 0))
	require.Nil(t, CrumbTrailCleanupTick(testAgentCtx(tx, time.Unix(0, 0)), id, true, params))

	_, stillThere, rerr := CrumbTrailTable.Get(tx, crumbTrailKey(trail))
	require.Nil(t, rerr)
	assert.False(t, stillThere)
}

func TestCrumbTrailCleanupIncrementsStrikesWhenFollowerOffline(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	follower := eid.New(1, 1)
	trail := eid.New(1, 9)
	require.Nil(t, PutCrumbTrail(tx, CrumbTrailState{TrailEntityID: trail, FollowerID: follower, Strikes: 0}))

	id := seedTimer(t, tx, CrumbTrailCleanupReducer, time.Unix(0, 0))
	require.Nil(t, CrumbTrailCleanupTick(testAgentCtx(tx, time.Unix(0, 0)), id, true, worldconfig.Defaults()))

	row, ok, rerr := CrumbTrailTable.Get(tx, crumbTrailKey(trail))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, 1, row.Strikes)
}
