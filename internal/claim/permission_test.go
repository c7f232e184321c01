package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/store"
)

func TestScoreOrdering(t *testing.T) {
	assert.Equal(t, 3, Score(MemberState{CoOwner: true}))
	assert.Equal(t, 2, Score(MemberState{Officer: true}))
	assert.Equal(t, 1, Score(MemberState{Build: true}))
	assert.Equal(t, 1, Score(MemberState{Inventory: true}))
	assert.Equal(t, 0, Score(MemberState{}))
}

func TestEffectivePermissionOverridesClaimWideFlags(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	claimID := eid.New(1, 1)
	player := eid.New(1, 2)
	building := eid.New(1, 3)

	require.NoError(t, MemberTable.Put(tx, memberKey(player, claimID), MemberState{
		PlayerEntityID: player, ClaimEntityID: claimID, Build: true,
	}))
	score, rerr := EffectivePermission(tx, player, claimID, eid.None, eid.None)
	require.Nil(t, rerr)
	assert.Equal(t, 1, score)

	require.Nil(t, SetPermission(tx, eid.None, 3, building, player, 0))
	score, rerr = EffectivePermission(tx, player, claimID, building, eid.None)
	require.Nil(t, rerr)
	assert.Equal(t, 0, score, "building-level override must beat the claim-wide flag score")

	require.Nil(t, ClearPermission(tx, building, player))
	score, rerr = EffectivePermission(tx, player, claimID, building, eid.None)
	require.Nil(t, rerr)
	assert.Equal(t, 1, score, "clearing the override falls back to the claim-wide flag")
}

func TestSetPermissionRejectsRankAtOrAboveEditor(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	err1 := SetPermission(tx, eid.None, 2, eid.New(1, 1), eid.New(1, 2), 2)
	require.NotNil(t, err1)
}
