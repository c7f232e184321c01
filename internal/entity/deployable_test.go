package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// TestDeployableRecoveryScenario reproduces Scenario C end to end across
// two in-process transactions standing in for region 2 (the requester)
// and region 3 (the owner): rebuild the stale local collectible row,
// send the recovery request, have the owning region expel passengers and
// reply, then finalize on the requester.
func TestDeployableRecoveryScenario(t *testing.T) {
	region2 := store.NewMemoryEngine()
	region3 := store.NewMemoryEngine()

	player := eid.New(2, 42)
	deployableID := eid.New(3, 7)
	passenger := eid.New(3, 8)

	// Region 3 owns the deployable, hidden, with a passenger aboard.
	tx3, err := region3.Begin(true)
	require.NoError(t, err)
	require.NoError(t, DeployableTable.Put(tx3, deployableKey(deployableID), DeployableState{
		EntityID: deployableID, OwnerPlayerID: player, DescID: 17, Hidden: true,
		PassengerIDs: []eid.ID{passenger},
	}))
	require.NoError(t, tx3.Commit())

	var expelled []eid.ID
	ExpelPassengers = func(tx store.Tx, passengerIDs []eid.ID) *reducer.Error {
		expelled = append(expelled, passengerIDs...)
		return nil
	}
	defer func() { ExpelPassengers = nil }()

	// Region 2: a stale local collectible row exists from a previous
	// recovery and must be wiped before the request is sent.
	tx2, err := region2.Begin(true)
	require.NoError(t, err)
	require.NoError(t, CollectibleTable.Put(tx2, collectibleKey(player, 17), DeployableCollectibleStateV2{
		PlayerEntityID: player, DeployableDescID: 17, DeployableEntityID: eid.New(3, 1),
	}))
	ctx2 := reducer.NewCtx(tx2, player, false, reducer.RolePlayer, time.Unix(0, 0), 1)
	require.Nil(t, DeployableStoreFromCollectibleID(ctx2, player, 17))

	_, stale, rerr := CollectibleTable.Get(tx2, collectibleKey(player, 17))
	require.Nil(t, rerr)
	assert.False(t, stale, "stale collectible row must be deleted before the request is sent")

	var sent mesh.Message
	require.NoError(t, mesh.OutboxTable.Iterate(tx2, func(_ []byte, m mesh.Message) error {
		sent = m
		return nil
	}))
	require.NoError(t, tx2.Commit())
	assert.Equal(t, "RecoverDeployable", sent.Kind)

	// Region 3 receives the request, finds the deployable by owner+desc,
	// expels the passenger, unhides it, and sends OnDeployableRecovered
	// back to region 2.
	tx3, err = region3.Begin(true)
	require.NoError(t, err)
	ctx3 := reducer.NewCtx(tx3, eid.New(3, 0), true, reducer.RoleRelay, time.Unix(0, 0), 1)
	reply := mesh.ProcessInbound(ctx3, mesh.Message{Kind: sent.Kind, Payload: sent.Payload, OriginRegion: 2})
	assert.False(t, reply.HasErr)
	assert.Equal(t, []eid.ID{passenger}, expelled)

	d, ok, rerr := DeployableTable.Get(tx3, deployableKey(deployableID))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.False(t, d.Hidden)
	assert.Empty(t, d.PassengerIDs)

	var onRecovered mesh.Message
	require.NoError(t, mesh.OutboxTable.Iterate(tx3, func(_ []byte, m mesh.Message) error {
		if m.Kind == "OnDeployableRecovered" {
			onRecovered = m
		}
		return nil
	}))
	require.NoError(t, tx3.Commit())
	require.NotEmpty(t, onRecovered.Kind, "the destination must send a follow-up OnDeployableRecovered message")

	// Region 2 processes both the RecoverDeployable reply (a no-op here,
	// since the real finalization rides on OnDeployableRecovered) and the
	// OnDeployableRecovered message itself.
	tx2, err = region2.Begin(true)
	require.NoError(t, err)
	ctx2 = reducer.NewCtx(tx2, eid.New(2, 0), true, reducer.RoleRelay, time.Unix(0, 0), 1)
	require.Nil(t, mesh.ProcessReply(ctx2, mesh.Message{Kind: sent.Kind, Payload: sent.Payload, IsReply: true}))
	finalizeReply := mesh.ProcessInbound(ctx2, mesh.Message{Kind: onRecovered.Kind, Payload: onRecovered.Payload, OriginRegion: 3})
	assert.False(t, finalizeReply.HasErr)

	row, ok, rerr := CollectibleTable.Get(tx2, collectibleKey(player, 17))
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, deployableID, row.DeployableEntityID)
	require.NoError(t, tx2.Commit())
}

func TestFindDeployableMatchesByEntityIDWhenKnown(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	id := eid.New(3, 99)
	require.NoError(t, DeployableTable.Put(tx, deployableKey(id), DeployableState{EntityID: id, DescID: 5}))

	d, ok, rerr := findDeployable(tx, mesh.RecoverDeployable{DeployableEntityID: id})
	require.Nil(t, rerr)
	require.True(t, ok)
	assert.Equal(t, id, d.EntityID)
}
