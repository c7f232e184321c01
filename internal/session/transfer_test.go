package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

func TestTransferPlayerEnqueuesOutboundMessage(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	player := eid.New(1, 1)
	ctx := reducer.NewCtx(tx, player, false, reducer.RolePlayer, time.Unix(0, 0), 1)

	require.Nil(t, TransferPlayer(ctx, player, "steam:1", 1, 2))

	n, err := mesh.OutboxTable.Count(tx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTransferHandlerRebindsIdentityOnDestination(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	player := eid.New(2, 9)
	ctx := reducer.NewCtx(tx, eid.None, true, reducer.RoleRelay, time.Unix(0, 0), 1)

	reply := mesh.ProcessInbound(ctx, mesh.Message{
		Kind:         transferKind,
		Payload:      mustJSON(t, mesh.TransferPlayer{PlayerEntityID: player, Identity: "steam:1", FromRegion: 1, ToRegion: 2}),
		OriginRegion: 1,
	})
	assert.False(t, reply.HasErr)

	resolved, ok, rerr := ResolveSender(tx, "steam:1")
	require.Nil(t, rerr)
	assert.True(t, ok)
	assert.Equal(t, player, resolved)

	region, ok, rerr := RegionOfTable.Get(tx, identityKey("steam:1"))
	require.Nil(t, rerr)
	assert.True(t, ok)
	assert.Equal(t, uint8(2), region.RegionID)
}

func TestTransferSenderResultHandlerClearsSourceSignIn(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	player := eid.New(1, 5)
	require.NoError(t, SignedInTable.Put(tx, entityKeyOf(player), SignedInPlayerState{EntityID: player}))

	ctx := reducer.NewCtx(tx, eid.None, true, reducer.RoleRelay, time.Unix(0, 0), 1)
	payload := mustJSON(t, mesh.TransferPlayer{PlayerEntityID: player, Identity: "steam:1", FromRegion: 1, ToRegion: 2})

	require.Nil(t, mesh.ProcessReply(ctx, mesh.Message{Kind: transferKind, Payload: payload, IsReply: true}))

	ok, rerr := IsSignedIn(tx, player)
	require.Nil(t, rerr)
	assert.False(t, ok)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
