package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func TestTradeSessionsTickCancelsExpiredAndReturnsItems(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	a, b := eid.New(1, 1), eid.New(1, 2)
	item := eid.New(1, 3)
	params := worldconfig.Defaults()
	start := time.Unix(0, 0)
	sessionID, oerr := OpenTradeSession(tx, a, b, start)
	require.Nil(t, oerr)
	s, ok, gerr := TradeSessionTable.Get(tx, tradeSessionKey(sessionID))
	require.Nil(t, gerr)
	require.True(t, ok)
	s.OfferedItemIDs = []eid.ID{item}
	require.Nil(t, reducer.Wrap(TradeSessionTable.Put(tx, tradeSessionKey(sessionID), s)))

	var returnedTo eid.ID
	var returnedItems []eid.ID
	ReturnOfferedItems = func(tx store.Tx, player eid.ID, itemIDs []eid.ID) *reducer.Error {
		returnedTo, returnedItems = player, itemIDs
		return nil
	}
	defer func() { ReturnOfferedItems = nil }()

	after := start.Add(time.Duration(params.TradeSessionTimeoutSec+1) * time.Second)
	id := seedTimer(t, tx, TradeSessionsReducer, after)
	require.Nil(t, TradeSessionsTick(testAgentCtx(tx, after), id, true, params))

	assert.Equal(t, a, returnedTo)
	assert.Equal(t, []eid.ID{item}, returnedItems)
	_, stillThere, gerr2 := TradeSessionTable.Get(tx, tradeSessionKey(sessionID))
	require.Nil(t, gerr2)
	assert.False(t, stillThere)
}

func TestTradeSessionsTickDeletesResolvedSessionsWithoutReturningItems(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	a, b := eid.New(1, 1), eid.New(1, 2)
	sessionID, oerr := OpenTradeSession(tx, a, b, time.Unix(0, 0))
	require.Nil(t, oerr)
	require.Nil(t, ResolveTradeSession(tx, sessionID))

	called := false
	ReturnOfferedItems = func(tx store.Tx, player eid.ID, itemIDs []eid.ID) *reducer.Error {
		called = true
		return nil
	}
	defer func() { ReturnOfferedItems = nil }()

	id := seedTimer(t, tx, TradeSessionsReducer, time.Unix(1, 0))
	require.Nil(t, TradeSessionsTick(testAgentCtx(tx, time.Unix(1, 0)), id, true, worldconfig.Defaults()))

	assert.False(t, called, "a resolved session's items were already exchanged, not returned")
	_, stillThere, gerr := TradeSessionTable.Get(tx, tradeSessionKey(sessionID))
	require.Nil(t, gerr)
	assert.False(t, stillThere)
}
