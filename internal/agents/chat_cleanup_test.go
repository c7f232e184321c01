package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func TestChatCleanupDeletesOnlyMessagesOlderThanRetention(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	sender := eid.New(1, 1)
	now := time.Unix(3*24*3600, 0)
	params := worldconfig.Defaults()

	require.Nil(t, PostChatMessage(tx, sender, "old", now.Add(-3*24*time.Hour)))
	require.Nil(t, PostChatMessage(tx, sender, "recent", now.Add(-time.Hour)))

	id := seedTimer(t, tx, ChatCleanupReducer, now)
	require.Nil(t, ChatCleanupTick(testAgentCtx(tx, now), id, true, params))

	n, err := ChatTable.Count(tx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChatCleanupReschedulesDailyRegardlessOfInitialOneHourArm(t *testing.T) {
	engine := store.NewMemoryEngine()
	tx, err := engine.Begin(true)
	require.NoError(t, err)
	defer tx.Rollback()

	now := time.Unix(0, 0)
	id, rerr := ScheduleInitialChatCleanup(tx, now)
	require.Nil(t, rerr)

	due, rerr := scheduler.DueTimers(tx, ChatCleanupReducer, now.Add(time.Hour), 0)
	require.Nil(t, rerr)
	require.Len(t, due, 1)

	require.Nil(t, ChatCleanupTick(testAgentCtx(tx, now.Add(time.Hour)), id, true, worldconfig.Defaults()))

	due, rerr = scheduler.DueTimers(tx, ChatCleanupReducer, now.Add(25*time.Hour), 0)
	require.Nil(t, rerr)
	assert.Len(t, due, 1, "the reschedule must be 24h out, not another 1h")

	due, rerr = scheduler.DueTimers(tx, ChatCleanupReducer, now.Add(2*time.Hour), 0)
	require.Nil(t, rerr)
	assert.Len(t, due, 0, "must not be due again only 1h after the first tick")

	n, cerr := scheduler.CountPending(tx, ChatCleanupReducer)
	require.Nil(t, cerr)
	assert.Equal(t, 1, n, "rescheduling must not leave a stray duplicate timer row behind")
}
