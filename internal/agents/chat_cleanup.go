package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// ChatCleanupReducer is the bound reducer name the scheduler dispatches
// chat_cleanup timers to.
const ChatCleanupReducer = "chat_cleanup"

// ChatMessage is one retained chat line. Only SentAt matters to cleanup;
// the rest of the row (sender, channel, body) is opaque to this agent.
type ChatMessage struct {
	MessageID uint64
	SenderID  eid.ID
	Body      string
	SentAt    time.Time
}

var ChatTable = store.NewTable[ChatMessage]("chat_message")

func chatKey(id uint64) []byte {
	return keyOf("chat", id)
}

// PostChatMessage appends a chat row, independent of cleanup.
func PostChatMessage(tx store.Tx, sender eid.ID, body string, sentAt time.Time) *reducer.Error {
	id, err := ChatTable.NextSequence(tx)
	if err != nil {
		return reducer.Wrap(err)
	}
	return reducer.Wrap(ChatTable.Put(tx, chatKey(id), ChatMessage{MessageID: id, SenderID: sender, Body: body, SentAt: sentAt}))
}

// ScheduleInitialChatCleanup arms chat_cleanup's first, 1-hour-post-boot
// tick; every subsequent tick reschedules itself 24h out, per §9's
// documented dual cadence (Open Question decision E.2: kept as-is).
func ScheduleInitialChatCleanup(tx store.Tx, now time.Time) (uint64, *reducer.Error) {
	return scheduler.Schedule(tx, ChatCleanupReducer, now.Add(time.Hour), nil)
}

// ChatCleanupTick implements chat_cleanup: delete chat messages older
// than ChatRetentionSeconds, then reschedule the firing timer (identified
// by scheduledID) 24h out regardless of whether the prelude skipped
// work — every tick after the first uses the 24h cadence even though the
// very first fire was armed 1h post-boot by ScheduleInitialChatCleanup.
func ChatCleanupTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		cutoff := ctx.Now.Add(-time.Duration(params.ChatRetentionSeconds) * time.Second)
		var stale [][]byte
		if iterErr := ChatTable.Iterate(ctx.Tx, func(key []byte, row ChatMessage) error {
			if row.SentAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), key...))
			}
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, key := range stale {
			if delErr := ChatTable.Delete(ctx.Tx, key); delErr != nil {
				return reducer.Wrap(delErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(24*time.Hour))
}
