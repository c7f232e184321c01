package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// TradeSessionsReducer is the bound reducer name for the trade-session
// sweep tick.
const TradeSessionsReducer = "trade_sessions"

// TradeSessionState is one open trade between two players.
type TradeSessionState struct {
	SessionID      uint64
	PlayerA        eid.ID
	PlayerB        eid.ID
	StartedAt      time.Time
	Resolved       bool
	OfferedItemIDs []eid.ID
}

var TradeSessionTable = store.NewTable[TradeSessionState]("trade_session_state")

func tradeSessionKey(id uint64) []byte { return keyOf("trade", id) }

// OpenTradeSession starts a new session between a and b.
func OpenTradeSession(tx store.Tx, a, b eid.ID, startedAt time.Time) (uint64, *reducer.Error) {
	id, err := TradeSessionTable.NextSequence(tx)
	if err != nil {
		return 0, reducer.Wrap(err)
	}
	session := TradeSessionState{SessionID: id, PlayerA: a, PlayerB: b, StartedAt: startedAt}
	return id, reducer.Wrap(TradeSessionTable.Put(tx, tradeSessionKey(id), session))
}

// ResolveTradeSession marks a session resolved (both parties confirmed).
func ResolveTradeSession(tx store.Tx, sessionID uint64) *reducer.Error {
	s, ok, err := TradeSessionTable.Get(tx, tradeSessionKey(sessionID))
	if err != nil {
		return reducer.Wrap(err)
	}
	if !ok {
		return nil
	}
	s.Resolved = true
	return reducer.Wrap(TradeSessionTable.Put(tx, tradeSessionKey(sessionID), s))
}

// ReturnOfferedItems is the hook the inventory layer wires to actually
// hand back a cancelled session's offered items; left nil in tests that
// only exercise the sweep bookkeeping.
var ReturnOfferedItems func(tx store.Tx, player eid.ID, itemIDs []eid.ID) *reducer.Error

// TradeSessionsTick implements trade_sessions: mark expired/resolved
// sessions; cancel expired sessions (returning offered items), delete
// resolved sessions, then reschedule every 5s.
func TradeSessionsTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		timeout := time.Duration(params.TradeSessionTimeoutSec) * time.Second
		var sessions []TradeSessionState
		if iterErr := TradeSessionTable.Iterate(ctx.Tx, func(_ []byte, row TradeSessionState) error {
			sessions = append(sessions, row)
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, s := range sessions {
			expired := !s.Resolved && ctx.Now.Sub(s.StartedAt) >= timeout
			if !s.Resolved && !expired {
				continue
			}
			if expired && ReturnOfferedItems != nil {
				if retErr := ReturnOfferedItems(ctx.Tx, s.PlayerA, s.OfferedItemIDs); retErr != nil {
					return retErr
				}
			}
			if delErr := TradeSessionTable.Delete(ctx.Tx, tradeSessionKey(s.SessionID)); delErr != nil {
				return reducer.Wrap(delErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(5*time.Second))
}
