package reducer

import (
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/store"
)

// ActionLayer partitions a player's concurrent long-running actions so
// that, e.g., a movement action and a passive crafting action can both be
// InProgress at once without clobbering each other's row.
type ActionLayer string

const (
	// LayerMovement covers teleport/climb/mount-style locomotion actions.
	LayerMovement ActionLayer = "movement"
	// LayerPassive covers crafting/repair/gathering-style actions that
	// run alongside movement.
	LayerPassive ActionLayer = "passive"
	// LayerCombat covers duels and other actions mutually exclusive
	// with ordinary movement and passive actions.
	LayerCombat ActionLayer = "combat"
)

// ActionState is the row shape of PlayerActionState (§4.1). Its presence
// in the table IS the "InProgress" state; its absence is "None" — there is
// no explicit status column, matching the teacher's convention of
// expressing small state machines as presence/absence rather than an enum
// column that can drift out of sync with a companion row.
type ActionState struct {
	Player         eid.ID
	Layer          ActionLayer
	ActionType     string
	TargetEntityID eid.ID
	StartTimestamp time.Time
	Duration       time.Duration
}

// ActionsTable is the PlayerActionState table, keyed by player EID and
// layer so a lookup or a delete never touches another layer's row.
var ActionsTable = store.NewTable[ActionState]("player_action_state")

func actionKey(player eid.ID, layer ActionLayer) []byte {
	return []byte(fmt.Sprintf("%d:%s", uint64(player), layer))
}

// GetAction returns the current action on layer for player, if any.
func GetAction(tx store.Tx, player eid.ID, layer ActionLayer) (ActionState, bool, *Error) {
	st, ok, err := ActionsTable.Get(tx, actionKey(player, layer))
	if err != nil {
		return ActionState{}, false, Wrap(err)
	}
	return st, ok, nil
}

// DryRun is the completion-path validation a reducer must be able to run
// both at start time (to pre-validate) and at completion time (to
// re-validate after the scheduled delay). timingOnly distinguishes errors
// that are purely about elapsed time — these are skipped when DryRun is
// invoked from StartAction, since no time has elapsed yet to be wrong
// about (§4.1 "the same error set minus timing errors").
type DryRun func(ctx *Ctx, timingOnly bool) *Error

// StartAction implements the None -> InProgress transition. It dry-runs
// the completion path first (§4.1: "pre-validates by dry-running the
// completion path"), and only persists InProgress and calls schedule if
// the dry run passes. schedule is responsible for enqueueing the
// completion reducer (normally via internal/scheduler) and must itself
// roll back cleanly if it returns an error, since Ctx.Tx is shared.
//
// StartAction fails without mutating anything if layer already has an
// InProgress action for player — a second start must cancel or wait for
// the first to resolve.
func StartAction(
	ctx *Ctx,
	player eid.ID,
	layer ActionLayer,
	actionType string,
	target eid.ID,
	duration time.Duration,
	dryRun DryRun,
	schedule func(ctx *Ctx, state ActionState) *Error,
) *Error {
	if _, exists, rerr := GetAction(ctx.Tx, player, layer); rerr != nil {
		return rerr
	} else if exists {
		return UserErrorCode("action_in_progress", "another action is already in progress on this layer")
	}

	if dryRun != nil {
		if err := dryRun(ctx, false); err != nil {
			return err
		}
	}

	state := ActionState{
		Player:         player,
		Layer:          layer,
		ActionType:     actionType,
		TargetEntityID: target,
		StartTimestamp: ctx.Now,
		Duration:       duration,
	}
	if err := ActionsTable.Put(ctx.Tx, actionKey(player, layer), state); err != nil {
		return Wrap(err)
	}
	if schedule != nil {
		if err := schedule(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// CompleteAction implements the InProgress -> None transition fired by the
// scheduled completion timer. It re-validates via dryRun (the server may
// have drifted state since start — the target despawned, the claim
// changed hands), then applies effects and clears the row.
//
// A missing row (the action was already completed or cancelled — timers
// can legitimately double-fire across a crash/restart per §4.1
// idempotence) is not an error: CompleteAction simply returns nil.
func CompleteAction(
	ctx *Ctx,
	player eid.ID,
	layer ActionLayer,
	dryRun DryRun,
	apply func(ctx *Ctx, state ActionState) *Error,
) *Error {
	state, exists, rerr := GetAction(ctx.Tx, player, layer)
	if rerr != nil {
		return rerr
	}
	if !exists {
		return nil
	}

	if dryRun != nil {
		if err := dryRun(ctx, true); err != nil {
			if err := ActionsTable.Delete(ctx.Tx, actionKey(player, layer)); err != nil {
				return Wrap(err)
			}
			return err
		}
	}

	if apply != nil {
		if err := apply(ctx, state); err != nil {
			return err
		}
	}
	if err := ActionsTable.Delete(ctx.Tx, actionKey(player, layer)); err != nil {
		return Wrap(err)
	}
	return nil
}

// SetAction forces layer into InProgress for player without the
// dry-run/schedule machinery StartAction requires. Used for transitions
// the server drives unconditionally regardless of what the player was
// doing — entering PlayerActionState::Death on health reaching zero is
// the only caller today — rather than ones a player requests via a
// normal reducer call.
func SetAction(tx store.Tx, state ActionState) *Error {
	return Wrap(ActionsTable.Put(tx, actionKey(state.Player, state.Layer), state))
}

// ClearAction removes layer's row for player unconditionally, with no
// timer-cancellation callback. Used for server-driven transitions out of
// an action — respawn clearing Death — rather than a player-initiated
// cancel, which should go through CancelAction so its scheduled timer is
// cancelled too.
func ClearAction(tx store.Tx, player eid.ID, layer ActionLayer) *Error {
	return Wrap(ActionsTable.Delete(tx, actionKey(player, layer)))
}

// CancelAction implements the InProgress -> None transition taken when a
// player or the server aborts an action early. cancelTimer is responsible
// for cancelling the scheduled completion timer (normally via
// internal/scheduler); effects are never applied on this path.
func CancelAction(
	ctx *Ctx,
	player eid.ID,
	layer ActionLayer,
	cancelTimer func(ctx *Ctx, state ActionState) *Error,
) *Error {
	state, exists, rerr := GetAction(ctx.Tx, player, layer)
	if rerr != nil {
		return rerr
	}
	if !exists {
		return nil
	}
	if cancelTimer != nil {
		if err := cancelTimer(ctx, state); err != nil {
			return err
		}
	}
	return Wrap(ActionsTable.Delete(ctx.Tx, actionKey(player, layer)))
}
