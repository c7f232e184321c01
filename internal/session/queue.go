package session

import (
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/entity"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
)

// SignedInPlayerState's presence is the §3 invariant 6 condition: "A
// player entity is in SignedInPlayerState iff its identity has a live
// session and the sign-in grace has completed."
type SignedInPlayerState struct {
	EntityID eid.ID
}

var SignedInTable = store.NewTable[SignedInPlayerState]("signed_in_player_state")

// RegionSignInParameters is the per-region admission-control
// configuration (§3): owned by the global shard, replicated to regions.
type RegionSignInParameters struct {
	RegionID           uint8
	IsBlocked          bool
	MaxSignedIn        int
	MaxQueue           int
	QueueTolerance     int
	GracePeriodSeconds int64
}

var SignInParamsTable = store.NewTable[RegionSignInParameters]("region_sign_in_parameters")

func signInParamsKey(regionID uint8) []byte {
	return []byte(fmt.Sprintf("region:%d", regionID))
}

// LoadSignInParams returns regionID's admission-control row, or a
// permissive default (unblocked, MaxSignedIn defaultMaxSignedIn, no
// grace period) if global-server has not yet replicated one — matching
// worldconfig.Load's own absent-row-means-defaults convention.
func LoadSignInParams(tx store.Tx, regionID uint8, defaultMaxSignedIn int) (RegionSignInParameters, *reducer.Error) {
	row, ok, err := SignInParamsTable.Get(tx, signInParamsKey(regionID))
	if err != nil {
		return RegionSignInParameters{}, reducer.Wrap(err)
	}
	if !ok {
		return RegionSignInParameters{RegionID: regionID, MaxSignedIn: defaultMaxSignedIn}, nil
	}
	return row, nil
}

// PutSignInParams stores regionID's admission-control row — called from
// global-server when an operator changes a region's capacity via
// worldctl.
func PutSignInParams(tx store.Tx, params RegionSignInParameters) *reducer.Error {
	return reducer.Wrap(SignInParamsTable.Put(tx, signInParamsKey(params.RegionID), params))
}

// CountSignedIn reports how many SignedInPlayerState rows belong to
// regionID, the signedInCount ProcessQueue needs — entity ids already
// self-describe their owning region (internal/eid), so no secondary
// per-region index table is needed.
func CountSignedIn(tx store.Tx, regionID uint8) (int, *reducer.Error) {
	n := 0
	err := SignedInTable.Iterate(tx, func(_ []byte, row SignedInPlayerState) error {
		if row.EntityID.RegionIndex() == regionID {
			n++
		}
		return nil
	})
	return n, reducer.Wrap(err)
}

// QueueEntry is the external queue table §4.6 references — "external
// table" per spec, but implemented here since nothing else in the tree
// owns queue ordering. Position is assigned by insertion order
// (ScheduledID-style monotonic counter) so ProcessQueue admits in a
// stable, deterministic order (§5).
type QueueEntry struct {
	Position int64
	Identity Identity
}

var QueueTable = store.NewTable[QueueEntry]("sign_in_queue")

func init() {
	entity.RegisterDeleteHook("session.signed_in_player_state", func(tx store.Tx, id eid.ID) *reducer.Error {
		return reducer.Wrap(SignedInTable.Delete(tx, entityKeyOf(id)))
	})
}

func entityKeyOf(id eid.ID) []byte {
	return []byte(id.String())
}

// ClientConnect implements §4.6's connect handler: reject if blocked or
// not authenticated. Unblocked developers (isDeveloper) and identities
// holding at least RoleSkipQueue bypass the authentication check.
func ClientConnect(tx store.Tx, ident Identity, isDeveloper bool) *reducer.Error {
	blocked, err := IsBlocked(tx, ident)
	if err != nil {
		return err
	}
	if blocked {
		return reducer.UserError("you are blocked from connecting")
	}
	if isDeveloper {
		return nil
	}
	role, err := RoleOf(tx, ident)
	if err != nil {
		return err
	}
	if role.AtLeast(reducer.RoleSkipQueue) {
		return nil
	}
	authed, err := IsAuthenticated(tx, ident)
	if err != nil {
		return err
	}
	if !authed {
		return reducer.UserError("authentication required")
	}
	return nil
}

// EndGracePeriodKind discriminates the two grace-timer variants §4.6
// names.
type EndGracePeriodKind string

const (
	GraceSignIn    EndGracePeriodKind = "sign_in"
	GraceQueueJoin EndGracePeriodKind = "queue_join"
)

// EndGracePeriodTimer is the scheduler payload for both grace variants.
type EndGracePeriodTimer struct {
	Kind     EndGracePeriodKind
	Identity Identity
	RegionID uint8
}

const EndGracePeriodReducer = "end_grace_period_timer"

// SignIn implements the §4.6 sign-in reducer: insert SignedInPlayerState
// and run reconcile if it is non-nil. It does not touch the queue table;
// the admitted/grace-timer state is tracked outside this function.
// SignIn itself does not re-check capacity,
// mirroring the spec's "Insert SignedInPlayerState" as the first,
// unconditional step once a caller has already decided admission is
// valid.
func SignIn(ctx *reducer.Ctx, player eid.ID, reconcile func(ctx *reducer.Ctx) *reducer.Error) *reducer.Error {
	if err := SignedInTable.Put(ctx.Tx, entityKeyOf(player), SignedInPlayerState{EntityID: player}); err != nil {
		return reducer.Wrap(err)
	}
	if reconcile != nil {
		if err := reconcile(ctx); err != nil {
			return err
		}
	}
	return nil
}

// IsSignedIn reports whether player currently has a SignedInPlayerState
// row.
func IsSignedIn(tx store.Tx, player eid.ID) (bool, *reducer.Error) {
	_, ok, err := SignedInTable.Get(tx, entityKeyOf(player))
	return ok, reducer.Wrap(err)
}

// Disconnect implements §4.6's disconnect handler: delete the
// SignedInPlayerState row only — the player entity persists.
func Disconnect(tx store.Tx, player eid.ID) *reducer.Error {
	return reducer.Wrap(SignedInTable.Delete(tx, entityKeyOf(player)))
}

func queueKey(position int64) []byte {
	return []byte(fmt.Sprintf("queue:%020d", position))
}

// Enqueue appends ident to the back of the region sign-in queue and
// returns its assigned position.
func Enqueue(tx store.Tx, ident Identity) (int64, *reducer.Error) {
	pos, err := QueueTable.NextSequence(tx)
	if err != nil {
		return 0, reducer.Wrap(err)
	}
	entry := QueueEntry{Position: int64(pos), Identity: ident}
	if err := QueueTable.Put(tx, queueKey(entry.Position), entry); err != nil {
		return 0, reducer.Wrap(err)
	}
	return entry.Position, nil
}

// Dequeue removes ident from the queue regardless of position — used both
// when a queued identity is admitted and when its queue-join grace period
// expires unconfirmed.
func Dequeue(tx store.Tx, ident Identity) *reducer.Error {
	var target []byte
	if err := QueueTable.Iterate(tx, func(key []byte, row QueueEntry) error {
		if row.Identity == ident {
			target = append([]byte(nil), key...)
		}
		return nil
	}); err != nil {
		return reducer.Wrap(err)
	}
	if target == nil {
		return nil
	}
	return reducer.Wrap(QueueTable.Delete(tx, target))
}

// QueueLen reports the current queue depth — the source for the
// worldshard_sign_in_queue_depth gauge.
func QueueLen(tx store.Tx) (int, *reducer.Error) {
	n, err := QueueTable.Count(tx)
	return n, reducer.Wrap(err)
}

// ProcessQueue implements §4.6's admission loop: while the region is
// under MaxSignedIn capacity and the queue is non-empty, pop the
// front-most queued identity, call admit (which is expected to start its
// grace-period timer and, on confirmation, call SignIn), and continue.
// signedInCount is re-queried by the caller between calls in a real
// scheduler tick; ProcessQueue takes it as a parameter so this function
// has no dependency on how "currently signed in" is counted region-wide.
func ProcessQueue(tx store.Tx, params RegionSignInParameters, signedInCount int, admit func(tx store.Tx, ident Identity) *reducer.Error) *reducer.Error {
	if params.IsBlocked {
		return nil
	}
	for signedInCount < params.MaxSignedIn {
		var front *QueueEntry
		if err := QueueTable.Iterate(tx, func(_ []byte, row QueueEntry) error {
			if front == nil || row.Position < front.Position {
				r := row
				front = &r
			}
			return nil
		}); err != nil {
			return reducer.Wrap(err)
		}
		if front == nil {
			return nil
		}
		if err := Dequeue(tx, front.Identity); err != nil {
			return err
		}
		if err := admit(tx, front.Identity); err != nil {
			return err
		}
		signedInCount++
	}
	return nil
}

// EnqueueGraceTimer schedules an EndGracePeriodTimer of kind for ident on
// regionID, graceSeconds from now.
func EnqueueGraceTimer(ctx *reducer.Ctx, kind EndGracePeriodKind, ident Identity, regionID uint8, graceSeconds int64) (uint64, *reducer.Error) {
	return scheduler.Schedule(ctx.Tx, EndGracePeriodReducer, ctx.Now.Add(time.Duration(graceSeconds)*time.Second),
		EndGracePeriodTimer{Kind: kind, Identity: ident, RegionID: regionID})
}

// FireEndGracePeriodTimer implements the timer-fired reducer bound to
// EndGracePeriodReducer. signedIn reports whether ident has since signed
// in (for GraceSignIn) or confirmed queue entry (for GraceQueueJoin);
// admitNext is called to pull the next candidate into an admitted slot
// once this identity's grace period elapses without confirmation.
func FireEndGracePeriodTimer(ctx *reducer.Ctx, t EndGracePeriodTimer, signedIn bool, revokeCanSignIn func(ctx *reducer.Ctx, ident Identity) *reducer.Error, admitNext func(ctx *reducer.Ctx, regionID uint8) *reducer.Error, dequeue func(ctx *reducer.Ctx, ident Identity) *reducer.Error) *reducer.Error {
	switch t.Kind {
	case GraceSignIn:
		if signedIn {
			return nil
		}
		if revokeCanSignIn != nil {
			if err := revokeCanSignIn(ctx, t.Identity); err != nil {
				return err
			}
		}
		if admitNext != nil {
			return admitNext(ctx, t.RegionID)
		}
		return nil
	case GraceQueueJoin:
		if dequeue != nil {
			return dequeue(ctx, t.Identity)
		}
		return nil
	default:
		return reducer.InternalError("session: unknown grace timer kind %q", t.Kind)
	}
}
