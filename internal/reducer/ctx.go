package reducer

import (
	"time"

	"golang.org/x/exp/rand"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/store"
)

// Ctx is the transaction-scoped context every reducer receives. It is
// constructed once per reducer invocation by the dispatcher (the
// session/mesh/scheduler layers that actually call into a reducer
// function) and must not outlive the Tx it wraps.
type Ctx struct {
	// Tx is the single transaction every table access in this reducer
	// invocation must go through, so a non-nil *Error return lets the
	// caller roll back every write, timer insert, and outbound message
	// made since the reducer started.
	Tx store.Tx

	// Sender is the resolved UserState.entity_id of the invoking
	// identity, or eid.None for connections that have not yet signed
	// in. Server-originated calls (scheduler fires, inter-shard relay)
	// set Sender to the synthetic server identity and IsServer to true.
	Sender eid.ID

	// IsServer marks this invocation as server-originated: a timer
	// fire, an agent tick, or an inbound relay message from another
	// shard, as opposed to a reducer dialed directly by a connected
	// player. Reducers gated to "server only" check this flag rather
	// than comparing Sender against a well-known identity, so the
	// check can't be spoofed by a player who happens to guess the
	// server's EID.
	IsServer bool

	// Role is the invoking identity's authorization level, already
	// resolved by the caller from IdentityRole (§4.1 step 2 inputs).
	// Server-originated calls normally carry RoleRelay.
	Role Role

	// Now is the transaction's logical timestamp. Every reducer reads
	// time through Ctx.Now rather than time.Now() so that dry-run and
	// completion passes over the same logical instant agree, and so
	// that replayed/rescheduled invocations are deterministic.
	Now time.Time

	// rng is seeded once per transaction (see NewCtx) from a caller
	// supplied seed derived from the transaction start, so two
	// invocations constructed with the same seed draw the same
	// sequence — required for deterministic agent replay (§5).
	rng *rand.Rand
}

// NewCtx builds a Ctx for one reducer invocation. seed is ordinarily
// derived by the caller from Now.UnixNano() combined with a per-shard
// invocation counter; passing the same seed and Now twice reproduces the
// same RNG draws, which is what makes agent-loop replay deterministic.
func NewCtx(tx store.Tx, sender eid.ID, isServer bool, role Role, now time.Time, seed uint64) *Ctx {
	return &Ctx{
		Tx:       tx,
		Sender:   sender,
		IsServer: isServer,
		Role:     role,
		Now:      now,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Rand returns the transaction-scoped RNG. Reducers that need randomness
// (loot rolls, growth-agent jitter) must draw from this source instead of
// math/rand's global generator, or replays diverge.
func (c *Ctx) Rand() *rand.Rand {
	return c.rng
}

// RequireSignedIn fails unless Sender resolved to a real identity. Most
// player-invoked reducers call this first, per §4.1 step 1.
func (c *Ctx) RequireSignedIn() *Error {
	if c.Sender.IsNone() {
		return UserError("you must be signed in to do that")
	}
	return nil
}

// RequireServer fails unless this invocation is server-originated —
// §4.1 step 1's "server-only reducers verify ctx.sender == server_identity
// or an admin role" check, expressed as IsServer OR RoleAdmin-and-above so
// an admin console command can also drive a server-only reducer directly.
func (c *Ctx) RequireServer() *Error {
	if c.IsServer || c.Role.AtLeast(RoleAdmin) {
		return nil
	}
	return InternalError("reducer: server-only operation invoked by non-server identity %s", c.Sender)
}

// RequireRole fails unless the invoking Role authorizes at least min.
func (c *Ctx) RequireRole(min Role) *Error {
	if c.Role.AtLeast(min) {
		return nil
	}
	return UserError("you don't have permission to do that")
}
