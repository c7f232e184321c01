package reducer

// Role is a total order of authorization levels, lowest first. A reducer
// gate of the form `ctx.Role >= RoleMod` reads as "Mod or above" and holds
// for every tier above Mod because the underlying type is an ordered int.
type Role int

const (
	// RolePlayer is the default role of any signed-in identity.
	RolePlayer Role = iota
	// RolePartner marks accounts with partner-program perks (cosmetic
	// queue skip, marketing flags) but no moderation authority.
	RolePartner
	// RoleSkipQueue grants queue-admission priority only; carries no
	// additional in-world authority over RolePlayer.
	RoleSkipQueue
	// RoleMod can act on reports, mute/kick, and inspect player state.
	RoleMod
	// RoleGM can teleport, spawn, and edit world state for support and
	// events, in addition to everything RoleMod can do.
	RoleGM
	// RoleAdmin can run destructive/administrative reducers (ban,
	// region rebalance, config edits) in addition to everything below.
	RoleAdmin
	// RoleRelay is reserved for the synthetic identity shards use to
	// act on each other's behalf over the inter-shard message fabric
	// (§4.5); it authorizes strictly more than RoleAdmin because relay
	// messages carry their own prior authorization from the sending
	// shard and must not be re-challenged against a human role ladder.
	RoleRelay
)

// String returns the role's canonical lowercase name, used in log fields
// and admin tooling output.
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RolePartner:
		return "partner"
	case RoleSkipQueue:
		return "skip_queue"
	case RoleMod:
		return "mod"
	case RoleGM:
		return "gm"
	case RoleAdmin:
		return "admin"
	case RoleRelay:
		return "relay"
	default:
		return "unknown"
	}
}

// AtLeast reports whether r authorizes at least min, per the Role ordering.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}
