package mesh

import "github.com/dreamware/worldshard/internal/eid"

// The following types are the representative payload variants §4.5 names.
// Each is a plain JSON-serializable struct; RegisterHandler/
// RegisterSenderResultHandler calls binding these live in the package
// that owns the corresponding domain state (internal/claim,
// internal/session, internal/entity's callers), not here, so this file
// only fixes the wire shape every shard agrees on.

// ReplaceIdentity carries an identity migration (e.g. account merge) to
// every shard holding state keyed by the old identity.
type ReplaceIdentity struct {
	OldIdentity string
	NewIdentity string
}

// TransferPlayerHousing moves a PlayerHousingState row's ownership to a
// new home region as part of a cross-region transfer.
type TransferPlayerHousing struct {
	PlayerEntityID  eid.ID
	HousingEntityID eid.ID
	DestRegion      uint8
}

// EmpireClaimJoin requests that a claim join an empire node owned by a
// different region.
type EmpireClaimJoin struct {
	ClaimEntityID eid.ID
	EmpireNodeID  eid.ID
}

// EmpireCollectHexiteCapsule requests collection of a reward capsule
// tracked on the empire node's home region.
type EmpireCollectHexiteCapsule struct {
	PlayerEntityID eid.ID
	EmpireNodeID   eid.ID
	CapsuleID      uint64
}

// EmpireQueueSupplies requests that supplies be queued for delivery to an
// empire node living on another region.
type EmpireQueueSupplies struct {
	ClaimEntityID eid.ID
	EmpireNodeID  eid.ID
	Quantity      uint32
}

// RecoverDeployable is Scenario C's message: the requesting region asks
// the deployable's home region to expel passengers, mark it recoverable,
// and reply with its full state. DeployableEntityID is 0 when the caller
// only knows the description id and must be matched by owner+desc on the
// destination (the Scenario C "collectible" path).
type RecoverDeployable struct {
	PlayerEntityID    eid.ID
	DeployableEntityID eid.ID
	DeployableDescID   uint32
	// RequestingRegion is the origin region's own index, carried
	// explicitly (rather than inferred from the envelope) so the
	// destination-side handler knows where to route the follow-up
	// OnDeployableRecovered message it sends once it has finished
	// resolving the deployable — mirroring TransferPlayer's
	// self-describing FromRegion/ToRegion fields.
	RequestingRegion uint8
}

// OnDeployableRecovered is the reply payload for RecoverDeployable: the
// destination's view of the deployable once expelled and unhidden.
type OnDeployableRecovered struct {
	PlayerEntityID     eid.ID
	DeployableEntityID eid.ID
	DeployableDescID   uint32
	TradeOrderIDs      []uint64
}

// OnPlayerNameSet replicates a player's display-name change to every
// region so name lookups never have to cross shards.
type OnPlayerNameSet struct {
	PlayerEntityID eid.ID
	Name           string
}

// PlayerSkipQueue is sent by the global shard to a region to grant an
// identity immediate queue-skip admission (e.g. after a support ticket).
type PlayerSkipQueue struct {
	Identity string
}

// GrantHubItem credits a hub-shard (global economy) purchase to a
// player's regional inventory.
type GrantHubItem struct {
	PlayerEntityID eid.ID
	ItemDescID     uint32
	Quantity       uint32
}

// TransferPlayer is the cross-region transfer message (§4.6): the
// destination creates the player row in its region; the source clears
// its own on success.
type TransferPlayer struct {
	PlayerEntityID eid.ID
	Identity       string
	FromRegion     uint8
	ToRegion       uint8
}
