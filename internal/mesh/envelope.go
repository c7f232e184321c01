package mesh

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// GlobalRegionIndex is the reserved region index identifying the global
// shard — region indices for ordinary regions start at 1 (§4.3).
const GlobalRegionIndex uint8 = 0

// DestinationKind discriminates the four selector shapes §4.5 defines.
type DestinationKind string

const (
	DestRegion                  DestinationKind = "region"
	DestGlobal                  DestinationKind = "global"
	DestAllOtherRegions         DestinationKind = "all_other_regions"
	DestGlobalAndAllOtherRegion DestinationKind = "global_and_all_other_regions"
)

// Destination selects where an outbound message is delivered. RegionID is
// only meaningful when Kind is DestRegion.
type Destination struct {
	Kind     DestinationKind
	RegionID uint8
}

// Region targets a single remote region.
func Region(id uint8) Destination { return Destination{Kind: DestRegion, RegionID: id} }

// Global targets the global shard.
func Global() Destination { return Destination{Kind: DestGlobal} }

// AllOtherRegions fans out to every peer region (not the sender).
func AllOtherRegions() Destination { return Destination{Kind: DestAllOtherRegions} }

// GlobalAndAllOtherRegions targets both the global shard and every peer
// region.
func GlobalAndAllOtherRegions() Destination {
	return Destination{Kind: DestGlobalAndAllOtherRegion}
}

// Message is one outbox/inbox row: the envelope described in §6 ("each
// outbox row contains: destination selector, payload, origin region
// index, a send timestamp").
type Message struct {
	// MessageID is the #[auto_inc] primary key, also used as the
	// correlation id between a request and its reply-process companion
	// message.
	MessageID uint64
	Dest      Destination
	// Kind names the registered payload variant (e.g. "RecoverDeployable",
	// "TransferPlayer"); Payload is that variant's JSON encoding.
	Kind    string
	Payload json.RawMessage
	// OriginRegion is the sender's region index, implicit per §4.5
	// ("an implicit sender (= current region index)").
	OriginRegion uint8
	SentAt       time.Time
	// IsReply marks a companion reply-result message carrying the
	// destination's outcome back to the sender (§4.5 point 4); Error is
	// set when the destination reducer returned a business-logical
	// failure.
	IsReply bool
	Error   string
	HasErr  bool
}

// OutboxTable and InboxTable are the per-shard transactional outbox and
// inbox described in §4.5/§6. A relay (external to this package) drains
// OutboxTable rows into the destination shard's InboxTable; this package
// only guarantees the transactional append on send and the reducer-style
// processing on receipt.
var (
	OutboxTable = store.NewTable[Message]("mesh_outbox")
	InboxTable  = store.NewTable[Message]("mesh_inbox")
)

func messageKey(id uint64) []byte {
	return []byte(fmt.Sprintf("msg:%020d", id))
}

// Send appends payload to the local outbox inside ctx.Tx, so a rollback
// of the caller's reducer discards the message too (§4.5 point 1's
// transactional outbox). kind must have a registered Handler on every
// destination shard and a registered SenderResultHandler on the sender,
// or the message will be rejected when it is eventually processed /
// replied to.
func Send(ctx *reducer.Ctx, originRegion uint8, kind string, payload any, dest Destination) *reducer.Error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return reducer.InternalError("mesh: encode payload for %s: %v", kind, err)
	}
	id, err2 := OutboxTable.NextSequence(ctx.Tx)
	if err2 != nil {
		return reducer.Wrap(err2)
	}
	msg := Message{
		MessageID:    id,
		Dest:         dest,
		Kind:         kind,
		Payload:      raw,
		OriginRegion: originRegion,
		SentAt:       ctx.Now,
	}
	return reducer.Wrap(OutboxTable.Put(ctx.Tx, messageKey(id), msg))
}
