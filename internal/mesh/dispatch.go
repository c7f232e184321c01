package mesh

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dreamware/worldshard/internal/reducer"
)

// Handler runs a message's destination-side effect, authenticated as the
// synthetic server identity (§4.5 point 3: "runs each message as if it
// were a normal reducer call, authenticated as the server identity").
// raw is re-decoded by the handler into its own concrete payload type.
type Handler func(ctx *reducer.Ctx, raw json.RawMessage) *reducer.Error

// SenderResultHandler runs on the sender once a destination's result
// comes back (§4.5 point 5): errMsg is non-nil on a business-logical
// failure, in which case the handler compensates; nil means the
// destination succeeded, and the handler finalizes.
type SenderResultHandler func(ctx *reducer.Ctx, raw json.RawMessage, errMsg *string) *reducer.Error

var (
	mu             sync.Mutex
	handlers       = map[string]Handler{}
	resultHandlers = map[string]SenderResultHandler{}
)

// RegisterHandler binds kind's destination-side effect. Called once per
// variant from the owning package's init(); a duplicate registration is a
// programming error and panics immediately rather than silently
// overwriting the earlier registration.
func RegisterHandler(kind string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := handlers[kind]; exists {
		panic("mesh: handler already registered for " + kind)
	}
	handlers[kind] = h
}

// RegisterSenderResultHandler binds kind's sender-side compensation/
// finalization path.
func RegisterSenderResultHandler(kind string, h SenderResultHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := resultHandlers[kind]; exists {
		panic("mesh: sender result handler already registered for " + kind)
	}
	resultHandlers[kind] = h
}

// ProcessInbound runs msg's registered Handler and returns the reply
// message the relay should carry back to the sender (§4.5 points 3-4).
// An unregistered Kind is an invariant violation, not a business error:
// every variant must be wired on every shard that can receive it before
// it is ever sent, per the exhaustiveness-checked dispatch design note.
func ProcessInbound(ctx *reducer.Ctx, msg Message) Message {
	mu.Lock()
	h, ok := handlers[msg.Kind]
	mu.Unlock()

	reply := Message{
		Dest:         Region(msg.OriginRegion),
		Kind:         msg.Kind,
		Payload:      msg.Payload,
		OriginRegion: ctx.Sender.RegionIndex(),
		SentAt:       ctx.Now,
		IsReply:      true,
	}
	if !ok {
		reply.HasErr = true
		reply.Error = fmt.Sprintf("mesh: no handler registered for message kind %q", msg.Kind)
		return reply
	}
	if rerr := h(ctx, msg.Payload); rerr != nil {
		reply.HasErr = true
		reply.Error = rerr.String()
	}
	return reply
}

// ProcessReply runs msg's registered SenderResultHandler against the
// sender's local state (§4.5 point 5).
func ProcessReply(ctx *reducer.Ctx, msg Message) *reducer.Error {
	mu.Lock()
	h, ok := resultHandlers[msg.Kind]
	mu.Unlock()
	if !ok {
		return reducer.InternalError("mesh: no sender result handler registered for message kind %q", msg.Kind)
	}
	var errMsg *string
	if msg.HasErr {
		e := msg.Error
		errMsg = &e
	}
	return h(ctx, msg.Payload, errMsg)
}
