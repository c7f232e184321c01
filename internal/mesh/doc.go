// Package mesh implements §4.5's inter-shard message fabric: a
// transactional outbox on the sender, a per-destination inbox the relay
// (external to this package, per §4.5 point 2) delivers into, a
// process-inbox reducer that runs each message as the synthetic server
// identity, and the sender-side compensation dispatch that runs when a
// destination reports a business-logical failure.
//
// Every message variant is registered exactly once, by the package that
// owns its semantics (claim, session, entity) calling RegisterHandler and
// RegisterSenderResultHandler from an init() function — mirroring the
// exhaustiveness-checked dispatch §9's design notes recommend ("a new
// variant cannot be added without wiring a handler on each relevant
// shard"), expressed in Go as a runtime registry rather than a
// compile-time sum-type check the language doesn't have: registering a
// Kind twice panics, and a message whose Kind has no handler gets an
// error result instead of being run.
package mesh
