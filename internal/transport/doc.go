// Package transport provides the JSON-over-HTTP request/response helpers
// the region and global server binaries, including their mesh relays, use
// to talk to one another. It generalizes the teacher's
// internal/cluster.PostJSON/GetJSON pair — the same request/response
// shape, lifted out from under the cluster-specific NodeInfo/
// RegisterRequest types so the relays can send inter-shard envelopes
// without cluster-specific types.
package transport
