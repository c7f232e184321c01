// Package telemetry wires structured logging (go.uber.org/zap) and
// process metrics (github.com/prometheus/client_golang) for the server
// binaries: cmd/region-server's timer dispatch logs through WithReducer
// and records reducer and timer metrics, and both server binaries expose
// the registered collectors on a /metrics endpoint.
package telemetry
