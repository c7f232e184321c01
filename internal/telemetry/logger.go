package telemetry

import (
	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Production builds
// use zap's JSON encoder for log aggregation; development builds
// (env == "development") use the human-readable console encoder, mirroring
// zap's own NewProduction/NewDevelopment split.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// WithReducer returns a logger scoped to one reducer invocation's
// identifying fields, the structured-field convention every reducer
// runtime component uses when it logs an InternalError-class failure
// (§7: "Invariant violation ... Log at error level").
func WithReducer(base *zap.Logger, reducerName string, sender uint64, isServer bool) *zap.Logger {
	return base.With(
		zap.String("reducer", reducerName),
		zap.Uint64("sender", sender),
		zap.Bool("is_server", isServer),
	)
}
