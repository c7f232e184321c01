package worldconfig

import (
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// configKey is the Config singleton's fixed primary key.
var configKey = []byte("config:0")

// Config is the singleton row every agent prelude reads
// (internal/scheduler.AgentPrelude takes the resolved value rather than
// this type directly, keeping scheduler a leaf package with no
// dependency on worldconfig).
type Config struct {
	Env           string
	AgentsEnabled bool
}

var ConfigTable = store.NewTable[Config]("config")

// Load returns the region's Config row, defaulting to AgentsEnabled=true
// if no row has been written yet (a freshly booted region runs agents by
// default; an operator must explicitly disable them).
func Load(tx store.Tx) (Config, *reducer.Error) {
	c, ok, err := ConfigTable.Get(tx, configKey)
	if err != nil {
		return Config{}, reducer.Wrap(err)
	}
	if !ok {
		return Config{Env: "production", AgentsEnabled: true}, nil
	}
	return c, nil
}

// SetAgentsEnabled implements the admin_set_agents_enabled reducer
// contract: toggling whether repeating agents perform work on their next
// tick (they still reschedule themselves either way, per §4.2).
func SetAgentsEnabled(ctx *reducer.Ctx, enabled bool) *reducer.Error {
	if err := ctx.RequireRole(reducer.RoleAdmin); err != nil {
		return err
	}
	c, err := Load(ctx.Tx)
	if err != nil {
		return err
	}
	c.AgentsEnabled = enabled
	return reducer.Wrap(ConfigTable.Put(ctx.Tx, configKey, c))
}
