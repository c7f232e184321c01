package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect or toggle whether repeating agents do work on this shard",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the shard's current agents_enabled flag",
		RunE: func(*cobra.Command, []string) error {
			return withReadTx(func(tx store.Tx) *reducer.Error {
				c, err := worldconfig.Load(tx)
				if err != nil {
					return err
				}
				fmt.Printf("agents_enabled: %v (env=%s)\n", c.AgentsEnabled, c.Env)
				return nil
			})
		},
	})
	cmd.AddCommand(setAgentsEnabledCmd("enable", true))
	cmd.AddCommand(setAgentsEnabledCmd("disable", false))
	return cmd
}

func setAgentsEnabledCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Set agents_enabled = %v via admin_set_agents_enabled", enabled),
		RunE: func(*cobra.Command, []string) error {
			return withWriteTx(func(tx store.Tx) *reducer.Error {
				return worldconfig.SetAgentsEnabled(adminCtx(tx), enabled)
			})
		},
	}
}
