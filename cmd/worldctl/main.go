// Command worldctl is the operator CLI for inspecting and administering
// a region or global shard's bbolt store directly through four
// subcommands: agents (status, or toggling via admin_set_agents_enabled),
// timers (list, count, cancel), regions (list, set-sign-in-params) and
// config (show). It has no rebalance command and fires no cheat_*
// reducers. Built on spf13/cobra per SPEC_FULL.md §B, replacing the
// teacher's flag-less main() switch in cmd/coordinator and cmd/node.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var storePath string

func main() {
	root := &cobra.Command{
		Use:   "worldctl",
		Short: "Inspect and administer a worldshard region or global store",
	}
	root.PersistentFlags().StringVar(&storePath, "store", "region.db", "path to the shard's bbolt store file")

	root.AddCommand(newAgentsCmd())
	root.AddCommand(newTimersCmd())
	root.AddCommand(newRegionsCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
