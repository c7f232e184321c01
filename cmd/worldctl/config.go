package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the shard's Config singleton and simulation Parameters",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the shard's Config and Parameters rows as JSON",
		RunE: func(*cobra.Command, []string) error {
			return withReadTx(func(tx store.Tx) *reducer.Error {
				c, err := worldconfig.Load(tx)
				if err != nil {
					return err
				}
				p, perr := worldconfig.LoadParameters(tx)
				if perr != nil {
					return perr
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return reducer.Wrap(enc.Encode(map[string]any{"config": c, "parameters": p}))
			})
		},
	})
	return cmd
}
