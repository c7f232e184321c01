package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
)

// farHorizon is used in place of "now" to list every pending timer for a
// reducer regardless of whether it is currently due, since
// scheduler.DueTimers has no separate "list all" entry point — every
// timer in this codebase is due before some sufficiently far instant.
const farHorizon = 100 * 365 * 24 * time.Hour

func newTimersCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "timers",
		Short: "Tail the scheduler's pending timer rows",
	}

	list := &cobra.Command{
		Use:   "list <reducer-name>",
		Short: "List every pending timer bound to a reducer",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reducerName := args[0]
			return withReadTx(func(tx store.Tx) *reducer.Error {
				due, err := scheduler.DueTimers(tx, reducerName, time.Now().UTC().Add(farHorizon), limit)
				if err != nil {
					return err
				}
				for _, t := range due {
					fmt.Printf("%d\t%s\t%s\n", t.ScheduledID, t.Reducer, t.ScheduledAt.Format(time.RFC3339))
				}
				fmt.Printf("%d timer(s)\n", len(due))
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "cap the number of rows printed (0 = unbounded)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "count <reducer-name>",
		Short: "Print how many pending timers are bound to a reducer (the §4.2 concurrent-agent check)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reducerName := args[0]
			return withReadTx(func(tx store.Tx) *reducer.Error {
				n, err := scheduler.CountPending(tx, reducerName)
				if err != nil {
					return err
				}
				fmt.Println(n)
				if n > 1 {
					fmt.Fprintf(os.Stderr, "warning: %d concurrent timers bound to %q\n", n, reducerName)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <scheduled-id>",
		Short: "Cancel a pending timer by its ScheduledID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var id uint64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid scheduled id %q: %w", args[0], err)
			}
			return withWriteTx(func(tx store.Tx) *reducer.Error {
				return scheduler.Cancel(tx, id)
			})
		},
	})

	return cmd
}
