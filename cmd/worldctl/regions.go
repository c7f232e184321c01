package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
)

// newRegionsCmd is only meaningful against a global shard's store, where
// RegionConnectionInfo rows actually accumulate; run against a region
// store it simply reports no regions.
func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List every region registered with this global shard",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print each region's id and advertised address",
		RunE: func(*cobra.Command, []string) error {
			return withReadTx(func(tx store.Tx) *reducer.Error {
				regions, err := session.ListRegions(tx)
				if err != nil {
					return err
				}
				for _, r := range regions {
					fmt.Printf("%d\t%s\t%s\n", r.RegionID, r.Addr, r.RegisteredAt.Format("2006-01-02T15:04:05Z"))
				}
				fmt.Printf("%d region(s)\n", len(regions))
				return nil
			})
		},
	})
	cmd.AddCommand(newSetSignInParamsCmd())
	return cmd
}

// newSetSignInParamsCmd writes a RegionSignInParameters row, the
// admission-control knobs ProcessQueue reads on every sign-in grace
// expiry — the operator-facing counterpart to region-server's dispatch
// loop calling session.LoadSignInParams on the other end.
func newSetSignInParamsCmd() *cobra.Command {
	var regionID uint8
	var maxSignedIn, maxQueue, queueTolerance int
	var gracePeriodSeconds int64
	var blocked bool

	cmd := &cobra.Command{
		Use:   "set-sign-in-params",
		Short: "Set a region's sign-in admission-control parameters",
		RunE: func(*cobra.Command, []string) error {
			return withWriteTx(func(tx store.Tx) *reducer.Error {
				return session.PutSignInParams(tx, session.RegionSignInParameters{
					RegionID:           regionID,
					IsBlocked:          blocked,
					MaxSignedIn:        maxSignedIn,
					MaxQueue:           maxQueue,
					QueueTolerance:     queueTolerance,
					GracePeriodSeconds: gracePeriodSeconds,
				})
			})
		},
	}
	cmd.Flags().Uint8Var(&regionID, "region", 0, "region index")
	cmd.Flags().IntVar(&maxSignedIn, "max-signed-in", 100, "concurrent signed-in player cap")
	cmd.Flags().IntVar(&maxQueue, "max-queue", 0, "maximum queue depth (0 = unbounded)")
	cmd.Flags().IntVar(&queueTolerance, "queue-tolerance", 0, "extra slack allowed before new connections queue")
	cmd.Flags().Int64Var(&gracePeriodSeconds, "grace-period-seconds", 60, "sign-in grace period before an admitted slot lapses")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "reject all new connections to this region")
	return cmd
}
