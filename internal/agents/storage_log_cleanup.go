package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/worldconfig"
)

// StorageLogCleanupReducer is the bound reducer name for the daily
// storage-action-log cleanup tick.
const StorageLogCleanupReducer = "storage_log_cleanup"

// StorageLogEntry is one inventory/container action-log row.
type StorageLogEntry struct {
	LogID     uint64
	ActorID   eid.ID
	Timestamp time.Time
}

var StorageLogTable = store.NewTable[StorageLogEntry]("storage_log_state")

func storageLogKey(id uint64) []byte { return keyOf("storagelog", id) }

// AppendStorageLog appends a log row.
func AppendStorageLog(tx store.Tx, actor eid.ID, at time.Time) *reducer.Error {
	id, err := StorageLogTable.NextSequence(tx)
	if err != nil {
		return reducer.Wrap(err)
	}
	return reducer.Wrap(StorageLogTable.Put(tx, storageLogKey(id), StorageLogEntry{LogID: id, ActorID: actor, Timestamp: at}))
}

// StorageLogCleanupTick implements storage_log_cleanup: delete rows
// older than StorageLogRetentionDays, but only from three specific daily
// bucket keys (now-14d-1d, now-14d-2d, now-14d-3d) rather than a
// half-open range sweep. Open Question decision E.1: kept as-is — if the
// agent is down longer than four days, older buckets linger: each tick
// derives its three buckets from ctx.Now, so a skipped bucket is never
// revisited by this agent.
func StorageLogCleanupTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool, params worldconfig.Parameters) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		base := ctx.Now.Add(-time.Duration(params.StorageLogRetentionDays) * 24 * time.Hour)
		buckets := []time.Time{
			base.Add(-24 * time.Hour),
			base.Add(-48 * time.Hour),
			base.Add(-72 * time.Hour),
		}
		var stale [][]byte
		if iterErr := StorageLogTable.Iterate(ctx.Tx, func(key []byte, row StorageLogEntry) error {
			for _, bucket := range buckets {
				if sameDay(row.Timestamp, bucket) {
					stale = append(stale, append([]byte(nil), key...))
					return nil
				}
			}
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, key := range stale {
			if delErr := StorageLogTable.Delete(ctx.Tx, key); delErr != nil {
				return reducer.Wrap(delErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(24*time.Hour))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
