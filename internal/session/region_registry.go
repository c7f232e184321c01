package session

import (
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// RegionConnectionInfo is one region shard's address as known to the
// global shard, the table form of the teacher coordinator's in-memory
// NodeInfo registry (cmd/coordinator's handleRegister/handleListNodes):
// where the teacher kept nodes in a sync.RWMutex-guarded slice, every
// other cross-region singleton in this codebase is a transactional table
// row, so region registration follows that same shape instead of
// reintroducing an in-process map.
type RegionConnectionInfo struct {
	RegionID     uint8
	Addr         string
	RegisteredAt time.Time
}

var RegionConnectionTable = store.NewTable[RegionConnectionInfo]("region_connection_info")

func regionKey(id uint8) []byte {
	return []byte(fmt.Sprintf("region:%03d", id))
}

// RegisterRegion records (or refreshes) a region shard's address,
// overwriting any prior registration for the same RegionID. Called by
// global-server's /register handler when a region-server announces
// itself at boot.
func RegisterRegion(tx store.Tx, regionID uint8, addr string, now time.Time) *reducer.Error {
	return reducer.Wrap(RegionConnectionTable.Put(tx, regionKey(regionID), RegionConnectionInfo{
		RegionID: regionID, Addr: addr, RegisteredAt: now,
	}))
}

// ListRegions returns every registered region's connection info, used by
// global-server's /regions endpoint and by worldctl to discover where to
// dial a given region's admin surface.
func ListRegions(tx store.Tx) ([]RegionConnectionInfo, *reducer.Error) {
	var out []RegionConnectionInfo
	err := RegionConnectionTable.Iterate(tx, func(_ []byte, r RegionConnectionInfo) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, reducer.Wrap(err)
	}
	return out, nil
}
