package agents

import (
	"time"

	"github.com/dreamware/worldshard/internal/claim"
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/scheduler"
	"github.com/dreamware/worldshard/internal/store"
)

// RentCollectorReducer is the bound reducer name for the daily
// rent-collection tick.
const RentCollectorReducer = "rent_collector"

// rentCollectionHour mirrors housingIncomeHour's status as an
// unspecified-in-spec configured hour.
const rentCollectionHour = 5 * time.Hour

// RentState is one tenancy: TenantEntityID owes DailyRent out of
// PaidRent accrued since the last collection.
type RentState struct {
	TenantEntityID eid.ID
	ClaimID        eid.ID
	DailyRent      int64
	PaidRent       int64
	Evicted        bool
	Defaulted      bool
}

var RentTable = store.NewTable[RentState]("rent_state")

func rentKey(id eid.ID) []byte { return []byte(id.String()) }

// PutRent seeds or replaces a tenancy's row.
func PutRent(tx store.Tx, r RentState) *reducer.Error {
	return reducer.Wrap(RentTable.Put(tx, rentKey(r.TenantEntityID), r))
}

// ScheduleInitialRentCollector arms the first daily tick.
func ScheduleInitialRentCollector(tx store.Tx, now time.Time) (uint64, *reducer.Error) {
	next, err := scheduler.NextDailyTick(now, rentCollectionHour)
	if err != nil {
		return 0, reducer.InternalError("agents: %v", err)
	}
	return scheduler.Schedule(tx, RentCollectorReducer, next, nil)
}

// RentCollectorTick implements rent_collector: for every non-evicted
// rent, if paid_rent >= daily_rent, subtract it, credit the claim
// treasury, and clear the defaulted flag; otherwise mark defaulted with
// no partial payment taken (Open Question decision E.3: kept all-or-
// nothing, per §9's note).
func RentCollectorTick(ctx *reducer.Ctx, scheduledID uint64, agentsEnabled bool) *reducer.Error {
	skip, err := scheduler.AgentPrelude(ctx, agentsEnabled)
	if err != nil {
		return err
	}
	if !skip {
		var rents []RentState
		if iterErr := RentTable.Iterate(ctx.Tx, func(_ []byte, row RentState) error {
			if !row.Evicted {
				rents = append(rents, row)
			}
			return nil
		}); iterErr != nil {
			return reducer.Wrap(iterErr)
		}
		for _, r := range rents {
			if r.PaidRent >= r.DailyRent {
				r.PaidRent -= r.DailyRent
				r.Defaulted = false
				if creditErr := claim.CreditTreasury(ctx.Tx, r.ClaimID, r.DailyRent); creditErr != nil {
					return creditErr
				}
			} else {
				r.Defaulted = true
			}
			if putErr := RentTable.Put(ctx.Tx, rentKey(r.TenantEntityID), r); putErr != nil {
				return reducer.Wrap(putErr)
			}
		}
	}
	return scheduler.Reschedule(ctx.Tx, scheduledID, ctx.Now.Add(24*time.Hour))
}
