// Package recommend converts planned order receipts into supplier-facing
// purchase recommendations.
package recommend

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/replan-systems/replan/pkg/types"
)

// Generate creates one pending recommendation per bucket with a positive
// planned order receipt. The order date is the receipt bucket's start offset
// backward by the policy lead time; an order date already in the past keeps
// the recommendation but marks it past-due. A recommendation whose total
// value exceeds the policy's approval threshold is flagged for explicit
// approval.
func Generate(trajectory []types.TrajectoryBucket, pol types.ItemPolicy, horizon types.Horizon, now time.Time) []types.Recommendation {
	leadTime := time.Duration(pol.LeadTimeBuckets) * horizon.BucketDuration()

	var out []types.Recommendation
	for _, b := range trajectory {
		if b.PlannedOrderReceipt <= 0 {
			continue
		}

		finalQty := decimal.NewFromFloat(b.PlannedOrderReceipt)
		totalValue := finalQty.Mul(pol.UnitCost)
		orderDate := b.StartDate.Add(-leadTime)

		out = append(out, types.Recommendation{
			ID:                ulid.Make().String(),
			PlanID:            b.PlanID,
			RunID:             b.RunID,
			Product:           b.Product,
			Location:          b.Location,
			BucketIndex:       b.Index,
			Supplier:          pol.Supplier,
			RecommendedQty:    b.NetRequirements,
			FinalOrderQty:     b.PlannedOrderReceipt,
			UnitCost:          pol.UnitCost,
			TotalValue:        totalValue,
			OrderDate:         orderDate,
			DeliveryDate:      b.StartDate,
			PastDue:           orderDate.Before(now),
			ThresholdExceeded: totalValue.GreaterThan(pol.ApprovalThreshold),
			ApprovalStatus:    types.ApprovalPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return out
}
