// Package exception scans completed trajectories for conditions needing
// planner attention.
package exception

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/replan-systems/replan/pkg/types"
)

// Excess inventory fires above three times safety stock; the reported excess
// is measured against two times safety stock.
const (
	excessTriggerFactor = 3.0
	excessBasisFactor   = 2.0
)

// Detect raises at most one exception per bucket, first match wins:
// stockout dominates (immediate customer impact), then below-safety-stock,
// then excess inventory. The three predicates are mutually exclusive by
// construction.
func Detect(trajectory []types.TrajectoryBucket) []types.Exception {
	var out []types.Exception
	now := time.Now()

	for _, b := range trajectory {
		var (
			excType  types.ExceptionType
			severity types.Severity
			quantity float64
		)

		switch {
		case b.ProjectedAvailable < 0:
			excType = types.ExceptionStockout
			severity = types.SeverityCritical
			quantity = -b.ProjectedAvailable
		case b.ProjectedAvailable < b.SafetyStock:
			excType = types.ExceptionBelowSafetyStock
			severity = types.SeverityHigh
			quantity = b.SafetyStock - b.ProjectedAvailable
		case b.SafetyStock > 0 && b.ProjectedAvailable > excessTriggerFactor*b.SafetyStock:
			excType = types.ExceptionExcessInventory
			severity = types.SeverityLow
			quantity = b.ProjectedAvailable - excessBasisFactor*b.SafetyStock
		default:
			continue
		}

		out = append(out, types.Exception{
			ID:               ulid.Make().String(),
			PlanID:           b.PlanID,
			RunID:            b.RunID,
			Product:          b.Product,
			Location:         b.Location,
			BucketIndex:      b.Index,
			Type:             excType,
			Severity:         severity,
			Quantity:         quantity,
			ResolutionStatus: types.ResolutionOpen,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}
	return out
}
