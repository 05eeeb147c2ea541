// Package lotsize converts raw net requirements into order quantities.
// The rule set is closed: dispatch is a switch over the policy's
// LotSizingRule, not open-ended polymorphism.
package lotsize

import (
	"fmt"
	"math"

	"github.com/replan-systems/replan/pkg/types"
)

// Input carries the bucket context a lot-sizing rule may need beyond the
// raw net requirement.
type Input struct {
	NetRequirement     float64
	ProjectedAvailable float64
	// ForwardDemand holds gross requirements from the current bucket onward,
	// used by the periods_of_supply rule.
	ForwardDemand []float64
}

// Resolve applies the policy's lot-sizing rule to a positive net requirement
// and returns the planned order quantity. The raw rule result is floored up
// to the minimum order quantity, rounded up to the order multiple, and capped
// at the maximum order quantity, in that order, so the cap always wins. A
// capped-below-requirement quantity is returned as-is; the shortfall carries
// into the next bucket through the trajectory continuity equation.
func Resolve(in Input, p types.ItemPolicy) (float64, error) {
	if in.NetRequirement <= 0 {
		return 0, nil
	}
	if math.IsNaN(in.NetRequirement) || math.IsInf(in.NetRequirement, 0) {
		return 0, fmt.Errorf("net requirement is not a finite quantity")
	}

	var qty float64
	switch p.LotSizingRule {
	case types.LotForLot:
		qty = in.NetRequirement

	case types.LotFixedQuantity:
		if p.FixedLotQty <= 0 {
			return 0, fmt.Errorf("fixed_quantity rule requires fixedLotQty > 0")
		}
		// Whole lots only, repeated as needed to cover the requirement.
		qty = math.Ceil(in.NetRequirement/p.FixedLotQty) * p.FixedLotQty

	case types.LotMinMax:
		if p.MaxOrderQty <= 0 {
			return 0, fmt.Errorf("min_max rule requires maxOrderQty > 0")
		}
		qty = p.MaxOrderQty - in.ProjectedAvailable
		if qty < in.NetRequirement {
			qty = in.NetRequirement
		}

	case types.LotEOQ:
		if p.EOQ <= 0 {
			return 0, fmt.Errorf("economic_order_quantity rule requires eoq > 0")
		}
		// The precomputed EOQ is ordered regardless of the exact shortfall;
		// it intentionally covers multiple future buckets.
		qty = p.EOQ

	case types.LotPeriodsSupply:
		if p.PeriodsOfSupply <= 0 {
			return 0, fmt.Errorf("periods_of_supply rule requires periodsOfSupply > 0")
		}
		n := p.PeriodsOfSupply
		if n > len(in.ForwardDemand) {
			n = len(in.ForwardDemand)
		}
		for _, d := range in.ForwardDemand[:n] {
			qty += d
		}
		if qty < in.NetRequirement {
			qty = in.NetRequirement
		}

	default:
		return 0, fmt.Errorf("unknown lot-sizing rule %q", p.LotSizingRule)
	}

	return clamp(qty, p), nil
}

// clamp applies MOQ, order multiple, and maximum order quantity, in that
// order. Capping at the maximum happens last and may undercut the other two.
func clamp(qty float64, p types.ItemPolicy) float64 {
	if qty <= 0 {
		return 0
	}
	if p.MinOrderQty > 0 && qty < p.MinOrderQty {
		qty = p.MinOrderQty
	}
	if p.OrderMultiple > 0 {
		qty = math.Ceil(qty/p.OrderMultiple) * p.OrderMultiple
	}
	if p.MaxOrderQty > 0 && qty > p.MaxOrderQty {
		qty = p.MaxOrderQty
	}
	return qty
}
