// Package policy implements the per-item planning parameter logic: system
// defaults for uncovered pairs, validation, and the safety stock and reorder
// point calculations consumed by the netting engine.
package policy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/replan-systems/replan/pkg/types"
)

// Default planning parameters for pairs without an explicit policy.
const (
	DefaultServiceLevel    = 0.95
	DefaultLeadTimeBuckets = 2
	DefaultCadenceDays     = 7
)

// DefaultApprovalThreshold is the order value above which a recommendation
// requires explicit approval, unless the policy overrides it.
var DefaultApprovalThreshold = decimal.NewFromInt(10000)

// Defaults returns the system-default policy for a pair that has no
// ItemPolicy record. Defaulted pairs are still planned.
func Defaults(product, location string) types.ItemPolicy {
	return types.ItemPolicy{
		Product:           product,
		Location:          location,
		SafetyStockMethod: types.SafetyStatistical,
		ServiceLevel:      DefaultServiceLevel,
		LotSizingRule:     types.LotForLot,
		LeadTimeBuckets:   DefaultLeadTimeBuckets,
		ApprovalThreshold: DefaultApprovalThreshold,
		Active:            true,
	}
}

// Validate rejects policies the netting engine cannot plan with. A failed
// validation is a pair-level error, not a run-level one.
func Validate(p types.ItemPolicy) error {
	if p.Product == "" || p.Location == "" {
		return fmt.Errorf("policy missing product or location")
	}
	if p.LeadTimeBuckets < 0 {
		return fmt.Errorf("policy %s: negative lead time %d", types.Pair{Product: p.Product, Location: p.Location}, p.LeadTimeBuckets)
	}
	switch p.SafetyStockMethod {
	case types.SafetyStatistical:
		if p.ServiceLevel <= 0 || p.ServiceLevel >= 1 {
			return fmt.Errorf("policy %s: service level %v outside (0,1)", types.Pair{Product: p.Product, Location: p.Location}, p.ServiceLevel)
		}
	case types.SafetyFixed, types.SafetyLeadTimeBased, types.SafetyPercentage:
		if p.SafetyStockParam < 0 || math.IsNaN(p.SafetyStockParam) {
			return fmt.Errorf("policy %s: invalid safety stock parameter %v", types.Pair{Product: p.Product, Location: p.Location}, p.SafetyStockParam)
		}
	default:
		return fmt.Errorf("policy %s: unknown safety stock method %q", types.Pair{Product: p.Product, Location: p.Location}, p.SafetyStockMethod)
	}
	switch p.LotSizingRule {
	case types.LotForLot, types.LotFixedQuantity, types.LotMinMax, types.LotEOQ, types.LotPeriodsSupply:
	default:
		return fmt.Errorf("policy %s: unknown lot-sizing rule %q", types.Pair{Product: p.Product, Location: p.Location}, p.LotSizingRule)
	}
	for name, v := range map[string]float64{
		"minOrderQty":   p.MinOrderQty,
		"maxOrderQty":   p.MaxOrderQty,
		"orderMultiple": p.OrderMultiple,
		"fixedLotQty":   p.FixedLotQty,
		"eoq":           p.EOQ,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("policy %s: invalid %s %v", types.Pair{Product: p.Product, Location: p.Location}, name, v)
		}
	}
	if p.MaxOrderQty > 0 && p.MinOrderQty > p.MaxOrderQty {
		return fmt.Errorf("policy %s: minOrderQty %v exceeds maxOrderQty %v", types.Pair{Product: p.Product, Location: p.Location}, p.MinOrderQty, p.MaxOrderQty)
	}
	return nil
}

// SafetyStock computes the safety stock quantity for a policy given the
// item's demand statistics.
func SafetyStock(p types.ItemPolicy, stats types.DemandStats) float64 {
	lt := float64(p.LeadTimeBuckets)
	var ss float64
	switch p.SafetyStockMethod {
	case types.SafetyFixed:
		ss = p.SafetyStockParam
	case types.SafetyLeadTimeBased:
		ss = stats.Mean * lt * p.SafetyStockParam
	case types.SafetyPercentage:
		ss = stats.Mean * p.SafetyStockParam / 100
	default: // statistical
		ss = zScore(p.ServiceLevel) * stats.StdDev * math.Sqrt(lt)
	}
	if ss < 0 || math.IsNaN(ss) {
		return 0
	}
	return ss
}

// ReorderPoint returns safety stock plus average demand during lead time.
func ReorderPoint(p types.ItemPolicy, stats types.DemandStats) float64 {
	return SafetyStock(p, stats) + stats.Mean*float64(p.LeadTimeBuckets)
}

// zScore returns the standard normal quantile for the given service level,
// using the Abramowitz & Stegun 26.2.23 rational approximation (error < 4.5e-4).
func zScore(serviceLevel float64) float64 {
	if serviceLevel <= 0.5 {
		return 0
	}
	if serviceLevel >= 1 {
		serviceLevel = 0.9999
	}
	t := math.Sqrt(-2 * math.Log(1-serviceLevel))
	num := 2.515517 + 0.802853*t + 0.010328*t*t
	den := 1 + 1.432788*t + 0.189269*t*t + 0.001308*t*t*t
	return t - num/den
}
