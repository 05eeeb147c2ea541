package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replan-systems/replan/pkg/types"
)

func TestDefaults(t *testing.T) {
	p := Defaults("WIDGET-A", "DC-EAST")

	assert.Equal(t, "WIDGET-A", p.Product)
	assert.Equal(t, "DC-EAST", p.Location)
	assert.Equal(t, types.SafetyStatistical, p.SafetyStockMethod)
	assert.Equal(t, DefaultServiceLevel, p.ServiceLevel)
	assert.Equal(t, types.LotForLot, p.LotSizingRule)
	assert.Equal(t, DefaultLeadTimeBuckets, p.LeadTimeBuckets)
	assert.True(t, p.Active)
	require.NoError(t, Validate(p))
}

func TestValidate(t *testing.T) {
	base := Defaults("P1", "L1")

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(base))
	})

	t.Run("missing pair", func(t *testing.T) {
		p := base
		p.Product = ""
		assert.Error(t, Validate(p))
	})

	t.Run("negative lead time", func(t *testing.T) {
		p := base
		p.LeadTimeBuckets = -1
		assert.Error(t, Validate(p))
	})

	t.Run("service level out of range", func(t *testing.T) {
		p := base
		p.ServiceLevel = 1.0
		assert.Error(t, Validate(p))
		p.ServiceLevel = 0
		assert.Error(t, Validate(p))
	})

	t.Run("unknown safety stock method", func(t *testing.T) {
		p := base
		p.SafetyStockMethod = "bogus"
		assert.Error(t, Validate(p))
	})

	t.Run("NaN safety stock param", func(t *testing.T) {
		p := base
		p.SafetyStockMethod = types.SafetyFixed
		p.SafetyStockParam = math.NaN()
		assert.Error(t, Validate(p))
	})

	t.Run("unknown lot-sizing rule", func(t *testing.T) {
		p := base
		p.LotSizingRule = "bogus"
		assert.Error(t, Validate(p))
	})

	t.Run("min exceeds max", func(t *testing.T) {
		p := base
		p.MinOrderQty = 100
		p.MaxOrderQty = 50
		assert.Error(t, Validate(p))
	})

	t.Run("negative lot quantity", func(t *testing.T) {
		p := base
		p.FixedLotQty = -5
		assert.Error(t, Validate(p))
	})
}

func TestSafetyStockFixed(t *testing.T) {
	p := Defaults("P1", "L1")
	p.SafetyStockMethod = types.SafetyFixed
	p.SafetyStockParam = 42

	ss := SafetyStock(p, types.DemandStats{Mean: 100, StdDev: 20})
	assert.Equal(t, 42.0, ss)
}

func TestSafetyStockStatistical(t *testing.T) {
	p := Defaults("P1", "L1")
	p.ServiceLevel = 0.95
	p.LeadTimeBuckets = 4

	// z(0.95) ~ 1.645, so ss ~ 1.645 * 20 * 2 = 65.8
	ss := SafetyStock(p, types.DemandStats{Mean: 100, StdDev: 20})
	assert.InDelta(t, 65.8, ss, 0.5)

	// higher service level means more safety stock
	p.ServiceLevel = 0.99
	assert.Greater(t, SafetyStock(p, types.DemandStats{Mean: 100, StdDev: 20}), ss)

	// zero variability means no safety stock
	assert.Equal(t, 0.0, SafetyStock(p, types.DemandStats{Mean: 100, StdDev: 0}))
}

func TestSafetyStockLeadTimeBased(t *testing.T) {
	p := Defaults("P1", "L1")
	p.SafetyStockMethod = types.SafetyLeadTimeBased
	p.SafetyStockParam = 0.5
	p.LeadTimeBuckets = 2

	ss := SafetyStock(p, types.DemandStats{Mean: 100})
	assert.Equal(t, 100.0, ss)
}

func TestSafetyStockPercentage(t *testing.T) {
	p := Defaults("P1", "L1")
	p.SafetyStockMethod = types.SafetyPercentage
	p.SafetyStockParam = 25

	ss := SafetyStock(p, types.DemandStats{Mean: 200})
	assert.Equal(t, 50.0, ss)
}

func TestSafetyStockNeverNegative(t *testing.T) {
	p := Defaults("P1", "L1")
	p.SafetyStockMethod = types.SafetyLeadTimeBased
	p.SafetyStockParam = 1

	ss := SafetyStock(p, types.DemandStats{Mean: -50})
	assert.Equal(t, 0.0, ss)
}

func TestReorderPoint(t *testing.T) {
	p := Defaults("P1", "L1")
	p.SafetyStockMethod = types.SafetyFixed
	p.SafetyStockParam = 30
	p.LeadTimeBuckets = 3

	rp := ReorderPoint(p, types.DemandStats{Mean: 100})
	assert.Equal(t, 330.0, rp)
}

func TestZScoreMonotonic(t *testing.T) {
	assert.Equal(t, 0.0, zScore(0.5))
	assert.InDelta(t, 1.2816, zScore(0.90), 0.01)
	assert.InDelta(t, 1.6449, zScore(0.95), 0.01)
	assert.InDelta(t, 2.3263, zScore(0.99), 0.01)
	assert.Greater(t, zScore(0.999), zScore(0.99))
}
