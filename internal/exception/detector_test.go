package exception

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replan-systems/replan/pkg/types"
)

func bucket(index int, projected, safetyStock float64) types.TrajectoryBucket {
	return types.TrajectoryBucket{
		PlanID:             "plan-1",
		RunID:              "run-1",
		Product:            "P1",
		Location:           "L1",
		Index:              index,
		ProjectedAvailable: projected,
		SafetyStock:        safetyStock,
	}
}

func TestDetectStockout(t *testing.T) {
	excs := Detect([]types.TrajectoryBucket{bucket(0, -35, 10)})

	require.Len(t, excs, 1)
	assert.Equal(t, types.ExceptionStockout, excs[0].Type)
	assert.Equal(t, types.SeverityCritical, excs[0].Severity)
	assert.Equal(t, 35.0, excs[0].Quantity)
	assert.Equal(t, types.ResolutionOpen, excs[0].ResolutionStatus)
	assert.Equal(t, 0, excs[0].BucketIndex)
	assert.NotEmpty(t, excs[0].ID)
}

func TestDetectBelowSafetyStock(t *testing.T) {
	excs := Detect([]types.TrajectoryBucket{bucket(2, 15, 40)})

	require.Len(t, excs, 1)
	assert.Equal(t, types.ExceptionBelowSafetyStock, excs[0].Type)
	assert.Equal(t, types.SeverityHigh, excs[0].Severity)
	assert.Equal(t, 25.0, excs[0].Quantity)
}

func TestDetectExcessInventory(t *testing.T) {
	// trigger is 3x safety stock, reported excess compares against 2x
	excs := Detect([]types.TrajectoryBucket{bucket(1, 350, 100)})

	require.Len(t, excs, 1)
	assert.Equal(t, types.ExceptionExcessInventory, excs[0].Type)
	assert.Equal(t, types.SeverityLow, excs[0].Severity)
	assert.Equal(t, 150.0, excs[0].Quantity)
}

func TestDetectExcessThreshold(t *testing.T) {
	// exactly 3x safety stock does not fire
	assert.Empty(t, Detect([]types.TrajectoryBucket{bucket(0, 300, 100)}))

	// zero safety stock never reports excess
	assert.Empty(t, Detect([]types.TrajectoryBucket{bucket(0, 1000, 0)}))
}

func TestDetectPrecedence(t *testing.T) {
	// a negative position below safety stock is a stockout, not both
	excs := Detect([]types.TrajectoryBucket{bucket(0, -5, 40)})
	require.Len(t, excs, 1)
	assert.Equal(t, types.ExceptionStockout, excs[0].Type)
}

func TestDetectHealthyBuckets(t *testing.T) {
	assert.Empty(t, Detect([]types.TrajectoryBucket{
		bucket(0, 50, 40),
		bucket(1, 40, 40),
		bucket(2, 120, 40), // exactly 3x
	}))
}

func TestDetectOnePerBucket(t *testing.T) {
	excs := Detect([]types.TrajectoryBucket{
		bucket(0, -10, 20),
		bucket(1, 5, 20),
		bucket(2, 100, 20),
		bucket(3, 30, 20),
	})

	require.Len(t, excs, 3)
	assert.Equal(t, types.ExceptionStockout, excs[0].Type)
	assert.Equal(t, types.ExceptionBelowSafetyStock, excs[1].Type)
	assert.Equal(t, types.ExceptionExcessInventory, excs[2].Type)
}
