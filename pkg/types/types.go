// Package types defines the public domain types for the Replan MRP/DRP engine.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pair identifies one (product, stocking location) planning unit.
type Pair struct {
	Product  string `json:"product"`
	Location string `json:"location"`
}

// String returns the canonical "product@location" form used in keys and logs.
func (p Pair) String() string {
	return p.Product + "@" + p.Location
}

// Plan is a planning run definition over a rolling horizon.
type Plan struct {
	ID             string                 `json:"id" yaml:"id"`
	Name           string                 `json:"name" yaml:"name"`
	HorizonBuckets int                    `json:"horizonBuckets" yaml:"horizonBuckets"`
	Granularity    BucketGranularity      `json:"granularity" yaml:"granularity"`
	Status         PlanStatus             `json:"status" yaml:"-"`
	CurrentRunID   string                 `json:"currentRunId,omitempty" yaml:"-"`
	CadenceDays    int                    `json:"cadenceDays,omitempty" yaml:"cadenceDays,omitempty"`
	LastRunAt      *time.Time             `json:"lastRunAt,omitempty" yaml:"-"`
	NextRunAt      *time.Time             `json:"nextRunAt,omitempty" yaml:"-"`
	Params         map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	CreatedAt      time.Time              `json:"createdAt" yaml:"-"`
	UpdatedAt      time.Time              `json:"updatedAt" yaml:"-"`
}

// Horizon describes the bucket grid a plan projects over.
type Horizon struct {
	Start       time.Time         `json:"start"`
	Buckets     int               `json:"buckets"`
	Granularity BucketGranularity `json:"granularity"`
}

// BucketStart returns the start time of bucket i.
func (h Horizon) BucketStart(i int) time.Time {
	switch h.Granularity {
	case BucketWeek:
		return h.Start.AddDate(0, 0, 7*i)
	case BucketMonth:
		return h.Start.AddDate(0, i, 0)
	default:
		return h.Start.AddDate(0, 0, i)
	}
}

// BucketEnd returns the exclusive end time of bucket i.
func (h Horizon) BucketEnd(i int) time.Time {
	return h.BucketStart(i + 1)
}

// BucketDuration returns the nominal width of one bucket. Months use 30 days.
func (h Horizon) BucketDuration() time.Duration {
	switch h.Granularity {
	case BucketWeek:
		return 7 * 24 * time.Hour
	case BucketMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ItemPolicy holds the per-(product, location) planning parameters.
// Policies are immutable during a single run.
type ItemPolicy struct {
	Product  string `json:"product" yaml:"product"`
	Location string `json:"location" yaml:"location"`

	SafetyStockMethod SafetyStockMethod `json:"safetyStockMethod" yaml:"safetyStockMethod"`
	SafetyStockParam  float64           `json:"safetyStockParam,omitempty" yaml:"safetyStockParam,omitempty"`
	ServiceLevel      float64           `json:"serviceLevel,omitempty" yaml:"serviceLevel,omitempty"`

	LotSizingRule   LotSizingRule `json:"lotSizingRule" yaml:"lotSizingRule"`
	FixedLotQty     float64       `json:"fixedLotQty,omitempty" yaml:"fixedLotQty,omitempty"`
	EOQ             float64       `json:"eoq,omitempty" yaml:"eoq,omitempty"`
	PeriodsOfSupply int           `json:"periodsOfSupply,omitempty" yaml:"periodsOfSupply,omitempty"`

	MinOrderQty   float64 `json:"minOrderQty,omitempty" yaml:"minOrderQty,omitempty"`
	MaxOrderQty   float64 `json:"maxOrderQty,omitempty" yaml:"maxOrderQty,omitempty"`
	OrderMultiple float64 `json:"orderMultiple,omitempty" yaml:"orderMultiple,omitempty"`

	LeadTimeBuckets int `json:"leadTimeBuckets" yaml:"leadTimeBuckets"`
	PlanningFence   int `json:"planningFence,omitempty" yaml:"planningFence,omitempty"`
	DemandFence     int `json:"demandFence,omitempty" yaml:"demandFence,omitempty"`

	Supplier          string          `json:"supplier,omitempty" yaml:"supplier,omitempty"`
	UnitCost          decimal.Decimal `json:"unitCost" yaml:"unitCost"`
	OrderCost         float64         `json:"orderCost,omitempty" yaml:"orderCost,omitempty"`
	CarryingCostRate  float64         `json:"carryingCostRate,omitempty" yaml:"carryingCostRate,omitempty"`
	ApprovalThreshold decimal.Decimal `json:"approvalThreshold" yaml:"approvalThreshold"`

	ABCClass string `json:"abcClass,omitempty" yaml:"abcClass,omitempty"`
	XYZClass string `json:"xyzClass,omitempty" yaml:"xyzClass,omitempty"`
	Active   bool   `json:"active" yaml:"active"`
}

// Stock is a point-in-time inventory snapshot for one pair.
type Stock struct {
	OnHand    float64 `json:"onHand"`
	Available float64 `json:"available"`
	Committed float64 `json:"committed"`
}

// DemandStats summarizes per-bucket demand for safety stock computation.
type DemandStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// TrajectoryBucket is one bucket of a projected inventory trajectory.
// Beginning inventory of bucket i+1 always equals ProjectedAvailable +
// PlannedOrderReceipt of bucket i.
type TrajectoryBucket struct {
	PlanID   string `json:"planId"`
	RunID    string `json:"runId"`
	Product  string `json:"product"`
	Location string `json:"location"`
	Index    int    `json:"index"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	BeginningInventory  float64 `json:"beginningInventory"`
	GrossRequirements   float64 `json:"grossRequirements"`
	ScheduledReceipts   float64 `json:"scheduledReceipts"`
	ProjectedAvailable  float64 `json:"projectedAvailable"`
	NetRequirements     float64 `json:"netRequirements"`
	PlannedOrderReceipt float64 `json:"plannedOrderReceipt"`
	PlannedOrderRelease float64 `json:"plannedOrderRelease"`
	BoundaryRelease     bool    `json:"boundaryRelease,omitempty"`
	SafetyStock         float64 `json:"safetyStock"`
	ReorderPoint        float64 `json:"reorderPoint"`
}

// Recommendation is a supplier-facing purchase recommendation derived from a
// bucket with a positive planned order receipt.
type Recommendation struct {
	ID          string `json:"id"`
	PlanID      string `json:"planId"`
	RunID       string `json:"runId"`
	Product     string `json:"product"`
	Location    string `json:"location"`
	BucketIndex int    `json:"bucketIndex"`

	Supplier       string          `json:"supplier,omitempty"`
	RecommendedQty float64         `json:"recommendedQty"`
	FinalOrderQty  float64         `json:"finalOrderQty"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	TotalValue     decimal.Decimal `json:"totalValue"`

	OrderDate         time.Time      `json:"orderDate"`
	DeliveryDate      time.Time      `json:"deliveryDate"`
	PastDue           bool           `json:"pastDue,omitempty"`
	ThresholdExceeded bool           `json:"thresholdExceeded"`
	ApprovalStatus    ApprovalStatus `json:"approvalStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Exception flags a trajectory bucket that needs planner attention.
type Exception struct {
	ID          string `json:"id"`
	PlanID      string `json:"planId"`
	RunID       string `json:"runId"`
	Product     string `json:"product"`
	Location    string `json:"location"`
	BucketIndex int    `json:"bucketIndex"`

	Type     ExceptionType `json:"type"`
	Severity Severity      `json:"severity"`
	// Quantity is the shortage for stockout/below_safety_stock and the
	// excess for excess_inventory.
	Quantity float64 `json:"quantity"`

	ResolutionStatus ResolutionStatus `json:"resolutionStatus"`
	ResolutionNotes  string           `json:"resolutionNotes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PairError records a pair whose netting was skipped during a run.
type PairError struct {
	Pair   Pair   `json:"pair"`
	Reason string `json:"reason"`
}

// RunResult summarizes a completed plan run.
type RunResult struct {
	PlanID                 string      `json:"planId"`
	RunID                  string      `json:"runId"`
	Outcome                RunOutcome  `json:"outcome"`
	PairsPlanned           int         `json:"pairsPlanned"`
	PairsSkipped           int         `json:"pairsSkipped"`
	SkippedPairs           []PairError `json:"skippedPairs,omitempty"`
	ExceptionsCreated      int         `json:"exceptionsCreated"`
	RecommendationsCreated int         `json:"recommendationsCreated"`
	StartedAt              time.Time   `json:"startedAt"`
	FinishedAt             time.Time   `json:"finishedAt"`
}

// Alert represents an alert event to be dispatched.
type Alert struct {
	Level     AlertLevel             `json:"level"`
	PlanID    string                 `json:"planId,omitempty"`
	Product   string                 `json:"product,omitempty"`
	Location  string                 `json:"location,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Event is an append-only audit log entry recording what happened and when.
type Event struct {
	Kind      EventKind              `json:"kind"`
	PlanID    string                 `json:"planId"`
	RunID     string                 `json:"runId,omitempty"`
	Product   string                 `json:"product,omitempty"`
	Location  string                 `json:"location,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
