package types

// PlanStatus represents the lifecycle state of a plan.
type PlanStatus string

// PlanStatus values represent the lifecycle states of a plan.
const (
	PlanDraft    PlanStatus = "draft"
	PlanRunning  PlanStatus = "running"
	PlanActive   PlanStatus = "active"
	PlanArchived PlanStatus = "archived"
)

// BucketGranularity is the width of one planning time bucket.
type BucketGranularity string

// BucketGranularity values enumerate the supported bucket widths.
const (
	BucketDay   BucketGranularity = "day"
	BucketWeek  BucketGranularity = "week"
	BucketMonth BucketGranularity = "month"
)

// SafetyStockMethod selects how an item's safety stock is computed.
type SafetyStockMethod string

// SafetyStockMethod values enumerate the supported safety stock methods.
const (
	SafetyStatistical   SafetyStockMethod = "statistical"
	SafetyFixed         SafetyStockMethod = "fixed"
	SafetyLeadTimeBased SafetyStockMethod = "lead_time_based"
	SafetyPercentage    SafetyStockMethod = "percentage"
)

// LotSizingRule converts a raw net requirement into an order quantity.
type LotSizingRule string

// LotSizingRule values enumerate the supported lot-sizing rules.
const (
	LotForLot        LotSizingRule = "lot_for_lot"
	LotFixedQuantity LotSizingRule = "fixed_quantity"
	LotMinMax        LotSizingRule = "min_max"
	LotEOQ           LotSizingRule = "economic_order_quantity"
	LotPeriodsSupply LotSizingRule = "periods_of_supply"
)

// ExceptionType classifies an inventory exception raised for a bucket.
type ExceptionType string

// ExceptionType values enumerate the detectable exception conditions.
const (
	ExceptionStockout         ExceptionType = "stockout"
	ExceptionBelowSafetyStock ExceptionType = "below_safety_stock"
	ExceptionExcessInventory  ExceptionType = "excess_inventory"
)

// Severity ranks how urgently an exception needs planner attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ApprovalStatus is the planner-facing lifecycle of a purchase recommendation.
type ApprovalStatus string

// ApprovalStatus values enumerate the recommendation approval states.
const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalModified  ApprovalStatus = "modified"
	ApprovalConverted ApprovalStatus = "converted"
)

// ResolutionStatus is the planner-facing lifecycle of an exception.
type ResolutionStatus string

// ResolutionStatus values enumerate the exception resolution states.
const (
	ResolutionOpen       ResolutionStatus = "open"
	ResolutionInProgress ResolutionStatus = "in_progress"
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionIgnored    ResolutionStatus = "ignored"
)

// RunOutcome summarizes how a plan run finished.
type RunOutcome string

const (
	RunCompleted RunOutcome = "COMPLETED"
	RunFailed    RunOutcome = "FAILED"
	RunCancelled RunOutcome = "CANCELLED"
)

// AlertType defines the alert sink type.
type AlertType string

// AlertType values enumerate the supported alert sink backends.
const (
	AlertConsole AlertType = "console"
	AlertWebhook AlertType = "webhook"
	AlertFile    AlertType = "file"
)

// AlertLevel ranks an alert's urgency.
type AlertLevel string

const (
	AlertLevelError   AlertLevel = "error"
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelInfo    AlertLevel = "info"
)

// EventKind classifies the type of audit event.
type EventKind string

// EventKind values enumerate the categories of recorded events.
const (
	EventRunStarted            EventKind = "RUN_STARTED"
	EventRunCompleted          EventKind = "RUN_COMPLETED"
	EventRunFailed             EventKind = "RUN_FAILED"
	EventRunCancelled          EventKind = "RUN_CANCELLED"
	EventPairSkipped           EventKind = "PAIR_SKIPPED"
	EventRunPromoted           EventKind = "RUN_PROMOTED"
	EventRecommendationUpdated EventKind = "RECOMMENDATION_UPDATED"
	EventExceptionUpdated      EventKind = "EXCEPTION_UPDATED"
	EventRunArchived           EventKind = "RUN_ARCHIVED"
)
