// Package feeds defines the external data sources the planning run reads:
// inventory snapshots, demand forecasts, and open scheduled receipts. The
// engine only depends on the interfaces; implementations are static
// (in-memory, seedable from a data file) or HTTP-backed.
package feeds

import (
	"context"

	"github.com/replan-systems/replan/pkg/types"
)

// InventorySource provides the current stock position for a pair, read once
// at run start.
type InventorySource interface {
	CurrentStock(ctx context.Context, product, location string) (types.Stock, error)
}

// DemandSource provides per-bucket gross requirements and the demand
// statistics used for safety stock.
type DemandSource interface {
	Demand(ctx context.Context, product, location string, buckets int) ([]float64, error)
	Stats(ctx context.Context, product, location string) (types.DemandStats, error)
}

// ReceiptSource provides open purchase/transfer order quantities per bucket.
type ReceiptSource interface {
	ScheduledReceipts(ctx context.Context, product, location string, buckets int) ([]float64, error)
}

// Feeds bundles the three sources a run needs.
type Feeds struct {
	Inventory InventorySource
	Demand    DemandSource
	Receipts  ReceiptSource
}
