// Package netting projects per-pair inventory trajectories over the planning
// horizon. The atomic per-bucket netting arithmetic sits behind the Evaluator
// interface, so it can run in-process or be delegated to an external
// calculation service.
package netting

import (
	"context"
	"fmt"
	"math"
)

// EvalInput is the per-bucket input handed to a netting evaluator.
type EvalInput struct {
	Index              int     `json:"index"`
	BeginningInventory float64 `json:"beginningInventory"`
	GrossRequirements  float64 `json:"grossRequirements"`
	ScheduledReceipts  float64 `json:"scheduledReceipts"`
	SafetyStock        float64 `json:"safetyStock"`
}

// EvalOutput is the per-bucket result produced by a netting evaluator.
type EvalOutput struct {
	ProjectedAvailable float64 `json:"projectedAvailable"`
	NetRequirements    float64 `json:"netRequirements"`
}

// Evaluator performs the atomic per-bucket netting arithmetic.
type Evaluator interface {
	Evaluate(ctx context.Context, in EvalInput) (EvalOutput, error)
	Name() string
}

// Builtin is the in-process netting evaluator.
type Builtin struct{}

// Name returns the evaluator identifier.
func (Builtin) Name() string { return "builtin" }

// Evaluate nets one bucket: projected available is beginning inventory plus
// scheduled receipts minus gross requirements; net requirements is the
// shortfall against safety stock, floored at zero.
func (Builtin) Evaluate(_ context.Context, in EvalInput) (EvalOutput, error) {
	for name, v := range map[string]float64{
		"beginningInventory": in.BeginningInventory,
		"grossRequirements":  in.GrossRequirements,
		"scheduledReceipts":  in.ScheduledReceipts,
		"safetyStock":        in.SafetyStock,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return EvalOutput{}, fmt.Errorf("bucket %d: %s is not a finite quantity", in.Index, name)
		}
	}
	if in.GrossRequirements < 0 || in.ScheduledReceipts < 0 {
		return EvalOutput{}, fmt.Errorf("bucket %d: negative demand or receipts", in.Index)
	}

	projected := in.BeginningInventory + in.ScheduledReceipts - in.GrossRequirements
	net := in.SafetyStock - projected
	if net < 0 {
		net = 0
	}
	return EvalOutput{ProjectedAvailable: projected, NetRequirements: net}, nil
}
