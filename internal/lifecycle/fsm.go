// Package lifecycle implements the plan, recommendation, and exception
// state machines. All status changes are validated through these tables;
// no component writes a status ad hoc.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/replan-systems/replan/pkg/types"
)

// ErrInvalidTransition is wrapped by all transition validation failures.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition table: from -> allowed tos
var planTransitions = map[types.PlanStatus][]types.PlanStatus{
	types.PlanDraft:    {types.PlanRunning, types.PlanArchived},
	types.PlanRunning:  {types.PlanActive, types.PlanDraft},
	types.PlanActive:   {types.PlanRunning, types.PlanArchived},
	types.PlanArchived: {types.PlanDraft},
}

var approvalTransitions = map[types.ApprovalStatus][]types.ApprovalStatus{
	types.ApprovalPending:   {types.ApprovalApproved, types.ApprovalRejected, types.ApprovalModified},
	types.ApprovalModified:  {types.ApprovalApproved, types.ApprovalRejected, types.ApprovalConverted},
	types.ApprovalApproved:  {types.ApprovalConverted},
	types.ApprovalRejected:  {},
	types.ApprovalConverted: {},
}

var resolutionTransitions = map[types.ResolutionStatus][]types.ResolutionStatus{
	types.ResolutionOpen:       {types.ResolutionInProgress, types.ResolutionResolved, types.ResolutionIgnored},
	types.ResolutionInProgress: {types.ResolutionResolved, types.ResolutionIgnored},
	types.ResolutionResolved:   {},
	types.ResolutionIgnored:    {},
}

// CanTransitionPlan checks if transitioning a plan between two statuses is valid.
func CanTransitionPlan(from, to types.PlanStatus) bool {
	return contains(planTransitions[from], to)
}

// TransitionPlan validates a plan status transition.
func TransitionPlan(from, to types.PlanStatus) error {
	if !CanTransitionPlan(from, to) {
		return fmt.Errorf("%w: plan %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// TransitionApproval validates a recommendation approval transition.
func TransitionApproval(from, to types.ApprovalStatus) error {
	if !contains(approvalTransitions[from], to) {
		return fmt.Errorf("%w: recommendation %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// TransitionResolution validates an exception resolution transition.
func TransitionResolution(from, to types.ResolutionStatus) error {
	if !contains(resolutionTransitions[from], to) {
		return fmt.Errorf("%w: exception %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminalApproval returns true if no further approval transitions exist.
func IsTerminalApproval(status types.ApprovalStatus) bool {
	return len(approvalTransitions[status]) == 0
}

// IsTerminalResolution returns true if no further resolution transitions exist.
func IsTerminalResolution(status types.ResolutionStatus) bool {
	return len(resolutionTransitions[status]) == 0
}

func contains[T comparable](xs []T, want T) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
