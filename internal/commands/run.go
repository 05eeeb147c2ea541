package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/replan-systems/replan/internal/config"
	"github.com/replan-systems/replan/internal/planner"
	"github.com/replan-systems/replan/pkg/types"
)

const runTimeout = 10 * time.Minute

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "run [plan-id]",
		Short: "Execute a planning run for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(args[0], pairs)
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "pair", nil,
		"Restrict the run to product@location pairs (repeatable)")
	return cmd
}

func runPlan(planID string, pairArgs []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	scope, err := parseScope(pairArgs)
	if err != nil {
		return err
	}

	_, orch, _, cleanup, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	color.Cyan("Running plan %s...", planID)

	result, err := orch.Run(ctx, planID, scope)
	if err != nil {
		if result != nil {
			color.Red("Run %s %s: %v", result.RunID, strings.ToLower(string(result.Outcome)), err)
		}
		return fmt.Errorf("run failed: %w", err)
	}

	printRunResult(result)
	return nil
}

func parseScope(pairArgs []string) (planner.Scope, error) {
	var scope planner.Scope
	for _, arg := range pairArgs {
		product, location, ok := strings.Cut(arg, "@")
		if !ok || product == "" || location == "" {
			return planner.Scope{}, fmt.Errorf("invalid pair %q, expected product@location", arg)
		}
		scope.Pairs = append(scope.Pairs, types.Pair{Product: product, Location: location})
	}
	return scope, nil
}

func printRunResult(result *types.RunResult) {
	color.Green("Run %s completed in %s", result.RunID,
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Printf("  Pairs planned:   %d\n", result.PairsPlanned)
	fmt.Printf("  Pairs skipped:   %d\n", result.PairsSkipped)
	fmt.Printf("  Exceptions:      %d\n", result.ExceptionsCreated)
	fmt.Printf("  Recommendations: %d\n", result.RecommendationsCreated)

	for _, skip := range result.SkippedPairs {
		color.Yellow("  skipped %s: %s", skip.Pair, skip.Reason)
	}
}
