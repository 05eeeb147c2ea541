package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/replan-systems/replan/internal/config"
	"github.com/replan-systems/replan/pkg/types"
)

// NewAddPlanCmd creates the add-plan command.
func NewAddPlanCmd() *cobra.Command {
	var (
		buckets     int
		granularity string
		cadence     int
	)

	cmd := &cobra.Command{
		Use:   "add-plan [name]",
		Short: "Register a new plan in draft status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddPlan(args[0], buckets, granularity, cadence)
		},
	}

	cmd.Flags().IntVar(&buckets, "buckets", 12, "Number of horizon buckets")
	cmd.Flags().StringVar(&granularity, "granularity", "week", "Bucket granularity: day, week, or month")
	cmd.Flags().IntVar(&cadence, "cadence", 7, "Days between runs")
	return cmd
}

func runAddPlan(name string, buckets int, granularity string, cadence int) error {
	if buckets <= 0 {
		return fmt.Errorf("buckets must be positive")
	}
	g := types.BucketGranularity(granularity)
	switch g {
	case types.BucketDay, types.BucketWeek, types.BucketMonth:
	default:
		return fmt.Errorf("unknown granularity %q", granularity)
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	prov, _, _, cleanup, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	now := time.Now()
	plan := types.Plan{
		ID:             ulid.Make().String(),
		Name:           name,
		HorizonBuckets: buckets,
		Granularity:    g,
		Status:         types.PlanDraft,
		CadenceDays:    cadence,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := prov.PutPlan(ctx, plan); err != nil {
		return fmt.Errorf("storing plan: %w", err)
	}

	color.Green("Created plan %s (%s)", plan.ID, plan.Name)
	return nil
}
