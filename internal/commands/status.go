package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/replan-systems/replan/internal/config"
	"github.com/replan-systems/replan/pkg/types"
)

const statusTimeout = 30 * time.Second

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var events int

	cmd := &cobra.Command{
		Use:   "status [plan-id]",
		Short: "Show plan status, or all plans when no ID is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := ""
			if len(args) == 1 {
				planID = args[0]
			}
			return runStatus(planID, events)
		},
	}

	cmd.Flags().IntVar(&events, "events", 10, "Number of recent events to show")
	return cmd
}

func runStatus(planID string, eventLimit int) error {
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

	if planID == "" {
		plans, err := prov.ListPlans(ctx)
		if err != nil {
			return fmt.Errorf("listing plans: %w", err)
		}
		if len(plans) == 0 {
			fmt.Println("No plans registered.")
			return nil
		}
		for _, plan := range plans {
			printPlanLine(plan)
		}
		return nil
	}

	plan, err := prov.GetPlan(ctx, planID)
	if err != nil {
		return fmt.Errorf("loading plan: %w", err)
	}

	printPlanLine(*plan)
	if plan.LastRunAt != nil {
		fmt.Printf("  Last run: %s\n", plan.LastRunAt.Format(time.RFC3339))
	}
	if plan.NextRunAt != nil {
		fmt.Printf("  Next run: %s\n", plan.NextRunAt.Format(time.RFC3339))
	}
	if plan.CurrentRunID != "" {
		fmt.Printf("  Promoted run: %s\n", plan.CurrentRunID)
	}

	eventsList, err := prov.ListEvents(ctx, planID, eventLimit)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	if len(eventsList) > 0 {
		fmt.Println("\nRecent events:")
		for _, e := range eventsList {
			line := fmt.Sprintf("  %s  %-22s %s",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, e.Message)
			switch e.Kind {
			case types.EventRunFailed, types.EventRunCancelled:
				color.Red("%s", line)
			case types.EventPairSkipped:
				color.Yellow("%s", line)
			default:
				fmt.Println(line)
			}
		}
	}
	return nil
}

func printPlanLine(plan types.Plan) {
	var status string
	switch plan.Status {
	case types.PlanActive:
		status = color.GreenString(string(plan.Status))
	case types.PlanRunning:
		status = color.CyanString(string(plan.Status))
	case types.PlanArchived:
		status = color.YellowString(string(plan.Status))
	default:
		status = string(plan.Status)
	}
	fmt.Printf("%s  %s  (%d %s buckets)  %s\n",
		plan.ID, plan.Name, plan.HorizonBuckets, plan.Granularity, status)
}
