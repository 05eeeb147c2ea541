package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/replan-systems/replan/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "replan",
		Short: "Time-phased material and distribution requirements planning",
		Long: `Replan computes time-phased replenishment plans per product/location pair:
it nets demand against inventory and open receipts over a rolling horizon,
sizes planned orders, raises exceptions on projected stockouts and safety
stock breaches, and turns planned orders into purchase recommendations
with an approval workflow.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewAddPlanCmd(),
		commands.NewRunCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
