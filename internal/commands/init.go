package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new replan project",
		Long:  "Creates project scaffolding with a sample configuration and feed data file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0])
		},
	}
}

func runInit(projectName string) error {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Initializing replan project: %s\n", projectName)

	if err := os.MkdirAll(projectName, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	configPath := filepath.Join(projectName, "replan.yaml")
	configContent := `provider: sqlite
sqlite:
  path: replan.db
feeds:
  type: static
  dataFile: feeds.yaml
planner:
  workers: 8
  pairTimeout: 30s
  cadenceDays: 7
server:
  addr: ":8484"
alerts:
  - type: console
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	feedsPath := filepath.Join(projectName, "feeds.yaml")
	feedsContent := `inventory:
  - product: WIDGET-A
    location: DC-EAST
    onHand: 500
    available: 450
    committed: 50
demand:
  - product: WIDGET-A
    location: DC-EAST
    series: [120, 110, 130, 125, 140, 115, 120, 135]
    mean: 124.4
    stdDev: 9.8
receipts:
  - product: WIDGET-A
    location: DC-EAST
    series: [0, 200, 0, 0, 0, 0, 0, 0]
`
	if err := os.WriteFile(feedsPath, []byte(feedsContent), 0o644); err != nil {
		return fmt.Errorf("writing feed data: %w", err)
	}

	color.Green("Created %s and %s", configPath, feedsPath)
	fmt.Println("\nNext steps:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  replan serve")
	return nil
}
