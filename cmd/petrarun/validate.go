package main

import (
	"fmt"
	"os"

	"github.com/myrjola/petrarun/internal/workout"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // defaults.
		Use:   "validate <plan.yaml>",
		Short: "Check a plan file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %q with %d exercises\n",
				args[0], plan.Name, len(plan.Exercises))
			return err //nolint:wrapcheck // write errors are reported as is.
		},
	}
}

// loadPlan reads and validates a YAML plan file.
func loadPlan(path string) (workout.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return workout.Plan{}, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()

	plan, err := workout.ParsePlanYAML(f)
	if err != nil {
		return workout.Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	if err = plan.Validate(); err != nil {
		return workout.Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}
