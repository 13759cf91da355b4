package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/normjump/internal/harness"
)

// ScenarioResult is the JSON payload for one scenario outcome.
type ScenarioResult struct {
	Name           string  `json:"name"`
	Path           string  `json:"path"`
	Passed         bool    `json:"passed"`
	Error          string  `json:"error,omitempty"`
	Samples        int     `json:"samples"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run scenario files and check their assertions",
		Long: `Run YAML scenario files through the chain and check each one's
assertions. A scenario fixes a grammar, seed, step count, and
observations, so results are reproducible.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, cmd, args, filter)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only run scenarios whose name contains this substring")

	return cmd
}

func runScenarios(opts *RootOptions, cmd *cobra.Command, paths []string, filter string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var results []ScenarioResult
	failed := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot load scenario", err)
		}
		if filter != "" && !strings.Contains(scenario.Name, filter) {
			formatter.VerboseLog("Skipping %s", scenario.Name)
			continue
		}

		formatter.VerboseLog("Running %s (%d steps)", scenario.Name, scenario.Steps)
		sr := ScenarioResult{Name: scenario.Name, Path: path, Passed: true}
		result, err := harness.RunAndCheck(scenario)
		if err != nil {
			sr.Passed = false
			sr.Error = err.Error()
			failed++
		}
		if result != nil {
			sr.Samples = len(result.Samples)
			sr.AcceptanceRate = result.AcceptanceRate
		}
		results = append(results, sr)

		if formatter.Format != "json" {
			if sr.Passed {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", sr.Name)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %s\n  %s\n", sr.Name, sr.Error)
			}
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "\n%d scenario(s), %d failed\n", len(results), failed)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}
