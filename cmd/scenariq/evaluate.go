package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scenariq/scenariq/pkg/engine"
	"github.com/scenariq/scenariq/pkg/results"
	"github.com/scenariq/scenariq/pkg/surface"
)

func newEvaluateCmd() *cobra.Command {
	var (
		outputFmt   string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "evaluate <case>",
		Short: "Evaluate every (option, scenario) pair of a case",
		Long: `Evaluates all options under all scenarios, appreciates the outcomes,
and renders rankings and cross-scenario comparisons.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := evaluateCase(cmd, args[0], parallelism)
			if err != nil {
				return err
			}

			cfg := loadConfigFor(args[0])
			format := firstNonEmpty(outputFmt, cfg.Output.Format)
			return surface.ForFormat(format).Render(os.Stdout, doc)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "", "Output format: text, markdown, or json")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent pair evaluations (default from config)")

	return cmd
}

// evaluateCase runs the full pipeline for a case file and returns the
// result document.
func evaluateCase(cmd *cobra.Command, casePath string, parallelism int) (*results.Document, error) {
	c, err := loadValidatedCase(casePath)
	if err != nil {
		return nil, err
	}

	ev, err := engine.New(c)
	if err != nil {
		return nil, err
	}

	if parallelism < 1 {
		parallelism = loadConfigFor(casePath).Evaluation.Parallelism
	}

	pairResults, failures := ev.Run(cmd.Context(), parallelism)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", f)
	}
	if len(pairResults) == 0 {
		return nil, fmt.Errorf("no (option, scenario) pair evaluated successfully")
	}

	return results.NewSet(c, pairResults, failures).Document(), nil
}
