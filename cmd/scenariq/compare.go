package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scenariq/scenariq/pkg/results"
	"github.com/scenariq/scenariq/pkg/surface"
)

func newCompareCmd() *cobra.Command {
	var (
		option      string
		outputFmt   string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "compare <case>",
		Short: "Compare option robustness across scenarios",
		Long: `Shows how each option's weighted total varies across the case's
scenarios: min, max, spread, and the scenario-weighted mean.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := evaluateCase(cmd, args[0], parallelism)
			if err != nil {
				return err
			}

			comparisons := doc.Comparisons
			if option != "" {
				comparisons = filterComparisons(comparisons, option)
				if len(comparisons) == 0 {
					return fmt.Errorf("no evaluated results for option %q", option)
				}
			}

			if outputFmt == "json" {
				trimmed := &results.Document{Case: doc.Case, Comparisons: comparisons}
				return surface.ForFormat("json").Render(os.Stdout, trimmed)
			}

			fmt.Fprintf(os.Stdout, "%s:\n", doc.Case)
			for _, cmp := range comparisons {
				fmt.Fprintf(os.Stdout, "  %-20s %6.1f  (min %.1f / max %.1f / spread %.1f)\n",
					cmp.Option, cmp.WeightedMean, cmp.Min, cmp.Max, cmp.Spread)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&option, "option", "", "Limit to one option")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent pair evaluations (default from config)")

	return cmd
}

func filterComparisons(all []*results.Comparison, option string) []*results.Comparison {
	var out []*results.Comparison
	for _, cmp := range all {
		if cmp.Option == option {
			out = append(out, cmp)
		}
	}
	return out
}
