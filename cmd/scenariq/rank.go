package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scenariq/scenariq/pkg/results"
	"github.com/scenariq/scenariq/pkg/surface"
)

func newRankCmd() *cobra.Command {
	var (
		scenario    string
		outputFmt   string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "rank <case>",
		Short: "Rank the options of a case under one scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := evaluateCase(cmd, args[0], parallelism)
			if err != nil {
				return err
			}

			ranking, ok := doc.Rankings[scenario]
			if !ok {
				return fmt.Errorf("unknown scenario %q", scenario)
			}

			if outputFmt == "json" {
				trimmed := &results.Document{
					Case:     doc.Case,
					Rankings: map[string][]results.RankEntry{scenario: ranking},
				}
				return surface.ForFormat("json").Render(os.Stdout, trimmed)
			}

			fmt.Fprintf(os.Stdout, "%s / %s:\n", doc.Case, scenario)
			for _, entry := range ranking {
				fmt.Fprintf(os.Stdout, "  %d. %-20s %6.1f\n", entry.Rank, entry.Option, entry.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario to rank under (required)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent pair evaluations (default from config)")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}
