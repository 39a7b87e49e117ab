package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scenariq/scenariq/pkg/decision"
)

func newExplainCmd() *cobra.Command {
	var (
		node      string
		direction string
	)

	cmd := &cobra.Command{
		Use:   "explain <case>",
		Short: "Trace the causal neighborhood of a node",
		Long: `Shows which nodes feed into a node (upstream) or which nodes it
affects (downstream), with the formulas along the way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadValidatedCase(args[0])
			if err != nil {
				return err
			}

			var trace *decision.TraceResult
			switch strings.ToLower(direction) {
			case "upstream":
				trace = c.Upstream(node)
			case "downstream":
				trace = c.Downstream(node)
			default:
				return fmt.Errorf("direction must be upstream or downstream, got %q", direction)
			}
			if trace == nil {
				return fmt.Errorf("node %q not found in case %q", node, c.Name)
			}

			fmt.Fprintf(os.Stdout, "%s of %s:\n", direction, node)
			for _, n := range trace.Nodes {
				switch {
				case n.HasFormula():
					fmt.Fprintf(os.Stdout, "  %-20s [%s] = %s\n", n.Name, n.Kind, n.Formula)
				default:
					fmt.Fprintf(os.Stdout, "  %-20s [%s] default %g\n", n.Name, n.Kind, n.Default)
				}
			}
			if len(trace.Edges) > 0 {
				fmt.Fprintln(os.Stdout, "edges:")
				for _, e := range trace.Edges {
					fmt.Fprintf(os.Stdout, "  %s -> %s\n", e.From, e.To)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node to trace (required)")
	cmd.Flags().StringVar(&direction, "direction", "upstream", "Trace direction: upstream or downstream")
	_ = cmd.MarkFlagRequired("node")

	return cmd
}
