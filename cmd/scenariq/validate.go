package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var showOrder bool

	cmd := &cobra.Command{
		Use:   "validate <case>",
		Short: "Check a case definition without evaluating it",
		Long: `Validates the case structure: formula references, rule shapes, option
and scenario overrides, and the absence of dependency cycles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadValidatedCase(args[0])
			if err != nil {
				return err
			}

			order, err := c.EvaluationOrder()
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s: OK\n", c.Name)
			fmt.Fprintf(os.Stdout, "  %d nodes, %d options, %d scenarios, %d outcomes\n",
				len(c.Nodes), len(c.Options), len(c.Scenarios), len(c.Outcomes()))
			if showOrder {
				fmt.Fprintf(os.Stdout, "  evaluation order: %s\n", strings.Join(order, " -> "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showOrder, "order", false, "Print the resolved evaluation order")

	return cmd
}
