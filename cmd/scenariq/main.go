// Package main provides the scenariq CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scenariq/scenariq/pkg/caseio"
	"github.com/scenariq/scenariq/pkg/config"
	"github.com/scenariq/scenariq/pkg/decision"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "scenariq",
		Short: "Scenario evaluation for responsible business decisions",
		Long: `Scenariq evaluates decision cases: it propagates option and scenario
inputs through a causal graph, appreciates the outcomes, and ranks the
options per scenario and across scenarios.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newEvaluateCmd(),
		newRankCmd(),
		newCompareCmd(),
		newExplainCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadValidatedCase loads a case from any supported source and validates it.
func loadValidatedCase(path string) (*decision.Case, error) {
	c, err := caseio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadConfigFor discovers and loads the config file nearest to the case.
func loadConfigFor(casePath string) *config.Config {
	dir := filepath.Dir(casePath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	cfgPath := config.FindConfigFile(dir)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
