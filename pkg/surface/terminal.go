package surface

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/scenariq/scenariq/pkg/results"
)

// TerminalRenderer renders a result document as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func scoreColor(score float64) string {
	if noColor() {
		return ""
	}
	switch {
	case score >= 70:
		return colorGreen
	case score >= 40:
		return colorYellow
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, doc *results.Document) error {
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("Case: %s", doc.Case)))

	// Per-scenario rankings, best option first.
	for _, scen := range sortedScenarios(doc) {
		fmt.Fprintf(w, "Scenario %s:\n", bold(scen))
		for _, entry := range doc.Rankings[scen] {
			fmt.Fprintf(w, "  %d. %s %s\n",
				entry.Rank, bold(entry.Option),
				colored(fmt.Sprintf("%.1f", entry.Total), scoreColor(entry.Total)))
		}
		if len(doc.Rankings[scen]) == 0 {
			fmt.Fprintf(w, "  %s\n", dim("no evaluated options"))
		}
		fmt.Fprintln(w)
	}

	// Cross-scenario comparison, ordered by robustness.
	if len(doc.Comparisons) > 0 {
		fmt.Fprintln(w, "Across scenarios:")
		for _, cmp := range doc.Comparisons {
			fmt.Fprintf(w, "  %s %s  %s\n",
				bold(cmp.Option),
				colored(fmt.Sprintf("%.1f", cmp.WeightedMean), scoreColor(cmp.WeightedMean)),
				dim(fmt.Sprintf("min %.1f / max %.1f / spread %.1f", cmp.Min, cmp.Max, cmp.Spread)))
		}
		fmt.Fprintln(w)
	}

	if len(doc.Failures) > 0 {
		fmt.Fprintln(w, "Failed pairs:")
		for _, f := range doc.Failures {
			fmt.Fprintf(w, "  %s %s / %s — %s\n",
				colored("●", colorRed), bold(f.Option), f.Scenario, f.Error)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// sortedScenarios returns the document's scenario names in the order its
// results list them, so rendering follows declaration order.
func sortedScenarios(doc *results.Document) []string {
	var order []string
	seen := make(map[string]bool)
	for _, r := range doc.Results {
		if !seen[r.Scenario] {
			seen[r.Scenario] = true
			order = append(order, r.Scenario)
		}
	}
	var leftover []string
	for scen := range doc.Rankings {
		if !seen[scen] {
			leftover = append(leftover, scen)
		}
	}
	sort.Strings(leftover)
	return append(order, leftover...)
}
