package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/scenariq/scenariq/pkg/results"
)

// MarkdownRenderer builds a Markdown report from a result document,
// suitable for pasting into a PR or wiki page.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, doc *results.Document) error {
	_, err := io.WriteString(w, BuildMarkdownReport(doc))
	return err
}

// BuildMarkdownReport renders the report as a string.
func BuildMarkdownReport(doc *results.Document) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Decision case: %s\n\n", doc.Case))

	for _, scen := range sortedScenarios(doc) {
		sb.WriteString(fmt.Sprintf("### Scenario: %s\n\n", scen))
		ranking := doc.Rankings[scen]
		if len(ranking) == 0 {
			sb.WriteString("_No evaluated options._\n\n")
			continue
		}
		sb.WriteString("| Rank | Option | Total |\n|------|--------|-------|\n")
		for _, entry := range ranking {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.1f |\n", entry.Rank, entry.Option, entry.Total))
		}
		sb.WriteString("\n")
	}

	if len(doc.Comparisons) > 0 {
		sb.WriteString("### Across scenarios\n\n")
		sb.WriteString("| Option | Weighted mean | Min | Max | Spread |\n")
		sb.WriteString("|--------|---------------|-----|-----|--------|\n")
		for _, cmp := range doc.Comparisons {
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %.1f | %.1f |\n",
				cmp.Option, cmp.WeightedMean, cmp.Min, cmp.Max, cmp.Spread))
		}
		sb.WriteString("\n")
	}

	if len(doc.Failures) > 0 {
		sb.WriteString("### Failed pairs\n\n")
		for _, f := range doc.Failures {
			sb.WriteString(fmt.Sprintf("- **%s / %s** — %s\n", f.Option, f.Scenario, f.Error))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
