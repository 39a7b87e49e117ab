// Package surface defines output rendering for evaluation results.
// Implementations handle different output targets: terminal, Markdown
// report, JSON.
package surface

import (
	"io"

	"github.com/scenariq/scenariq/pkg/results"
)

// Renderer produces formatted output from a result document.
type Renderer interface {
	// Render writes the formatted result document to the writer.
	Render(w io.Writer, doc *results.Document) error
}

// ForFormat returns the renderer for a format name: "text" (default),
// "markdown", or "json".
func ForFormat(format string) Renderer {
	switch format {
	case "json":
		return &JSONRenderer{}
	case "markdown":
		return &MarkdownRenderer{}
	default:
		return &TerminalRenderer{}
	}
}
