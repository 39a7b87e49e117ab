package surface

import (
	"encoding/json"
	"io"

	"github.com/scenariq/scenariq/pkg/results"
)

// JSONRenderer marshals the result document to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, doc *results.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
