package results

import "github.com/scenariq/scenariq/pkg/engine"

// FailureRecord is the serializable form of a failed pair.
type FailureRecord struct {
	Option   string `json:"option"`
	Scenario string `json:"scenario"`
	Node     string `json:"node,omitempty"`
	Error    string `json:"error"`
}

// Document is the flattened, serializable form of a result set: the raw
// pair results, per-scenario rankings, cross-scenario comparisons, and
// the failures. This is what the run service persists and the API serves.
type Document struct {
	Case        string                 `json:"case"`
	Results     []*engine.PairResult   `json:"results"`
	Rankings    map[string][]RankEntry `json:"rankings"`
	Comparisons []*Comparison          `json:"comparisons"`
	Failures    []FailureRecord        `json:"failures,omitempty"`
}

// Document flattens the set for persistence or transport.
func (s *Set) Document() *Document {
	doc := &Document{
		Case:        s.caseName,
		Rankings:    make(map[string][]RankEntry, len(s.scenarios)),
		Comparisons: s.CompareAll(),
	}

	for _, opt := range s.options {
		for _, scen := range s.scenarios {
			if r, ok := s.results[pairKey{opt, scen}]; ok {
				doc.Results = append(doc.Results, r)
			}
		}
	}

	for _, scen := range s.scenarios {
		ranking, err := s.Rank(scen)
		if err != nil {
			continue
		}
		doc.Rankings[scen] = ranking
	}

	for _, f := range s.Failures() {
		record := FailureRecord{Option: f.Option, Scenario: f.Scenario, Node: f.Node}
		if f.Err != nil {
			record.Error = f.Err.Error()
		}
		doc.Failures = append(doc.Failures, record)
	}
	return doc
}
