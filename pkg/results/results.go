// Package results collects the per-pair outputs of an evaluation run and
// answers the questions a decision maker actually asks: how do the options
// rank under a scenario, and how robust is an option across scenarios.
package results

import (
	"fmt"
	"math"
	"sort"

	"github.com/scenariq/scenariq/pkg/decision"
	"github.com/scenariq/scenariq/pkg/engine"
)

type pairKey struct {
	option   string
	scenario string
}

// Set holds the evaluation results of one run, one slot per
// (option, scenario) pair. Failed pairs are kept alongside successful
// ones so reports can say which cells are missing and why.
type Set struct {
	caseName        string
	options         []string // declaration order
	scenarios       []string // declaration order
	scenarioWeights map[string]float64

	results  map[pairKey]*engine.PairResult
	failures map[pairKey]*engine.EvaluationError
}

// NewSet indexes a run's results and failures against the case they were
// computed from.
func NewSet(c *decision.Case, results []*engine.PairResult, failures []*engine.EvaluationError) *Set {
	s := &Set{
		caseName:        c.Name,
		scenarioWeights: c.ScenarioWeights,
		results:         make(map[pairKey]*engine.PairResult, len(results)),
		failures:        make(map[pairKey]*engine.EvaluationError, len(failures)),
	}
	for _, o := range c.Options {
		s.options = append(s.options, o.Name)
	}
	for _, sc := range c.Scenarios {
		s.scenarios = append(s.scenarios, sc.Name)
	}
	for _, r := range results {
		s.results[pairKey{r.Option, r.Scenario}] = r
	}
	for _, f := range failures {
		s.failures[pairKey{f.Option, f.Scenario}] = f
	}
	return s
}

// Result returns the evaluation of one (option, scenario) pair, or false
// if the pair failed or was never evaluated.
func (s *Set) Result(option, scenario string) (*engine.PairResult, bool) {
	r, ok := s.results[pairKey{option, scenario}]
	return r, ok
}

// Failure returns the recorded error of one failed pair, or false.
func (s *Set) Failure(option, scenario string) (*engine.EvaluationError, bool) {
	f, ok := s.failures[pairKey{option, scenario}]
	return f, ok
}

// Failures lists all failed pairs in (option, scenario) declaration order.
func (s *Set) Failures() []*engine.EvaluationError {
	var out []*engine.EvaluationError
	for _, opt := range s.options {
		for _, scen := range s.scenarios {
			if f, ok := s.failures[pairKey{opt, scen}]; ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// Scenarios returns the scenario names in declaration order.
func (s *Set) Scenarios() []string { return s.scenarios }

// Options returns the option names in declaration order.
func (s *Set) Options() []string { return s.options }

// RankEntry is one row of a per-scenario ranking.
type RankEntry struct {
	Rank   int                `json:"rank"`
	Option string             `json:"option"`
	Total  float64            `json:"total"`
	Scores map[string]float64 `json:"scores"`
}

// Rank orders the options evaluated under a scenario by descending
// weighted total. Ties keep option declaration order. Failed pairs are
// excluded from the ranking; callers can surface them via Failures.
func (s *Set) Rank(scenario string) ([]RankEntry, error) {
	if !s.hasScenario(scenario) {
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}

	var entries []RankEntry
	for _, opt := range s.options {
		r, ok := s.results[pairKey{opt, scenario}]
		if !ok {
			continue
		}
		entries = append(entries, RankEntry{
			Option: opt,
			Total:  r.Appreciation.WeightedTotal,
			Scores: r.Appreciation.Scores,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Comparison summarizes one option's totals across every scenario it was
// successfully evaluated under.
type Comparison struct {
	Option       string             `json:"option"`
	PerScenario  map[string]float64 `json:"per_scenario"`
	Min          float64            `json:"min"`
	Max          float64            `json:"max"`
	Mean         float64            `json:"mean"`
	Spread       float64            `json:"spread"` // max - min
	WeightedMean float64            `json:"weighted_mean"`
	Failed       []string           `json:"failed,omitempty"` // scenarios with no result
}

// Compare aggregates an option's weighted totals across scenarios. The
// weighted mean uses the case's scenario weights, defaulting each
// scenario to weight 1.
func (s *Set) Compare(option string) (*Comparison, error) {
	if !s.hasOption(option) {
		return nil, fmt.Errorf("unknown option %q", option)
	}

	cmp := &Comparison{
		Option:      option,
		PerScenario: make(map[string]float64),
		Min:         math.Inf(1),
		Max:         math.Inf(-1),
	}

	var sum, weightedSum, weightSum float64
	var count int
	for _, scen := range s.scenarios {
		r, ok := s.results[pairKey{option, scen}]
		if !ok {
			cmp.Failed = append(cmp.Failed, scen)
			continue
		}
		total := r.Appreciation.WeightedTotal
		cmp.PerScenario[scen] = total
		cmp.Min = math.Min(cmp.Min, total)
		cmp.Max = math.Max(cmp.Max, total)
		sum += total
		count++

		w := 1.0
		if sw, ok := s.scenarioWeights[scen]; ok {
			w = sw
		}
		weightedSum += total * w
		weightSum += w
	}

	if count == 0 {
		return nil, fmt.Errorf("option %q has no successful evaluations", option)
	}
	cmp.Mean = sum / float64(count)
	cmp.Spread = cmp.Max - cmp.Min
	if weightSum > 0 {
		cmp.WeightedMean = weightedSum / weightSum
	}
	return cmp, nil
}

// CompareAll builds a comparison for every option that has at least one
// successful evaluation, ordered by descending weighted mean with
// declaration order breaking ties.
func (s *Set) CompareAll() []*Comparison {
	var out []*Comparison
	for _, opt := range s.options {
		cmp, err := s.Compare(opt)
		if err != nil {
			continue
		}
		out = append(out, cmp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WeightedMean > out[j].WeightedMean
	})
	return out
}

func (s *Set) hasScenario(name string) bool {
	for _, sc := range s.scenarios {
		if sc == name {
			return true
		}
	}
	return false
}

func (s *Set) hasOption(name string) bool {
	for _, o := range s.options {
		if o == name {
			return true
		}
	}
	return false
}
