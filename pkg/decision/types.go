// Package decision defines the core data model for a scenariq decision case:
// the causal node graph, decision options, scenarios, and appreciation rules.
// These types are the shared vocabulary across all modules.
package decision

import (
	"fmt"

	"github.com/scenariq/scenariq/pkg/formula"
)

// Kind classifies a node in the causal graph. Consumers switch exhaustively
// on Kind rather than relying on shared behavior.
type Kind string

const (
	// KindInput is a fixed quantity seeded from the case default,
	// optionally overridden per option.
	KindInput Kind = "input"
	// KindExternal is an external factor outside the decision maker's
	// control; scenarios may override its value.
	KindExternal Kind = "external"
	// KindDerived is computed from other nodes via a formula.
	KindDerived Kind = "derived"
	// KindOutcome is a derived node that is appreciated and weighted
	// into the option total.
	KindOutcome Kind = "outcome"
)

// Node is a single quantity in the causal graph.
type Node struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    Kind    `json:"kind" yaml:"kind"`
	Unit    string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Default float64 `json:"default,omitempty" yaml:"default,omitempty"` // input/external seed value
	Formula string  `json:"formula,omitempty" yaml:"formula,omitempty"` // derived/outcome only
	Theme   string  `json:"theme,omitempty" yaml:"theme,omitempty"`     // outcome grouping for weights

	parsed *formula.Formula // set by Validate
}

// HasFormula reports whether this node kind carries a formula.
func (n *Node) HasFormula() bool {
	return n.Kind == KindDerived || n.Kind == KindOutcome
}

// Dependencies returns the node names this node's formula references.
// Empty for input and external nodes. Only valid after case validation.
func (n *Node) Dependencies() []string {
	if n.parsed == nil {
		return nil
	}
	return n.parsed.References()
}

// Eval computes the node's formula against the resolved values of its
// dependencies. Only valid after case validation, and only for nodes
// where HasFormula is true.
func (n *Node) Eval(env map[string]float64) (float64, error) {
	if n.parsed == nil {
		return 0, fmt.Errorf("node %q has no compiled formula", n.Name)
	}
	return n.parsed.Eval(env)
}

// Edge is a directed dependency in the causal graph, from the referenced
// node to the node whose formula references it.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Option is a candidate decision evaluated against the case graph.
// Overrides replace the default values of input (or external) nodes.
type Option struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Overrides   map[string]float64 `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Scenario is a named bundle of numeric overrides. It never alters graph
// structure: only external node values, aggregation weights, and
// appreciation rules for named outcomes.
type Scenario struct {
	Name      string                      `json:"name" yaml:"name"`
	Overrides map[string]float64          `json:"overrides,omitempty" yaml:"overrides,omitempty"` // external node values
	Weights   map[string]float64          `json:"weights,omitempty" yaml:"weights,omitempty"`     // outcome/theme weight overrides
	Rules     map[string]AppreciationRule `json:"rules,omitempty" yaml:"rules,omitempty"`         // per-outcome rule overrides
}

// RuleType selects the scoring policy of an appreciation rule.
type RuleType string

const (
	RuleLinear      RuleType = "linear"
	RuleStep        RuleType = "step"
	RuleCategorical RuleType = "categorical"
)

// Band is one step in a step rule: raw values >= From (up to the next
// band's From) score Score.
type Band struct {
	From  float64 `json:"from" yaml:"from"`
	Score float64 `json:"score" yaml:"score"`
}

// Level is one entry in a categorical rule: an exact raw value mapped to
// a score.
type Level struct {
	Value float64 `json:"value" yaml:"value"`
	Score float64 `json:"score" yaml:"score"`
}

// AppreciationRule maps a raw outcome value to a bounded score.
// Exactly one rule is attached to each outcome node.
type AppreciationRule struct {
	Outcome string   `json:"outcome" yaml:"outcome"`
	Type    RuleType `json:"type" yaml:"type"`

	// Linear: interpolate between (MinRef -> MinScore) and
	// (MaxRef -> MaxScore), clamped to the reference range. MinScore may
	// exceed MaxScore for smaller-is-better outcomes.
	MinRef   float64 `json:"min_ref,omitempty" yaml:"min_ref,omitempty"`
	MaxRef   float64 `json:"max_ref,omitempty" yaml:"max_ref,omitempty"`
	MinScore float64 `json:"min_score,omitempty" yaml:"min_score,omitempty"`
	MaxScore float64 `json:"max_score,omitempty" yaml:"max_score,omitempty"`

	// Step: bands in ascending From order.
	Bands []Band `json:"bands,omitempty" yaml:"bands,omitempty"`

	// Categorical: exact lookups.
	Levels []Level `json:"levels,omitempty" yaml:"levels,omitempty"`
}

// Case is one complete decision-modeling problem. Construct it from a
// loader, call Validate once, and treat it as read-only afterwards.
type Case struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Nodes     []*Node            `json:"nodes" yaml:"nodes"` // declaration order is significant
	Options   []Option           `json:"options" yaml:"options"`
	Scenarios []Scenario         `json:"scenarios" yaml:"scenarios"`
	Rules     []AppreciationRule `json:"rules" yaml:"rules"`

	// Weights are the default aggregation weights per outcome node.
	// Empty means every outcome weighs 1.
	Weights map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`

	// ThemeWeights scale groups of outcomes sharing a theme.
	ThemeWeights map[string]float64 `json:"theme_weights,omitempty" yaml:"theme_weights,omitempty"`

	// ScenarioWeights weigh scenarios in cross-scenario comparison.
	ScenarioWeights map[string]float64 `json:"scenario_weights,omitempty" yaml:"scenario_weights,omitempty"`

	byName map[string]*Node // built by Validate
}

// Node returns the named node, or nil if it does not exist.
// Only valid after validation.
func (c *Case) Node(name string) *Node {
	return c.byName[name]
}

// Outcomes returns the outcome nodes in declaration order.
func (c *Case) Outcomes() []*Node {
	var out []*Node
	for _, n := range c.Nodes {
		if n.Kind == KindOutcome {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns the dependency edge set implied by all formulas,
// in declaration order of the dependent node. Only valid after validation.
func (c *Case) Edges() []Edge {
	var edges []Edge
	for _, n := range c.Nodes {
		for _, dep := range n.Dependencies() {
			edges = append(edges, Edge{From: dep, To: n.Name})
		}
	}
	return edges
}

// RuleFor returns the appreciation rule for an outcome under the given
// scenario, honoring the scenario's rule overrides. The scenario may be nil.
func (c *Case) RuleFor(outcome string, scen *Scenario) (AppreciationRule, bool) {
	if scen != nil {
		if r, ok := scen.Rules[outcome]; ok {
			r.Outcome = outcome
			return r, true
		}
	}
	for _, r := range c.Rules {
		if r.Outcome == outcome {
			return r, true
		}
	}
	return AppreciationRule{}, false
}

// ScenarioByName returns the named scenario, or nil.
func (c *Case) ScenarioByName(name string) *Scenario {
	for i := range c.Scenarios {
		if c.Scenarios[i].Name == name {
			return &c.Scenarios[i]
		}
	}
	return nil
}

// OptionByName returns the named option, or nil.
func (c *Case) OptionByName(name string) *Option {
	for i := range c.Options {
		if c.Options[i].Name == name {
			return &c.Options[i]
		}
	}
	return nil
}
