package decision

import (
	"github.com/scenariq/scenariq/pkg/formula"
)

// Validate checks the case for structural soundness and compiles all
// formulas. It must be called once before the case is evaluated; the case
// is read-only afterwards. Cycle detection is a separate concern handled
// by EvaluationOrder.
func (c *Case) Validate() error {
	if len(c.Nodes) == 0 {
		return definitionErrorf("", "case %q has no nodes", c.Name)
	}

	c.byName = make(map[string]*Node, len(c.Nodes))
	for _, n := range c.Nodes {
		if n.Name == "" {
			return definitionErrorf("", "node with empty name")
		}
		if _, dup := c.byName[n.Name]; dup {
			return definitionErrorf(n.Name, "duplicate node name")
		}
		switch n.Kind {
		case KindInput, KindExternal, KindDerived, KindOutcome:
		default:
			return definitionErrorf(n.Name, "unknown node kind %q", n.Kind)
		}
		c.byName[n.Name] = n
	}

	if err := c.compileFormulas(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateOptions(); err != nil {
		return err
	}
	if err := c.validateScenarios(); err != nil {
		return err
	}
	return c.validateWeights()
}

func (c *Case) compileFormulas() error {
	for _, n := range c.Nodes {
		if !n.HasFormula() {
			if n.Formula != "" {
				return definitionErrorf(n.Name, "%s node must not carry a formula", n.Kind)
			}
			continue
		}
		if n.Formula == "" {
			return definitionErrorf(n.Name, "%s node requires a formula", n.Kind)
		}
		f, err := formula.Parse(n.Formula)
		if err != nil {
			return definitionErrorf(n.Name, "invalid formula: %v", err)
		}
		for _, dep := range f.References() {
			if c.byName[dep] == nil {
				return definitionErrorf(n.Name, "formula references unknown node %q", dep)
			}
		}
		n.parsed = f
	}
	return nil
}

func (c *Case) validateRules() error {
	ruled := make(map[string]bool, len(c.Rules))
	for i := range c.Rules {
		r := &c.Rules[i]
		target := c.byName[r.Outcome]
		if target == nil {
			return definitionErrorf(r.Outcome, "appreciation rule for unknown node")
		}
		if target.Kind != KindOutcome {
			return definitionErrorf(r.Outcome, "appreciation rule attached to %s node", target.Kind)
		}
		if ruled[r.Outcome] {
			return definitionErrorf(r.Outcome, "multiple appreciation rules for one outcome")
		}
		ruled[r.Outcome] = true
		if err := checkRuleShape(r); err != nil {
			return err
		}
	}

	for _, n := range c.Nodes {
		if n.Kind == KindOutcome && !ruled[n.Name] {
			return definitionErrorf(n.Name, "outcome has no appreciation rule")
		}
	}
	return nil
}

// checkRuleShape rejects ambiguous rules: a rule may never map one raw
// value to more than one score.
func checkRuleShape(r *AppreciationRule) error {
	switch r.Type {
	case RuleLinear:
		if r.MinRef >= r.MaxRef {
			return definitionErrorf(r.Outcome, "linear rule requires min_ref < max_ref (got %v >= %v)", r.MinRef, r.MaxRef)
		}
	case RuleStep:
		if len(r.Bands) == 0 {
			return definitionErrorf(r.Outcome, "step rule requires at least one band")
		}
		ascending := true
		descending := true
		for i := 1; i < len(r.Bands); i++ {
			if r.Bands[i].From <= r.Bands[i-1].From {
				return definitionErrorf(r.Outcome, "step bands must have strictly ascending bounds")
			}
			if r.Bands[i].Score < r.Bands[i-1].Score {
				ascending = false
			}
			if r.Bands[i].Score > r.Bands[i-1].Score {
				descending = false
			}
		}
		if !ascending && !descending {
			return definitionErrorf(r.Outcome, "step rule scores must be monotonic")
		}
	case RuleCategorical:
		if len(r.Levels) == 0 {
			return definitionErrorf(r.Outcome, "categorical rule requires at least one level")
		}
		seen := make(map[float64]bool, len(r.Levels))
		for _, l := range r.Levels {
			if seen[l.Value] {
				return definitionErrorf(r.Outcome, "categorical rule maps value %v twice", l.Value)
			}
			seen[l.Value] = true
		}
	default:
		return definitionErrorf(r.Outcome, "unknown rule type %q", r.Type)
	}
	return nil
}

func (c *Case) validateOptions() error {
	if len(c.Options) == 0 {
		return definitionErrorf("", "case %q has no options", c.Name)
	}
	seen := make(map[string]bool, len(c.Options))
	for _, o := range c.Options {
		if o.Name == "" {
			return definitionErrorf("", "option with empty name")
		}
		if seen[o.Name] {
			return definitionErrorf(o.Name, "duplicate option name")
		}
		seen[o.Name] = true
		for name := range o.Overrides {
			n := c.byName[name]
			if n == nil {
				return definitionErrorf(o.Name, "option overrides unknown node %q", name)
			}
			if n.HasFormula() {
				return definitionErrorf(o.Name, "option overrides %s node %q; only input and external nodes can be overridden", n.Kind, name)
			}
		}
	}
	return nil
}

func (c *Case) validateScenarios() error {
	if len(c.Scenarios) == 0 {
		return definitionErrorf("", "case %q has no scenarios", c.Name)
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		s := &c.Scenarios[i]
		if s.Name == "" {
			return definitionErrorf("", "scenario with empty name")
		}
		if seen[s.Name] {
			return definitionErrorf(s.Name, "duplicate scenario name")
		}
		seen[s.Name] = true

		for name := range s.Overrides {
			n := c.byName[name]
			if n == nil {
				return definitionErrorf(s.Name, "scenario overrides unknown node %q", name)
			}
			if n.Kind != KindExternal {
				return definitionErrorf(s.Name, "scenario overrides %s node %q; only external nodes can be overridden", n.Kind, name)
			}
		}
		for key := range s.Weights {
			if !c.isWeightKey(key) {
				return definitionErrorf(s.Name, "scenario weight for unknown key %q", key)
			}
		}
		for outcome, rule := range s.Rules {
			n := c.byName[outcome]
			if n == nil || n.Kind != KindOutcome {
				return definitionErrorf(s.Name, "scenario rule override for non-outcome %q", outcome)
			}
			rule.Outcome = outcome
			if err := checkRuleShape(&rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Case) validateWeights() error {
	for key, w := range c.Weights {
		if !c.isWeightKey(key) {
			return definitionErrorf("", "weight for unknown outcome %q", key)
		}
		if w < 0 {
			return definitionErrorf(key, "negative weight %v", w)
		}
	}

	themes := make(map[string]bool)
	for _, n := range c.Nodes {
		if n.Theme != "" {
			if n.Kind != KindOutcome {
				return definitionErrorf(n.Name, "theme set on %s node; themes apply to outcomes", n.Kind)
			}
			themes[n.Theme] = true
		}
	}
	for theme, w := range c.ThemeWeights {
		if !themes[theme] {
			return definitionErrorf("", "theme weight for unknown theme %q", theme)
		}
		if w < 0 {
			return definitionErrorf(theme, "negative theme weight %v", w)
		}
	}

	for name, w := range c.ScenarioWeights {
		if c.ScenarioByName(name) == nil {
			return definitionErrorf("", "scenario weight for unknown scenario %q", name)
		}
		if w < 0 {
			return definitionErrorf(name, "negative scenario weight %v", w)
		}
	}
	return nil
}

// isWeightKey reports whether key names an outcome node. Weight maps are
// keyed by outcome name.
func (c *Case) isWeightKey(key string) bool {
	n := c.byName[key]
	return n != nil && n.Kind == KindOutcome
}
