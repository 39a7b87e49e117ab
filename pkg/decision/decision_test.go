package decision

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// bikeCase builds a small but complete case: an employer deciding how much
// to invest in a bike commuting program.
func bikeCase() *Case {
	return &Case{
		Name: "bike-program",
		Nodes: []*Node{
			{Name: "investment", Kind: KindInput, Unit: "eur", Default: 50000},
			{Name: "fuel_price", Kind: KindExternal, Unit: "eur/l", Default: 1.8},
			{Name: "staff", Kind: KindInput, Default: 1200},
			{Name: "uptake", Kind: KindDerived, Formula: "investment / 250000"},
			{Name: "riders", Kind: KindDerived, Formula: "staff * uptake"},
			{Name: "savings", Kind: KindOutcome, Formula: "riders * fuel_price * 150", Theme: "financial"},
			{Name: "wellbeing", Kind: KindOutcome, Formula: "min(riders / 10, 100)", Theme: "social"},
		},
		Options: []Option{
			{Name: "modest", Overrides: map[string]float64{"investment": 25000}},
			{Name: "ambitious", Overrides: map[string]float64{"investment": 100000}},
		},
		Scenarios: []Scenario{
			{Name: "base"},
			{Name: "expensive-fuel", Overrides: map[string]float64{"fuel_price": 2.4}},
		},
		Rules: []AppreciationRule{
			{Outcome: "savings", Type: RuleLinear, MinRef: 0, MaxRef: 100000, MinScore: 0, MaxScore: 100},
			{Outcome: "wellbeing", Type: RuleLinear, MinRef: 0, MaxRef: 100, MinScore: 0, MaxScore: 100},
		},
		Weights:         map[string]float64{"savings": 2, "wellbeing": 1},
		ThemeWeights:    map[string]float64{"financial": 1, "social": 1},
		ScenarioWeights: map[string]float64{"base": 3, "expensive-fuel": 1},
	}
}

func validBikeCase(t *testing.T) *Case {
	t.Helper()
	c := bikeCase()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	return c
}

func TestValidate(t *testing.T) {
	c := validBikeCase(t)

	if got := c.Node("uptake").Dependencies(); !reflect.DeepEqual(got, []string{"investment"}) {
		t.Errorf("uptake dependencies = %v, want [investment]", got)
	}
	if got := len(c.Outcomes()); got != 2 {
		t.Errorf("expected 2 outcomes, got %d", got)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Case)
	}{
		{
			name:   "unknown formula reference",
			mutate: func(c *Case) { c.Nodes[3].Formula = "budget / 250000" },
		},
		{
			name:   "duplicate node name",
			mutate: func(c *Case) { c.Nodes[1].Name = "investment" },
		},
		{
			name:   "input with formula",
			mutate: func(c *Case) { c.Nodes[0].Formula = "1 + 1" },
		},
		{
			name:   "derived without formula",
			mutate: func(c *Case) { c.Nodes[3].Formula = "" },
		},
		{
			name:   "outcome without rule",
			mutate: func(c *Case) { c.Rules = c.Rules[:1] },
		},
		{
			name: "two rules for one outcome",
			mutate: func(c *Case) {
				c.Rules = append(c.Rules, AppreciationRule{Outcome: "savings", Type: RuleLinear, MinRef: 0, MaxRef: 1})
			},
		},
		{
			name:   "rule on non-outcome node",
			mutate: func(c *Case) { c.Rules[0].Outcome = "uptake" },
		},
		{
			name:   "ambiguous linear rule",
			mutate: func(c *Case) { c.Rules[0].MaxRef = c.Rules[0].MinRef },
		},
		{
			name:   "option overrides derived node",
			mutate: func(c *Case) { c.Options[0].Overrides["riders"] = 10 },
		},
		{
			name:   "option overrides unknown node",
			mutate: func(c *Case) { c.Options[0].Overrides["budget"] = 10 },
		},
		{
			name:   "scenario overrides input node",
			mutate: func(c *Case) { c.Scenarios[1].Overrides["staff"] = 10 },
		},
		{
			name:   "scenario weight for unknown key",
			mutate: func(c *Case) { c.Scenarios[0].Weights = map[string]float64{"profit": 1} },
		},
		{
			name:   "weight for non-outcome",
			mutate: func(c *Case) { c.Weights["uptake"] = 1 },
		},
		{
			name:   "theme weight for unknown theme",
			mutate: func(c *Case) { c.ThemeWeights["planet"] = 1 },
		},
		{
			name:   "scenario weight for unknown scenario",
			mutate: func(c *Case) { c.ScenarioWeights["boom"] = 1 },
		},
		{
			name:   "no options",
			mutate: func(c *Case) { c.Options = nil },
		},
		{
			name:   "no scenarios",
			mutate: func(c *Case) { c.Scenarios = nil },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := bikeCase()
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var defErr *DefinitionError
			if !errors.As(err, &defErr) {
				t.Errorf("expected DefinitionError, got %T: %v", err, err)
			}
		})
	}
}

func TestRuleShapes(t *testing.T) {
	tests := []struct {
		name    string
		rule    AppreciationRule
		wantErr bool
	}{
		{
			name: "valid step",
			rule: AppreciationRule{Outcome: "savings", Type: RuleStep, Bands: []Band{{From: 0, Score: 0}, {From: 50, Score: 60}, {From: 90, Score: 100}}},
		},
		{
			name: "valid descending step",
			rule: AppreciationRule{Outcome: "savings", Type: RuleStep, Bands: []Band{{From: 0, Score: 100}, {From: 50, Score: 40}}},
		},
		{
			name:    "step bands out of order",
			rule:    AppreciationRule{Outcome: "savings", Type: RuleStep, Bands: []Band{{From: 50, Score: 0}, {From: 10, Score: 1}}},
			wantErr: true,
		},
		{
			name:    "step scores not monotonic",
			rule:    AppreciationRule{Outcome: "savings", Type: RuleStep, Bands: []Band{{From: 0, Score: 0}, {From: 10, Score: 50}, {From: 20, Score: 20}}},
			wantErr: true,
		},
		{
			name: "valid categorical",
			rule: AppreciationRule{Outcome: "savings", Type: RuleCategorical, Levels: []Level{{Value: 1, Score: 20}, {Value: 2, Score: 80}}},
		},
		{
			name:    "categorical duplicate value",
			rule:    AppreciationRule{Outcome: "savings", Type: RuleCategorical, Levels: []Level{{Value: 1, Score: 20}, {Value: 1, Score: 80}}},
			wantErr: true,
		},
		{
			name:    "empty step",
			rule:    AppreciationRule{Outcome: "savings", Type: RuleStep},
			wantErr: true,
		},
		{
			name:    "unknown type",
			rule:    AppreciationRule{Outcome: "savings", Type: "spline"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := bikeCase()
			c.Rules[0] = tc.rule
			err := c.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEvaluationOrder(t *testing.T) {
	c := validBikeCase(t)

	order, err := c.EvaluationOrder()
	if err != nil {
		t.Fatalf("EvaluationOrder() error: %v", err)
	}
	if len(order) != len(c.Nodes) {
		t.Fatalf("order has %d entries, want %d", len(order), len(c.Nodes))
	}

	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	for _, n := range c.Nodes {
		for _, dep := range n.Dependencies() {
			if index[dep] >= index[n.Name] {
				t.Errorf("node %q at %d precedes its dependency %q at %d",
					n.Name, index[n.Name], dep, index[dep])
			}
		}
	}
}

func TestEvaluationOrderDeterministic(t *testing.T) {
	c := validBikeCase(t)

	first, err := c.EvaluationOrder()
	if err != nil {
		t.Fatalf("EvaluationOrder() error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := c.EvaluationOrder()
		if err != nil {
			t.Fatalf("EvaluationOrder() error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("order not deterministic: %v vs %v", first, again)
		}
	}
}

func TestEvaluationOrderDeclarationTieBreak(t *testing.T) {
	// Independent inputs must come out in declaration order.
	c := validBikeCase(t)
	order, err := c.EvaluationOrder()
	if err != nil {
		t.Fatalf("EvaluationOrder() error: %v", err)
	}
	want := []string{"investment", "fuel_price", "staff"}
	if !reflect.DeepEqual(order[:3], want) {
		t.Errorf("order[:3] = %v, want %v", order[:3], want)
	}
}

func TestEvaluationOrderCycle(t *testing.T) {
	c := bikeCase()
	c.Nodes[3].Formula = "riders / 2"     // uptake depends on riders
	c.Nodes[4].Formula = "staff * uptake" // riders depends on uptake
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	_, err := c.EvaluationOrder()
	if err == nil {
		t.Fatal("expected CycleError, got nil")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %T: %v", err, err)
	}

	members := make(map[string]bool)
	for _, n := range cycleErr.Nodes {
		members[n] = true
	}
	if !members["uptake"] || !members["riders"] {
		t.Errorf("cycle should name uptake and riders, got %v", cycleErr.Nodes)
	}
}

func TestTrace(t *testing.T) {
	c := validBikeCase(t)

	up := c.Upstream("savings")
	if up == nil {
		t.Fatal("Upstream returned nil for known node")
	}
	wantUp := []string{"investment", "fuel_price", "staff", "uptake", "riders", "savings"}
	if !reflect.DeepEqual(up.Names, wantUp) {
		t.Errorf("Upstream(savings) = %v, want %v", up.Names, wantUp)
	}

	down := c.Downstream("investment")
	wantDown := []string{"investment", "uptake", "riders", "savings", "wellbeing"}
	if !reflect.DeepEqual(down.Names, wantDown) {
		t.Errorf("Downstream(investment) = %v, want %v", down.Names, wantDown)
	}

	if c.Upstream("nope") != nil {
		t.Error("Upstream of unknown node should be nil")
	}
}

func TestEdges(t *testing.T) {
	c := validBikeCase(t)
	edges := c.Edges()

	found := false
	for _, e := range edges {
		if e.From == "uptake" && e.To == "riders" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected edge uptake -> riders in %v", edges)
	}
}

func TestSaveLoadCase(t *testing.T) {
	c := validBikeCase(t)
	path := filepath.Join(t.TempDir(), "cases", "bike.json")

	if err := SaveCase(path, c); err != nil {
		t.Fatalf("SaveCase() error: %v", err)
	}

	loaded, err := LoadCase(path)
	if err != nil {
		t.Fatalf("LoadCase() error: %v", err)
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("Validate() after load error: %v", err)
	}

	if loaded.Name != c.Name {
		t.Errorf("loaded name %q, want %q", loaded.Name, c.Name)
	}
	if len(loaded.Nodes) != len(c.Nodes) {
		t.Errorf("loaded %d nodes, want %d", len(loaded.Nodes), len(c.Nodes))
	}
	if loaded.Weights["savings"] != 2 {
		t.Errorf("loaded savings weight %v, want 2", loaded.Weights["savings"])
	}
}

func TestLoadCaseMissing(t *testing.T) {
	if _, err := LoadCase(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
