package appreciate

import (
	"errors"
	"math"
	"testing"

	"github.com/scenariq/scenariq/pkg/decision"
)

func TestApplyLinear(t *testing.T) {
	rule := decision.AppreciationRule{
		Outcome: "savings",
		Type:    decision.RuleLinear,
		MinRef:  0, MaxRef: 100,
		MinScore: 0, MaxScore: 100,
	}

	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{name: "midpoint", raw: 50, want: 50},
		{name: "lower reference", raw: 0, want: 0},
		{name: "upper reference", raw: 100, want: 100},
		{name: "clamp below", raw: -40, want: 0},
		{name: "clamp above", raw: 250, want: 100},
		{name: "quarter", raw: 25, want: 25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(rule, tc.raw)
			if err != nil {
				t.Fatalf("Apply error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Apply(%v) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestApplyLinearSmallerIsBetter(t *testing.T) {
	// Descending score axis: low raw values appreciate high.
	rule := decision.AppreciationRule{
		Outcome: "emissions",
		Type:    decision.RuleLinear,
		MinRef:  0, MaxRef: 1000,
		MinScore: 100, MaxScore: 0,
	}

	if got, _ := Apply(rule, 0); got != 100 {
		t.Errorf("Apply(0) = %v, want 100", got)
	}
	if got, _ := Apply(rule, 1000); got != 0 {
		t.Errorf("Apply(1000) = %v, want 0", got)
	}
	if got, _ := Apply(rule, 250); got != 75 {
		t.Errorf("Apply(250) = %v, want 75", got)
	}
}

func TestApplyStep(t *testing.T) {
	rule := decision.AppreciationRule{
		Outcome: "reach",
		Type:    decision.RuleStep,
		Bands: []decision.Band{
			{From: 0, Score: 10},
			{From: 50, Score: 60},
			{From: 90, Score: 100},
		},
	}

	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: -5, want: 10},  // below range clamps to lowest band
		{raw: 0, want: 10},   // inclusive lower bound
		{raw: 49.9, want: 10},
		{raw: 50, want: 60},
		{raw: 89, want: 60},
		{raw: 90, want: 100},
		{raw: 500, want: 100}, // above range clamps to highest band
	}

	for _, tc := range tests {
		got, err := Apply(rule, tc.raw)
		if err != nil {
			t.Fatalf("Apply(%v) error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("Apply(%v) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestApplyCategorical(t *testing.T) {
	rule := decision.AppreciationRule{
		Outcome: "compliance",
		Type:    decision.RuleCategorical,
		Levels: []decision.Level{
			{Value: 0, Score: 0},
			{Value: 1, Score: 50},
			{Value: 2, Score: 100},
		},
	}

	if got, err := Apply(rule, 1); err != nil || got != 50 {
		t.Errorf("Apply(1) = %v, %v; want 50, nil", got, err)
	}

	_, err := Apply(rule, 3)
	if err == nil {
		t.Fatal("expected ScoringError for unmapped category")
	}
	var scoringErr *ScoringError
	if !errors.As(err, &scoringErr) {
		t.Fatalf("expected ScoringError, got %T: %v", err, err)
	}
	if scoringErr.Outcome != "compliance" || scoringErr.Value != 3 {
		t.Errorf("ScoringError = %+v, want outcome compliance value 3", scoringErr)
	}
}

func weightCase() *decision.Case {
	c := &decision.Case{
		Name: "weights",
		Nodes: []*decision.Node{
			{Name: "a", Kind: decision.KindInput, Default: 1},
			{Name: "x", Kind: decision.KindOutcome, Formula: "a"},
			{Name: "y", Kind: decision.KindOutcome, Formula: "a"},
			{Name: "z", Kind: decision.KindOutcome, Formula: "a"},
		},
		Options:   []decision.Option{{Name: "only"}},
		Scenarios: []decision.Scenario{{Name: "base"}},
		Rules: []decision.AppreciationRule{
			{Outcome: "x", Type: decision.RuleLinear, MinRef: 0, MaxRef: 100, MinScore: 0, MaxScore: 100},
			{Outcome: "y", Type: decision.RuleLinear, MinRef: 0, MaxRef: 100, MinScore: 0, MaxScore: 100},
			{Outcome: "z", Type: decision.RuleLinear, MinRef: 0, MaxRef: 100, MinScore: 0, MaxScore: 100},
		},
	}
	return c
}

func TestWeightedTotal(t *testing.T) {
	c := weightCase()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	// Raw values equal to desired scores (identity linear rule on 0..100).
	values := map[string]float64{"x": 10, "y": 20, "z": 30}

	t.Run("equal weights average", func(t *testing.T) {
		c.Weights = map[string]float64{"x": 1, "y": 1, "z": 1}
		appr, err := Appreciate(c, &c.Scenarios[0], values)
		if err != nil {
			t.Fatalf("Appreciate error: %v", err)
		}
		if math.Abs(appr.WeightedTotal-20) > 1e-9 {
			t.Errorf("WeightedTotal = %v, want 20", appr.WeightedTotal)
		}
	})

	t.Run("uneven weights renormalized", func(t *testing.T) {
		c.Weights = map[string]float64{"x": 3, "y": 1, "z": 1}
		appr, err := Appreciate(c, &c.Scenarios[0], values)
		if err != nil {
			t.Fatalf("Appreciate error: %v", err)
		}
		// (10*3 + 20*1 + 30*1) / 5 = 16
		if math.Abs(appr.WeightedTotal-16) > 1e-9 {
			t.Errorf("WeightedTotal = %v, want 16", appr.WeightedTotal)
		}
	})

	t.Run("scenario weight override", func(t *testing.T) {
		c.Weights = map[string]float64{"x": 1, "y": 1, "z": 1}
		scen := decision.Scenario{Name: "base", Weights: map[string]float64{"x": 0}}
		appr, err := Appreciate(c, &scen, values)
		if err != nil {
			t.Fatalf("Appreciate error: %v", err)
		}
		// x excluded: (20 + 30) / 2 = 25
		if math.Abs(appr.WeightedTotal-25) > 1e-9 {
			t.Errorf("WeightedTotal = %v, want 25", appr.WeightedTotal)
		}
	})
}

func TestEffectiveWeightsThemes(t *testing.T) {
	c := weightCase()
	c.Nodes[1].Theme = "money" // x
	c.Nodes[2].Theme = "money" // y
	c.Nodes[3].Theme = "people" // z
	c.Weights = map[string]float64{"x": 1, "y": 1, "z": 1}
	c.ThemeWeights = map[string]float64{"money": 4, "people": 1}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	weights := EffectiveWeights(c, nil)

	// money has two members: each gets (1/2)*4 = 2. people has one member:
	// the outcome weight is used as-is.
	if weights["x"] != 2 || weights["y"] != 2 {
		t.Errorf("money outcomes weigh %v/%v, want 2/2", weights["x"], weights["y"])
	}
	if weights["z"] != 1 {
		t.Errorf("people outcome weighs %v, want 1", weights["z"])
	}
}

func TestAppreciateMissingValue(t *testing.T) {
	c := weightCase()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	_, err := Appreciate(c, nil, map[string]float64{"x": 1, "y": 2})
	if err == nil {
		t.Fatal("expected error for missing outcome value")
	}
}

func TestScenarioRuleOverride(t *testing.T) {
	c := weightCase()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	scen := decision.Scenario{
		Name: "strict",
		Rules: map[string]decision.AppreciationRule{
			"x": {Type: decision.RuleLinear, MinRef: 0, MaxRef: 10, MinScore: 0, MaxScore: 100},
		},
	}

	appr, err := Appreciate(c, &scen, map[string]float64{"x": 10, "y": 0, "z": 0})
	if err != nil {
		t.Fatalf("Appreciate error: %v", err)
	}
	if appr.Scores["x"] != 100 {
		t.Errorf("overridden rule score = %v, want 100", appr.Scores["x"])
	}
}
