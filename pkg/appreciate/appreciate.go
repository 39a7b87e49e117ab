// Package appreciate converts raw outcome values into bounded, comparable
// appreciation scores and aggregates them into a weighted total per option.
package appreciate

import (
	"fmt"

	"github.com/scenariq/scenariq/pkg/decision"
)

// ScoringError reports a categorical rule lookup that found no level for
// the raw value. Scoped to one (option, scenario) pair.
type ScoringError struct {
	Outcome string
	Value   float64
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("no category mapped for value %v of outcome %q", e.Value, e.Outcome)
}

// Appreciation is the scored view of one scenario engine run.
// Immutable once computed.
type Appreciation struct {
	Scores        map[string]float64 `json:"scores"` // outcome name -> bounded score
	WeightedTotal float64            `json:"weighted_total"`
}

// Appreciate scores the outcome values of one (option, scenario) run using
// the case's rules (with scenario rule overrides applied) and aggregates
// them into a weighted total. The total is normalized by the weight sum, so
// it lives on the same scale as the individual scores regardless of how the
// scenario distributes weight.
func Appreciate(c *decision.Case, scen *decision.Scenario, values map[string]float64) (*Appreciation, error) {
	outcomes := c.Outcomes()
	scores := make(map[string]float64, len(outcomes))
	weights := EffectiveWeights(c, scen)

	var weightedSum, weightSum float64
	for _, n := range outcomes {
		raw, ok := values[n.Name]
		if !ok {
			return nil, fmt.Errorf("no raw value for outcome %q", n.Name)
		}
		rule, ok := c.RuleFor(n.Name, scen)
		if !ok {
			return nil, fmt.Errorf("no appreciation rule for outcome %q", n.Name)
		}
		score, err := Apply(rule, raw)
		if err != nil {
			return nil, err
		}
		scores[n.Name] = score

		w := weights[n.Name]
		weightedSum += score * w
		weightSum += w
	}

	appreciation := &Appreciation{Scores: scores}
	if weightSum > 0 {
		appreciation.WeightedTotal = weightedSum / weightSum
	}
	return appreciation, nil
}

// Apply maps one raw value through an appreciation rule.
func Apply(rule decision.AppreciationRule, raw float64) (float64, error) {
	switch rule.Type {
	case decision.RuleLinear:
		return applyLinear(rule, raw), nil
	case decision.RuleStep:
		return applyStep(rule, raw), nil
	case decision.RuleCategorical:
		return applyCategorical(rule, raw)
	}
	return 0, fmt.Errorf("unknown rule type %q for outcome %q", rule.Type, rule.Outcome)
}

// applyLinear interpolates between the two reference points, clamping raw
// values outside [MinRef, MaxRef] to the nearer endpoint.
func applyLinear(rule decision.AppreciationRule, raw float64) float64 {
	if raw <= rule.MinRef {
		return rule.MinScore
	}
	if raw >= rule.MaxRef {
		return rule.MaxScore
	}
	fraction := (raw - rule.MinRef) / (rule.MaxRef - rule.MinRef)
	return rule.MinScore + fraction*(rule.MaxScore-rule.MinScore)
}

// applyStep selects the band with the greatest lower bound <= raw,
// clamping to the first band below range.
func applyStep(rule decision.AppreciationRule, raw float64) float64 {
	selected := rule.Bands[0]
	for _, band := range rule.Bands {
		if band.From <= raw {
			selected = band
		}
	}
	return selected.Score
}

func applyCategorical(rule decision.AppreciationRule, raw float64) (float64, error) {
	for _, level := range rule.Levels {
		if level.Value == raw {
			return level.Score, nil
		}
	}
	return 0, &ScoringError{Outcome: rule.Outcome, Value: raw}
}

// EffectiveWeights resolves the aggregation weight of every outcome under
// a scenario: the scenario's weight override where present, else the case
// default, else 1. Outcomes sharing a theme split that theme's weight
// across its members, so a theme with many outcomes does not dominate the
// total. The scenario may be nil.
func EffectiveWeights(c *decision.Case, scen *decision.Scenario) map[string]float64 {
	outcomes := c.Outcomes()

	themeCount := make(map[string]int)
	for _, n := range outcomes {
		if n.Theme != "" {
			themeCount[n.Theme]++
		}
	}

	weights := make(map[string]float64, len(outcomes))
	for _, n := range outcomes {
		w := 1.0
		if base, ok := c.Weights[n.Name]; ok {
			w = base
		}
		if scen != nil {
			if override, ok := scen.Weights[n.Name]; ok {
				w = override
			}
		}

		if n.Theme != "" && themeCount[n.Theme] > 1 {
			if tw, ok := c.ThemeWeights[n.Theme]; ok {
				w = w / float64(themeCount[n.Theme]) * tw
			}
		}
		weights[n.Name] = w
	}
	return weights
}
