package caseio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scenariq/scenariq/pkg/decision"
)

// CSV table set layout. nodes.csv and rules.csv are required; the rest
// are optional.
//
//	nodes.csv      name, kind, unit, default, formula, theme
//	options.csv    option, description, node, value
//	scenarios.csv  scenario, node, value
//	rules.csv      outcome, type, min_ref, max_ref, min_score, max_score, bands, levels
//	weights.csv    scope (outcome|theme|scenario), name, weight
//
// options.csv and scenarios.csv use one row per override; a row with an
// empty node column declares the option or scenario without overriding
// anything. Bands and levels are "from:score" pairs joined with ";".

// LoadCSVDir assembles a case from a directory of CSV tables. The case
// name defaults to the directory name.
func LoadCSVDir(dir string) (*decision.Case, error) {
	c := &decision.Case{Name: filepath.Base(dir)}

	if err := readNodesCSV(filepath.Join(dir, "nodes.csv"), c); err != nil {
		return nil, err
	}
	if err := readRulesCSV(filepath.Join(dir, "rules.csv"), c); err != nil {
		return nil, err
	}
	if err := readOptionsCSV(filepath.Join(dir, "options.csv"), c); err != nil {
		return nil, err
	}
	if err := readScenariosCSV(filepath.Join(dir, "scenarios.csv"), c); err != nil {
		return nil, err
	}
	if err := readWeightsCSV(filepath.Join(dir, "weights.csv"), c); err != nil {
		return nil, err
	}
	return c, nil
}

// readTable reads a CSV file and returns its data rows, header stripped.
// Missing optional tables return nil rows and no error.
func readTable(path string, required bool, wantCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = wantCols
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", filepath.Base(path))
	}
	return rows[1:], nil
}

func readNodesCSV(path string, c *decision.Case) error {
	rows, err := readTable(path, true, 6)
	if err != nil {
		return err
	}
	for i, row := range rows {
		n := &decision.Node{
			Name:    row[0],
			Kind:    decision.Kind(row[1]),
			Unit:    row[2],
			Formula: row[4],
			Theme:   row[5],
		}
		if row[3] != "" {
			v, err := strconv.ParseFloat(row[3], 64)
			if err != nil {
				return fmt.Errorf("nodes.csv row %d: bad default %q: %w", i+2, row[3], err)
			}
			n.Default = v
		}
		c.Nodes = append(c.Nodes, n)
	}
	return nil
}

func readRulesCSV(path string, c *decision.Case) error {
	rows, err := readTable(path, true, 8)
	if err != nil {
		return err
	}
	for i, row := range rows {
		rule := decision.AppreciationRule{
			Outcome: row[0],
			Type:    decision.RuleType(row[1]),
		}
		refs := []*float64{&rule.MinRef, &rule.MaxRef, &rule.MinScore, &rule.MaxScore}
		for col, dst := range refs {
			if row[2+col] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[2+col], 64)
			if err != nil {
				return fmt.Errorf("rules.csv row %d: bad number %q: %w", i+2, row[2+col], err)
			}
			*dst = v
		}
		if row[6] != "" {
			pairs, err := parsePairs(row[6])
			if err != nil {
				return fmt.Errorf("rules.csv row %d: bad bands: %w", i+2, err)
			}
			for _, p := range pairs {
				rule.Bands = append(rule.Bands, decision.Band{From: p[0], Score: p[1]})
			}
		}
		if row[7] != "" {
			pairs, err := parsePairs(row[7])
			if err != nil {
				return fmt.Errorf("rules.csv row %d: bad levels: %w", i+2, err)
			}
			for _, p := range pairs {
				rule.Levels = append(rule.Levels, decision.Level{Value: p[0], Score: p[1]})
			}
		}
		c.Rules = append(c.Rules, rule)
	}
	return nil
}

// parsePairs splits "a:b;c:d" into float pairs.
func parsePairs(s string) ([][2]float64, error) {
	var out [][2]float64
	for _, part := range strings.Split(s, ";") {
		halves := strings.SplitN(part, ":", 2)
		if len(halves) != 2 {
			return nil, fmt.Errorf("expected from:score, got %q", part)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(halves[0]), 64)
		if err != nil {
			return nil, err
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(halves[1]), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]float64{a, b})
	}
	return out, nil
}

func readOptionsCSV(path string, c *decision.Case) error {
	rows, err := readTable(path, false, 4)
	if err != nil {
		return err
	}
	index := make(map[string]int)
	for i, row := range rows {
		name := row[0]
		at, ok := index[name]
		if !ok {
			c.Options = append(c.Options, decision.Option{Name: name, Description: row[1]})
			at = len(c.Options) - 1
			index[name] = at
		}
		if row[2] == "" {
			continue
		}
		v, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return fmt.Errorf("options.csv row %d: bad value %q: %w", i+2, row[3], err)
		}
		if c.Options[at].Overrides == nil {
			c.Options[at].Overrides = make(map[string]float64)
		}
		c.Options[at].Overrides[row[2]] = v
	}
	return nil
}

func readScenariosCSV(path string, c *decision.Case) error {
	rows, err := readTable(path, false, 3)
	if err != nil {
		return err
	}
	index := make(map[string]int)
	for i, row := range rows {
		name := row[0]
		at, ok := index[name]
		if !ok {
			c.Scenarios = append(c.Scenarios, decision.Scenario{Name: name})
			at = len(c.Scenarios) - 1
			index[name] = at
		}
		if row[1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("scenarios.csv row %d: bad value %q: %w", i+2, row[2], err)
		}
		if c.Scenarios[at].Overrides == nil {
			c.Scenarios[at].Overrides = make(map[string]float64)
		}
		c.Scenarios[at].Overrides[row[1]] = v
	}
	return nil
}

func readWeightsCSV(path string, c *decision.Case) error {
	rows, err := readTable(path, false, 3)
	if err != nil {
		return err
	}
	for i, row := range rows {
		v, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("weights.csv row %d: bad weight %q: %w", i+2, row[2], err)
		}
		switch row[0] {
		case "outcome":
			if c.Weights == nil {
				c.Weights = make(map[string]float64)
			}
			c.Weights[row[1]] = v
		case "theme":
			if c.ThemeWeights == nil {
				c.ThemeWeights = make(map[string]float64)
			}
			c.ThemeWeights[row[1]] = v
		case "scenario":
			if c.ScenarioWeights == nil {
				c.ScenarioWeights = make(map[string]float64)
			}
			c.ScenarioWeights[row[1]] = v
		default:
			return fmt.Errorf("weights.csv row %d: unknown scope %q", i+2, row[0])
		}
	}
	return nil
}
