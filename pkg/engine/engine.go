// Package engine evaluates a validated decision case: it seeds the input
// and external nodes for each (option, scenario) pair, walks the resolved
// dependency order, and produces raw node values plus appreciation scores.
// Evaluation is pure: the same case yields the same results on every run.
package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/scenariq/scenariq/pkg/appreciate"
	"github.com/scenariq/scenariq/pkg/decision"
)

// EvaluationError reports a failure while computing one node of one
// (option, scenario) pair. The pair's result is discarded as a whole;
// other pairs are unaffected.
type EvaluationError struct {
	Option   string
	Scenario string
	Node     string
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %q under option %q, scenario %q: %v", e.Node, e.Option, e.Scenario, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// PairResult is the complete outcome of evaluating one option under one
// scenario: every node's resolved value plus the appreciation of the
// outcomes.
type PairResult struct {
	Option       string                   `json:"option"`
	Scenario     string                   `json:"scenario"`
	Values       map[string]float64       `json:"values"`
	Appreciation *appreciate.Appreciation `json:"appreciation"`
}

// Evaluator walks a validated case. Construct with New; an Evaluator is
// safe for concurrent use.
type Evaluator struct {
	c     *decision.Case
	order []string
}

// New validates the case, resolves the evaluation order, and returns an
// evaluator. Definition and cycle errors surface here, before any pair
// is evaluated.
func New(c *decision.Case) (*Evaluator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	order, err := c.EvaluationOrder()
	if err != nil {
		return nil, err
	}
	return &Evaluator{c: c, order: order}, nil
}

// Case returns the validated case the evaluator was built from.
func (e *Evaluator) Case() *decision.Case { return e.c }

// Order returns the node evaluation order.
func (e *Evaluator) Order() []string { return e.order }

// EvaluatePair computes every node value for one (option, scenario) pair
// and appreciates the outcomes. Seeding precedence per node: the option's
// override, else the scenario's override (external nodes only), else the
// case default.
func (e *Evaluator) EvaluatePair(opt *decision.Option, scen *decision.Scenario) (*PairResult, error) {
	values := make(map[string]float64, len(e.order))

	for _, name := range e.order {
		n := e.c.Node(name)
		if !n.HasFormula() {
			values[name] = e.seed(n, opt, scen)
			continue
		}
		v, err := n.Eval(values)
		if err != nil {
			return nil, &EvaluationError{
				Option:   opt.Name,
				Scenario: scen.Name,
				Node:     name,
				Err:      err,
			}
		}
		values[name] = v
	}

	appr, err := appreciate.Appreciate(e.c, scen, values)
	if err != nil {
		return nil, &EvaluationError{
			Option:   opt.Name,
			Scenario: scen.Name,
			Err:      err,
		}
	}

	return &PairResult{
		Option:       opt.Name,
		Scenario:     scen.Name,
		Values:       values,
		Appreciation: appr,
	}, nil
}

func (e *Evaluator) seed(n *decision.Node, opt *decision.Option, scen *decision.Scenario) float64 {
	if v, ok := opt.Overrides[n.Name]; ok {
		return v
	}
	if n.Kind == decision.KindExternal {
		if v, ok := scen.Overrides[n.Name]; ok {
			return v
		}
	}
	return n.Default
}

// Run evaluates every (option, scenario) pair of the case. Pair failures
// are collected rather than aborting the run; successful siblings are
// still returned. When parallelism is greater than one, pairs are
// evaluated concurrently with at most that many in flight. Results come
// back in (option, scenario) declaration order regardless of parallelism.
func (e *Evaluator) Run(ctx context.Context, parallelism int) ([]*PairResult, []*EvaluationError) {
	type pair struct {
		opt  *decision.Option
		scen *decision.Scenario
	}
	var pairs []pair
	for i := range e.c.Options {
		for j := range e.c.Scenarios {
			pairs = append(pairs, pair{&e.c.Options[i], &e.c.Scenarios[j]})
		}
	}

	if parallelism < 1 {
		parallelism = 1
	}

	slots := make([]*PairResult, len(pairs))
	errSlots := make([]*EvaluationError, len(pairs))

	if parallelism == 1 {
		for i, p := range pairs {
			if ctx.Err() != nil {
				break
			}
			slots[i], errSlots[i] = e.runOne(p.opt, p.scen)
		}
	} else {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		for i, p := range pairs {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				slots[i], errSlots[i] = e.runOne(p.opt, p.scen)
				return nil
			})
		}
		g.Wait()
	}

	var results []*PairResult
	var failures []*EvaluationError
	for i := range pairs {
		if slots[i] != nil {
			results = append(results, slots[i])
		}
		if errSlots[i] != nil {
			failures = append(failures, errSlots[i])
		}
	}
	return results, failures
}

func (e *Evaluator) runOne(opt *decision.Option, scen *decision.Scenario) (*PairResult, *EvaluationError) {
	res, err := e.EvaluatePair(opt, scen)
	if err != nil {
		evalErr, ok := err.(*EvaluationError)
		if !ok {
			evalErr = &EvaluationError{Option: opt.Name, Scenario: scen.Name, Err: err}
		}
		return nil, evalErr
	}
	return res, nil
}
