// Package formula implements the expression language used by derived nodes
// in a decision case. Formulas are parsed once into an expression tree over
// a closed set of operators and functions; node references are resolved
// against an explicit value map at evaluation time.
package formula

import (
	"fmt"
	"sort"
)

// Formula is a parsed expression ready for repeated evaluation.
// Immutable once parsed.
type Formula struct {
	Source string
	root   expr
	refs   []string
}

// References returns the sorted list of node names the formula depends on.
func (f *Formula) References() []string {
	out := make([]string, len(f.refs))
	copy(out, f.refs)
	return out
}

// Eval computes the formula's value. Every referenced node must be present
// in env; a missing reference, a division by zero, or an unknown function
// yields an error naming the offending reference.
func (f *Formula) Eval(env map[string]float64) (float64, error) {
	return f.root.eval(env)
}

// expr is a node in the parsed expression tree.
type expr interface {
	eval(env map[string]float64) (float64, error)
	collectRefs(seen map[string]bool)
}

// literal is a numeric constant.
type literal struct {
	value float64
}

func (l literal) eval(map[string]float64) (float64, error) { return l.value, nil }
func (l literal) collectRefs(map[string]bool)              {}

// ref is a reference to another node by name.
type ref struct {
	name string
}

func (r ref) eval(env map[string]float64) (float64, error) {
	v, ok := env[r.name]
	if !ok {
		return 0, fmt.Errorf("no value for referenced node %q", r.name)
	}
	return v, nil
}

func (r ref) collectRefs(seen map[string]bool) { seen[r.name] = true }

// binary is an infix arithmetic operation.
type binary struct {
	op          byte // one of + - * /
	left, right expr
}

func (b binary) eval(env map[string]float64) (float64, error) {
	l, err := b.left.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := b.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unsupported operator %q", string(b.op))
}

func (b binary) collectRefs(seen map[string]bool) {
	b.left.collectRefs(seen)
	b.right.collectRefs(seen)
}

// negate is unary minus.
type negate struct {
	inner expr
}

func (n negate) eval(env map[string]float64) (float64, error) {
	v, err := n.inner.eval(env)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n negate) collectRefs(seen map[string]bool) { n.inner.collectRefs(seen) }

// call is a named function over one or more arguments.
type call struct {
	name string
	args []expr
}

func (c call) eval(env map[string]float64) (float64, error) {
	vals := make([]float64, len(c.args))
	for i, a := range c.args {
		v, err := a.eval(env)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}

	switch c.name {
	case "min":
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case "max":
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	case "average":
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals)), nil
	}
	return 0, fmt.Errorf("unsupported function %q", c.name)
}

func (c call) collectRefs(seen map[string]bool) {
	for _, a := range c.args {
		a.collectRefs(seen)
	}
}

func sortedRefs(root expr) []string {
	seen := make(map[string]bool)
	root.collectRefs(seen)
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}
