package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse compiles a formula expression into a Formula.
//
// Grammar (precedence low to high):
//
//	expr   = term (('+' | '-') term)*
//	term   = unary (('*' | '/') unary)*
//	unary  = '-' unary | factor
//	factor = number | ident | ident '(' expr (',' expr)* ')' | '(' expr ')'
//
// Identifiers name other nodes in the case, or a function when followed
// by an argument list.
func Parse(src string) (*Formula, error) {
	p := &parser{src: src}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in formula %q", p.src[p.pos], p.pos, src)
	}
	return &Formula{
		Source: src,
		root:   root,
		refs:   sortedRefs(root),
	}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) parseExpr() (expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (expr, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negate{inner: inner}, nil
	}
	return p.parseFactor()
}

func (p *parser) parseFactor() (expr, error) {
	p.skipSpace()
	c := p.peek()

	switch {
	case c == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, fmt.Errorf("missing closing parenthesis in formula %q", p.src)
		}
		p.pos++
		return inner, nil

	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()

	case isIdentStart(rune(c)):
		return p.parseIdentOrCall()
	}

	if c == 0 {
		return nil, fmt.Errorf("unexpected end of formula %q", p.src)
	}
	return nil, fmt.Errorf("unexpected %q at offset %d in formula %q", c, p.pos, p.src)
}

func (p *parser) parseNumber() (expr, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	text := p.src[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q in formula %q", text, p.src)
	}
	return literal{value: v}, nil
}

func (p *parser) parseIdentOrCall() (expr, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(rune(p.src[p.pos])) {
		p.pos++
	}
	name := p.src[start:p.pos]

	p.skipSpace()
	if p.peek() != '(' {
		return ref{name: name}, nil
	}

	// Function call
	p.pos++
	var args []expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return call{name: strings.ToLower(name), args: args}, nil
		default:
			return nil, fmt.Errorf("expected ',' or ')' in arguments of %q in formula %q", name, p.src)
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
