// Package formula evaluates small arithmetic expressions over named numeric
// variables, e.g. "steps * 2" against {steps: 4}. Expressions are parsed
// once into an expression tree; there is no code execution and no function
// call surface.
package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Expr is a parsed arithmetic expression.
type Expr struct {
	root node
}

type node interface {
	eval(vars map[string]float64) (float64, error)
}

type literal float64

func (l literal) eval(map[string]float64) (float64, error) {
	return float64(l), nil
}

type variable string

func (v variable) eval(vars map[string]float64) (float64, error) {
	val, ok := vars[string(v)]
	if !ok {
		return 0, fmt.Errorf("unknown variable %q", string(v))
	}
	return val, nil
}

type unary struct {
	op   byte
	expr node
}

func (u unary) eval(vars map[string]float64) (float64, error) {
	v, err := u.expr.eval(vars)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval(vars map[string]float64) (float64, error) {
	l, err := b.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := b.right.eval(vars)
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
	default:
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
}

// Parse turns an expression string into an evaluatable tree. Supported
// syntax: numeric literals, variable names, + - * /, unary minus and
// parentheses.
func Parse(input string) (*Expr, error) {
	p := &parser{input: input}
	root, err := p.parseSum()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", input, err)
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("parse %q: unexpected %q at offset %d", input, p.input[p.pos], p.pos)
	}
	return &Expr{root: root}, nil
}

// Eval computes the expression against a variable map.
func (e *Expr) Eval(vars map[string]float64) (float64, error) {
	return e.root.eval(vars)
}

// Eval parses and evaluates in one step, for callers that use an expression
// only once.
func Eval(input string, vars map[string]float64) (float64, error) {
	expr, err := Parse(input)
	if err != nil {
		return 0, err
	}
	return expr.Eval(vars)
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp('+', '-')
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
}

func (p *parser) parseProduct() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp('*', '/')
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
}

func (p *parser) parseFactor() (node, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end of expression")
	}

	switch c := p.input[p.pos]; {
	case c == '-':
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return unary{op: '-', expr: inner}, nil
	case c == '(':
		p.pos++
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case c >= '0' && c <= '9', c == '.':
		return p.parseNumber()
	case isIdentRune(rune(c)):
		return p.parseVariable(), nil
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
}

func (p *parser) parseNumber() (node, error) {
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] == '.' || (p.input[p.pos] >= '0' && p.input[p.pos] <= '9')) {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return nil, fmt.Errorf("bad number %q", p.input[start:p.pos])
	}
	return literal(v), nil
}

func (p *parser) parseVariable() node {
	start := p.pos
	for p.pos < len(p.input) && isIdentRune(rune(p.input[p.pos])) {
		p.pos++
	}
	return variable(p.input[start:p.pos])
}

func (p *parser) peekOp(ops ...byte) (byte, bool) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, false
	}
	for _, op := range ops {
		if p.input[p.pos] == op {
			return op, true
		}
	}
	return 0, false
}

func (p *parser) skipSpace() {
	p.pos += len(p.input[p.pos:]) - len(strings.TrimLeft(p.input[p.pos:], " \t"))
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
