// Package parse turns surface syntax into the ir expression tree.
//
// The grammar is intentionally small: binary + - * / % ^ (precedence is left
// to the normalization rule, so operator sequences come back as ir.Chain),
// unary minus, postfix "!", prefix "√" and "n√", the brackets ⌊⌋ ⌈⌉ | |,
// term literals, implicit multiplication, "=", and the calculus forms
// d/dx(...), diff(e,x), derivative(e,x), ∫e dx, integrate(e,x), int(e,x),
// ∫[a,b] e dx, int([a,b],e,x), maximize/minimize/critical(e[,x]) and
// factor(e).
//
// Input is NFC-normalized before lexing so composed and decomposed forms of
// the same symbol parse identically.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/streamcalc/internal/algebra"
	"github.com/roach88/streamcalc/internal/ir"
)

// SyntaxError reports where parsing stopped.
type SyntaxError struct {
	Pos int
	Msg string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// Normalize returns the NFC form of input with surrounding space trimmed.
func Normalize(input string) string {
	return strings.TrimSpace(norm.NFC.String(input))
}

// Parse parses input into an expression tree.
func Parse(input string) (ir.Node, error) {
	tokens, err := lex(Normalize(input))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty input"}
	}

	left, err := p.expression()
	if err != nil {
		return nil, err
	}
	var node ir.Node = left
	if p.peek().kind == tokEquals {
		p.advance()
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		node = ir.Equation{Left: left, Right: right}
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.unexpected(tok)
	}
	return node, nil
}

// ParseOrRaw parses input and falls back to ir.Raw holding the normalized
// text, so the catch-all rule can report it as unrecognized.
func ParseOrRaw(input string) (ir.Node, error) {
	node, err := Parse(input)
	if err != nil {
		return ir.Raw{Text: Normalize(input)}, err
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return tok, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected %s, found %s", what, describe(tok))}
	}
	return p.advance(), nil
}

func (p *parser) unexpected(tok token) error {
	return &SyntaxError{Pos: tok.pos, Msg: "unexpected " + describe(tok)}
}

func describe(tok token) string {
	if tok.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(tok.text)
}

// expression parses operand { op operand } into a Chain, or the bare
// operand when there is no operator.
func (p *parser) expression() (ir.Node, error) {
	first, err := p.unary()
	if err != nil {
		return nil, err
	}
	operands := []ir.Node{first}
	var ops []ir.Op
	for p.peek().kind == tokOp {
		op := ir.Op(p.advance().text)
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		operands = append(operands, operand)
	}
	if len(ops) == 0 {
		return first, nil
	}
	return ir.Chain{Operands: operands, Ops: ops}, nil
}

// unary handles a leading minus. Negative literals fold into the literal.
func (p *parser) unary() (ir.Node, error) {
	tok := p.peek()
	if tok.kind != tokOp || tok.text != "-" {
		return p.postfix()
	}
	p.advance()
	inner, err := p.unary()
	if err != nil {
		return nil, err
	}
	switch v := inner.(type) {
	case ir.Num:
		return ir.Num{Value: -v.Value}, nil
	case ir.Mono:
		return ir.Mono{Term: v.Term.Scale(-1)}, nil
	}
	return ir.Neg{Inner: inner}, nil
}

// postfix parses a primary followed by "!" or implicit multiplication.
func (p *parser) postfix() (ir.Node, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.kind == tokBang:
			p.advance()
			node = ir.Factorial{Inner: node}
		case tok.kind == tokLParen:
			right, err := p.primary()
			if err != nil {
				return nil, err
			}
			node = ir.Binary{Op: ir.OpMul, Left: node, Right: right, Implicit: true}
		case tok.kind == tokTerm && !tok.space && isGroup(node):
			right, err := p.primary()
			if err != nil {
				return nil, err
			}
			node = ir.Binary{Op: ir.OpMul, Left: node, Right: right, Implicit: true}
		default:
			return node, nil
		}
	}
}

func isGroup(n ir.Node) bool {
	switch v := n.(type) {
	case ir.Group:
		return true
	case ir.Binary:
		return v.Implicit
	}
	return false
}

func (p *parser) primary() (ir.Node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("invalid number %q", tok.text)}
		}
		if p.peek().kind == tokRoot && !p.peek().space {
			p.advance()
			radicand, err := p.radicand()
			if err != nil {
				return nil, err
			}
			return ir.Root{Index: ir.Num{Value: v}, Radicand: radicand}, nil
		}
		return ir.Num{Value: v}, nil
	case tokTerm:
		term, err := algebra.ParseTerm(tok.text)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.pos, Msg: err.Error()}
		}
		return ir.Mono{Term: term}, nil
	case tokLParen:
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return ir.Group{Inner: inner}, nil
	case tokRoot:
		radicand, err := p.radicand()
		if err != nil {
			return nil, err
		}
		return ir.Root{Radicand: radicand}, nil
	case tokFloorOpen:
		return p.bracket(ir.Floor, tokFloorClose, `"⌋"`)
	case tokCeilOpen:
		return p.bracket(ir.Ceil, tokCeilClose, `"⌉"`)
	case tokBar:
		return p.bracket(ir.Abs, tokBar, `"|"`)
	case tokDeriv:
		body, err := p.parenthesized()
		if err != nil {
			return nil, err
		}
		return ir.Derivative{Var: tok.text, Body: body}, nil
	case tokIntegral:
		return p.integralSymbol()
	case tokFunc:
		return p.call(tok)
	}
	return nil, p.unexpected(tok)
}

// radicand parses the operand of √: a primary, optionally itself a root.
func (p *parser) radicand() (ir.Node, error) {
	return p.primary()
}

func (p *parser) bracket(kind ir.BracketKind, closing tokenKind, what string) (ir.Node, error) {
	inner, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(closing, what); err != nil {
		return nil, err
	}
	return ir.Bracket{Kind: kind, Inner: inner}, nil
}

func (p *parser) parenthesized() (ir.Node, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	return body, nil
}

// integralSymbol parses "∫e dx" and "∫[a,b] e dx" after the ∫ token.
func (p *parser) integralSymbol() (ir.Node, error) {
	var lower, upper ir.Node
	if p.peek().kind == tokLBracket {
		var err error
		if lower, upper, err = p.bounds(); err != nil {
			return nil, err
		}
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	tok, err := p.expect(tokTerm, "differential such as dx")
	if err != nil {
		return nil, err
	}
	if len(tok.text) != 2 || tok.text[0] != 'd' || !isVar(rune(tok.text[1])) {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected differential, found %q", tok.text)}
	}
	return ir.Integral{Var: tok.text[1:], Body: body, Lower: lower, Upper: upper}, nil
}

// bounds parses "[a,b]".
func (p *parser) bounds() (ir.Node, ir.Node, error) {
	if _, err := p.expect(tokLBracket, `"["`); err != nil {
		return nil, nil, err
	}
	lower, err := p.expression()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return nil, nil, err
	}
	upper, err := p.expression()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(tokRBracket, `"]"`); err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

// call parses the named forms. The opening parenthesis is still pending.
func (p *parser) call(name token) (ir.Node, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}

	var node ir.Node
	var err error
	switch name.text {
	case "diff", "derivative":
		node, err = p.derivativeCall()
	case "integrate", "int":
		node, err = p.integralCall()
	case "maximize", "minimize", "critical":
		node, err = p.optimizeCall(ir.OptimizeKind(name.text))
	case "factor":
		var body ir.Node
		body, err = p.expression()
		node = ir.Factor{Body: body}
	default:
		err = &SyntaxError{Pos: name.pos, Msg: "unknown function " + name.text}
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) derivativeCall() (ir.Node, error) {
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	v, err := p.variableArg()
	if err != nil {
		return nil, err
	}
	return ir.Derivative{Var: v, Body: body}, nil
}

func (p *parser) integralCall() (ir.Node, error) {
	var lower, upper ir.Node
	if p.peek().kind == tokLBracket {
		var err error
		if lower, upper, err = p.bounds(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, `","`); err != nil {
			return nil, err
		}
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	v, err := p.variableArg()
	if err != nil {
		return nil, err
	}
	return ir.Integral{Var: v, Body: body, Lower: lower, Upper: upper}, nil
}

func (p *parser) optimizeCall(kind ir.OptimizeKind) (ir.Node, error) {
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	v := "x"
	if p.peek().kind == tokComma {
		if v, err = p.variableArg(); err != nil {
			return nil, err
		}
	}
	return ir.Optimize{Kind: kind, Var: v, Body: body}, nil
}

// variableArg parses ", x".
func (p *parser) variableArg() (string, error) {
	if _, err := p.expect(tokComma, `","`); err != nil {
		return "", err
	}
	tok, err := p.expect(tokTerm, "variable name")
	if err != nil {
		return "", err
	}
	if !algebra.IsVariableName(tok.text) {
		return "", &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected single-letter variable, found %q", tok.text)}
	}
	return tok.text, nil
}
