package parse

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokTerm     // term literal with at least one variable: "2x^2y"
	tokOp       // + - * / % ^
	tokLParen   // (
	tokRParen   // )
	tokLBracket // [
	tokRBracket // ]
	tokComma
	tokEquals
	tokBang
	tokRoot // √
	tokFloorOpen
	tokFloorClose
	tokCeilOpen
	tokCeilClose
	tokBar
	tokIntegral // ∫
	tokDeriv    // d/dx, text holds the variable
	tokFunc     // named call, text holds the name
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	space bool // whitespace immediately before the token
}

// functions are the named calls, longest first so "integrate" wins over "int".
var functions = []string{"derivative", "integrate", "critical", "maximize", "minimize", "factor", "diff", "int"}

type lexer struct {
	src         []rune
	pos         int
	sawIntegral bool
	tokens      []token
}

func lex(input string) ([]token, error) {
	l := &lexer{src: []rune(input)}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.kind == tokEOF {
			return l.tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	space := false
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
		space = true
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos, space: space}, nil
	}

	start := l.pos
	r := l.src[l.pos]
	emit := func(kind tokenKind, text string) (token, error) {
		return token{kind: kind, text: text, pos: start, space: space}, nil
	}

	switch {
	case unicode.IsDigit(r) || (r == '.' && l.peekDigit(1)):
		return l.number(start, space)
	case r >= 'a' && r <= 'z':
		return l.word(start, space)
	}

	l.pos++
	switch r {
	case '+', '-', '*', '/', '%', '^':
		return emit(tokOp, string(r))
	case '×', '·':
		return emit(tokOp, "*")
	case '÷':
		return emit(tokOp, "/")
	case '(':
		return emit(tokLParen, "(")
	case ')':
		return emit(tokRParen, ")")
	case '[':
		return emit(tokLBracket, "[")
	case ']':
		return emit(tokRBracket, "]")
	case ',':
		return emit(tokComma, ",")
	case '=':
		return emit(tokEquals, "=")
	case '!':
		return emit(tokBang, "!")
	case '√':
		return emit(tokRoot, "√")
	case '⌊':
		return emit(tokFloorOpen, "⌊")
	case '⌋':
		return emit(tokFloorClose, "⌋")
	case '⌈':
		return emit(tokCeilOpen, "⌈")
	case '⌉':
		return emit(tokCeilClose, "⌉")
	case '|':
		return emit(tokBar, "|")
	case '∫':
		l.sawIntegral = true
		return emit(tokIntegral, "∫")
	}
	return token{}, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", r)}
}

func (l *lexer) peekDigit(offset int) bool {
	i := l.pos + offset
	return i < len(l.src) && unicode.IsDigit(l.src[i])
}

// number lexes a numeral. A numeral followed directly by a variable letter
// is the coefficient of a term literal ("2x").
func (l *lexer) number(start int, space bool) (token, error) {
	for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] >= 'a' && l.src[l.pos] <= 'z' && !l.atKeyword() {
		return l.term(start, space)
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos]), pos: start, space: space}, nil
}

// word lexes a keyword (d/dx, diff, int, ...) or a term literal.
func (l *lexer) word(start int, space bool) (token, error) {
	rest := string(l.src[l.pos:])
	if strings.HasPrefix(rest, "d/d") && len(l.src) > l.pos+3 && isVar(l.src[l.pos+3]) {
		v := string(l.src[l.pos+3])
		l.pos += 4
		return token{kind: tokDeriv, text: v, pos: start, space: space}, nil
	}
	if name, ok := l.function(); ok {
		l.pos += len([]rune(name))
		return token{kind: tokFunc, text: name, pos: start, space: space}, nil
	}
	return l.term(start, space)
}

// atKeyword reports whether a keyword starts at the current position.
func (l *lexer) atKeyword() bool {
	if strings.HasPrefix(string(l.src[l.pos:]), "d/d") {
		return true
	}
	_, ok := l.function()
	return ok
}

// function matches a function name followed by optional spaces and "(".
func (l *lexer) function() (string, bool) {
	rest := string(l.src[l.pos:])
	for _, name := range functions {
		if !strings.HasPrefix(rest, name) {
			continue
		}
		after := strings.TrimLeftFunc(rest[len(name):], unicode.IsSpace)
		if strings.HasPrefix(after, "(") {
			return name, true
		}
	}
	return "", false
}

// term lexes variable letters with optional "^digits" after each letter.
func (l *lexer) term(start int, space bool) (token, error) {
	for l.pos < len(l.src) && isVar(l.src[l.pos]) {
		l.pos++
		if l.pos+1 < len(l.src) && l.src[l.pos] == '^' && unicode.IsDigit(l.src[l.pos+1]) {
			l.pos++
			for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	text := string(l.src[start:l.pos])

	// "∫x^2dx": split a trailing differential off the last term.
	if l.sawIntegral && l.restIsBlank() && len(text) > 2 && text[len(text)-2] == 'd' && isVar(rune(text[len(text)-1])) {
		head := text[:len(text)-2]
		if head != "" && !strings.HasSuffix(head, "^") {
			l.tokens = append(l.tokens, l.classify(head, start, space))
			return token{kind: tokTerm, text: text[len(text)-2:], pos: start + len([]rune(head)), space: true}, nil
		}
	}
	return l.classify(text, start, space), nil
}

func (l *lexer) classify(text string, pos int, space bool) token {
	for _, r := range text {
		if isVar(r) {
			return token{kind: tokTerm, text: text, pos: pos, space: space}
		}
	}
	return token{kind: tokNumber, text: text, pos: pos, space: space}
}

func (l *lexer) restIsBlank() bool {
	for _, r := range l.src[l.pos:] {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func isVar(r rune) bool {
	return r >= 'a' && r <= 'z'
}
