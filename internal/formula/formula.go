// Package formula implements the restricted arithmetic grammar payroll
// components are written in: decimal literals, bound variable names, the four
// basic operators with parentheses, and two banded-rate built-ins. Nothing
// else parses, so catalog formulas cannot reach code, files or the network.
package formula

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// FuncProgressiveTax walks tax brackets ascending and accumulates
	// marginal amounts.
	FuncProgressiveTax = "progressive_tax"
	// FuncProgressiveContribution is the same walk over contribution brackets.
	FuncProgressiveContribution = "progressive_contribution"
)

func isBuiltin(name string) bool {
	return name == FuncProgressiveTax || name == FuncProgressiveContribution
}

// Expr is a parsed formula ready for repeated evaluation.
type Expr struct {
	src    string
	root   node
	idents []string
}

// Parse compiles src under the closed grammar. Unknown functions and malformed
// input are rejected here, before any run starts.
func Parse(src string) (*Expr, error) {
	p := &parser{lex: newLexer(src), idents: make(map[string]struct{})}
	if err := p.next(); err != nil {
		return nil, err
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: "unexpected " + p.tok.describe()}
	}

	idents := make([]string, 0, len(p.idents))
	for name := range p.idents {
		idents = append(idents, name)
	}
	sort.Strings(idents)

	return &Expr{src: src, root: root, idents: idents}, nil
}

// Variables lists every identifier the formula references, sorted. Used by the
// catalog to verify a formula only reads earlier-order variables or band seeds.
func (e *Expr) Variables() []string {
	out := make([]string, len(e.idents))
	copy(out, e.idents)
	return out
}

func (e *Expr) String() string { return e.src }

// Evaluate is a convenience for one-shot parse and eval.
func Evaluate(src string, env *Env) (decimal.Decimal, error) {
	expr, err := Parse(src)
	if err != nil {
		return decimal.Zero, err
	}
	return expr.Eval(env)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	pos  int
	text string
}

func (t token) describe() string {
	switch t.kind {
	case tokenEOF:
		return "end of formula"
	case tokenNumber:
		return "number " + t.text
	case tokenIdent:
		return "identifier " + t.text
	default:
		return "token " + t.text
	}
}

type lexer struct {
	src string
	off int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) lex() (token, error) {
	for l.off < len(l.src) && isSpace(l.src[l.off]) {
		l.off++
	}
	if l.off >= len(l.src) {
		return token{kind: tokenEOF, pos: l.off}, nil
	}

	start := l.off
	c := l.src[l.off]

	switch {
	case c >= '0' && c <= '9' || c == '.':
		seenDot := false
		for l.off < len(l.src) {
			ch := l.src[l.off]
			if ch == '.' {
				if seenDot {
					return token{}, &SyntaxError{Pos: l.off, Msg: "malformed number"}
				}
				seenDot = true
			} else if ch < '0' || ch > '9' {
				break
			}
			l.off++
		}
		text := l.src[start:l.off]
		if text == "." {
			return token{}, &SyntaxError{Pos: start, Msg: "malformed number"}
		}
		return token{kind: tokenNumber, pos: start, text: text}, nil

	case isIdentStart(c):
		for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
			l.off++
		}
		return token{kind: tokenIdent, pos: start, text: l.src[start:l.off]}, nil
	}

	l.off++
	switch c {
	case '+':
		return token{kind: tokenPlus, pos: start, text: "+"}, nil
	case '-':
		return token{kind: tokenMinus, pos: start, text: "-"}, nil
	case '*':
		return token{kind: tokenStar, pos: start, text: "*"}, nil
	case '/':
		return token{kind: tokenSlash, pos: start, text: "/"}, nil
	case '(':
		return token{kind: tokenLParen, pos: start, text: "("}, nil
	case ')':
		return token{kind: tokenRParen, pos: start, text: ")"}, nil
	case ',':
		return token{kind: tokenComma, pos: start, text: ","}, nil
	}
	return token{}, &SyntaxError{Pos: start, Msg: "illegal character " + strings.TrimSpace(string(c))}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = "-" unary | primary
//	primary = NUMBER | IDENT | IDENT "(" expr "," expr ")" | "(" expr ")"
type parser struct {
	lex    *lexer
	tok    token
	idents map[string]struct{}
}

func (p *parser) next() error {
	tok, err := p.lex.lex()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenPlus || p.tok.kind == tokenMinus {
		op := p.tok.kind
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenStar || p.tok.kind == tokenSlash {
		op := p.tok.kind
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.tok.kind == tokenMinus {
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negateNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.tok
	switch tok.kind {
	case tokenNumber:
		val, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.pos, Msg: "malformed number " + tok.text}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &numberNode{val: val}, nil

	case tokenIdent:
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokenLParen {
			p.idents[tok.text] = struct{}{}
			return &variableNode{name: tok.text}, nil
		}
		return p.parseCall(tok)

	case tokenLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokenRParen {
			return nil, &SyntaxError{Pos: p.tok.pos, Msg: "expected ) but found " + p.tok.describe()}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, &SyntaxError{Pos: tok.pos, Msg: "unexpected " + tok.describe()}
}

func (p *parser) parseCall(name token) (node, error) {
	if !isBuiltin(name.text) {
		return nil, &UnknownFunctionError{Name: name.text}
	}
	// consume "("
	if err := p.next(); err != nil {
		return nil, err
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenComma {
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: name.text + " takes two arguments"}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	second, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenRParen {
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: "expected ) but found " + p.tok.describe()}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &callNode{fn: name.text, amount: first, bands: second}, nil
}
