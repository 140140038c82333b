package worlds

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a malformed boolean expression. The message always
// starts with "not well-formed:" so callers can surface it verbatim.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "not well-formed: " + e.Reason
}

// ExprResult holds the worlds satisfying an evaluated expression.
type ExprResult struct {
	Worlds     []int
	Labels     []string
	Bitstrings []string
	Notations  []string
	// Notation is the normalized set-theoretic form of the input.
	Notation string
}

// EvalExpr parses a boolean expression over the base propositions and
// returns the worlds satisfying it. Literals are B1..Bn; connectives are
// ∩/∪/¬ or the keyboard forms &/&&, |/||, !. Precedence is NOT over AND
// over OR, with parentheses as usual.
func (s *Space) EvalExpr(src string) (*ExprResult, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &ParseError{Reason: "unexpected trailing input"}
	}
	if err := validateLiterals(root, s.nProps); err != nil {
		return nil, err
	}

	res := &ExprResult{Notation: root.notation()}
	for w := 0; w < s.nWorlds; w++ {
		if root.eval(s, w) {
			res.Worlds = append(res.Worlds, w)
			res.Labels = append(res.Labels, s.WorldLabel(w))
			res.Bitstrings = append(res.Bitstrings, s.WorldBitstring(w))
			res.Notations = append(res.Notations, s.Notation(w))
		}
	}
	return res, nil
}

// WorldsSatisfying returns the worlds whose bitstring satisfies the
// caller-supplied predicate.
func (s *Space) WorldsSatisfying(pred func(bitstring string) bool) []int {
	var out []int
	for w := 0; w < s.nWorlds; w++ {
		if pred(s.WorldBitstring(w)) {
			out = append(out, w)
		}
	}
	return out
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	index int // 0-based base-proposition index for tokIdent
}

func lex(src string) ([]token, error) {
	runes := []rune(src)
	var toks []token
	depth := 0
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '∩' || r == '&':
			if r == '&' && i+1 < len(runes) && runes[i+1] == '&' {
				i++
			}
			toks = append(toks, token{kind: tokAnd})
			i++
		case r == '∪' || r == '|':
			if r == '|' && i+1 < len(runes) && runes[i+1] == '|' {
				i++
			}
			toks = append(toks, token{kind: tokOr})
			i++
		case r == '¬' || r == '!':
			toks = append(toks, token{kind: tokNot})
			i++
		case r == '(':
			depth++
			toks = append(toks, token{kind: tokLParen})
			i++
		case r == ')':
			if depth == 0 {
				return nil, &ParseError{Reason: "unmatched closing parenthesis"}
			}
			depth--
			toks = append(toks, token{kind: tokRParen})
			i++
		case r == 'B':
			j := i + 1
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j == i+1 {
				return nil, &ParseError{Reason: "invalid character or token"}
			}
			num, err := strconv.Atoi(string(runes[i+1 : j]))
			if err != nil {
				return nil, &ParseError{Reason: "invalid character or token"}
			}
			toks = append(toks, token{kind: tokIdent, index: num - 1})
			i = j
		default:
			return nil, &ParseError{Reason: "invalid character or token"}
		}
	}
	if depth != 0 {
		return nil, &ParseError{Reason: "unmatched opening parenthesis"}
	}
	return append(toks, token{kind: tokEOF}), nil
}

type exprNode interface {
	eval(s *Space, w int) bool
	notation() string
}

type litNode struct{ index int }

func (n litNode) eval(s *Space, w int) bool { return s.Holds(w, n.index) }
func (n litNode) notation() string          { return fmt.Sprintf("B%d", n.index+1) }

type notNode struct{ x exprNode }

func (n notNode) eval(s *Space, w int) bool { return !n.x.eval(s, w) }
func (n notNode) notation() string {
	if _, ok := n.x.(litNode); ok {
		return "¬" + n.x.notation()
	}
	return "¬(" + n.x.notation() + ")"
}

type andNode struct{ terms []exprNode }

func (n andNode) eval(s *Space, w int) bool {
	for _, t := range n.terms {
		if !t.eval(s, w) {
			return false
		}
	}
	return true
}

func (n andNode) notation() string {
	parts := make([]string, len(n.terms))
	for i, t := range n.terms {
		if _, ok := t.(orNode); ok {
			parts[i] = "(" + t.notation() + ")"
		} else {
			parts[i] = t.notation()
		}
	}
	return strings.Join(parts, "∩")
}

type orNode struct{ terms []exprNode }

func (n orNode) eval(s *Space, w int) bool {
	for _, t := range n.terms {
		if t.eval(s, w) {
			return true
		}
	}
	return false
}

func (n orNode) notation() string {
	parts := make([]string, len(n.terms))
	for i, t := range n.terms {
		parts[i] = t.notation()
	}
	return strings.Join(parts, "∪")
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (exprNode, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []exprNode{first}
	for p.peek().kind == tokOr {
		p.next()
		t, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return orNode{terms: terms}, nil
}

func (p *parser) parseAnd() (exprNode, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	terms := []exprNode{first}
	for p.peek().kind == tokAnd {
		p.next()
		t, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return andNode{terms: terms}, nil
}

func (p *parser) parseUnary() (exprNode, error) {
	if p.peek().kind == tokNot {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (exprNode, error) {
	switch t := p.next(); t.kind {
	case tokIdent:
		return litNode{index: t.index}, nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, &ParseError{Reason: "unmatched opening parenthesis"}
		}
		return inner, nil
	default:
		return nil, &ParseError{Reason: "syntax error"}
	}
}

func validateLiterals(n exprNode, nProps int) error {
	switch v := n.(type) {
	case litNode:
		if v.index < 0 || v.index >= nProps {
			return &ParseError{Reason: fmt.Sprintf("unknown proposition B%d", v.index+1)}
		}
		return nil
	case notNode:
		return validateLiterals(v.x, nProps)
	case andNode:
		for _, t := range v.terms {
			if err := validateLiterals(t, nProps); err != nil {
				return err
			}
		}
		return nil
	case orNode:
		for _, t := range v.terms {
			if err := validateLiterals(t, nProps); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
