package expr

import (
	"fmt"
	"math/big"

	"github.com/ead/ead/mvpoly"
)

const (
	precLowest = iota
	precSum
	precProduct
	precPrefix
	precPower
)

var binPrec = map[tokenKind]int{
	tokPlus:  precSum,
	tokMinus: precSum,
	tokStar:  precProduct,
	tokCaret: precPower,
}

// parser is a Pratt (precedence-climbing) parser over the token
// stream, building an mvpoly.MPoly of arity order.Len() directly —
// there is no separate AST stage, since the grammar's only consumer
// is this one polynomial representation.
type parser struct {
	lex   *lexer
	order VariableOrder
	cur   token
	err   error
}

// Parse parses s as a polynomial over order, per spec.md §6's infix
// grammar. Returns a MalformedInput-flavored error (via errors
// produced directly, left for the caller to wrap with cad.EngineError
// if desired) on any lexical, syntactic, or semantic violation (stray
// input, unknown identifier, non-integer or negative exponent).
func Parse(s string, order VariableOrder) (mvpoly.MPoly, error) {
	p := &parser{lex: newLexer(s), order: order}
	if err := p.advance(); err != nil {
		return mvpoly.MPoly{}, err
	}
	result, err := p.parseExpression(precLowest)
	if err != nil {
		return mvpoly.MPoly{}, err
	}
	if p.cur.kind != tokEOF {
		return mvpoly.MPoly{}, fmt.Errorf("expr: unexpected trailing input %q", p.cur.text)
	}
	return result, nil
}

func (p *parser) advance() error {
	if p.err != nil {
		return p.err
	}
	t, err := p.lex.next()
	if err != nil {
		p.err = err
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) parseExpression(precedence int) (mvpoly.MPoly, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return mvpoly.MPoly{}, err
	}
	for p.cur.kind != tokEOF && precedence < binPrec[p.cur.kind] {
		left, err = p.parseInfix(left)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
	}
	return left, nil
}

func (p *parser) parsePrefix() (mvpoly.MPoly, error) {
	switch p.cur.kind {
	case tokNumber:
		v := p.cur.num
		if err := p.advance(); err != nil {
			return mvpoly.MPoly{}, err
		}
		return mvpoly.FromRat(p.order.Len(), v), nil
	case tokIdent:
		name := p.cur.text
		idx, ok := p.order.Index(name)
		if !ok {
			return mvpoly.MPoly{}, fmt.Errorf("expr: variable %q is not in the declared order", name)
		}
		if err := p.advance(); err != nil {
			return mvpoly.MPoly{}, err
		}
		return mvpoly.VarAt(p.order.Len(), idx)
	case tokMinus:
		if err := p.advance(); err != nil {
			return mvpoly.MPoly{}, err
		}
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		return operand.Neg(), nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return mvpoly.MPoly{}, err
		}
		inner, err := p.parseExpression(precLowest)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		if p.cur.kind != tokRParen {
			return mvpoly.MPoly{}, fmt.Errorf("expr: expected ')', got %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return mvpoly.MPoly{}, err
		}
		return inner, nil
	default:
		return mvpoly.MPoly{}, fmt.Errorf("expr: unexpected token %q", p.cur.text)
	}
}

func (p *parser) parseInfix(left mvpoly.MPoly) (mvpoly.MPoly, error) {
	op := p.cur.kind
	prec := binPrec[op]
	if err := p.advance(); err != nil {
		return mvpoly.MPoly{}, err
	}
	switch op {
	case tokPlus:
		right, err := p.parseExpression(prec)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		return left.Add(right), nil
	case tokMinus:
		right, err := p.parseExpression(prec)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		return left.Sub(right), nil
	case tokStar:
		right, err := p.parseExpression(prec)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		return left.Mul(right), nil
	case tokCaret:
		// right-associative: parse the exponent at prec-1.
		exp, err := p.parseExpression(prec - 1)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		n, err := nonNegativeIntConstant(exp)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		return powInt(left, n), nil
	default:
		return mvpoly.MPoly{}, fmt.Errorf("expr: unexpected operator %q", p.cur.text)
	}
}

// constantOf reports p's rational value when p does not actually
// depend on any of its declared variables, descending through
// degree-0 wrapper levels the way every exponent and rational literal
// built by this parser's own arity-promoting constructors does (see
// mvpoly.Promote's doc comment — this is the same embedding
// in reverse).
func constantOf(p mvpoly.MPoly) (*big.Rat, bool) {
	for p.NVars() > 0 {
		if p.DegreeTop() > 0 {
			return nil, false
		}
		p = p.CoeffTop(0)
	}
	return p.Rat()
}

func nonNegativeIntConstant(p mvpoly.MPoly) (int, error) {
	v, ok := constantOf(p)
	if !ok || !v.IsInt() {
		return 0, fmt.Errorf("expr: exponent must be a non-negative integer literal")
	}
	if v.Sign() < 0 {
		return 0, fmt.Errorf("expr: exponent must be non-negative, got %s", v.RatString())
	}
	bi := v.Num()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("expr: exponent too large")
	}
	return int(bi.Int64()), nil
}

func powInt(base mvpoly.MPoly, n int) mvpoly.MPoly {
	acc := mvpoly.FromRat(base.NVars(), big.NewRat(1, 1))
	for i := 0; i < n; i++ {
		acc = acc.Mul(base)
	}
	return acc
}
