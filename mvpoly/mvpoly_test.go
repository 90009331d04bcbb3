package mvpoly

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ead/ead/univar"
)

func rat(n, d int64) *big.Rat { return big.NewRat(n, d) }

// biv builds an arity-2 polynomial sum_i sum_j coeffs[i][j] * x2^i * x1^j
// (x2 is the top variable, x1 the coefficient-level variable).
func biv(coeffs [][]int64) MPoly {
	rows := make([]MPoly, len(coeffs))
	for i, row := range coeffs {
		inner := make([]*big.Rat, len(row))
		for j, c := range row {
			inner[j] = big.NewRat(c, 1)
		}
		rows[i] = FromUnivar(1, univar.New(inner))
	}
	return newFromCoeffs(2, rows)
}

func TestArithmeticArity1(t *testing.T) {
	a := assert.New(t)

	x := Var(1)
	xPlus1 := x.Add(One(1))
	xMinus1 := x.Sub(One(1))

	prod := xPlus1.Mul(xMinus1) // x^2 - 1
	a.Equal(2, prod.DegreeTop())
	a.True(prod.CoeffTop(1).IsZero())

	v, ok := prod.CoeffTop(0).Rat()
	a.True(ok)
	a.Equal(rat(-1, 1), v)
}

func TestEvalTopAt(t *testing.T) {
	a := assert.New(t)

	// p(x2, x1) = x2 + x1, evaluate x2 := 3 => 3 + x1.
	x2 := Var(2)
	x1 := newFromCoeffs(2, []MPoly{FromUnivar(1, univar.New([]*big.Rat{rat(0, 1), rat(1, 1)}))})
	p := x2.Add(x1)

	reduced := EvalTopAt(p, rat(3, 1))
	a.Equal(1, reduced.NVars())
	a.Equal(1, reduced.DegreeTop())

	c0, ok := reduced.CoeffTop(0).Rat()
	a.True(ok)
	a.Equal(rat(3, 1), c0)
}

func TestResultantTopSharedRoot(t *testing.T) {
	a := assert.New(t)

	// Both arity-1 polynomials share the root x=2.
	p := FromUnivar(1, univar.New([]*big.Rat{rat(-2, 1), rat(1, 1)})) // x - 2
	q := FromUnivar(1, univar.New([]*big.Rat{rat(-4, 1), rat(0, 1), rat(1, 1)})) // x^2 - 4 = (x-2)(x+2)

	res, err := ResultantTop(p, q)
	a.NoError(err)
	a.True(res.IsZero())
}

func TestResultantTopNoSharedRoot(t *testing.T) {
	a := assert.New(t)

	p := FromUnivar(1, univar.New([]*big.Rat{rat(-1, 1), rat(1, 1)})) // x - 1
	q := FromUnivar(1, univar.New([]*big.Rat{rat(-4, 1), rat(0, 1), rat(1, 1)})) // x^2-4

	res, err := ResultantTop(p, q)
	a.NoError(err)
	a.False(res.IsZero())
}

func TestResultantTopBivariateEliminatesTopVar(t *testing.T) {
	a := assert.New(t)

	// F(x2,x1) = x2 - x1 (root: x2 = x1)
	// G(x2)    = x2^2 - 4 (x2 = +-2), arity-2 with constant-in-x1 coeffs
	f := Var(2).Sub(newFromCoeffs(2, []MPoly{FromUnivar(1, univar.New([]*big.Rat{rat(0, 1), rat(1, 1)}))}))
	g := FromUnivar(2, univar.New([]*big.Rat{rat(-4, 1), rat(0, 1), rat(1, 1)}))

	res, err := ResultantTop(f, g)
	a.NoError(err)
	a.Equal(1, res.NVars())

	// Eliminating x2 from {x2=x1, x2^2=4} should leave x1^2-4=0.
	expect := FromUnivar(1, univar.New([]*big.Rat{rat(-4, 1), rat(0, 1), rat(1, 1)}))
	a.True(res.Equal(expect) || res.Scale(rat(-1, 1)).Equal(expect))
}

func TestPrincipalSubresultantCoeffsTopNonEmpty(t *testing.T) {
	a := assert.New(t)

	p := FromUnivar(1, univar.New([]*big.Rat{rat(-6, 1), rat(11, 1), rat(-6, 1), rat(1, 1)})) // (x-1)(x-2)(x-3)
	q := p.DerivativeTop()

	coeffs, err := PrincipalSubresultantCoeffsTop(p, q)
	a.NoError(err)
	a.NotEmpty(coeffs)
}

func TestPromoteEmbedsAsConstant(t *testing.T) {
	a := assert.New(t)

	p := FromUnivar(1, univar.New([]*big.Rat{rat(1, 1), rat(2, 1)})) // 2x1 + 1
	promoted, err := Promote(p, 3)
	a.NoError(err)
	a.Equal(3, promoted.NVars())

	// Promoting introduces no dependency on the new top variables, so
	// degree in each of them is 0.
	a.Equal(0, promoted.DegreeTop())
	a.Equal(0, promoted.CoeffTop(0).DegreeTop())
}

func TestPromoteRejectsSmallerTarget(t *testing.T) {
	a := assert.New(t)
	_, err := Promote(Var(2), 1)
	a.Error(err)
}

func TestVarAtResolvesCorrectVariable(t *testing.T) {
	a := assert.New(t)

	x2, err := VarAt(3, 2)
	a.NoError(err)
	a.Equal(3, x2.NVars())

	// x2 at point (x1,x2,x3) = (5,7,9) should evaluate to 7. EvalTopAt
	// peels off the current top variable, so coordinates are applied
	// highest-variable-first: x3, then x2, then x1.
	reduced := EvalTopAt(EvalTopAt(EvalTopAt(x2, rat(9, 1)), rat(7, 1)), rat(5, 1))
	v, ok := reduced.Rat()
	a.True(ok)
	a.Equal(0, v.Cmp(rat(7, 1)))
}

func TestVarAtRejectsOutOfRangeIndex(t *testing.T) {
	a := assert.New(t)
	_, err := VarAt(2, 3)
	a.Error(err)
}

func TestToUnivarRoundTripsFromUnivar(t *testing.T) {
	a := assert.New(t)

	original := univar.New([]*big.Rat{rat(-2, 1), rat(0, 1), rat(1, 1)}) // x^2 - 2
	p := FromUnivar(1, original)

	back, err := ToUnivar(p)
	a.NoError(err)
	a.True(back.Equal(original))
}

func TestToUnivarRejectsWrongArity(t *testing.T) {
	a := assert.New(t)
	_, err := ToUnivar(Var(2))
	a.Error(err)
}
