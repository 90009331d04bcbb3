package expr

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ead/ead/mvpoly"
)

func mustOrder(t *testing.T, names ...string) VariableOrder {
	t.Helper()
	o, err := NewVariableOrder(names...)
	if err != nil {
		t.Fatalf("NewVariableOrder: %v", err)
	}
	return o
}

func TestParseSimplePolynomial(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x")

	p, err := Parse("x^2 - 2", order)
	a.NoError(err)
	a.Equal(2, p.DegreeTop())

	lead, ok := p.CoeffTop(2).Rat()
	a.True(ok)
	a.Equal(0, lead.Cmp(big.NewRat(1, 1)))

	c0, ok := p.CoeffTop(0).Rat()
	a.True(ok)
	a.Equal(0, c0.Cmp(big.NewRat(-2, 1)))
}

func TestParseRationalLiteral(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x")

	p, err := Parse("3/4*x + 1/2", order)
	a.NoError(err)

	c1, _ := p.CoeffTop(1).Rat()
	a.Equal(0, c1.Cmp(big.NewRat(3, 4)))
	c0, _ := p.CoeffTop(0).Rat()
	a.Equal(0, c0.Cmp(big.NewRat(1, 2)))
}

func TestParseUnaryMinusAndPowerPrecedence(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x")

	// -x^2 should parse as -(x^2), i.e. coefficient -1 at degree 2.
	p, err := Parse("-x^2", order)
	a.NoError(err)
	a.Equal(2, p.DegreeTop())
	c2, _ := p.CoeffTop(2).Rat()
	a.Equal(0, c2.Cmp(big.NewRat(-1, 1)))
}

func TestParseMultivariate(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x", "y")

	p, err := Parse("y^2 - x", order)
	a.NoError(err)
	a.Equal(2, p.NVars())
	a.Equal(2, p.DegreeTop())
}

func TestParseRejectsUnknownVariable(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x")
	_, err := Parse("z + 1", order)
	a.Error(err)
}

func TestParseRejectsTrailingInput(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x")
	_, err := Parse("x + 1)", order)
	a.Error(err)
}

func TestParseRejectsNonIntegerExponent(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x")
	_, err := Parse("x^(1/2)", order)
	a.Error(err)
}

func TestPrintRoundTrip(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x", "y")

	cases := []string{
		"x^2 - 2",
		"y^2 - x",
		"3/4*x + 1/2",
		"(x + 1)*y^2 - 5*x",
		"-x",
	}
	for _, src := range cases {
		p, err := Parse(src, order)
		a.NoError(err, src)

		printed, err := Print(p, order)
		a.NoError(err, src)

		reparsed, err := Parse(printed, order)
		a.NoError(err, printed)
		a.True(p.Equal(reparsed), "round trip mismatch for %q -> %q", src, printed)
	}
}

func TestPrintRejectsArityMismatch(t *testing.T) {
	a := assert.New(t)
	order := mustOrder(t, "x", "y")
	_, err := Print(mvpoly.Zero(1), order)
	a.Error(err)
}
