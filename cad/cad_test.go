package cad

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ead/ead/mvpoly"
	"github.com/ead/ead/ran"
	"github.com/ead/ead/univar"
)

func rat(n, d int64) *big.Rat { return big.NewRat(n, d) }

// univ1 builds an arity-1 polynomial from low-to-high rational
// coefficients.
func univ1(coeffs ...int64) mvpoly.MPoly {
	rs := make([]*big.Rat, len(coeffs))
	for i, c := range coeffs {
		rs[i] = big.NewRat(c, 1)
	}
	return mvpoly.FromUnivar(1, univar.New(rs))
}

// biv builds an arity-2 polynomial (main variable x2=y) from its
// top-variable (y) coefficients, each an arity-1 polynomial in x.
func biv(yCoeffs ...mvpoly.MPoly) mvpoly.MPoly {
	p, err := mvpoly.FromCoeffsTop(2, yCoeffs)
	if err != nil {
		panic(err)
	}
	return p
}

func TestProjectSquareFreeUnivariate(t *testing.T) {
	a := assert.New(t)

	// (x-1)^2 = x^2 - 2x + 1, square-free part is x-1.
	p := univ1(1, -2, 1)
	tower, err := Project([]mvpoly.MPoly{p}, 1)
	a.NoError(err)
	a.Len(tower, 1)
	a.Len(tower[0], 1)

	v, ok := tower[0][0].CoeffTop(1).Rat()
	a.True(ok)
	a.Equal(0, v.Cmp(rat(1, 1)))
	a.Equal(1, tower[0][0].DegreeTop())
}

func TestProjectBivariateProducesLowerLevel(t *testing.T) {
	a := assert.New(t)

	// p = y^2 - x, a paraboloid; projecting to x alone should produce
	// a nonempty ES[0] (at minimum, the discriminant of p w.r.t. y,
	// which is 4x and is not a unit).
	p := biv(univ1(0, -1), univ1(0), univ1(1)) // y^0: -x, y^1: 0, y^2: 1
	tower, err := Project([]mvpoly.MPoly{p}, 2)
	a.NoError(err)
	a.Len(tower, 2)
	a.Len(tower[1], 1)
	a.NotEmpty(tower[0])
}

func TestProjectRejectsEmptySet(t *testing.T) {
	a := assert.New(t)
	_, err := Project(nil, 1)
	a.Error(err)
	var ee *EngineError
	a.True(errors.As(err, &ee))
	a.Equal(MalformedInput, ee.Kind)
}

func TestSettingsValidation(t *testing.T) {
	a := assert.New(t)

	_, err := NewSettings(WithGroebnerPreprocess(true))
	a.Error(err)

	s, err := NewSettings(WithLowdegFirst(true))
	a.NoError(err)
	a.True(s.LowdegFirst)
	a.Equal(Default, s.IsolationStrategy)

	_, err = NewSettings(WithIsolationStrategy(IsolationStrategy(99)))
	a.Error(err)
}

func TestEngineCheckLinearSat(t *testing.T) {
	a := assert.New(t)

	settings, err := NewSettings()
	a.NoError(err)

	eng, err := NewEngine([]mvpoly.MPoly{univ1(-1, 1)}, 2, settings) // x - 1
	a.NoError(err)

	constraints := []Constraint{{Poly: univ1(-1, 1), Sign: 0}}
	res, err := eng.Check(context.Background(), constraints)
	a.NoError(err)
	a.Equal(Sat, res.Outcome)
	a.Len(res.Point, 2)

	v, ok := res.Point[0].Rat()
	a.True(ok)
	a.Equal(0, v.Cmp(rat(1, 1)))
}

func TestEngineCheckNoRealRootsUnsat(t *testing.T) {
	a := assert.New(t)

	settings, err := NewSettings()
	a.NoError(err)

	eng, err := NewEngine([]mvpoly.MPoly{univ1(1, 0, 1)}, 1, settings) // x^2 + 1
	a.NoError(err)

	constraints := []Constraint{{Poly: univ1(1, 0, 1), Sign: 0}}
	res, err := eng.Check(context.Background(), constraints)
	a.NoError(err)
	a.Equal(Unsat, res.Outcome)
}

func TestEngineCheckSoundness(t *testing.T) {
	a := assert.New(t)

	// p1 = 144y^2 + 96x^2 y + 9x^4 + 105x^2 + 70x - 98
	// p2 = x y^2 + 6xy + x^3 + 9x
	p1 := biv(
		univ1(-98, 70, 105, 0, 9), // y^0
		univ1(0, 0, 96),           // y^1: 96x^2
		univ1(144),                // y^2
	)
	p2 := biv(
		univ1(0, 9, 0, 1), // y^0: x^3 + 9x
		univ1(0, 6),       // y^1: 6x
		univ1(0, 1),       // y^2: x
	)

	settings, err := NewSettings()
	a.NoError(err)
	eng, err := NewEngine([]mvpoly.MPoly{p1, p2}, 2, settings)
	a.NoError(err)

	res, err := eng.Check(context.Background(), []Constraint{
		{Poly: p1, Sign: 0},
		{Poly: p2, Sign: 0},
	})
	a.NoError(err)
	if res.Outcome == Sat {
		a.Len(res.Point, 2)
		v1, err := ran.EvalMPolyAt(p1, res.Point)
		a.NoError(err)
		a.Equal(0, v1.Sign())
		v2, err := ran.EvalMPolyAt(p2, res.Point)
		a.NoError(err)
		a.Equal(0, v2.Sign())
	}
}

func TestEngineCheckRejectsArityMismatch(t *testing.T) {
	a := assert.New(t)

	settings, err := NewSettings()
	a.NoError(err)
	eng, err := NewEngine([]mvpoly.MPoly{univ1(-1, 1)}, 1, settings)
	a.NoError(err)

	_, err = eng.Check(context.Background(), []Constraint{{Poly: biv(univ1(0), univ1(1)), Sign: 0}})
	a.Error(err)
	var ee *EngineError
	a.True(errors.As(err, &ee))
	a.Equal(MalformedInput, ee.Kind)
}

func TestEngineAddPolynomialInvalidatesBelowIntroducedLevel(t *testing.T) {
	a := assert.New(t)

	root := &node{depth: 0, state: FullyExplored}
	d1 := &node{depth: 1, state: FullyExplored}
	d2 := &node{depth: 2, state: FullyExplored}
	d1.children = []*node{d2}
	root.children = []*node{d1}

	// Adding a polynomial of native arity 2 affects tower[0] and
	// tower[1], i.e. every node at depth < 2. The root (depth 0) is
	// reset and its children dropped, so d1 and d2 (reachable only
	// through the root) are pruned away with it.
	invalidateBelow(root, 2)

	a.Equal(Unvisited, root.state)
	a.Nil(root.children)
}

func TestEngineAddPolynomialResetsRootForArityOne(t *testing.T) {
	a := assert.New(t)

	root := &node{depth: 0, state: FullyExplored}
	d1 := &node{depth: 1, state: FullyExplored}
	d2 := &node{depth: 2, state: FullyExplored}
	d1.children = []*node{d2}
	root.children = []*node{d1}

	// Adding a polynomial of native arity 1 only affects tower[0], but
	// the root (depth 0 < 1) consumes tower[0], so it is reset and its
	// whole subtree dropped.
	invalidateBelow(root, 1)

	a.Equal(Unvisited, root.state)
	a.Nil(root.children)
}

func TestEngineAddPolynomialRecomputesTower(t *testing.T) {
	a := assert.New(t)

	settings, err := NewSettings()
	a.NoError(err)
	eng, err := NewEngine([]mvpoly.MPoly{univ1(-1, 1)}, 1, settings) // x - 1
	a.NoError(err)

	before := len(eng.EliminationSets()[0])

	err = eng.AddPolynomial(univ1(-2, 1)) // x - 2
	a.NoError(err)

	after := eng.EliminationSets()[0]
	a.GreaterOrEqual(len(after), before)
}

func TestEngineAddPolynomialRejectsZero(t *testing.T) {
	a := assert.New(t)

	settings, err := NewSettings()
	a.NoError(err)
	eng, err := NewEngine([]mvpoly.MPoly{univ1(-1, 1)}, 1, settings)
	a.NoError(err)

	err = eng.AddPolynomial(mvpoly.Zero(1))
	a.Error(err)
}

func TestRanPolyIsolateFindsKnownRoot(t *testing.T) {
	a := assert.New(t)

	// x - 2, expressed directly as a ranPoly (as if its coefficients
	// had already collapsed from a partial algebraic sample).
	rp := ranPoly{coeffs: []ran.RAN{ran.FromRat(rat(-2, 1)), ran.FromRat(rat(1, 1))}}

	points, err := rp.isolate()
	a.NoError(err)
	a.Len(points, 1)

	diff := new(big.Rat).Sub(points[0], rat(2, 1))
	diff.Abs(diff)
	a.True(diff.Cmp(rat(1, 1000)) < 0)
}

func TestCandidateSamplesAtNumericPath(t *testing.T) {
	a := assert.New(t)

	p := univ1(-4, 0, 1) // x^2 - 4
	roots, err := candidateSamplesAt(p, nil)
	a.NoError(err)
	a.Len(roots, 2)

	for _, r := range roots {
		v, err := ran.EvalMPolyAt(p, []ran.RAN{r})
		a.NoError(err)
		a.Equal(0, v.Sign())
	}
}

func TestEvalBottomReducesArity(t *testing.T) {
	a := assert.New(t)

	// p(x,y) = y + x, evaluate x := 3 => y + 3.
	x := univ1(0, 1)
	p := biv(x, univ1(1))

	reduced, err := evalBottom(p, rat(3, 1))
	a.NoError(err)
	a.Equal(1, reduced.NVars())

	v, ok := reduced.CoeffTop(0).Rat()
	a.True(ok)
	a.Equal(0, v.Cmp(rat(3, 1)))
}

func TestMonomialOrderString(t *testing.T) {
	a := assert.New(t)
	a.Equal("Lex", Lex.String())
	a.Equal("Deglex", Deglex.String())
}

func BenchmarkCADCheck(b *testing.B) {
	settings, err := NewSettings()
	if err != nil {
		b.Fatal(err)
	}
	circle := biv(univ1(-1, 0, 1), univ1(0), univ1(1)) // x^2 + y^2 - 1
	line := biv(univ1(0, -1), univ1(1))          // y - x

	for i := 0; i < b.N; i++ {
		eng, err := NewEngine([]mvpoly.MPoly{circle, line}, 2, settings)
		if err != nil {
			b.Fatal(err)
		}
		constraints := []Constraint{{Poly: circle, Sign: 0}, {Poly: line, Sign: 0}}
		if _, err := eng.Check(context.Background(), constraints); err != nil {
			b.Fatal(err)
		}
	}
}
