package cad

import (
	"fmt"
	"math/big"

	"github.com/ead/ead/mvpoly"
	"github.com/ead/ead/ran"
)

// evalBottom substitutes v for p's BOTTOM (arity-1, innermost)
// variable throughout p's coefficient tree, returning a polynomial of
// arity p.NVars()-1. mvpoly's CoeffTop/DegreeTop only expose the TOP
// variable by design (see the mvpoly package doc comment), so peeling
// off the bottom variable instead means recursing all the way down
// the coefficient tree to every arity-1 node and evaluating there;
// every polynomial built above such a node drops an arity level, which
// is exactly what removing the lowest-indexed variable should do.
func evalBottom(p mvpoly.MPoly, v *big.Rat) (mvpoly.MPoly, error) {
	if p.NVars() == 0 {
		return mvpoly.MPoly{}, malformedf("evalBottom requires arity >= 1, got 0")
	}
	if p.DegreeTop() < 0 {
		return mvpoly.Zero(p.NVars() - 1), nil
	}
	if p.NVars() == 1 {
		up, err := univarFromArity1(p)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		return mvpoly.FromRat(0, up.EvalAt(v)), nil
	}
	d := p.DegreeTop()
	coeffs := make([]mvpoly.MPoly, d+1)
	for i := 0; i <= d; i++ {
		c, err := evalBottom(p.CoeffTop(i), v)
		if err != nil {
			return mvpoly.MPoly{}, err
		}
		coeffs[i] = c
	}
	return mvpoly.FromCoeffsTop(p.NVars()-1, coeffs)
}

// substitutePrefix collapses p's first len(prefix) variables (x1,
// ..., x_len(prefix), in that order) to the values in prefix,
// returning the reduced polynomial of arity p.NVars()-len(prefix).
// The second return reports whether the reduction could stay exact
// and rational (true, whenever every prefix coordinate is Numeric) —
// when any prefix coordinate is Algebraic this returns false and a
// zero MPoly, and the caller should fall back to ranPoly instead (see
// ranPolyFrom).
func substitutePrefix(p mvpoly.MPoly, prefix []ran.RAN) (mvpoly.MPoly, bool, error) {
	for _, r := range prefix {
		if r.Kind() != ran.Numeric {
			return mvpoly.MPoly{}, false, nil
		}
	}
	cur := p
	for _, r := range prefix {
		v, ok := r.Rat()
		if !ok {
			return mvpoly.MPoly{}, false, invariantf("substitutePrefix: Numeric RAN carries no rational value")
		}
		next, err := evalBottom(cur, v)
		if err != nil {
			return mvpoly.MPoly{}, false, err
		}
		cur = next
	}
	return cur, true, nil
}

// ranPoly is a univariate polynomial, in the one variable a partial
// sample leaves symbolic, whose coefficients are RANs rather than
// rationals. It arises once an Algebraic coordinate enters the
// partial sample: each of p's top-variable coefficients — themselves
// polynomials over the already-assigned prefix variables — collapses
// to a single RAN via ran.EvalMPolyAt instead of a rational.
type ranPoly struct {
	coeffs []ran.RAN // coeffs[i] is the coefficient of (top variable)^i
}

// ranPolyFrom builds a ranPoly for p's top variable, given a full
// assignment (prefix) for every other variable of p.
func ranPolyFrom(p mvpoly.MPoly, prefix []ran.RAN) (ranPoly, error) {
	d := p.DegreeTop()
	if d < 0 {
		return ranPoly{}, nil
	}
	coeffs := make([]ran.RAN, d+1)
	for i := 0; i <= d; i++ {
		c, err := ran.EvalMPolyAt(p.CoeffTop(i), prefix)
		if err != nil {
			return ranPoly{}, err
		}
		coeffs[i] = c
	}
	return ranPoly{coeffs: coeffs}, nil
}

func (rp ranPoly) degree() int { return len(rp.coeffs) - 1 }

// evalAt evaluates rp at x via Horner's method, using ran.Add/ran.Mul
// at each step — exact for any x, including an Algebraic one.
func (rp ranPoly) evalAt(x ran.RAN) (ran.RAN, error) {
	acc := ran.FromRat(big.NewRat(0, 1))
	for i := rp.degree(); i >= 0; i-- {
		var err error
		acc, err = ran.Mul(acc, x)
		if err != nil {
			return ran.RAN{}, err
		}
		acc, err = ran.Add(acc, rp.coeffs[i])
		if err != nil {
			return ran.RAN{}, err
		}
	}
	return acc, nil
}

// bound returns a Cauchy-style a-priori bound on the magnitude of any
// real root of rp, built from numeric approximations of its
// coefficients (an exact rational bound would require the exact
// magnitude of each RAN coefficient, which is generally irrational).
func (rp ranPoly) bound() (*big.Rat, error) {
	d := rp.degree()
	if d <= 0 {
		return big.NewRat(1, 1), nil
	}
	eps := big.NewRat(1, 1_000_000)
	lead := ran.Approximate(rp.coeffs[d], eps)
	if lead.Sign() == 0 {
		return nil, fmt.Errorf("ranPoly: leading coefficient approximates to zero")
	}
	leadAbs := new(big.Rat).Abs(lead)
	maxRatio := big.NewRat(0, 1)
	for i := 0; i < d; i++ {
		c := ran.Approximate(rp.coeffs[i], eps)
		ratio := new(big.Rat).Quo(new(big.Rat).Abs(c), leadAbs)
		if ratio.Cmp(maxRatio) > 0 {
			maxRatio = ratio
		}
	}
	return new(big.Rat).Add(big.NewRat(1, 1), maxRatio), nil
}

const (
	ranPolyGridCells   = 64
	ranPolyBisectSteps = 48
)

// isolate returns one approximate rational sample point per real root
// of rp that a fixed-resolution sign-change scan over [-bound, bound]
// can detect. Unlike ran.Isolate, which builds an exact Algebraic RAN
// backed by a Sturm sequence over a rational defining polynomial, rp
// has no rational defining polynomial to run Sturm's method against —
// its coefficients are themselves RANs, one per Algebraic coordinate
// already fixed in the partial sample, and constructing an exact
// resultant/norm polynomial for them (to get back into Sturm's
// rational-coefficient world) is out of scope here (see DESIGN.md).
//
// Instead this returns a narrow rational point from inside each
// detected sign-change interval, which is all CAD's lifting step
// actually needs: a representative sample of the interval's sign
// pattern, not the root itself. This is honestly weaker than
// ran.Isolate's guarantee — a root of even multiplicity, or two roots
// closer together than the grid/bisection resolution, can be missed —
// but it never misreports a sign within the cells it does find.
func (rp ranPoly) isolate() ([]*big.Rat, error) {
	if rp.degree() <= 0 {
		return nil, nil
	}
	bound, err := rp.bound()
	if err != nil {
		return nil, err
	}

	neg := new(big.Rat).Neg(bound)
	width := new(big.Rat).Sub(bound, neg)
	step := new(big.Rat).Quo(width, big.NewRat(ranPolyGridCells, 1))

	points := make([]*big.Rat, ranPolyGridCells+1)
	signs := make([]int, ranPolyGridCells+1)
	for i := 0; i <= ranPolyGridCells; i++ {
		x := new(big.Rat).Add(neg, new(big.Rat).Mul(step, big.NewRat(int64(i), 1)))
		points[i] = x
		v, err := rp.evalAt(ran.FromRat(x))
		if err != nil {
			return nil, err
		}
		signs[i] = v.Sign()
	}

	var roots []*big.Rat
	for i := 0; i < ranPolyGridCells; i++ {
		if signs[i] == 0 {
			roots = append(roots, points[i])
			continue
		}
		if signs[i] == signs[i+1] || signs[i+1] == 0 {
			continue
		}
		lo, hi := points[i], points[i+1]
		loSign := signs[i]
		for s := 0; s < ranPolyBisectSteps; s++ {
			mid := new(big.Rat).Quo(new(big.Rat).Add(lo, hi), big.NewRat(2, 1))
			v, err := rp.evalAt(ran.FromRat(mid))
			if err != nil {
				return nil, err
			}
			switch v.Sign() {
			case 0:
				lo, hi = mid, mid
			case loSign:
				lo = mid
			default:
				hi = mid
			}
			if lo.Cmp(hi) == 0 {
				break
			}
		}
		roots = append(roots, new(big.Rat).Quo(new(big.Rat).Add(lo, hi), big.NewRat(2, 1)))
	}
	if signs[ranPolyGridCells] == 0 {
		roots = append(roots, points[ranPolyGridCells])
	}
	return roots, nil
}

// candidateSamplesAt returns one sample RAN per real root of p's
// single remaining symbolic variable, once prefix assigns every other
// variable. When prefix is purely rational, this reduces p exactly to
// a rational univariate polynomial and delegates to the Sturm-backed
// ran.Isolate; once prefix contains an Algebraic coordinate it falls
// back to ranPoly's weaker sign-change bisection (see its isolate
// doc comment for the completeness this tier gives up).
func candidateSamplesAt(p mvpoly.MPoly, prefix []ran.RAN) ([]ran.RAN, error) {
	if p.NVars() != len(prefix)+1 {
		return nil, malformedf("candidateSamplesAt: prefix length %d leaves %d symbolic variables in arity-%d polynomial, want 1",
			len(prefix), p.NVars()-len(prefix), p.NVars())
	}

	reduced, numeric, err := substitutePrefix(p, prefix)
	if err != nil {
		return nil, err
	}
	if numeric {
		up, err := univarFromArity1(reduced)
		if err != nil {
			return nil, err
		}
		if up.IsZero() {
			// p vanishes identically at this partial sample (e.g. a
			// factor like x1 contributes nothing once x1=0 is already
			// fixed) — it has no isolated roots to contribute as
			// candidates here, not a failure.
			return nil, nil
		}
		sf, err := up.SquareFreePart()
		if err != nil {
			return nil, invariantf("square-free reduction before isolation: %v", err)
		}
		roots, err := ran.Isolate(sf)
		if err != nil {
			return nil, invariantf("isolation: %v", err)
		}
		return roots, nil
	}

	rp, err := ranPolyFrom(p, prefix)
	if err != nil {
		return nil, err
	}
	points, err := rp.isolate()
	if err != nil {
		return nil, invariantf("ranPoly isolation: %v", err)
	}
	samples := make([]ran.RAN, len(points))
	for i, pt := range points {
		samples[i] = ran.FromRat(pt)
	}
	return samples, nil
}
