package cad

import (
	"math/big"

	"github.com/ead/ead/mvpoly"
	"github.com/ead/ead/univar"
)

// EliminationTower is ES[0..n-1] from spec.md §4.F: ES[k] holds
// polynomials over (x1,...,x_{k+1}) with main variable x_{k+1}.
type EliminationTower [][]mvpoly.MPoly

// reduceLeaf applies square-free/primitive reduction to p when it is
// genuinely univariate (arity 1), via the exact univar.Poly machinery.
// mvpoly carries no general multivariate polynomial division (see
// DiscriminantTop's doc comment), so a true multivariate square-free
// reduction — dividing an arity>1 polynomial by its gcd with its own
// top-variable derivative over the coefficient ring — is not available
// here; arity>1 projection-set members pass through unreduced. This
// does not affect soundness (projecting a non-square-free multivariate
// polynomial still contains every real root, just possibly with
// inflated multiplicity at intermediate levels): every polynomial
// actually handed to ran.Isolate is first reduced to arity 1 by
// lifting's substitution step, at which point SquareFreePart is always
// applied (see substitute.go). See DESIGN.md.
func reduceLeaf(p mvpoly.MPoly) mvpoly.MPoly {
	if p.NVars() != 1 || p.IsZero() {
		return p
	}
	up, err := univarFromArity1(p)
	if err != nil {
		return p
	}
	sf, err := up.SquareFreePart()
	if err != nil {
		return p
	}
	return mvpoly.FromUnivar(1, sf.PrimitivePart())
}

func univarFromArity1(p mvpoly.MPoly) (*univar.Poly, error) {
	up, err := mvpoly.ToUnivar(p)
	if err != nil {
		return nil, invariantf("%v", err)
	}
	return up, nil
}

// constantValue reports p's rational value and true when p is
// constant, i.e. does not actually depend on its declared top
// variable at any arity — recursing down through trivial
// degree-0-in-every-level wrappers to the underlying rational. A
// polynomial embedded at a higher arity than it needs (as every
// projection-set member built by promoting a lower-native-arity
// generator is) is still constant in this sense even though its
// NVars() is nonzero.
func constantValue(p mvpoly.MPoly) (*big.Rat, bool) {
	for p.NVars() > 0 {
		if p.DegreeTop() > 0 {
			return nil, false
		}
		p = p.CoeffTop(0)
	}
	return p.Rat()
}

func isUnit(p mvpoly.MPoly) bool {
	v, ok := constantValue(p)
	if !ok {
		return false
	}
	return v.Cmp(big.NewRat(1, 1)) == 0 || v.Cmp(big.NewRat(-1, 1)) == 0
}

// dedupAppend drops zero and unit polynomials (spec.md §4.F: "zero and
// unit polynomials are dropped") and structural duplicates before
// appending p's square-free/primitive reduction to set.
func dedupAppend(set []mvpoly.MPoly, p mvpoly.MPoly) []mvpoly.MPoly {
	if p.IsZero() || isUnit(p) {
		return set
	}
	reduced := reduceLeaf(p)
	if reduced.IsZero() || isUnit(reduced) {
		return set
	}
	for _, q := range set {
		if q.Equal(reduced) {
			return set
		}
	}
	return append(set, reduced)
}

// reductumTop strips p's leading (top-variable) term, returning the
// next-lower-degree polynomial. Used by the reductum-retention fix
// below (see DESIGN.md "McCallum reductum retention").
func reductumTop(p mvpoly.MPoly) mvpoly.MPoly {
	d := p.DegreeTop()
	if d <= 0 {
		return mvpoly.Zero(p.NVars())
	}
	coeffs := make([]mvpoly.MPoly, d)
	for i := 0; i < d; i++ {
		coeffs[i] = p.CoeffTop(i)
	}
	r, err := mvpoly.FromCoeffsTop(p.NVars(), coeffs)
	if err != nil {
		return mvpoly.Zero(p.NVars())
	}
	return r
}

// projectOne contributes p's leading coefficient, discriminant, and
// (per the reductum-retention decision in DESIGN.md) the leading
// coefficient and discriminant of p's reductum to next.
func projectOne(p mvpoly.MPoly, next []mvpoly.MPoly) ([]mvpoly.MPoly, error) {
	next = dedupAppend(next, p.LeadingCoeffTop())
	disc, err := mvpoly.DiscriminantTop(p)
	if err != nil {
		return nil, invariantf("discriminant: %v", err)
	}
	next = dedupAppend(next, disc)

	r := reductumTop(p)
	if r.IsZero() || r.DegreeTop() < 0 {
		return next, nil
	}
	next = dedupAppend(next, r.LeadingCoeffTop())
	if r.DegreeTop() >= 1 {
		rdisc, err := mvpoly.DiscriminantTop(r)
		if err != nil {
			return nil, invariantf("reductum discriminant: %v", err)
		}
		next = dedupAppend(next, rdisc)
	}
	return next, nil
}

// Project implements the McCallum/Collins projection operator exactly
// as spec.md §4.F describes, generalized to accept s with polynomials
// of mixed native arity (the declared variable order has n entries
// total; a polynomial of arity m < n is one the caller declares does
// not mention x_{m+1},...,x_n, and enters the tower directly at level
// m-1 rather than at the top — see AddPolynomial's doc comment for why
// this matters for incremental invalidation).
// ES[n-1] is s's arity-n members after dedupAppend, which applies
// square-free/primitive reduction only to arity-1 polynomials (see
// reduceLeaf); each lower level ES[k-1] is the leading coefficients,
// discriminants, and nonzero principal subresultant coefficients of
// distinct pairs of ES[k], unioned with s's arity-k members.
func Project(s []mvpoly.MPoly, n int) (EliminationTower, error) {
	if n < 1 {
		return nil, malformedf("Project requires n >= 1, got %d", n)
	}
	if len(s) == 0 {
		return nil, malformedf("Project requires a non-empty polynomial set")
	}
	buckets := make([][]mvpoly.MPoly, n)
	for i, p := range s {
		m := p.NVars()
		if m < 1 || m > n {
			return nil, malformedf("Project polynomial %d has arity %d, want 1..%d", i, m, n)
		}
		buckets[m-1] = append(buckets[m-1], p)
	}

	tower := make(EliminationTower, n)
	top := []mvpoly.MPoly{}
	for _, p := range buckets[n-1] {
		top = dedupAppend(top, p)
	}
	tower[n-1] = top

	for k := n - 1; k >= 1; k-- {
		level := tower[k]
		next := []mvpoly.MPoly{}
		var err error
		for _, p := range level {
			next, err = projectOne(p, next)
			if err != nil {
				return nil, err
			}
		}
		for i := 0; i < len(level); i++ {
			for j := i + 1; j < len(level); j++ {
				coeffs, err := mvpoly.PrincipalSubresultantCoeffsTop(level[i], level[j])
				if err != nil {
					return nil, invariantf("subresultant coefficients: %v", err)
				}
				for _, c := range coeffs {
					next = dedupAppend(next, c)
				}
			}
		}
		for _, p := range buckets[k-1] {
			next = dedupAppend(next, p)
		}
		tower[k-1] = next
	}

	return tower, nil
}
