// Package ran implements real algebraic numbers (spec.md §4.C/§4.D):
// a tagged union of an exact rational (Numeric) or an isolating
// interval paired with a square-free defining polynomial that has
// exactly one real root inside it (Algebraic). It provides sign
// determination, interval refinement, comparison, and resultant-based
// arithmetic, plus Isolate, the Sturm-sequence root isolator that
// produces RANs from a square-free polynomial in the first place.
package ran

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ead/ead/interval"
	"github.com/ead/ead/mvpoly"
	"github.com/ead/ead/univar"
)

// Kind discriminates the two representations a RAN can take.
type Kind int

const (
	// Numeric RANs are exact rationals.
	Numeric Kind = iota
	// Algebraic RANs are given by a square-free defining polynomial
	// and an isolating interval containing exactly one of its roots.
	Algebraic
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "algebraic"
}

// ErrNotSquareFree is returned when a defining polynomial shares a
// root with its own derivative.
var ErrNotSquareFree = errors.New("ran: defining polynomial is not square-free")

// ErrNotIsolating is returned when an interval does not contain
// exactly one root of its paired defining polynomial.
var ErrNotIsolating = errors.New("ran: interval does not isolate exactly one root")

// ErrZeroPolynomial is returned by Isolate for the zero polynomial.
var ErrZeroPolynomial = errors.New("ran: cannot isolate roots of the zero polynomial")

// RAN is a real algebraic number.
type RAN struct {
	kind Kind
	rat  *big.Rat
	poly *univar.Poly
	iv   interval.Interval
}

// FromRat returns the Numeric RAN for the exact rational q.
func FromRat(q *big.Rat) RAN {
	return RAN{kind: Numeric, rat: new(big.Rat).Set(q)}
}

// NewAlgebraic builds an Algebraic RAN, validating that poly is
// square-free and that iv isolates exactly one of its roots via the
// Sturm sequence root count.
func NewAlgebraic(poly *univar.Poly, iv interval.Interval) (RAN, error) {
	if !poly.IsSquareFree() {
		return RAN{}, ErrNotSquareFree
	}
	seq := univar.SturmSequence(poly)
	if univar.SturmRootCount(seq, iv.Left(), iv.Right()) != 1 {
		return RAN{}, ErrNotIsolating
	}
	return RAN{kind: Algebraic, poly: poly, iv: iv}, nil
}

// Kind reports whether r is Numeric or Algebraic.
func (r RAN) Kind() Kind { return r.kind }

// Rat returns r's rational value and true, if r is Numeric.
func (r RAN) Rat() (*big.Rat, bool) {
	if r.kind != Numeric {
		return nil, false
	}
	return new(big.Rat).Set(r.rat), true
}

// DefiningPoly returns r's defining polynomial, or nil if r is
// Numeric.
func (r RAN) DefiningPoly() *univar.Poly {
	if r.kind != Algebraic {
		return nil
	}
	return r.poly
}

// Interval returns r's isolating interval and true, if r is
// Algebraic.
func (r RAN) Interval() (interval.Interval, bool) {
	if r.kind != Algebraic {
		return interval.Interval{}, false
	}
	return r.iv, true
}

// refineOnce bisects iv at its midpoint, using poly's sign there (and
// the Sturm root count on the left half) to choose which half still
// isolates the root. If the midpoint is itself the root exactly, it
// returns the degenerate point interval at that value.
func refineOnce(poly *univar.Poly, iv interval.Interval) interval.Interval {
	mid := iv.Midpoint()
	if poly.EvalAt(mid).Sign() == 0 {
		return interval.Point(mid)
	}

	left, right := iv.Bisect()
	seq := univar.SturmSequence(poly)
	if univar.SturmRootCount(seq, left.Left(), left.Right()) == 1 {
		return left
	}
	return right
}

// shrinkOnce refines r by one bisection step; Numeric values are
// returned unchanged since they are already exact.
func shrinkOnce(r RAN) RAN {
	if r.kind == Numeric {
		return r
	}
	next := refineOnce(r.poly, r.iv)
	if next.IsPoint() {
		return FromRat(next.Left())
	}
	return RAN{kind: Algebraic, poly: r.poly, iv: next}
}

// Refine shrinks r's isolating interval until its width is at most
// maxWidth. Numeric values are returned unchanged.
func Refine(r RAN, maxWidth *big.Rat) RAN {
	if r.kind == Numeric {
		return r
	}
	for r.kind == Algebraic && r.iv.Width().Cmp(maxWidth) > 0 {
		r = shrinkOnce(r)
	}
	return r
}

// Approximate returns a rational within maxWidth of r.
func Approximate(r RAN, maxWidth *big.Rat) *big.Rat {
	refined := Refine(r, maxWidth)
	if refined.kind == Numeric {
		return refined.rat
	}
	return refined.iv.Midpoint()
}

// Sign returns the sign of r as a real number (spec.md §4.C).
func (r RAN) Sign() int {
	if r.kind == Numeric {
		return r.rat.Sign()
	}

	zero := big.NewRat(0, 1)
	if r.poly.EvalAt(zero).Sign() == 0 && r.iv.Contains(zero) {
		return 0
	}

	iv := r.iv
	for iv.Contains(zero) {
		iv = refineOnce(r.poly, iv)
		if iv.IsPoint() {
			return iv.Left().Sign()
		}
	}
	if iv.Right().Sign() <= 0 {
		return -1
	}
	return 1
}

// SignOn evaluates the sign of q(r), the rational polynomial q
// applied to the real algebraic number r (spec.md §4.C).
func SignOn(r RAN, q *univar.Poly) (int, error) {
	if r.kind == Numeric {
		return q.EvalAt(r.rat).Sign(), nil
	}

	g := univar.GCD(r.poly, q)
	if g.Degree() >= 1 {
		seq := univar.SturmSequence(g)
		if univar.SturmRootCount(seq, r.iv.Left(), r.iv.Right()) >= 1 {
			return 0, nil
		}
	}

	iv := r.iv
	for {
		qv := q.EvalInterval(iv)
		zero := big.NewRat(0, 1)
		if !qv.Contains(zero) {
			return qv.Left().Sign(), nil
		}
		iv = refineOnce(r.poly, iv)
		if iv.IsPoint() {
			return q.EvalAt(iv.Left()).Sign(), nil
		}
	}
}

// Neg returns -r.
func Neg(r RAN) RAN {
	if r.kind == Numeric {
		return FromRat(new(big.Rat).Neg(r.rat))
	}
	negPoly := substituteNegX(r.poly)
	l := new(big.Rat).Neg(r.iv.Right())
	rr := new(big.Rat).Neg(r.iv.Left())
	iv, err := interval.New(l, rr, r.iv.RightOpen(), r.iv.LeftOpen())
	if err != nil {
		panic(err) // negating a valid interval always yields a valid one
	}
	return RAN{kind: Algebraic, poly: negPoly, iv: iv}
}

func substituteNegX(p *univar.Poly) *univar.Poly {
	cs := p.Coeffs()
	out := make([]*big.Rat, len(cs))
	for i, c := range cs {
		if i%2 == 0 {
			out[i] = c
		} else {
			out[i] = new(big.Rat).Neg(c)
		}
	}
	return univar.New(out)
}

// Compare returns -1, 0, or 1 according to whether a < b, a == b, or
// a > b as real numbers.
func Compare(a, b RAN) (int, error) {
	if a.kind == Numeric && b.kind == Numeric {
		return a.rat.Cmp(b.rat), nil
	}
	d, err := Add(a, Neg(b))
	if err != nil {
		return 0, err
	}
	return d.Sign(), nil
}

// shiftByRational returns r + q, for a Numeric q and an Algebraic r.
func shiftByRational(r RAN, q *big.Rat) RAN {
	shifted := shiftPoly(r.poly, q)
	l := new(big.Rat).Add(r.iv.Left(), q)
	rt := new(big.Rat).Add(r.iv.Right(), q)
	iv, err := interval.New(l, rt, r.iv.LeftOpen(), r.iv.RightOpen())
	if err != nil {
		panic(err)
	}
	return RAN{kind: Algebraic, poly: shifted, iv: iv}
}

// shiftPoly returns p(x - q) via Horner-style composition.
func shiftPoly(p *univar.Poly, q *big.Rat) *univar.Poly {
	cs := p.Coeffs()
	xMinusQ := univar.New([]*big.Rat{new(big.Rat).Neg(q), big.NewRat(1, 1)})
	result := univar.Zero()
	pow := univar.One()
	for _, c := range cs {
		result = result.Add(pow.Scale(c))
		pow = pow.Mul(xMinusQ)
	}
	return result
}

// scalePoly returns the defining polynomial of q*alpha where alpha is
// a root of p and q is a nonzero rational: clears denominators of
// p(x/q) by multiplying through by q^deg(p).
func scalePoly(p *univar.Poly, q *big.Rat) *univar.Poly {
	cs := p.Coeffs()
	d := len(cs) - 1
	out := make([]*big.Rat, len(cs))
	for i, c := range cs {
		qPow := big.NewRat(1, 1)
		for k := 0; k < d-i; k++ {
			qPow.Mul(qPow, q)
		}
		out[i] = new(big.Rat).Mul(c, qPow)
	}
	return univar.New(out)
}

// scaleByRational returns r * q, for a Numeric q and an Algebraic r.
func scaleByRational(r RAN, q *big.Rat) (RAN, error) {
	if q.Sign() == 0 {
		return FromRat(big.NewRat(0, 1)), nil
	}
	scaled := scalePoly(r.poly, q)
	l := new(big.Rat).Mul(r.iv.Left(), q)
	rt := new(big.Rat).Mul(r.iv.Right(), q)
	lOpen, rOpen := r.iv.LeftOpen(), r.iv.RightOpen()
	if q.Sign() < 0 {
		l, rt = rt, l
		lOpen, rOpen = rOpen, lOpen
	}
	iv, err := interval.New(l, rt, lOpen, rOpen)
	if err != nil {
		return RAN{}, err
	}
	return RAN{kind: Algebraic, poly: scaled, iv: iv}, nil
}

// promoteVar1 returns the arity-2 polynomial equal to the bottom
// variable x1, with no dependence on the top variable x2: a
// degree-0-in-x2 polynomial whose sole coefficient is the arity-1
// variable itself.
func promoteVar1() mvpoly.MPoly {
	p, err := mvpoly.FromCoeffsTop(2, []mvpoly.MPoly{mvpoly.Var(1)})
	if err != nil {
		panic(err) // Var(1) always has arity 1, so this can never fail
	}
	return p
}

// composeShift returns q(x1 - x2) as an arity-2 polynomial, used to
// build the resultant construction for Add: x2 stands for one
// summand, x1 for the result.
func composeShift(q *univar.Poly) mvpoly.MPoly {
	cs := q.Coeffs()
	x2 := mvpoly.Var(2)
	x1 := promoteVar1()
	base := x1.Sub(x2)
	result := mvpoly.Zero(2)
	pow := mvpoly.One(2)
	for _, c := range cs {
		result = result.Add(pow.Scale(c))
		pow = pow.Mul(base)
	}
	return result
}

// monomialArity2 returns c * x2^topDeg * x1^x1Deg.
func monomialArity2(topDeg, x1Deg int, c *big.Rat) mvpoly.MPoly {
	x2Part := mvpoly.FromUnivar(2, univar.Monomial(big.NewRat(1, 1), topDeg))
	x1Part := mvpoly.One(2)
	for i := 0; i < x1Deg; i++ {
		x1Part = x1Part.Mul(promoteVar1())
	}
	return x2Part.Mul(x1Part).Scale(c)
}

// composeHomogenize returns x2^d * q(x1/x2), used to build the
// resultant construction for Mul.
func composeHomogenize(q *univar.Poly, d int) mvpoly.MPoly {
	result := mvpoly.Zero(2)
	for i, c := range q.Coeffs() {
		if c.Sign() == 0 {
			continue
		}
		result = result.Add(monomialArity2(d-i, i, c))
	}
	return result
}

// toUnivar reads an arity-1 elimination result off as a plain
// univariate polynomial.
func toUnivar(res mvpoly.MPoly) (*univar.Poly, error) {
	if res.NVars() != 1 {
		return nil, fmt.Errorf("ran: expected arity-1 elimination result, got arity %d", res.NVars())
	}
	deg := res.DegreeTop()
	if deg < 0 {
		return univar.Zero(), nil
	}
	cs := make([]*big.Rat, deg+1)
	for i := 0; i <= deg; i++ {
		v, ok := res.CoeffTop(i).Rat()
		if !ok {
			return nil, errors.New("ran: elimination result coefficient is not a scalar")
		}
		cs[i] = v
	}
	return univar.New(cs), nil
}

// pickContained returns the unique root among roots whose location is
// contained in container, and true — or false if zero or more than
// one candidate matches (ambiguous, caller should refine and retry).
func pickContained(roots []RAN, container interval.Interval) (RAN, bool) {
	var found []RAN
	for _, r := range roots {
		if r.kind == Numeric {
			if container.Contains(r.rat) {
				found = append(found, r)
			}
			continue
		}
		if container.Contains(r.iv.Left()) && container.Contains(r.iv.Right()) {
			found = append(found, r)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return RAN{}, false
}

// addAlgebraic computes a + b for two Algebraic RANs via resultant
// elimination: Res_x2(a.poly(x2), b.poly(x1 - x2)) eliminates x2,
// leaving a polynomial in x1 whose roots include a+b; the isolating
// sum interval a.iv + b.iv then singles out which root that is.
func addAlgebraic(a, b RAN) (RAN, error) {
	for {
		f := mvpoly.FromUnivar(2, a.poly)
		g := composeShift(b.poly)
		res, err := mvpoly.ResultantTop(f, g)
		if err != nil {
			return RAN{}, err
		}
		resultPoly, err := toUnivar(res)
		if err != nil {
			return RAN{}, err
		}
		if resultPoly.IsZero() {
			return RAN{}, errors.New("ran: Add resultant elimination degenerated to the zero polynomial")
		}
		sqfree, err := resultPoly.SquareFreePart()
		if err != nil {
			return RAN{}, err
		}
		roots, err := Isolate(sqfree)
		if err != nil {
			return RAN{}, err
		}

		container := a.iv.Add(b.iv)
		if candidate, ok := pickContained(roots, container); ok {
			return candidate, nil
		}
		a, b = shrinkOnce(a), shrinkOnce(b)
	}
}

// mulAlgebraic computes a * b for two Algebraic RANs via resultant
// elimination: Res_x2(a.poly(x2), x2^deg(b) * b.poly(x1/x2)).
func mulAlgebraic(a, b RAN) (RAN, error) {
	for {
		f := mvpoly.FromUnivar(2, a.poly)
		g := composeHomogenize(b.poly, b.poly.Degree())
		res, err := mvpoly.ResultantTop(f, g)
		if err != nil {
			return RAN{}, err
		}
		resultPoly, err := toUnivar(res)
		if err != nil {
			return RAN{}, err
		}
		if resultPoly.IsZero() {
			return RAN{}, errors.New("ran: Mul resultant elimination degenerated to the zero polynomial")
		}
		sqfree, err := resultPoly.SquareFreePart()
		if err != nil {
			return RAN{}, err
		}
		roots, err := Isolate(sqfree)
		if err != nil {
			return RAN{}, err
		}

		container := a.iv.Mul(b.iv)
		if candidate, ok := pickContained(roots, container); ok {
			return candidate, nil
		}
		a, b = shrinkOnce(a), shrinkOnce(b)
	}
}

// Add returns a + b.
func Add(a, b RAN) (RAN, error) {
	switch {
	case a.kind == Numeric && b.kind == Numeric:
		return FromRat(new(big.Rat).Add(a.rat, b.rat)), nil
	case a.kind == Numeric:
		return shiftByRational(b, a.rat), nil
	case b.kind == Numeric:
		return shiftByRational(a, b.rat), nil
	default:
		return addAlgebraic(a, b)
	}
}

// Mul returns a * b.
func Mul(a, b RAN) (RAN, error) {
	switch {
	case a.kind == Numeric && b.kind == Numeric:
		return FromRat(new(big.Rat).Mul(a.rat, b.rat)), nil
	case a.kind == Numeric:
		return scaleByRational(b, a.rat)
	case b.kind == Numeric:
		return scaleByRational(a, b.rat)
	default:
		return mulAlgebraic(a, b)
	}
}

// isolateRec finds all roots of p strictly between lo and hi, given
// p's Sturm sequence, appending them to *roots in ascending order.
// hi may itself be a root (the left half after a root midpoint); the
// Sturm count includes such a root, so it is subtracted here and the
// interval is bisected further rather than emitted with a root endpoint.
func isolateRec(p *univar.Poly, seq []*univar.Poly, lo, hi *big.Rat, roots *[]RAN) error {
	count := univar.SturmRootCount(seq, lo, hi)
	hiIsRoot := p.EvalAt(hi).Sign() == 0
	if hiIsRoot {
		count--
	}
	if count == 0 {
		return nil
	}
	if count == 1 && !hiIsRoot {
		iv, err := interval.New(lo, hi, true, true)
		if err != nil {
			return err
		}
		r, err := NewAlgebraic(p, iv)
		if err != nil {
			return err
		}
		*roots = append(*roots, r)
		return nil
	}

	mid := new(big.Rat).Add(lo, hi)
	mid.Quo(mid, big.NewRat(2, 1))

	if p.EvalAt(mid).Sign() == 0 {
		if err := isolateRec(p, seq, lo, mid, roots); err != nil {
			return err
		}
		*roots = append(*roots, FromRat(new(big.Rat).Set(mid)))
		return isolateRec(p, seq, mid, hi, roots)
	}

	if err := isolateRec(p, seq, lo, mid, roots); err != nil {
		return err
	}
	return isolateRec(p, seq, mid, hi, roots)
}

// Isolate computes every real root of the square-free polynomial p,
// each as a RAN, in ascending order (spec.md §4.D).
func Isolate(p *univar.Poly) ([]RAN, error) {
	if p.IsZero() {
		return nil, ErrZeroPolynomial
	}
	if !p.IsSquareFree() {
		return nil, ErrNotSquareFree
	}
	if p.Degree() <= 0 {
		return nil, nil
	}
	if p.Degree() == 1 {
		root := new(big.Rat).Neg(p.Coeff(0))
		root.Quo(root, p.Coeff(1))
		return []RAN{FromRat(root)}, nil
	}

	bound, err := p.CauchyBound()
	if err != nil {
		return nil, err
	}
	seq := univar.SturmSequence(p)

	lo := new(big.Rat).Neg(bound)
	hi := new(big.Rat).Set(bound)

	var roots []RAN
	if err := isolateRec(p, seq, lo, hi, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// EvalMPolyAt fully substitutes point (point[i] for variable x_{i+1},
// matching the MPoly arity convention that x_{i+1} is p's variable at
// arity i+1) into p, which must have arity len(point), returning a
// single RAN. Implements spec.md §4.E's "substitution of lower
// variables by RANs" primitive via nested Horner evaluation using
// Add/Mul at each level — each step substitutes one already-known RAN
// into one already-known RAN-valued accumulator, which is exactly
// what Add/Mul's own resultant-plus-interval-disambiguation
// construction is built to do correctly, with no risk of conflating a
// root with one of its conjugates (unlike a bare resultant elimination
// against a whole defining polynomial would).
func EvalMPolyAt(p mvpoly.MPoly, point []RAN) (RAN, error) {
	if p.NVars() != len(point) {
		return RAN{}, fmt.Errorf("ran: EvalMPolyAt point length %d does not match arity %d", len(point), p.NVars())
	}
	if p.NVars() == 0 {
		v, _ := p.Rat()
		return FromRat(v), nil
	}

	x := point[len(point)-1]
	lower := point[:len(point)-1]

	acc := FromRat(big.NewRat(0, 1))
	for i := p.DegreeTop(); i >= 0; i-- {
		coeff, err := EvalMPolyAt(p.CoeffTop(i), lower)
		if err != nil {
			return RAN{}, err
		}
		acc, err = Mul(acc, x)
		if err != nil {
			return RAN{}, err
		}
		acc, err = Add(acc, coeff)
		if err != nil {
			return RAN{}, err
		}
	}
	return acc, nil
}

// String renders r using the grammar from spec.md §6: a bare rational
// for a Numeric value, "root_of(p, (l, r))" for an Algebraic one.
func (r RAN) String() string {
	if r.kind == Numeric {
		return r.rat.RatString()
	}
	return fmt.Sprintf("root_of(%s, %s)", r.poly, r.iv)
}
