// Package univar implements exact arithmetic for univariate polynomials
// with rational coefficients: canonicalization, long division, the
// Euclidean algorithm, square-free reduction, Sturm sequences, Cauchy
// bounds, and resultants. It is the exact-arithmetic facility spec.md
// assumes is available, built directly on math/big.Rat.
package univar

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/ead/ead/interval"
)

// maxOrdered returns the larger of a and b. Used to size coefficient
// slices to the wider of two operands (Add, and anywhere else degree
// bookkeeping needs a plain numeric max) without repeating the
// three-line comparison inline.
func maxOrdered[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// ErrZeroPolynomial is returned by operations that are undefined for
// the zero polynomial (e.g. square-free reduction, Cauchy bound).
var ErrZeroPolynomial = errors.New("univar: operation undefined for the zero polynomial")

// ErrZeroDivisor is returned by DivMod when the divisor is the zero
// polynomial.
var ErrZeroDivisor = errors.New("univar: division by zero polynomial")

// Poly is a univariate polynomial with rational coefficients, stored
// lowest-degree first. A canonical Poly never has a zero leading
// coefficient; the zero polynomial is represented by an empty slice.
type Poly struct {
	coeffs []*big.Rat
}

// New canonicalizes coeffs (lowest degree first) into a Poly, trimming
// trailing zero high-degree coefficients and copying every entry so
// the caller's slice may be reused.
func New(coeffs []*big.Rat) *Poly {
	n := len(coeffs)
	for n > 0 && coeffs[n-1].Sign() == 0 {
		n--
	}

	out := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Rat).Set(coeffs[i])
	}

	return &Poly{coeffs: out}
}

// Zero returns the zero polynomial.
func Zero() *Poly { return &Poly{} }

// One returns the constant polynomial 1.
func One() *Poly { return FromRat(big.NewRat(1, 1)) }

// FromRat returns the degree-0 polynomial q.
func FromRat(q *big.Rat) *Poly { return New([]*big.Rat{q}) }

// Monomial returns coef * x^deg.
func Monomial(coef *big.Rat, deg int) *Poly {
	if coef.Sign() == 0 {
		return Zero()
	}
	out := make([]*big.Rat, deg+1)
	for i := 0; i < deg; i++ {
		out[i] = big.NewRat(0, 1)
	}
	out[deg] = new(big.Rat).Set(coef)
	return &Poly{coeffs: out}
}

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return len(p.coeffs) == 0 }

// Degree returns the polynomial's degree, or -1 for the zero
// polynomial.
func (p *Poly) Degree() int { return len(p.coeffs) - 1 }

// LeadingCoeff returns the coefficient of the highest-degree term, or
// zero for the zero polynomial.
func (p *Poly) LeadingCoeff() *big.Rat {
	if p.IsZero() {
		return big.NewRat(0, 1)
	}
	return new(big.Rat).Set(p.coeffs[len(p.coeffs)-1])
}

// Coeff returns the coefficient of x^i, or zero if i is out of range.
func (p *Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.coeffs) {
		return big.NewRat(0, 1)
	}
	return new(big.Rat).Set(p.coeffs[i])
}

// Coeffs returns a copy of the coefficient slice, lowest degree first.
func (p *Poly) Coeffs() []*big.Rat {
	out := make([]*big.Rat, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = new(big.Rat).Set(c)
	}
	return out
}

// Copy returns a deep copy of p.
func (p *Poly) Copy() *Poly { return New(p.coeffs) }

// Equal reports whether p and q are structurally identical (same
// canonical coefficients), not merely equal as real-valued functions
// composed differently.
func (p *Poly) Equal(q *Poly) bool {
	if len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if p.coeffs[i].Cmp(q.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns p + q.
func (p *Poly) Add(q *Poly) *Poly {
	n := maxOrdered(len(p.coeffs), len(q.coeffs))
	out := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Rat).Add(p.Coeff(i), q.Coeff(i))
	}
	return New(out)
}

// Neg returns -p.
func (p *Poly) Neg() *Poly {
	out := make([]*big.Rat, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = new(big.Rat).Neg(c)
	}
	return &Poly{coeffs: out}
}

// Sub returns p - q.
func (p *Poly) Sub(q *Poly) *Poly { return p.Add(q.Neg()) }

// Scale returns c * p.
func (p *Poly) Scale(c *big.Rat) *Poly {
	if c.Sign() == 0 {
		return Zero()
	}
	out := make([]*big.Rat, len(p.coeffs))
	for i, coef := range p.coeffs {
		out[i] = new(big.Rat).Mul(coef, c)
	}
	return New(out)
}

// Mul returns p * q via schoolbook convolution.
func (p *Poly) Mul(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return Zero()
	}
	out := make([]*big.Rat, len(p.coeffs)+len(q.coeffs)-1)
	for i := range out {
		out[i] = big.NewRat(0, 1)
	}
	for i, a := range p.coeffs {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range q.coeffs {
			out[i+j].Add(out[i+j], new(big.Rat).Mul(a, b))
		}
	}
	return New(out)
}

// shiftScale returns c * x^deg * p, used internally by DivMod to
// subtract a monomial multiple of the divisor from the remainder.
func (p *Poly) shiftScale(c *big.Rat, deg int) *Poly {
	out := make([]*big.Rat, len(p.coeffs)+deg)
	for i := 0; i < deg; i++ {
		out[i] = big.NewRat(0, 1)
	}
	for i, coef := range p.coeffs {
		out[i+deg] = new(big.Rat).Mul(coef, c)
	}
	return New(out)
}

// EvalAt evaluates p(x) exactly via Horner's rule.
func (p *Poly) EvalAt(x *big.Rat) *big.Rat {
	result := big.NewRat(0, 1)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.coeffs[i])
	}
	return result
}

// EvalInterval evaluates p on an interval via Horner's rule using
// outward-rounded interval arithmetic (spec.md §4.A); since rationals
// are closed under +,-,*, the result is exact.
func (p *Poly) EvalInterval(iv interval.Interval) interval.Interval {
	result := interval.Point(big.NewRat(0, 1))
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result = result.Mul(iv)
		result = result.Add(interval.Point(p.coeffs[i]))
	}
	return result
}

// Derivative returns p'.
func (p *Poly) Derivative() *Poly {
	if p.Degree() <= 0 {
		return Zero()
	}
	out := make([]*big.Rat, len(p.coeffs)-1)
	for i := 1; i < len(p.coeffs); i++ {
		out[i-1] = new(big.Rat).Mul(p.coeffs[i], big.NewRat(int64(i), 1))
	}
	return New(out)
}

// DivMod returns the quotient and remainder of p divided by d, such
// that p = q*d + r and deg(r) < deg(d). Follows Algorithm 2.5 in von
// zur Gathen & Gerhard's Modern Computer Algebra, generalized from the
// teacher's finite-field long division to exact rational coefficients.
func (p *Poly) DivMod(d *Poly) (q, r *Poly, err error) {
	if d.IsZero() {
		return nil, nil, ErrZeroDivisor
	}

	n, m := p.Degree(), d.Degree()
	if n < m {
		return Zero(), p.Copy(), nil
	}

	rem := p.Copy()
	qCoeffs := make([]*big.Rat, n-m+1)
	dLead := d.LeadingCoeff()

	for i := n - m; i >= 0; i-- {
		if rem.Degree() == m+i {
			c := new(big.Rat).Quo(rem.LeadingCoeff(), dLead)
			qCoeffs[i] = c
			rem = rem.Sub(d.shiftScale(c, i))
		} else {
			qCoeffs[i] = big.NewRat(0, 1)
		}
	}

	return New(qCoeffs), rem, nil
}

// gcdInt returns the nonnegative greatest common divisor of a and b.
func gcdInt(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	for y.Sign() != 0 {
		x, y = y, new(big.Int).Mod(x, y)
	}
	return x
}

func lcmInt(a, b *big.Int) *big.Int {
	g := gcdInt(a, b)
	if g.Sign() == 0 {
		return big.NewInt(0)
	}
	prod := new(big.Int).Mul(a, b)
	prod.Abs(prod)
	return prod.Div(prod, g)
}

// Content returns the rational content of p: the positive rational c
// such that p/c has integer, coprime coefficients. Used to keep
// coefficient growth bounded when running the Euclidean algorithm.
func (p *Poly) Content() *big.Rat {
	if p.IsZero() {
		return big.NewRat(0, 1)
	}

	den := big.NewInt(1)
	for _, c := range p.coeffs {
		den = lcmInt(den, c.Denom())
	}

	g := big.NewInt(0)
	for _, c := range p.coeffs {
		scale := new(big.Int).Div(den, c.Denom())
		term := new(big.Int).Mul(c.Num(), scale)
		g = gcdInt(g, term)
	}

	return new(big.Rat).SetFrac(g, den)
}

// PrimitivePart returns p / Content(p).
func (p *Poly) PrimitivePart() *Poly {
	if p.IsZero() {
		return Zero()
	}
	c := p.Content()
	return p.Scale(new(big.Rat).Inv(c))
}

// GCD computes gcd(p, q) via the Euclidean algorithm on primitive
// parts (spec.md §4.B), normalized to a positive leading coefficient.
// Grounded on the teacher's PartialExtendedEuclidean reduction loop
// (field/poly.go), generalized to exact rational coefficients (no
// stopDegree parameter: this kernel always runs the algorithm to
// completion, unlike the teacher's error-correcting-code use case
// which stops early to bound decoder complexity).
func GCD(p, q *Poly) *Poly {
	a, b := p.PrimitivePart(), q.PrimitivePart()
	if a.IsZero() {
		a, b = b, a
	}

	for !b.IsZero() {
		_, r, _ := a.DivMod(b)
		a, b = b, r.PrimitivePart()
	}

	if a.LeadingCoeff().Sign() < 0 {
		a = a.Scale(big.NewRat(-1, 1))
	}

	return a
}

// SquareFreePart returns p / gcd(p, p'), which has the same roots as
// p each with multiplicity one.
func (p *Poly) SquareFreePart() (*Poly, error) {
	if p.IsZero() {
		return nil, ErrZeroPolynomial
	}

	g := GCD(p, p.Derivative())
	if g.Degree() <= 0 {
		return p.PrimitivePart(), nil
	}

	q, _, err := p.DivMod(g)
	if err != nil {
		return nil, err
	}
	return q.PrimitivePart(), nil
}

// IsSquareFree reports whether gcd(p, p') is a nonzero constant.
func (p *Poly) IsSquareFree() bool {
	if p.IsZero() {
		return false
	}
	return GCD(p, p.Derivative()).Degree() <= 0
}

// SturmSequence builds the standard Sturm sequence p0=p, p1=p',
// p_{i+1} = -rem(p_{i-1}, p_i), stopping once a nonzero constant or
// the zero polynomial is reached. p must be square-free (spec.md
// §4.B); the sequence is meaningless otherwise.
func SturmSequence(p *Poly) []*Poly {
	seq := []*Poly{p.Copy(), p.Derivative()}
	for {
		cur := seq[len(seq)-1]
		if cur.IsZero() || cur.Degree() == 0 {
			break
		}
		prev := seq[len(seq)-2]
		_, r, _ := prev.DivMod(cur)
		seq = append(seq, r.Neg())
	}
	return seq
}

// signChangesAt counts the sign changes in seq evaluated at x,
// ignoring zeros (spec.md §4.B).
func signChangesAt(seq []*Poly, x *big.Rat) int {
	changes := 0
	prevSign := 0
	haveSign := false
	for _, poly := range seq {
		s := poly.EvalAt(x).Sign()
		if s == 0 {
			continue
		}
		if haveSign && s != prevSign {
			changes++
		}
		prevSign = s
		haveSign = true
	}
	return changes
}

// SturmRootCount returns the number of distinct real roots of the
// square-free polynomial whose Sturm sequence is seq, in (lo, hi]:
// strictly between lo and hi when neither is a root, while a root at
// hi is counted and a root at lo is not (spec.md §4.B).
func SturmRootCount(seq []*Poly, lo, hi *big.Rat) int {
	return signChangesAt(seq, lo) - signChangesAt(seq, hi)
}

// CauchyBound returns 1 + max(|a_i / a_n|) over i < n, an a-priori
// bound B such that every real root of p lies in (-B, B). Grounded on
// SeanJxie-polygo's CauchyBound (mathlib/polynomial/polynomial.go in
// the retrieval pack), reimplemented exactly over *big.Rat.
func (p *Poly) CauchyBound() (*big.Rat, error) {
	n := p.Degree()
	if n <= 0 {
		return nil, fmt.Errorf("univar: CauchyBound requires a non-constant polynomial: %w", ErrZeroPolynomial)
	}

	lead := p.LeadingCoeff()
	maxRatio := big.NewRat(0, 1)
	for i := 0; i < n; i++ {
		ratio := new(big.Rat).Quo(p.coeffs[i], lead)
		ratio.Abs(ratio)
		if ratio.Cmp(maxRatio) > 0 {
			maxRatio = ratio
		}
	}

	return new(big.Rat).Add(big.NewRat(1, 1), maxRatio), nil
}

// newRatMatrix allocates a rows x cols matrix of zero rationals.
func newRatMatrix(rows, cols int) [][]*big.Rat {
	m := make([][]*big.Rat, rows)
	for i := range m {
		m[i] = make([]*big.Rat, cols)
		for j := range m[i] {
			m[i][j] = big.NewRat(0, 1)
		}
	}
	return m
}

// gaussianDeterminant computes det(m) via Gaussian elimination with
// partial pivoting over the field of rationals. m is consumed.
func gaussianDeterminant(m [][]*big.Rat) *big.Rat {
	n := len(m)
	det := big.NewRat(1, 1)

	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return big.NewRat(0, 1)
		}
		if pivot != col {
			m[pivot], m[col] = m[col], m[pivot]
			det.Neg(det)
		}

		det.Mul(det, m[col][col])
		inv := new(big.Rat).Inv(m[col][col])

		for row := col + 1; row < n; row++ {
			if m[row][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Mul(m[row][col], inv)
			for k := col; k < n; k++ {
				term := new(big.Rat).Mul(factor, m[col][k])
				m[row][k] = new(big.Rat).Sub(m[row][k], term)
			}
		}
	}

	return det
}

func highToLow(p *Poly, deg int) []*big.Rat {
	out := make([]*big.Rat, deg+1)
	for i := 0; i <= deg; i++ {
		out[i] = p.Coeff(deg - i)
	}
	return out
}

// Resultant computes Res(p, q) via the determinant of the Sylvester
// matrix, by Gaussian elimination over the field of rationals.
func Resultant(p, q *Poly) *big.Rat {
	n, m := p.Degree(), q.Degree()
	if n < 0 || m < 0 {
		return big.NewRat(0, 1)
	}
	size := n + m
	if size == 0 {
		return big.NewRat(1, 1)
	}

	mat := newRatMatrix(size, size)
	pHigh := highToLow(p, n)
	qHigh := highToLow(q, m)

	for i := 0; i < m; i++ {
		for j, c := range pHigh {
			mat[i][i+j] = c
		}
	}
	for i := 0; i < n; i++ {
		for j, c := range qHigh {
			mat[m+i][i+j] = c
		}
	}

	return gaussianDeterminant(mat)
}

// String renders p in the grammar from spec.md §6: descending powers,
// '^' for exponentiation, rationals written "a/b".
func (p *Poly) String() string {
	if p.IsZero() {
		return "0"
	}

	var b strings.Builder
	first := true
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		c := p.coeffs[i]
		if c.Sign() == 0 {
			continue
		}
		if !first {
			if c.Sign() > 0 {
				b.WriteString(" + ")
			} else {
				b.WriteString(" - ")
			}
		} else if c.Sign() < 0 {
			b.WriteString("-")
		}
		first = false

		abs := new(big.Rat).Abs(c)
		switch {
		case i == 0:
			b.WriteString(abs.RatString())
		case i == 1:
			if abs.Cmp(big.NewRat(1, 1)) != 0 {
				b.WriteString(abs.RatString())
				b.WriteString("*")
			}
			b.WriteString("x")
		default:
			if abs.Cmp(big.NewRat(1, 1)) != 0 {
				b.WriteString(abs.RatString())
				b.WriteString("*")
			}
			fmt.Fprintf(&b, "x^%d", i)
		}
	}
	return b.String()
}
