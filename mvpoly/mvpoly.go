// Package mvpoly implements multivariate polynomials with rational
// coefficients, represented recursively: an MPoly of arity k is a
// polynomial in its "top" variable whose coefficients are MPolys of
// arity k-1, bottoming out at a plain rational for arity 0. This
// mirrors spec.md §4.E's recursive representation design note.
//
// Every operation that eliminates a variable (ResultantTop,
// DiscriminantTop, EvalTopAt) always acts on the top (outermost)
// variable of its operands. Callers that need to eliminate a specific
// variable from a larger system (CAD projection, RAN arithmetic)
// arrange construction so the variable to be eliminated is always the
// current top variable — this avoids needing general variable
// reordering machinery.
package mvpoly

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/ead/ead/univar"
)

// maxOrdered returns the larger of a and b, used to size a coefficient
// slice to the wider of two operands.
func maxOrdered[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// MPoly is a multivariate polynomial. nvars is its arity: nvars == 0
// means a plain rational (rat); nvars > 0 means a polynomial in the
// top variable with coefficients of arity nvars-1.
type MPoly struct {
	nvars  int
	coeffs []MPoly
	rat    *big.Rat
}

// Zero returns the zero polynomial of the given arity.
func Zero(nvars int) MPoly {
	if nvars == 0 {
		return MPoly{nvars: 0, rat: big.NewRat(0, 1)}
	}
	return MPoly{nvars: nvars}
}

// One returns the constant polynomial 1 of the given arity.
func One(nvars int) MPoly { return FromRat(nvars, big.NewRat(1, 1)) }

// FromRat returns the constant polynomial q at the given arity.
func FromRat(nvars int, q *big.Rat) MPoly {
	if nvars == 0 {
		return MPoly{nvars: 0, rat: new(big.Rat).Set(q)}
	}
	if q.Sign() == 0 {
		return Zero(nvars)
	}
	return MPoly{nvars: nvars, coeffs: []MPoly{FromRat(nvars-1, q)}}
}

// Var returns the top variable itself (degree 1, coefficient 1) of
// the given arity; nvars must be at least 1.
func Var(nvars int) MPoly {
	if nvars < 1 {
		panic("mvpoly: Var requires nvars >= 1")
	}
	return MPoly{nvars: nvars, coeffs: []MPoly{Zero(nvars - 1), One(nvars - 1)}}
}

// FromUnivar promotes a plain univariate polynomial (over the top
// variable) to arity nvars, with constant lower-variable coefficients.
func FromUnivar(nvars int, p *univar.Poly) MPoly {
	if nvars < 1 {
		panic("mvpoly: FromUnivar requires nvars >= 1")
	}
	cs := p.Coeffs()
	if len(cs) == 0 {
		return Zero(nvars)
	}
	coeffs := make([]MPoly, len(cs))
	for i, c := range cs {
		coeffs[i] = FromRat(nvars-1, c)
	}
	return newFromCoeffs(nvars, coeffs)
}

// newFromCoeffs trims trailing zero top-degree coefficients.
func newFromCoeffs(nvars int, coeffs []MPoly) MPoly {
	n := len(coeffs)
	for n > 0 && coeffs[n-1].IsZero() {
		n--
	}
	if n == 0 {
		return Zero(nvars)
	}
	return MPoly{nvars: nvars, coeffs: coeffs[:n]}
}

// FromCoeffsTop builds an arity-nvars polynomial from explicit
// top-variable coefficients coeffs[i] (the coefficient of (top
// variable)^i), each of arity nvars-1. It is the general-purpose
// counterpart to FromUnivar and Var, for callers (such as package ran)
// that need to embed a lower-arity polynomial at a specific top-degree
// rather than build one up from a plain univariate polynomial.
func FromCoeffsTop(nvars int, coeffs []MPoly) (MPoly, error) {
	if nvars < 1 {
		return MPoly{}, fmt.Errorf("mvpoly: FromCoeffsTop requires nvars >= 1")
	}
	for i, c := range coeffs {
		if c.nvars != nvars-1 {
			return MPoly{}, fmt.Errorf("mvpoly: FromCoeffsTop coefficient %d has arity %d, want %d", i, c.nvars, nvars-1)
		}
	}
	return newFromCoeffs(nvars, coeffs), nil
}

// NVars returns p's arity.
func (p MPoly) NVars() int { return p.nvars }

// IsZero reports whether p is the zero polynomial.
func (p MPoly) IsZero() bool {
	if p.nvars == 0 {
		return p.rat == nil || p.rat.Sign() == 0
	}
	return len(p.coeffs) == 0
}

// Rat returns p's rational value and true if p has arity 0.
func (p MPoly) Rat() (*big.Rat, bool) {
	if p.nvars != 0 {
		return nil, false
	}
	if p.rat == nil {
		return big.NewRat(0, 1), true
	}
	return new(big.Rat).Set(p.rat), true
}

// DegreeTop returns the degree in the top variable, or -1 for the
// zero polynomial (and for arity-0 constants, which have no top
// variable).
func (p MPoly) DegreeTop() int {
	if p.nvars == 0 {
		return -1
	}
	return len(p.coeffs) - 1
}

// CoeffTop returns the coefficient of (top variable)^i.
func (p MPoly) CoeffTop(i int) MPoly {
	coeffNVars := p.nvars - 1
	if i < 0 || i >= len(p.coeffs) {
		return Zero(coeffNVars)
	}
	return p.coeffs[i]
}

// LeadingCoeffTop returns the coefficient of the highest-degree term
// in the top variable.
func (p MPoly) LeadingCoeffTop() MPoly {
	d := p.DegreeTop()
	if d < 0 {
		return Zero(p.nvars - 1)
	}
	return p.coeffs[d]
}

// Add returns p + q. Panics if p and q have different arity.
func (p MPoly) Add(q MPoly) MPoly {
	if p.nvars != q.nvars {
		panic("mvpoly: Add operands have different arity")
	}
	if p.nvars == 0 {
		return FromRat(0, new(big.Rat).Add(p.rat, q.rat))
	}
	n := maxOrdered(len(p.coeffs), len(q.coeffs))
	coeffs := make([]MPoly, n)
	for i := 0; i < n; i++ {
		coeffs[i] = p.CoeffTop(i).Add(q.CoeffTop(i))
	}
	return newFromCoeffs(p.nvars, coeffs)
}

// Neg returns -p.
func (p MPoly) Neg() MPoly {
	if p.nvars == 0 {
		return FromRat(0, new(big.Rat).Neg(p.rat))
	}
	coeffs := make([]MPoly, len(p.coeffs))
	for i, c := range p.coeffs {
		coeffs[i] = c.Neg()
	}
	return MPoly{nvars: p.nvars, coeffs: coeffs}
}

// Sub returns p - q.
func (p MPoly) Sub(q MPoly) MPoly { return p.Add(q.Neg()) }

// Scale returns c * p.
func (p MPoly) Scale(c *big.Rat) MPoly {
	if p.nvars == 0 {
		return FromRat(0, new(big.Rat).Mul(p.rat, c))
	}
	if c.Sign() == 0 {
		return Zero(p.nvars)
	}
	coeffs := make([]MPoly, len(p.coeffs))
	for i, co := range p.coeffs {
		coeffs[i] = co.Scale(c)
	}
	return newFromCoeffs(p.nvars, coeffs)
}

// Mul returns p * q via schoolbook convolution in the top variable.
// Panics if p and q have different arity.
func (p MPoly) Mul(q MPoly) MPoly {
	if p.nvars != q.nvars {
		panic("mvpoly: Mul operands have different arity")
	}
	if p.nvars == 0 {
		return FromRat(0, new(big.Rat).Mul(p.rat, q.rat))
	}
	if p.IsZero() || q.IsZero() {
		return Zero(p.nvars)
	}
	n := len(p.coeffs) + len(q.coeffs) - 1
	coeffs := make([]MPoly, n)
	for i := range coeffs {
		coeffs[i] = Zero(p.nvars - 1)
	}
	for i, a := range p.coeffs {
		if a.IsZero() {
			continue
		}
		for j, b := range q.coeffs {
			coeffs[i+j] = coeffs[i+j].Add(a.Mul(b))
		}
	}
	return newFromCoeffs(p.nvars, coeffs)
}

// Equal reports whether p and q are structurally identical.
func (p MPoly) Equal(q MPoly) bool {
	if p.nvars != q.nvars {
		return false
	}
	if p.nvars == 0 {
		return p.rat.Cmp(q.rat) == 0
	}
	if len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if !p.coeffs[i].Equal(q.coeffs[i]) {
			return false
		}
	}
	return true
}

// DerivativeTop returns the derivative of p with respect to its top
// variable; the result keeps p's arity.
func (p MPoly) DerivativeTop() MPoly {
	if p.nvars == 0 {
		return Zero(0)
	}
	d := p.DegreeTop()
	if d <= 0 {
		return Zero(p.nvars)
	}
	coeffs := make([]MPoly, d)
	for i := 1; i <= d; i++ {
		coeffs[i-1] = p.coeffs[i].Scale(big.NewRat(int64(i), 1))
	}
	return newFromCoeffs(p.nvars, coeffs)
}

// EvalTopAt substitutes a known rational value for p's top variable
// via Horner's rule, returning an MPoly of arity nvars-1 over the
// remaining (lower) variables.
func EvalTopAt(p MPoly, x *big.Rat) MPoly {
	if p.nvars == 0 {
		return p
	}
	result := Zero(p.nvars - 1)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result = result.Scale(x)
		result = result.Add(p.coeffs[i])
	}
	return result
}

func highToLowTop(p MPoly, deg int) []MPoly {
	out := make([]MPoly, deg+1)
	for i := 0; i <= deg; i++ {
		out[i] = p.CoeffTop(deg - i)
	}
	return out
}

// determinant computes det(m) via Laplace (cofactor) expansion along
// the first row. This needs only Add/Sub/Mul on MPoly, never
// division, which is what makes it safe to use over the
// non-field coefficient ring produced by Sylvester-matrix
// construction. Adequate for the small matrices CAD projection
// produces; not intended for large dense systems.
func determinant(m [][]MPoly) MPoly {
	n := len(m)
	if n == 0 {
		panic("mvpoly: determinant of an empty matrix")
	}
	if n == 1 {
		return m[0][0]
	}

	nvars := m[0][0].nvars
	result := Zero(nvars)
	for col := 0; col < n; col++ {
		entry := m[0][col]
		if entry.IsZero() {
			continue
		}
		minor := minorMatrix(m, 0, col)
		term := entry.Mul(determinant(minor))
		if col%2 == 1 {
			term = term.Neg()
		}
		result = result.Add(term)
	}
	return result
}

func minorMatrix(m [][]MPoly, row, col int) [][]MPoly {
	n := len(m)
	out := make([][]MPoly, 0, n-1)
	for i := 0; i < n; i++ {
		if i == row {
			continue
		}
		rowOut := make([]MPoly, 0, n-1)
		for j := 0; j < n; j++ {
			if j == col {
				continue
			}
			rowOut = append(rowOut, m[i][j])
		}
		out = append(out, rowOut)
	}
	return out
}

// ResultantTop eliminates the top variable shared by p and q (which
// must have equal arity), returning Res(p, q) as an MPoly of arity
// nvars-1 over the remaining variables, via the determinant of the
// Sylvester matrix.
func ResultantTop(p, q MPoly) (MPoly, error) {
	if p.nvars != q.nvars {
		return MPoly{}, fmt.Errorf("mvpoly: resultant operands have different arity (%d vs %d)", p.nvars, q.nvars)
	}
	if p.nvars == 0 {
		return MPoly{}, fmt.Errorf("mvpoly: resultant requires arity >= 1 (no top variable to eliminate)")
	}

	coeffNVars := p.nvars - 1
	n, m := p.DegreeTop(), q.DegreeTop()
	if n < 0 || m < 0 {
		return Zero(coeffNVars), nil
	}
	size := n + m
	if size == 0 {
		return One(coeffNVars), nil
	}

	mat := make([][]MPoly, size)
	for i := range mat {
		mat[i] = make([]MPoly, size)
		for j := range mat[i] {
			mat[i][j] = Zero(coeffNVars)
		}
	}

	pHigh := highToLowTop(p, n)
	qHigh := highToLowTop(q, m)

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

	return determinant(mat), nil
}

// DiscriminantTop returns Res(p, p') eliminating the top variable.
// Unlike the textbook disc(p) = (-1)^(n(n-1)/2)/a_n * Res(p,p'), this
// intentionally skips the division by the leading coefficient a_n:
// a_n is already added to the projection set as its own generator
// (see cad.projectOne), so for every point where a_n != 0 this
// polynomial vanishes exactly where the true discriminant does, and
// dividing it out would require general multivariate exact division,
// which this package does not implement (see DESIGN.md).
func DiscriminantTop(p MPoly) (MPoly, error) {
	return ResultantTop(p, p.DerivativeTop())
}

// frac is an element of the field of fractions of MPolys of a fixed
// arity. Fractions are never reduced (no gcd cancellation) — only
// cross-multiplication is used, which is always exact.
type frac struct {
	num, den MPoly
}

func fracFromMPoly(p MPoly) frac { return frac{num: p, den: One(p.nvars)} }

func zeroFrac(nvars int) frac { return frac{num: Zero(nvars), den: One(nvars)} }

func (a frac) isZero() bool { return a.num.IsZero() }

func (a frac) neg() frac { return frac{num: a.num.Neg(), den: a.den} }

func (a frac) add(b frac) frac {
	return frac{num: a.num.Mul(b.den).Add(b.num.Mul(a.den)), den: a.den.Mul(b.den)}
}

func (a frac) sub(b frac) frac { return a.add(b.neg()) }

func (a frac) mul(b frac) frac {
	return frac{num: a.num.Mul(b.num), den: a.den.Mul(b.den)}
}

func (a frac) inv() frac { return frac{num: a.den, den: a.num} }

func (a frac) div(b frac) frac { return a.mul(b.inv()) }

// fracPoly is a polynomial in the (already-eliminated) top variable
// with coefficients in the field of fractions of arity-`nvars` MPolys.
// Used only internally to run the Euclidean algorithm over a genuine
// field, which plain MPoly coefficients are not.
type fracPoly struct {
	nvars  int
	coeffs []frac
}

func fracPolyFromMPoly(p MPoly) fracPoly {
	coeffNVars := p.nvars - 1
	n := p.DegreeTop()
	if n < 0 {
		return fracPoly{nvars: coeffNVars}
	}
	coeffs := make([]frac, n+1)
	for i := 0; i <= n; i++ {
		coeffs[i] = fracFromMPoly(p.CoeffTop(i))
	}
	return fracPoly{nvars: coeffNVars, coeffs: coeffs}
}

func (fp fracPoly) at(i int) frac {
	if i < 0 || i >= len(fp.coeffs) {
		return zeroFrac(fp.nvars)
	}
	return fp.coeffs[i]
}

func (fp fracPoly) degree() int {
	for i := len(fp.coeffs) - 1; i >= 0; i-- {
		if !fp.coeffs[i].isZero() {
			return i
		}
	}
	return -1
}

func (fp fracPoly) leading() frac {
	d := fp.degree()
	if d < 0 {
		return zeroFrac(fp.nvars)
	}
	return fp.coeffs[d]
}

func (fp fracPoly) add(o fracPoly) fracPoly {
	n := len(fp.coeffs)
	if len(o.coeffs) > n {
		n = len(o.coeffs)
	}
	out := make([]frac, n)
	for i := 0; i < n; i++ {
		out[i] = fp.at(i).add(o.at(i))
	}
	return fracPoly{nvars: fp.nvars, coeffs: out}
}

func (fp fracPoly) neg() fracPoly {
	out := make([]frac, len(fp.coeffs))
	for i, c := range fp.coeffs {
		out[i] = c.neg()
	}
	return fracPoly{nvars: fp.nvars, coeffs: out}
}

func (fp fracPoly) sub(o fracPoly) fracPoly { return fp.add(o.neg()) }

func (fp fracPoly) shiftScale(c frac, deg int) fracPoly {
	out := make([]frac, len(fp.coeffs)+deg)
	for i := 0; i < deg; i++ {
		out[i] = zeroFrac(fp.nvars)
	}
	for i, coef := range fp.coeffs {
		out[i+deg] = coef.mul(c)
	}
	return fracPoly{nvars: fp.nvars, coeffs: out}
}

// divmod divides fp by d over the field of fractions; division over a
// field is always exact, mirroring univar.Poly.DivMod.
func (fp fracPoly) divmod(d fracPoly) (q, r fracPoly) {
	n, m := fp.degree(), d.degree()
	if n < m {
		return fracPoly{nvars: fp.nvars}, fp
	}

	rem := fp
	qCoeffs := make([]frac, n-m+1)
	dLead := d.leading()

	for i := n - m; i >= 0; i-- {
		if rem.degree() == m+i {
			c := rem.leading().div(dLead)
			qCoeffs[i] = c
			rem = rem.sub(d.shiftScale(c, i))
		} else {
			qCoeffs[i] = zeroFrac(fp.nvars)
		}
	}

	return fracPoly{nvars: fp.nvars, coeffs: qCoeffs}, rem
}

// subresultantPRS runs the Euclidean algorithm on p, q (as polynomials
// in the shared top variable, over the field of fractions of their
// lower-variable coefficients), returning the full remainder
// sequence. This is a practical stand-in for the classical
// subresultant chain: it produces a sequence of polynomials with the
// same vanishing behavior at each step (same degree pattern, exact
// field division rather than pseudo-division), at the cost of larger
// intermediate numerator/denominator polynomials than the textbook
// subresultant normalization would produce. See DESIGN.md.
func subresultantPRS(p, q MPoly) ([]fracPoly, error) {
	if p.nvars != q.nvars {
		return nil, fmt.Errorf("mvpoly: subresultant PRS operands have different arity (%d vs %d)", p.nvars, q.nvars)
	}
	if p.nvars == 0 {
		return nil, fmt.Errorf("mvpoly: subresultant PRS requires arity >= 1")
	}

	seq := []fracPoly{fracPolyFromMPoly(p), fracPolyFromMPoly(q)}
	for {
		cur := seq[len(seq)-1]
		if cur.degree() < 0 {
			break
		}
		prev := seq[len(seq)-2]
		_, r := prev.divmod(cur)
		if r.degree() < 0 {
			break
		}
		seq = append(seq, r)
	}
	return seq, nil
}

// PrincipalSubresultantCoeffsTop returns the leading (in the top
// variable) coefficients of the remainder-sequence polynomials
// between p and q, as MPolys over the remaining variables. These are
// the additional projection-set generators the McCallum operator uses
// beyond the plain resultant and discriminant (spec.md §4.F); each
// result here is a fraction numerator (the matching denominator is
// itself a leading coefficient already present earlier in the
// sequence, so it contributes no new projection information).
func PrincipalSubresultantCoeffsTop(p, q MPoly) ([]MPoly, error) {
	seq, err := subresultantPRS(p, q)
	if err != nil {
		return nil, err
	}

	out := make([]MPoly, 0, len(seq))
	for _, fp := range seq {
		d := fp.degree()
		if d < 0 {
			continue
		}
		lead := fp.coeffs[d]
		if lead.num.IsZero() {
			continue
		}
		out = append(out, lead.num)
	}
	return out, nil
}

// Promote embeds p, of arity m, into arity n >= m by treating it as
// constant in the new variables x_{m+1},...,x_n. Useful for combining
// polynomials of different native arity under Add/Mul/Sub, which
// require matching arity, and for embedding a lower-arity base
// polynomial into a CAD system's full declared variable count.
func Promote(p MPoly, n int) (MPoly, error) {
	if n < p.nvars {
		return MPoly{}, fmt.Errorf("mvpoly: Promote target arity %d is smaller than source arity %d", n, p.nvars)
	}
	cur := p
	for cur.nvars < n {
		wrapped, err := FromCoeffsTop(cur.nvars+1, []MPoly{cur})
		if err != nil {
			return MPoly{}, err
		}
		cur = wrapped
	}
	return cur, nil
}

// VarAt returns the i-th variable (1-indexed) embedded at arity n.
func VarAt(n, i int) (MPoly, error) {
	if i < 1 || i > n {
		return MPoly{}, fmt.Errorf("mvpoly: VarAt variable index %d out of range for arity %d", i, n)
	}
	return Promote(Var(i), n)
}

// ToUnivar converts an arity-1 MPoly to a plain univar.Poly, the
// inverse of FromUnivar. Requires every coefficient to be rational
// (it always is, for a genuinely arity-1 polynomial).
func ToUnivar(p MPoly) (*univar.Poly, error) {
	if p.nvars != 1 {
		return nil, fmt.Errorf("mvpoly: ToUnivar requires arity 1, got %d", p.nvars)
	}
	d := p.DegreeTop()
	coeffs := make([]*big.Rat, d+1)
	for i := 0; i <= d; i++ {
		v, ok := p.CoeffTop(i).Rat()
		if !ok {
			return nil, fmt.Errorf("mvpoly: ToUnivar: coefficient %d is not rational", i)
		}
		coeffs[i] = v
	}
	return univar.New(coeffs), nil
}

// String renders p using x<arity> to name the top variable at each
// recursion level; intended for diagnostics, not round-tripping.
func (p MPoly) String() string {
	if p.nvars == 0 {
		if p.rat == nil {
			return "0"
		}
		return p.rat.RatString()
	}
	if p.IsZero() {
		return "0"
	}

	varName := fmt.Sprintf("x%d", p.nvars)
	var b strings.Builder
	first := true
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		c := p.coeffs[i]
		if c.IsZero() {
			continue
		}
		if !first {
			b.WriteString(" + ")
		}
		first = false
		fmt.Fprintf(&b, "(%s)", c.String())
		if i > 0 {
			b.WriteString("*")
			b.WriteString(varName)
			if i > 1 {
				fmt.Fprintf(&b, "^%d", i)
			}
		}
	}
	return b.String()
}
