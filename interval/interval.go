// Package interval implements closed/open rational interval arithmetic.
//
// An Interval is a value type: every operation returns a new Interval
// rather than mutating its receiver, mirroring the copy-by-value
// discipline the rest of this module uses for immutable polynomial
// coefficients.
package interval

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrEmptyInterval is returned when a construction would produce an
// open-open interval with equal endpoints, which spec.md forbids.
var ErrEmptyInterval = errors.New("interval: open-open interval with equal endpoints is empty")

// ErrBadEndpoints is returned when the left endpoint is strictly
// greater than the right endpoint.
var ErrBadEndpoints = errors.New("interval: left endpoint greater than right endpoint")

// Interval is a closed or open rational interval [l, r] with
// independent open/closed tags per endpoint.
type Interval struct {
	l, r         *big.Rat
	lOpen, rOpen bool
}

// New constructs an interval, validating the invariants from spec.md
// §3: l <= r, and an open-open interval with l == r is forbidden.
func New(l, r *big.Rat, lOpen, rOpen bool) (Interval, error) {
	cmp := l.Cmp(r)
	if cmp > 0 {
		return Interval{}, ErrBadEndpoints
	}
	if cmp == 0 && lOpen && rOpen {
		return Interval{}, ErrEmptyInterval
	}

	return Interval{l: new(big.Rat).Set(l), r: new(big.Rat).Set(r), lOpen: lOpen, rOpen: rOpen}, nil
}

// Point returns the closed-closed degenerate interval {q}.
func Point(q *big.Rat) Interval {
	v := new(big.Rat).Set(q)
	return Interval{l: v, r: new(big.Rat).Set(v), lOpen: false, rOpen: false}
}

// OpenOpen constructs an open interval (l, r); it panics if l >= r
// since an empty or degenerate open interval is never a valid
// isolating interval for a RAN.
func OpenOpen(l, r *big.Rat) Interval {
	if l.Cmp(r) >= 0 {
		panic("interval: OpenOpen requires l < r")
	}
	return Interval{l: new(big.Rat).Set(l), r: new(big.Rat).Set(r), lOpen: true, rOpen: true}
}

// Left returns the left endpoint.
func (iv Interval) Left() *big.Rat { return new(big.Rat).Set(iv.l) }

// Right returns the right endpoint.
func (iv Interval) Right() *big.Rat { return new(big.Rat).Set(iv.r) }

// LeftOpen reports whether the left endpoint is excluded.
func (iv Interval) LeftOpen() bool { return iv.lOpen }

// RightOpen reports whether the right endpoint is excluded.
func (iv Interval) RightOpen() bool { return iv.rOpen }

// IsPoint reports whether the interval is the closed degenerate
// interval {l} (l == r, both closed).
func (iv Interval) IsPoint() bool {
	return !iv.lOpen && !iv.rOpen && iv.l.Cmp(iv.r) == 0
}

// IsEmpty reports whether the interval contains no points. Only an
// open-open interval with equal endpoints is empty, and New already
// rejects that case, so IsEmpty is always false for a validly
// constructed Interval; it is kept as a defensive accessor for values
// built via the zero-value-adjacent Point/OpenOpen helpers.
func (iv Interval) IsEmpty() bool {
	if iv.l == nil || iv.r == nil {
		return true
	}
	cmp := iv.l.Cmp(iv.r)
	if cmp > 0 {
		return true
	}
	return cmp == 0 && iv.lOpen && iv.rOpen
}

// Contains reports whether q lies within the interval, honoring the
// open/closed endpoint tags.
func (iv Interval) Contains(q *big.Rat) bool {
	cl := q.Cmp(iv.l)
	if cl < 0 || (cl == 0 && iv.lOpen) {
		return false
	}
	cr := q.Cmp(iv.r)
	if cr > 0 || (cr == 0 && iv.rOpen) {
		return false
	}
	return true
}

// Midpoint returns the arithmetic mean of the endpoints.
func (iv Interval) Midpoint() *big.Rat {
	sum := new(big.Rat).Add(iv.l, iv.r)
	return sum.Quo(sum, big.NewRat(2, 1))
}

// Width returns r - l.
func (iv Interval) Width() *big.Rat {
	return new(big.Rat).Sub(iv.r, iv.l)
}

// Bisect splits the interval at its midpoint m into (left, right)
// open-open halves: (l, m) and (m, r). The caller is responsible for
// deciding, from the sign of some polynomial at m, whether m itself
// is the root (spec.md §4.A's bisection tie-break) — Interval itself
// has no notion of polynomials.
func (iv Interval) Bisect() (left, right Interval) {
	m := iv.Midpoint()
	return OpenOpen(iv.l, m), OpenOpen(m, iv.r)
}

// Add returns the outward-rounded sum interval; since rationals are
// closed under addition this is exact.
func (a Interval) Add(b Interval) Interval {
	l := new(big.Rat).Add(a.l, b.l)
	r := new(big.Rat).Add(a.r, b.r)
	return Interval{l: l, r: r, lOpen: a.lOpen || b.lOpen, rOpen: a.rOpen || b.rOpen}
}

// Sub returns the outward-rounded difference interval a - b.
func (a Interval) Sub(b Interval) Interval {
	l := new(big.Rat).Sub(a.l, b.r)
	r := new(big.Rat).Sub(a.r, b.l)
	return Interval{l: l, r: r, lOpen: a.lOpen || b.rOpen, rOpen: a.rOpen || b.lOpen}
}

// Mul returns the outward-rounded product interval. The four corner
// products are compared to find the true min/max since signs of a
// and b's endpoints may vary.
func (a Interval) Mul(b Interval) Interval {
	corners := [4]*big.Rat{
		new(big.Rat).Mul(a.l, b.l),
		new(big.Rat).Mul(a.l, b.r),
		new(big.Rat).Mul(a.r, b.l),
		new(big.Rat).Mul(a.r, b.r),
	}
	openFlags := [4]bool{
		a.lOpen || b.lOpen,
		a.lOpen || b.rOpen,
		a.rOpen || b.lOpen,
		a.rOpen || b.rOpen,
	}

	minIdx, maxIdx := 0, 0
	for i := 1; i < 4; i++ {
		if corners[i].Cmp(corners[minIdx]) < 0 {
			minIdx = i
		}
		if corners[i].Cmp(corners[maxIdx]) > 0 {
			maxIdx = i
		}
	}

	return Interval{l: corners[minIdx], r: corners[maxIdx], lOpen: openFlags[minIdx], rOpen: openFlags[maxIdx]}
}

// ErrDivisionByZeroStraddle is returned by Div when 0 lies within the
// divisor interval, making outward-rounded division ill-defined.
var ErrDivisionByZeroStraddle = errors.New("interval: divisor interval contains zero")

// Div returns the outward-rounded quotient interval a / b. It fails
// if zero lies in b (spec.md §4.A: "when 0 ∉ denominator").
func (a Interval) Div(b Interval) (Interval, error) {
	zero := new(big.Rat)
	if b.Contains(zero) {
		return Interval{}, ErrDivisionByZeroStraddle
	}

	inv := Interval{
		l:     new(big.Rat).Inv(b.r),
		r:     new(big.Rat).Inv(b.l),
		lOpen: b.rOpen,
		rOpen: b.lOpen,
	}
	// Inverting an interval entirely on one side of zero swaps the
	// endpoint order (1/r <= 1/l when both are positive or both
	// negative), which the construction above already accounts for.
	if inv.l.Cmp(inv.r) > 0 {
		inv.l, inv.r = inv.r, inv.l
		inv.lOpen, inv.rOpen = inv.rOpen, inv.lOpen
	}

	return a.Mul(inv), nil
}

// String renders the interval using the bracket notation from
// spec.md §6: "(l, r)" style, with '[' / ']' for closed endpoints.
func (iv Interval) String() string {
	lb, rb := "(", ")"
	if !iv.lOpen {
		lb = "["
	}
	if !iv.rOpen {
		rb = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", lb, iv.l.RatString(), iv.r.RatString(), rb)
}
