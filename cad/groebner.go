package cad

import "github.com/ead/ead/mvpoly"

// MonomialOrder names a monomial ordering a GroebnerProvider reduces
// under. CAD only ever needs lexicographic elimination order matching
// the CAD variable order, but the type is named (rather than left
// implicit) so a real provider can report what it actually used.
type MonomialOrder int

const (
	Lex MonomialOrder = iota
	Deglex
)

func (o MonomialOrder) String() string {
	if o == Deglex {
		return "Deglex"
	}
	return "Lex"
}

// GroebnerProvider computes a reduced Groebner basis of the ideal
// generated by ideal, under order. Gröbner basis computation over the
// rationals is explicitly out of scope (spec.md §1's "abstract
// provider of an ideal basis"); this kernel never implements one. The
// method shape is grounded on fumin-nag's Polynomial[K Field[K]] plus
// its nag.Deglex/nag.ElimOrder monomial-order machinery (SPEC_FULL.md
// §3) — this module does not import that package (it is keyed to a
// different Field[T] generic than mvpoly.MPoly's fixed big.Rat
// coefficients), but the shape of "ideal in, reduced basis out, under
// an explicit monomial order" is carried over directly.
type GroebnerProvider interface {
	Reduce(ideal []mvpoly.MPoly, order MonomialOrder) ([]mvpoly.MPoly, error)
}
