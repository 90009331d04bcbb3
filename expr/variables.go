// Package expr implements the textual infix polynomial grammar from
// spec.md §6: identifiers over a declared variable order, `+ - * ^`
// with the usual precedence, parenthesization, unary minus, and
// rational literals written `a/b`. Parsing and printing share the
// same grammar, so printing a parsed polynomial reproduces input that
// reparses to a canonically equivalent polynomial.
package expr

import "fmt"

// VariableOrder fixes the declared variable order a polynomial's
// arity is defined against: VariableOrder[i] is the name of variable
// x_(i+1) in package mvpoly's convention (1-indexed, innermost first).
type VariableOrder []string

// NewVariableOrder validates names: non-empty, no duplicates, no
// blank entries.
func NewVariableOrder(names ...string) (VariableOrder, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("expr: variable order must be non-empty")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("expr: variable order contains a blank name")
		}
		if seen[n] {
			return nil, fmt.Errorf("expr: duplicate variable %q in variable order", n)
		}
		seen[n] = true
	}
	out := make(VariableOrder, len(names))
	copy(out, names)
	return out, nil
}

// Index returns the 1-indexed mvpoly variable number for name, and
// whether name is declared.
func (o VariableOrder) Index(name string) (int, bool) {
	for i, n := range o {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Name returns the declared name of variable x_i (1-indexed).
func (o VariableOrder) Name(i int) (string, bool) {
	if i < 1 || i > len(o) {
		return "", false
	}
	return o[i-1], true
}

// Len is the arity this order declares.
func (o VariableOrder) Len() int { return len(o) }
