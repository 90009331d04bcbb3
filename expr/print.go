package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ead/ead/mvpoly"
)

// Print renders p, of arity order.Len(), in the infix grammar Parse
// accepts, so that Parse(Print(p, order), order) reproduces a
// canonically equivalent polynomial (spec.md §8's parse/print
// round-trip property). Output is not guaranteed minimal (a
// multi-term coefficient of a higher-degree term is always
// parenthesized, even where operator precedence would make the
// parentheses optional) but is always valid input to Parse.
func Print(p mvpoly.MPoly, order VariableOrder) (string, error) {
	if p.NVars() != order.Len() {
		return "", fmt.Errorf("expr: Print: polynomial arity %d does not match variable order length %d", p.NVars(), order.Len())
	}
	return printRec(p, []string(order)), nil
}

type termPart struct {
	neg  bool
	text string
}

func printRec(p mvpoly.MPoly, names []string) string {
	if p.NVars() == 0 {
		v, _ := p.Rat()
		return v.RatString()
	}
	if p.IsZero() {
		return "0"
	}

	varName := names[len(names)-1]
	lower := names[:len(names)-1]

	var parts []termPart
	for i := p.DegreeTop(); i >= 0; i-- {
		c := p.CoeffTop(i)
		if c.IsZero() {
			continue
		}
		if isSingleTerm(c) {
			neg, mag := signMagnitude(c, lower)
			parts = append(parts, termPart{neg, monomialText(mag, varName, i)})
			continue
		}
		inner := printRec(c, lower)
		if i == 0 {
			parts = append(parts, termPart{false, inner})
		} else {
			parts = append(parts, termPart{false, "(" + inner + ")*" + varPower(varName, i)})
		}
	}
	return joinParts(parts)
}

func monomialText(mag, varName string, deg int) string {
	if deg == 0 {
		return mag
	}
	vp := varPower(varName, deg)
	if mag == "1" {
		return vp
	}
	return mag + "*" + vp
}

func varPower(name string, deg int) string {
	if deg == 1 {
		return name
	}
	return name + "^" + strconv.Itoa(deg)
}

func joinParts(parts []termPart) string {
	if len(parts) == 0 {
		return "0"
	}
	var sb strings.Builder
	first := parts[0]
	if first.neg {
		sb.WriteString("-")
	}
	sb.WriteString(first.text)
	for _, pt := range parts[1:] {
		if pt.neg {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		sb.WriteString(pt.text)
	}
	return sb.String()
}

// isSingleTerm reports whether p prints (via printRec) without a
// top-level "+"/"-" join, i.e. it is a bare constant or a chain of
// exactly one nonzero coefficient all the way down to a constant.
func isSingleTerm(p mvpoly.MPoly) bool {
	if p.NVars() == 0 {
		return true
	}
	nonzero := 0
	idx := -1
	for i := 0; i <= p.DegreeTop(); i++ {
		if !p.CoeffTop(i).IsZero() {
			nonzero++
			idx = i
		}
	}
	if nonzero != 1 {
		return false
	}
	return isSingleTerm(p.CoeffTop(idx))
}

// signMagnitude renders a single-term (per isSingleTerm) polynomial
// as a sign and an always-positive magnitude string, descending
// variable by variable from names' last (top-variable) entry downward.
func signMagnitude(p mvpoly.MPoly, names []string) (bool, string) {
	if p.NVars() == 0 {
		v, _ := p.Rat()
		s := v.RatString()
		if strings.HasPrefix(s, "-") {
			return true, s[1:]
		}
		return false, s
	}
	idx := 0
	for i := 0; i <= p.DegreeTop(); i++ {
		if !p.CoeffTop(i).IsZero() {
			idx = i
			break
		}
	}
	neg, innerMag := signMagnitude(p.CoeffTop(idx), names[:len(names)-1])
	if idx == 0 {
		return neg, innerMag
	}
	return neg, monomialText(innerMag, names[len(names)-1], idx)
}
