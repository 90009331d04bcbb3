package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ead/ead/cad"
)

func TestVariableOrder(t *testing.T) {
	a := assert.New(t)

	order, err := variableOrder("x, y , z")
	a.NoError(err)
	a.Equal(3, order.Len())
	idx, ok := order.Index("y")
	a.True(ok)
	a.Equal(2, idx)
}

func TestVariableOrderRejectsDuplicate(t *testing.T) {
	a := assert.New(t)
	_, err := variableOrder("x,x")
	a.Error(err)
}

func TestParseConstraintEquality(t *testing.T) {
	a := assert.New(t)
	order, err := variableOrder("x")
	a.NoError(err)

	c, err := parseConstraint("x^2-2=0", order)
	a.NoError(err)
	a.Equal(0, c.Sign)
	a.Equal(2, c.Poly.DegreeTop())
}

func TestParseConstraintInequalities(t *testing.T) {
	a := assert.New(t)
	order, err := variableOrder("x")
	a.NoError(err)

	pos, err := parseConstraint("x>0", order)
	a.NoError(err)
	a.Equal(1, pos.Sign)

	neg, err := parseConstraint("x<0", order)
	a.NoError(err)
	a.Equal(-1, neg.Sign)
}

func TestParseConstraintRejectsMissingOperator(t *testing.T) {
	a := assert.New(t)
	order, err := variableOrder("x")
	a.NoError(err)
	_, err = parseConstraint("x+1", order)
	a.Error(err)
}

func TestParseConstraintRejectsNonzeroRHS(t *testing.T) {
	a := assert.New(t)
	order, err := variableOrder("x")
	a.NoError(err)
	_, err = parseConstraint("x=1", order)
	a.Error(err)
}

func TestExitCodeMapsEngineErrorKinds(t *testing.T) {
	a := assert.New(t)

	a.Equal(1, exitCode(&cad.EngineError{Kind: cad.MalformedInput}))
	a.Equal(2, exitCode(&cad.EngineError{Kind: cad.Cancelled}))
	a.Equal(3, exitCode(&cad.EngineError{Kind: cad.InvariantViolation}))
	a.Equal(1, exitCode(errors.New("plain parse error")))
}

func TestRunSatEndToEnd(t *testing.T) {
	a := assert.New(t)
	// x^2 - 2 = 0 has a real root, so this should be satisfiable.
	code := runSat([]string{"-vars", "x", "x^2-2=0"})
	a.Equal(0, code)
}

func TestRunSatUnsat(t *testing.T) {
	a := assert.New(t)
	// x^2 + 1 = 0 has no real root.
	code := runSat([]string{"-vars", "x", "x^2+1=0"})
	a.Equal(0, code)
}

func TestRunRootsEndToEnd(t *testing.T) {
	a := assert.New(t)
	code := runRoots([]string{"-var", "x", "x^2-2"})
	a.Equal(0, code)
}

func TestRunParseEndToEnd(t *testing.T) {
	a := assert.New(t)
	code := runParse([]string{"-vars", "x,y", "x^2-y"})
	a.Equal(0, code)
}

func TestRunParseRejectsMissingFlag(t *testing.T) {
	a := assert.New(t)
	code := runParse([]string{"x^2-y"})
	a.Equal(1, code)
}
