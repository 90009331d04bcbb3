package interval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rat(n, d int64) *big.Rat { return big.NewRat(n, d) }

func TestNew(t *testing.T) {
	a := assert.New(t)

	t.Run("validInterval", func(t *testing.T) {
		iv, err := New(rat(1, 1), rat(2, 1), true, true)
		a.NoError(err)
		a.True(iv.LeftOpen())
		a.True(iv.RightOpen())
	})

	t.Run("badEndpoints", func(t *testing.T) {
		_, err := New(rat(2, 1), rat(1, 1), false, false)
		a.ErrorIs(err, ErrBadEndpoints)
	})

	t.Run("emptyOpenOpen", func(t *testing.T) {
		_, err := New(rat(1, 1), rat(1, 1), true, true)
		a.ErrorIs(err, ErrEmptyInterval)
	})

	t.Run("closedClosedPoint", func(t *testing.T) {
		iv, err := New(rat(1, 1), rat(1, 1), false, false)
		a.NoError(err)
		a.True(iv.IsPoint())
	})
}

func TestContains(t *testing.T) {
	a := assert.New(t)

	iv := OpenOpen(rat(0, 1), rat(1, 1))
	a.False(iv.Contains(rat(0, 1)))
	a.False(iv.Contains(rat(1, 1)))
	a.True(iv.Contains(rat(1, 2)))

	closed, err := New(rat(0, 1), rat(1, 1), false, false)
	a.NoError(err)
	a.True(closed.Contains(rat(0, 1)))
	a.True(closed.Contains(rat(1, 1)))
}

func TestMidpointAndWidth(t *testing.T) {
	a := assert.New(t)

	iv := OpenOpen(rat(0, 1), rat(1, 1))
	a.Equal(rat(1, 2), iv.Midpoint())
	a.Equal(rat(1, 1), iv.Width())
}

func TestBisect(t *testing.T) {
	a := assert.New(t)

	iv := OpenOpen(rat(0, 1), rat(4, 1))
	left, right := iv.Bisect()

	a.Equal(rat(0, 1), left.Left())
	a.Equal(rat(2, 1), left.Right())
	a.Equal(rat(2, 1), right.Left())
	a.Equal(rat(4, 1), right.Right())
}

func TestArithmetic(t *testing.T) {
	a := assert.New(t)

	t.Run("add", func(t *testing.T) {
		x := OpenOpen(rat(0, 1), rat(1, 1))
		y := OpenOpen(rat(1, 1), rat(2, 1))
		sum := x.Add(y)
		a.Equal(rat(1, 1), sum.Left())
		a.Equal(rat(3, 1), sum.Right())
	})

	t.Run("mulMixedSigns", func(t *testing.T) {
		x := OpenOpen(rat(-2, 1), rat(1, 1))
		y := OpenOpen(rat(-1, 1), rat(3, 1))
		prod := x.Mul(y)
		// corners: (-2)(-1)=2, (-2)(3)=-6, (1)(-1)=-1, (1)(3)=3
		a.Equal(rat(-6, 1), prod.Left())
		a.Equal(rat(3, 1), prod.Right())
	})

	t.Run("divStraddlingZeroFails", func(t *testing.T) {
		x := OpenOpen(rat(1, 1), rat(2, 1))
		y := OpenOpen(rat(-1, 1), rat(1, 1))
		_, err := x.Div(y)
		a.ErrorIs(err, ErrDivisionByZeroStraddle)
	})

	t.Run("divPositive", func(t *testing.T) {
		x := OpenOpen(rat(1, 1), rat(2, 1))
		y := OpenOpen(rat(2, 1), rat(4, 1))
		q, err := x.Div(y)
		a.NoError(err)
		a.Equal(rat(1, 4), q.Left())
		a.Equal(rat(1, 1), q.Right())
	})
}

func TestString(t *testing.T) {
	a := assert.New(t)

	iv := OpenOpen(rat(1, 3), rat(2, 3))
	a.Equal("(1/3, 2/3)", iv.String())

	closed, err := New(rat(1, 1), rat(2, 1), false, false)
	a.NoError(err)
	a.Equal("[1, 2]", closed.String())
}
