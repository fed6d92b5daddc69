package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroInputZeroStateYieldsZero(t *testing.T) {
	c := NewCascade([]Coefficients{{B0: 1, B1: 0.5, B2: 0.25, A1: 0.1, A2: 0.2}})
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.0, c.Process(0))
	}
}

func TestDirectFormIMatchesHandComputation(t *testing.T) {
	coeffs := Coefficients{B0: 1, B1: 2, B2: 3, A1: 0.5, A2: 0.25}
	s := NewSection(coeffs)

	y0 := s.Process(1)
	assert.InDelta(t, 1.0, y0, 1e-12) // b0*1

	y1 := s.Process(0)
	want1 := coeffs.B1*1 - coeffs.A1*y0
	assert.InDelta(t, want1, y1, 1e-12)

	y2 := s.Process(0)
	want2 := coeffs.B2*1 - coeffs.A1*y1 - coeffs.A2*y0
	assert.InDelta(t, want2, y2, 1e-12)
}

func TestResetZeroesStateNotCoefficients(t *testing.T) {
	coeffs := Coefficients{B0: 1, B1: 1, B2: 1, A1: 0.5, A2: 0.25}
	s := NewSection(coeffs)
	s.Process(1)
	s.Process(1)
	s.Reset()
	assert.Equal(t, 0.0, s.x1)
	assert.Equal(t, 0.0, s.x2)
	assert.Equal(t, 0.0, s.y1)
	assert.Equal(t, 0.0, s.y2)
	assert.Equal(t, coeffs, s.coeffs)
}

func TestReplaceCoefficientsSameLengthPreservesState(t *testing.T) {
	c := NewCascade([]Coefficients{{B0: 1}})
	c.Process(1)
	c.Process(1)
	before := c.sections[0].x1

	c.ReplaceCoefficients([]Coefficients{{B0: 2}})
	assert.Equal(t, before, c.sections[0].x1)
	assert.Equal(t, 2.0, c.sections[0].coeffs.B0)
}

func TestReplaceCoefficientsDifferentLengthRebuilds(t *testing.T) {
	c := NewCascade([]Coefficients{{B0: 1}})
	c.Process(1)
	c.ReplaceCoefficients([]Coefficients{{B0: 2}, {B0: 3}})
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0.0, c.sections[0].x1, "rebuild resets state")
}

func TestCascadeProcessesInOrder(t *testing.T) {
	identity := Coefficients{B0: 1}
	doubler := Coefficients{B0: 2}
	c := NewCascade([]Coefficients{identity, doubler})
	assert.Equal(t, 2.0, c.Process(1))
}
