package mixer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalogMixMatchesSinCos(t *testing.T) {
	theta := 0.73
	i, q := Mix(Analog, 2.0, theta, 1.0)
	assert.InDelta(t, 2.0*math.Sin(theta), i, 1e-12)
	assert.InDelta(t, 2.0*math.Cos(theta), q, 1e-12)
}

func TestDigitalMixIsScaledSquareWave(t *testing.T) {
	theta := 0.1 // sin>0, cos>0
	i, q := Mix(Digital, 3.0, theta, 1.0)
	assert.InDelta(t, 3.0*twoOverPi, i, 1e-12)
	assert.InDelta(t, 3.0*twoOverPi, q, 1e-12)

	theta2 := math.Pi + 0.1 // sin<0, cos<0
	i2, q2 := Mix(Digital, 3.0, theta2, 1.0)
	assert.InDelta(t, -3.0*twoOverPi, i2, 1e-12)
	assert.InDelta(t, -3.0*twoOverPi, q2, 1e-12)
}

func TestDigitalMixZeroWhenReferenceAmplitudeNotPositive(t *testing.T) {
	i, q := Mix(Digital, 5.0, 0.5, 0)
	assert.Equal(t, 0.0, i)
	assert.Equal(t, 0.0, q)

	i, q = Mix(Digital, 5.0, 0.5, -1)
	assert.Equal(t, 0.0, i)
	assert.Equal(t, 0.0, q)
}

func TestAnalogMixIgnoresReferenceAmplitudeSign(t *testing.T) {
	// Analog mode has no A_ref gate per spec 4.6; it only uses s itself.
	i, q := Mix(Analog, 2.0, 0.3, -5)
	assert.InDelta(t, 2.0*math.Sin(0.3), i, 1e-12)
	assert.InDelta(t, 2.0*math.Cos(0.3), q, 1e-12)
}
