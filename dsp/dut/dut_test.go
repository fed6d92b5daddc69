package dut

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSensorCleanIsProductNotSum(t *testing.T) {
	g := New(10000)
	_, s := g.Generate(100, 2.0, math.Pi/2, 10, 0.5, 3.0)
	// At n=0: thetaRef=0, carrier=sin(0+pi/2)=1, m=sin(0)=0, so the product
	// sensorClean must be exactly 0 (a sum form like
	// A*carrier*(1+m*index) would instead equal 3).
	assert.Equal(t, 0.0, s.SensorClean)
}

func TestModulatingOscillatorAdvancesEvenWhenIndexZero(t *testing.T) {
	g := New(10000)
	for i := 0; i < 5; i++ {
		g.Generate(100, 1, 0, 37, 0, 1)
	}
	phaseWithZeroIndex := g.Modulating.Phase()

	g2 := New(10000)
	for i := 0; i < 5; i++ {
		g2.Generate(100, 1, 0, 37, 1, 1)
	}
	phaseWithNonZeroIndex := g2.Modulating.Phase()

	assert.Equal(t, phaseWithNonZeroIndex, phaseWithZeroIndex)
}

func TestReferenceMatchesSineClosedForm(t *testing.T) {
	g := New(10000)
	theta, s := g.Generate(100, 2.0, 0, 10, 0.5, 1)
	assert.Equal(t, 0.0, theta)
	assert.InDelta(t, 2.0*math.Sin(0), s.Reference, 1e-12)
}

func TestModulatingSignalScalesWithAmplitudeAndIndex(t *testing.T) {
	g := New(10000)
	// advance modulating osc a bit so m != 0
	g.Modulating.Advance(2500)
	_, s := g.Generate(100, 1, 0, 0, 0.25, 4.0)
	want := 4.0 * 0.25 * math.Sin(math.Pi/2)
	assert.InDelta(t, want, s.ModulatingSignal, 1e-9)
}

func TestThetaRefReadBeforeAdvance(t *testing.T) {
	g := New(10000)
	g.Reference.Advance(0) // no-op, still at phase 0
	theta, _ := g.Generate(100, 1, 0, 10, 0.5, 1)
	assert.Equal(t, 0.0, theta)
	assert.NotEqual(t, 0.0, g.Reference.Phase())
}
