// Package dut simulates the device-under-test: a reference carrier and a
// double-sideband-suppressed-carrier modulated sensor signal.
package dut

import (
	"math"

	"github.com/miksto/lockin-amplifier-engine/dsp/oscillator"
)

// Sample is one tick's worth of signals produced by Generate.
type Sample struct {
	Reference        float64
	ModulatingSignal float64
	SensorClean      float64
}

// Generator owns the reference and modulating oscillators and produces the
// DSB-SC sensor signal: the carrier and modulator are multiplied together,
// not summed as in conventional AM.
type Generator struct {
	Reference  *oscillator.Oscillator
	Modulating *oscillator.Oscillator
}

// New creates a Generator at the given sample rate.
func New(sampleRate float64) *Generator {
	return &Generator{
		Reference:  oscillator.New(sampleRate),
		Modulating: oscillator.New(sampleRate),
	}
}

// Generate produces one sample. thetaRef is read before the reference
// oscillator advances, for callers (e.g. the mixer) that need the phase the
// reference had during this sample. The modulating oscillator always
// advances, even when modulationIndex is 0, so its phase stays in sync.
func (g *Generator) Generate(referenceFrequency, referenceAmplitude, phaseShift, modulatingFrequency, modulationIndex, sensorAmplitude float64) (thetaRef float64, s Sample) {
	thetaRef = g.Reference.Phase()
	s.Reference = g.Reference.Sine(referenceFrequency, referenceAmplitude)

	var m float64
	if modulationIndex > 0 {
		m = g.Modulating.Sine(modulatingFrequency, 1)
	} else {
		g.Modulating.Advance(modulatingFrequency)
	}

	carrier := math.Sin(thetaRef + phaseShift)
	s.SensorClean = sensorAmplitude * carrier * modulationIndex * m
	s.ModulatingSignal = sensorAmplitude * modulationIndex * m
	return thetaRef, s
}
