// Package mixer implements the phase-sensitive detector (I/Q demodulator)
// that extracts in-phase and quadrature components from the filtered sensor
// signal against the reference oscillator's phase.
package mixer

import "math"

// Mode selects the reference waveform used for demodulation.
type Mode int

const (
	// Analog multiplies by the true sine/cosine of the reference phase.
	Analog Mode = iota
	// Digital multiplies by a unit square wave, scaled by 2/pi so its
	// fundamental amplitude matches a unit sine, making Analog and Digital
	// outputs directly comparable.
	Digital
)

const twoOverPi = 2 / math.Pi

// Mix returns (I, Q) for sample s against reference phase thetaRef and
// reference amplitude aRef.
func Mix(mode Mode, s, thetaRef, aRef float64) (i, q float64) {
	switch mode {
	case Digital:
		if aRef <= 0 {
			return 0, 0
		}
		return s * sign(math.Sin(thetaRef)) * twoOverPi,
			s * sign(math.Cos(thetaRef)) * twoOverPi
	default: // Analog
		return s * math.Sin(thetaRef), s * math.Cos(thetaRef)
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
