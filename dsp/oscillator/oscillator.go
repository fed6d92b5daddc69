// Package oscillator implements the phase-accumulating tone generator used
// throughout the signal chain: the reference and modulating carriers, and
// each interferer in dsp/interferer, are all built on top of Oscillator.
package oscillator

import "math"

const twoPi = 2 * math.Pi

// Oscillator is a phase accumulator. Phase is kept in [0, 2*pi) and wrapped
// on every sample rather than lazily, so it never accumulates drift.
type Oscillator struct {
	phase      float64
	sampleRate float64
}

// New creates an Oscillator at the given sample rate with phase zero.
func New(sampleRate float64) *Oscillator {
	return &Oscillator{sampleRate: sampleRate}
}

// Phase returns the current phase without advancing it.
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// PhaseOf returns phase+offset wrapped into [0, 2*pi), without advancing.
func (o *Oscillator) PhaseOf(offset float64) float64 {
	return wrap(o.phase + offset)
}

// Sine returns A*sin(phase) and advances the phase by 2*pi*f/sampleRate.
func (o *Oscillator) Sine(freq, amplitude float64) float64 {
	v := amplitude * math.Sin(o.phase)
	o.Advance(freq)
	return v
}

// Square returns A*sign(sin(phase)) and advances the phase.
func (o *Oscillator) Square(freq, amplitude float64) float64 {
	v := amplitude
	if math.Sin(o.phase) < 0 {
		v = -amplitude
	}
	o.Advance(freq)
	return v
}

// Advance moves the phase accumulator forward by one sample at freq Hz,
// wrapping into [0, 2*pi). Exposed so callers that must keep a second
// oscillator's phase synchronized (e.g. the modulating oscillator when
// modulationIndex is zero) can advance without generating a sample.
func (o *Oscillator) Advance(freq float64) {
	if o.sampleRate <= 0 {
		return
	}
	o.phase = wrap(o.phase + twoPi*freq/o.sampleRate)
}

// Reset sets phase back to zero.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// SetPhase forces the accumulator to p, wrapped into [0, 2*pi). Used to seed
// independent-phase oscillators, e.g. the interferer bank's random init.
func (o *Oscillator) SetPhase(p float64) {
	o.phase = wrap(p)
}

func wrap(p float64) float64 {
	p = math.Mod(p, twoPi)
	if p < 0 {
		p += twoPi
	}
	return p
}
