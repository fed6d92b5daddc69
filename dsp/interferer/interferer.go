// Package interferer implements the sum-of-sinusoids interference bank
// that is added to the synthesized sensor signal alongside white noise.
package interferer

import (
	"math"
	"math/rand"

	"github.com/miksto/lockin-amplifier-engine/dsp/oscillator"
)

// Spec describes one interferer as supplied by the controller: a stable id,
// a frequency and an amplitude. Update matches tones by position and
// frequency, not by id, so a reordered list is rebuilt with fresh phases.
type Spec struct {
	ID        int
	Frequency float64
	Amplitude float64
}

type tone struct {
	id        int
	frequency float64
	amplitude float64
	osc       *oscillator.Oscillator
}

// Bank sums N independent sinusoids, each with its own persistent phase.
type Bank struct {
	sampleRate float64
	tones      []tone
	rng        *rand.Rand
}

// New creates an empty Bank at the given sample rate.
func New(sampleRate float64) *Bank {
	return &Bank{sampleRate: sampleRate, rng: rand.New(rand.NewSource(1))}
}

// Generate sums a_i*sin(phase_i) across all tones and advances each phase.
func (b *Bank) Generate() float64 {
	var sum float64
	for i := range b.tones {
		sum += b.tones[i].osc.Sine(b.tones[i].frequency, b.tones[i].amplitude)
	}
	return sum
}

// Update installs specs. When the incoming list has the same length and the
// same frequencies in the same order as the current bank, only amplitudes
// are overwritten in place, preserving phases and avoiding discontinuities.
// Otherwise the bank is rebuilt from scratch with fresh random phases.
func (b *Bank) Update(specs []Spec) {
	if b.sameFrequencies(specs) {
		for i, s := range specs {
			b.tones[i].amplitude = s.Amplitude
			b.tones[i].id = s.ID
		}
		return
	}
	b.rebuild(specs)
}

func (b *Bank) sameFrequencies(specs []Spec) bool {
	if len(specs) != len(b.tones) {
		return false
	}
	for i, s := range specs {
		if s.Frequency != b.tones[i].frequency {
			return false
		}
	}
	return true
}

func (b *Bank) rebuild(specs []Spec) {
	tones := make([]tone, len(specs))
	for i, s := range specs {
		osc := oscillator.New(b.sampleRate)
		osc.SetPhase(b.rng.Float64() * 2 * math.Pi)
		tones[i] = tone{id: s.ID, frequency: s.Frequency, amplitude: s.Amplitude, osc: osc}
	}
	b.tones = tones
}
