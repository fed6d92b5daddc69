// Package config models the engine's parameter set: clamped fields (the
// interactive surface never rejects a value outright, it clamps), a
// diff/merge update path, and YAML preset loading.
package config

import "math"

// Interferer is one entry of the ordered interferer list.
type Interferer struct {
	ID        int     `yaml:"id"`
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
}

// BandPassFilter mirrors spec §3's BandPassFilter parameter set.
type BandPassFilter struct {
	Enabled         bool    `yaml:"enabled"`
	CenterFrequency float64 `yaml:"centerFrequency"`
	Bandwidth       float64 `yaml:"bandwidth"`
	Order           int     `yaml:"order"`
}

// LowPassFilter mirrors spec §3's LowPassFilter parameter set.
type LowPassFilter struct {
	CutoffFrequency float64 `yaml:"cutoffFrequency"`
	Order           int     `yaml:"order"`
}

// MixerMode selects the demodulator reference waveform.
type MixerMode string

const (
	MixerAnalog  MixerMode = "analog"
	MixerDigital MixerMode = "digital"
)

// Mixer mirrors spec §3's Mixer parameter set.
type Mixer struct {
	Mode MixerMode `yaml:"mode"`
}

// Params is the full, immutable-once-handed-off parameter snapshot given to
// the engine at Start or folded into it via UpdateParams.
type Params struct {
	SampleRate     float64 `yaml:"sampleRate"`
	RingCapacity   int     `yaml:"ringCapacity"`
	SnapshotPoints int     `yaml:"snapshotPoints"`
	SnapshotRate   float64 `yaml:"snapshotRate"`

	ReferenceFrequency    float64      `yaml:"referenceFrequency"`
	ReferenceAmplitude    float64      `yaml:"referenceAmplitude"`
	ModulatingFrequency   float64      `yaml:"modulatingFrequency"`
	ModulationIndex       float64      `yaml:"modulationIndex"`
	PhaseShift            float64      `yaml:"phaseShift"`
	SensorOutputAmplitude float64      `yaml:"sensorOutputAmplitude"`
	WhiteNoiseAmplitude   float64      `yaml:"whiteNoiseAmplitude"`
	Interferers           []Interferer `yaml:"interferers"`

	BPF   BandPassFilter `yaml:"bpf"`
	LPF   LowPassFilter  `yaml:"lpf"`
	Mixer Mixer          `yaml:"mixer"`

	TimeScale float64 `yaml:"timeScale"`
}

// Default returns the spec's documented default parameter set.
func Default() Params {
	return Params{
		SampleRate:     50000,
		RingCapacity:   100000,
		SnapshotPoints: 10000,
		SnapshotRate:   30,

		ReferenceFrequency:    100,
		ReferenceAmplitude:    1,
		ModulatingFrequency:   10,
		ModulationIndex:       0.5,
		PhaseShift:            0,
		SensorOutputAmplitude: 1,
		WhiteNoiseAmplitude:   0.1,
		Interferers:           nil,

		BPF: BandPassFilter{Enabled: true, CenterFrequency: 100, Bandwidth: 50, Order: 2},
		LPF: LowPassFilter{CutoffFrequency: 10, Order: 2},
		Mixer: Mixer{Mode: MixerAnalog},

		TimeScale: 10,
	}
}

// Clamp enforces every field-wise bound from spec §4.14 in place. It never
// rejects a value; it folds it into range.
func (p *Params) Clamp() {
	p.ReferenceFrequency = clampRange(p.ReferenceFrequency, 1, 1000)
	p.ModulatingFrequency = math.Max(p.ModulatingFrequency, 0.1)
	p.ModulationIndex = clampRange(p.ModulationIndex, 0, 1)
	p.PhaseShift = normalizeDegrees(p.PhaseShift)
	p.ReferenceAmplitude = math.Max(p.ReferenceAmplitude, 0)
	p.SensorOutputAmplitude = math.Max(p.SensorOutputAmplitude, 0)
	p.WhiteNoiseAmplitude = math.Max(p.WhiteNoiseAmplitude, 0)

	p.BPF.CenterFrequency = math.Max(p.BPF.CenterFrequency, 1)
	p.BPF.Bandwidth = math.Max(p.BPF.Bandwidth, 1)
	p.LPF.CutoffFrequency = math.Max(p.LPF.CutoffFrequency, 0.1)

	p.TimeScale = clampRange(p.TimeScale, 1, 200)

	for i := range p.Interferers {
		p.Interferers[i].Frequency = math.Max(p.Interferers[i].Frequency, 1)
		p.Interferers[i].Amplitude = math.Max(p.Interferers[i].Amplitude, 0)
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Diff is a partial update: nil fields are left untouched by ApplyDiff.
// Interferers, when non-nil, replaces the list wholesale (never merged
// element-wise).
type Diff struct {
	ReferenceFrequency    *float64
	ReferenceAmplitude    *float64
	ModulatingFrequency   *float64
	ModulationIndex       *float64
	PhaseShift            *float64
	SensorOutputAmplitude *float64
	WhiteNoiseAmplitude   *float64
	Interferers           []Interferer

	BPF   *BandPassFilter
	LPF   *LowPassFilter
	Mixer *Mixer

	TimeScale *float64
}

// ApplyDiff shallow-merges only the supplied fields into p, then clamps.
func (p *Params) ApplyDiff(d Diff) {
	if d.ReferenceFrequency != nil {
		p.ReferenceFrequency = *d.ReferenceFrequency
	}
	if d.ReferenceAmplitude != nil {
		p.ReferenceAmplitude = *d.ReferenceAmplitude
	}
	if d.ModulatingFrequency != nil {
		p.ModulatingFrequency = *d.ModulatingFrequency
	}
	if d.ModulationIndex != nil {
		p.ModulationIndex = *d.ModulationIndex
	}
	if d.PhaseShift != nil {
		p.PhaseShift = *d.PhaseShift
	}
	if d.SensorOutputAmplitude != nil {
		p.SensorOutputAmplitude = *d.SensorOutputAmplitude
	}
	if d.WhiteNoiseAmplitude != nil {
		p.WhiteNoiseAmplitude = *d.WhiteNoiseAmplitude
	}
	if d.Interferers != nil {
		p.Interferers = d.Interferers
	}
	if d.BPF != nil {
		p.BPF = *d.BPF
	}
	if d.LPF != nil {
		p.LPF = *d.LPF
	}
	if d.Mixer != nil {
		p.Mixer = *d.Mixer
	}
	if d.TimeScale != nil {
		p.TimeScale = *d.TimeScale
	}
	p.Clamp()
}

// ChangesResponse reports whether d alters anything that unconditionally
// requires the ChainRunner to reset its accumulator, filter states and
// rings (spec §4.10): reference frequency, BPF, LPF, mixer mode, or
// modulating frequency. The interferer list is deliberately excluded: an
// amplitude-only interferer edit takes the in-place update path (§4.3) and
// must not reset; callers combine this with their own frequency-change
// check on d.Interferers to decide the interferer case.
func (d Diff) ChangesResponse() bool {
	return d.ReferenceFrequency != nil ||
		d.BPF != nil ||
		d.LPF != nil ||
		d.Mixer != nil ||
		d.ModulatingFrequency != nil
}
