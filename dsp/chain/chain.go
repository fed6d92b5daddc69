// Package chain wires oscillator, noise, interferer, filter, mixer and dut
// into the per-sample lock-in signal chain and owns the thirteen display
// ring buffers and the time-averaging output accumulator.
package chain

import (
	"math"
	"math/rand"

	"github.com/miksto/lockin-amplifier-engine/dsp/dut"
	"github.com/miksto/lockin-amplifier-engine/dsp/filter"
	"github.com/miksto/lockin-amplifier-engine/dsp/interferer"
	"github.com/miksto/lockin-amplifier-engine/dsp/mixer"
	"github.com/miksto/lockin-amplifier-engine/dsp/noise"
	"github.com/miksto/lockin-amplifier-engine/dsp/ring"
	"github.com/miksto/lockin-amplifier-engine/engine/config"
)

// Channel indices, matching the fixed order from spec §3.
const (
	ChanReference = iota
	ChanModulating
	ChanModulatingPlusNoise
	ChanSensorClean
	ChanNoise
	ChanSensor
	ChanAfterBpf
	ChanMixerI
	ChanMixerQ
	ChanIOutput
	ChanQOutput
	ChanSignedOutput
	ChanTime
	NumChannels
)

// Outputs is the averaged, published scalar result for one snapshot.
type Outputs struct {
	I            float64
	Q            float64
	SignedOutput float64
	PhaseDeg     float64
}

// Runner owns the full per-sample DSP graph plus display rings.
type Runner struct {
	params config.Params

	dut    *dut.Generator
	noiseG *noise.Generator
	bank   *interferer.Bank

	bpf *filter.Cascade // nil when disabled
	lpfI, lpfQ *filter.Cascade

	bpfPhaseOffset float64

	rings [NumChannels]*ring.Buffer

	iSum, qSum float64
	avgCount   int
	sampleCount uint64
}

// New builds a Runner for params, designing the BPF/LPF cascades and
// allocating rings sized to params.RingCapacity.
func New(params config.Params) (*Runner, error) {
	r := &Runner{params: params}
	r.dut = dut.New(params.SampleRate)
	r.noiseG = noise.New(noise.NewRandSource(rand.New(rand.NewSource(1))))
	r.bank = interferer.New(params.SampleRate)
	r.bank.Update(toInterfererSpecs(params.Interferers))

	if err := r.rebuildFilters(); err != nil {
		return nil, err
	}

	for i := range r.rings {
		r.rings[i] = ring.New(params.RingCapacity)
	}
	return r, nil
}

func toInterfererSpecs(list []config.Interferer) []interferer.Spec {
	specs := make([]interferer.Spec, len(list))
	for i, it := range list {
		specs[i] = interferer.Spec{ID: it.ID, Frequency: it.Frequency, Amplitude: it.Amplitude}
	}
	return specs
}

func (r *Runner) rebuildFilters() error {
	if r.params.BPF.Enabled {
		coeffs, err := filter.DesignBandPass(r.params.BPF.CenterFrequency, r.params.BPF.Bandwidth, r.params.SampleRate, r.params.BPF.Order)
		if err != nil {
			return err
		}
		r.bpf = filter.NewCascade(coeffs)
		r.bpfPhaseOffset = filter.CascadedPhase(coeffs, r.params.ReferenceFrequency, r.params.SampleRate)
	} else {
		r.bpf = nil
		r.bpfPhaseOffset = 0
	}

	lpfCoeffs, err := filter.DesignLowPass(r.params.LPF.CutoffFrequency, r.params.SampleRate, r.params.LPF.Order)
	if err != nil {
		return err
	}
	r.lpfI = filter.NewCascade(lpfCoeffs)
	r.lpfQ = filter.NewCascade(lpfCoeffs)
	return nil
}

// ProcessSample runs one iteration of the per-sample procedure and pushes
// the resulting thirteen channel values into the display rings.
func (r *Runner) ProcessSample() {
	p := &r.params

	thetaRef, sample := r.dut.Generate(
		p.ReferenceFrequency, p.ReferenceAmplitude, radians(p.PhaseShift),
		p.ModulatingFrequency, p.ModulationIndex, p.SensorOutputAmplitude,
	)

	interfererSum := r.bank.Generate()
	noiseVal := r.noiseG.Next(p.WhiteNoiseAmplitude) + interfererSum
	sensor := sample.SensorClean + noiseVal

	var afterBpf float64
	if r.bpf != nil {
		afterBpf = r.bpf.Process(sensor)
	} else {
		afterBpf = sensor
	}

	aRef := p.ReferenceAmplitude
	mixMode := mixer.Analog
	if p.Mixer.Mode == config.MixerDigital {
		mixMode = mixer.Digital
	}
	mixI, mixQ := mixer.Mix(mixMode, afterBpf, thetaRef, aRef)

	iFilt := r.lpfI.Process(mixI)
	qFilt := r.lpfQ.Process(mixQ)

	phaseShiftRad := radians(p.PhaseShift)
	signed := iFilt*math.Cos(phaseShiftRad) + qFilt*math.Sin(phaseShiftRad)

	t := float64(r.sampleCount) / p.SampleRate

	r.rings[ChanReference].Push(float32(sample.Reference))
	r.rings[ChanModulating].Push(float32(sample.ModulatingSignal))
	r.rings[ChanModulatingPlusNoise].Push(float32(sample.ModulatingSignal + noiseVal))
	r.rings[ChanSensorClean].Push(float32(sample.SensorClean))
	r.rings[ChanNoise].Push(float32(noiseVal))
	r.rings[ChanSensor].Push(float32(sensor))
	r.rings[ChanAfterBpf].Push(float32(afterBpf))
	r.rings[ChanMixerI].Push(float32(mixI))
	r.rings[ChanMixerQ].Push(float32(mixQ))
	r.rings[ChanIOutput].Push(float32(iFilt))
	r.rings[ChanQOutput].Push(float32(qFilt))
	r.rings[ChanSignedOutput].Push(float32(signed))
	r.rings[ChanTime].Push(float32(t))

	r.iSum += iFilt
	r.qSum += qFilt
	r.avgCount++
	r.sampleCount++
}

// Rings exposes the channel ring buffers for snapshotting.
func (r *Runner) Rings() *[NumChannels]*ring.Buffer {
	return &r.rings
}

// SampleCount returns the number of samples processed so far.
func (r *Runner) SampleCount() uint64 {
	return r.sampleCount
}

// AverageAndReset computes the averaged scalar outputs from the current
// accumulator, wraps phase into (-180, 180], and resets the accumulator.
func (r *Runner) AverageAndReset() Outputs {
	if r.avgCount == 0 {
		return Outputs{}
	}
	iAvg := r.iSum / float64(r.avgCount)
	qAvg := r.qSum / float64(r.avgCount)
	signed := iAvg*math.Cos(radians(r.params.PhaseShift)) + qAvg*math.Sin(radians(r.params.PhaseShift))
	phase := math.Atan2(qAvg, iAvg)*180/math.Pi - r.bpfPhaseOffset*180/math.Pi
	phase = wrapDegrees(phase)

	r.iSum, r.qSum, r.avgCount = 0, 0, 0
	return Outputs{I: iAvg, Q: qAvg, SignedOutput: signed, PhaseDeg: phase}
}

// UpdateParams merges diff into the held params (per config.ApplyDiff), then
// rebuilds whatever the diff invalidates: filter-affecting fields clear
// rings, reset the accumulator and filter states and recompute
// bpfPhaseOffset; interferer changes use the in-place amplitude path when
// frequencies are unchanged, otherwise also trigger a full reset.
func (r *Runner) UpdateParams(diff config.Diff) error {
	interferersChanged := diff.Interferers != nil && !sameFrequencies(r.params.Interferers, diff.Interferers)

	prevParams := r.params
	prevBpf, prevLpfI, prevLpfQ, prevOffset := r.bpf, r.lpfI, r.lpfQ, r.bpfPhaseOffset
	r.params.ApplyDiff(diff)

	resetNeeded := diff.ChangesResponse() || interferersChanged

	if diff.BPF != nil || diff.LPF != nil {
		if err := r.rebuildFilters(); err != nil {
			r.params = prevParams // keep prior coefficients per InvalidCorner handling
			r.bpf, r.lpfI, r.lpfQ, r.bpfPhaseOffset = prevBpf, prevLpfI, prevLpfQ, prevOffset
			return err
		}
	} else if diff.ReferenceFrequency != nil && r.bpf != nil {
		// center/order unchanged but phase offset depends on reference freq.
		r.bpfPhaseOffset = filter.CascadedPhase(r.bpf.Coefficients(), r.params.ReferenceFrequency, r.params.SampleRate)
	}

	if diff.Interferers != nil {
		r.bank.Update(toInterfererSpecs(r.params.Interferers))
	}

	if resetNeeded {
		r.iSum, r.qSum, r.avgCount = 0, 0, 0
		if r.bpf != nil {
			r.bpf.Reset()
		}
		r.lpfI.Reset()
		r.lpfQ.Reset()
		for _, rb := range r.rings {
			rb.Clear()
		}
	}
	return nil
}

func sameFrequencies(old, new []config.Interferer) bool {
	if len(old) != len(new) {
		return false
	}
	for i := range old {
		if old[i].Frequency != new[i].Frequency {
			return false
		}
	}
	return true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg <= 0 {
		deg += 360
	}
	return deg - 180
}
