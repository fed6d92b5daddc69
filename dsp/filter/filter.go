// Package filter designs Butterworth low/high-pass and RBJ-cookbook
// band-pass biquad cascades, and realizes them as Direct-Form-I sections.
package filter

import (
	"errors"
	"math"
)

// ErrInvalidCorner is returned when a requested corner or center frequency
// cannot be clamped into the valid (0, fs/2) range.
var ErrInvalidCorner = errors.New("filter: invalid corner frequency")

// Coefficients holds one Direct-Form-I biquad's transfer-function coefficients.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Kind selects the overall response shape.
type Kind int

const (
	LowPass Kind = iota
	HighPass
	BandPass
)

// butterworthQs gives the per-section Q values for a 2-section order-4
// Butterworth cascade, lowest Q (most damped) first.
var butterworthQs = []float64{0.5412, 1.3066}

// DesignLowPass builds a Butterworth low-pass cascade at cutoff Hz, order in {1,2,4}.
func DesignLowPass(cutoff, sampleRate float64, order int) ([]Coefficients, error) {
	return designLPFHPF(LowPass, cutoff, sampleRate, order)
}

// DesignHighPass builds a Butterworth high-pass cascade at cutoff Hz, order in {1,2,4}.
func DesignHighPass(cutoff, sampleRate float64, order int) ([]Coefficients, error) {
	return designLPFHPF(HighPass, cutoff, sampleRate, order)
}

func designLPFHPF(kind Kind, corner, sampleRate float64, order int) ([]Coefficients, error) {
	corner, err := clampCorner(corner, sampleRate)
	if err != nil {
		return nil, err
	}
	omega := prewarp(corner, sampleRate)

	switch order {
	case 1:
		return []Coefficients{onePole(kind, omega)}, nil
	case 2:
		return []Coefficients{rbjShelfSection(kind, omega, math.Sqrt(0.5))}, nil
	case 4:
		return []Coefficients{
			rbjShelfSection(kind, omega, butterworthQs[0]),
			rbjShelfSection(kind, omega, butterworthQs[1]),
		}, nil
	default:
		return nil, errors.New("filter: order must be 1, 2 or 4")
	}
}

// prewarp converts a desired analog-equivalent cutoff into the digital
// angular frequency used by the bilinear-transform formulas below.
func prewarp(corner, sampleRate float64) float64 {
	return 2 * math.Pi * corner / sampleRate
}

func clampCorner(f, sampleRate float64) (float64, error) {
	nyquist := sampleRate / 2
	if f <= 0 || f >= nyquist || math.IsNaN(f) {
		return 0, ErrInvalidCorner
	}
	return f, nil
}

// onePole builds a single-pole LPF/HPF expressed as a biquad (b2=a2=0).
func onePole(kind Kind, omega float64) Coefficients {
	k := math.Tan(omega / 2)
	switch kind {
	case HighPass:
		a0 := 1 + k
		return Coefficients{
			B0: 1 / a0,
			B1: -1 / a0,
			B2: 0,
			A1: (k - 1) / a0,
			A2: 0,
		}
	default: // LowPass
		a0 := 1 + k
		return Coefficients{
			B0: k / a0,
			B1: k / a0,
			B2: 0,
			A1: (k - 1) / a0,
			A2: 0,
		}
	}
}

// rbjShelfSection builds an RBJ-cookbook LPF/HPF biquad section with the given Q.
func rbjShelfSection(kind Kind, omega, q float64) Coefficients {
	cosW := math.Cos(omega)
	sinW := math.Sin(omega)
	alpha := sinW / (2 * q)

	a0 := 1 + alpha
	var b0, b1, b2 float64
	switch kind {
	case HighPass:
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
	default: // LowPass
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
	}
	a1 := -2 * cosW
	a2 := 1 - alpha

	return Coefficients{
		B0: b0 / a0, B1: b1 / a0, B2: b2 / a0,
		A1: a1 / a0, A2: a2 / a0,
	}
}

// DesignBandPass builds an RBJ constant-0dB-peak-gain band-pass cascade.
// Order 4 cascades two sections each designed for bandwidth*1.55, an
// empirical correction so the composite -3dB bandwidth matches the target.
func DesignBandPass(centerFrequency, bandwidth, sampleRate float64, order int) ([]Coefficients, error) {
	center, err := clampCorner(centerFrequency, sampleRate)
	if err != nil {
		return nil, err
	}
	if bandwidth <= 0 {
		return nil, ErrInvalidCorner
	}

	switch order {
	case 1, 2:
		return []Coefficients{bpfSection(center, bandwidth, sampleRate)}, nil
	case 4:
		widened := bandwidth * 1.55
		section := bpfSection(center, widened, sampleRate)
		return []Coefficients{section, section}, nil
	default:
		return nil, errors.New("filter: order must be 1, 2 or 4")
	}
}

func bpfSection(centerFrequency, bandwidth, sampleRate float64) Coefficients {
	omega := prewarp(centerFrequency, sampleRate)
	q := centerFrequency / bandwidth
	cosW := math.Cos(omega)
	sinW := math.Sin(omega)
	alpha := sinW / (2 * q)

	a0 := 1 + alpha
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a1 := -2 * cosW
	a2 := 1 - alpha

	return Coefficients{
		B0: b0 / a0, B1: b1 / a0, B2: b2 / a0,
		A1: a1 / a0, A2: a2 / a0,
	}
}

// numDen returns the Re/Im parts of a single section's numerator and
// denominator at H(e^{j*omega}), shared by PhaseResponse and
// MagnitudeResponse.
func numDen(c Coefficients, omega float64) (numRe, numIm, denRe, denIm float64) {
	cosW, sinW := math.Cos(omega), math.Sin(omega)
	cos2W, sin2W := math.Cos(2*omega), math.Sin(2*omega)

	numRe = c.B0 + c.B1*cosW + c.B2*cos2W
	numIm = -c.B1*sinW - c.B2*sin2W
	denRe = 1 + c.A1*cosW + c.A2*cos2W
	denIm = -c.A1*sinW - c.A2*sin2W
	return
}

// PhaseResponse returns arg(H(e^{j*omega})) for a single section at frequency
// f Hz and sample rate fs.
func PhaseResponse(c Coefficients, f, sampleRate float64) float64 {
	omega := 2 * math.Pi * f / sampleRate
	numRe, numIm, denRe, denIm := numDen(c, omega)
	return math.Atan2(numIm, numRe) - math.Atan2(denIm, denRe)
}

// CascadedPhase sums PhaseResponse across every section in the cascade.
func CascadedPhase(sections []Coefficients, f, sampleRate float64) float64 {
	var total float64
	for _, s := range sections {
		total += PhaseResponse(s, f, sampleRate)
	}
	return total
}

// MagnitudeResponse returns |H(e^{j*omega})| for a single section at
// frequency f Hz and sample rate fs.
func MagnitudeResponse(c Coefficients, f, sampleRate float64) float64 {
	omega := 2 * math.Pi * f / sampleRate
	numRe, numIm, denRe, denIm := numDen(c, omega)
	return math.Hypot(numRe, numIm) / math.Hypot(denRe, denIm)
}

// CascadedMagnitude multiplies MagnitudeResponse across every section in
// the cascade.
func CascadedMagnitude(sections []Coefficients, f, sampleRate float64) float64 {
	total := 1.0
	for _, s := range sections {
		total *= MagnitudeResponse(s, f, sampleRate)
	}
	return total
}
