// Package spectrum computes a windowed magnitude spectrum via a hand-rolled
// iterative radix-2 Cooley-Tukey FFT.
package spectrum

import "math"

// MaxFFTSize caps the transform length.
const MaxFFTSize = 1024

// Bin is one frequency-domain output bin.
type Bin struct {
	Frequency float64
	MagnitudeDB float64
}

// Compute returns the magnitude spectrum of input (the tail is used if
// input is longer than the chosen FFT length). N is the largest power of
// two <= min(len(input), MaxFFTSize). Inputs shorter than 64 samples
// produce an empty spectrum.
func Compute(input []float64, sampleRate float64) []Bin {
	if len(input) < 64 {
		return nil
	}
	n := largestPowerOfTwo(minInt(len(input), MaxFFTSize))
	if n < 64 {
		return nil
	}

	tail := input[len(input)-n:]
	re := make([]float64, n)
	im := make([]float64, n)
	for i, v := range tail {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		re[i] = v * w
	}

	fft(re, im)

	bins := make([]Bin, n/2)
	for k := 0; k < n/2; k++ {
		mag := math.Hypot(re[k], im[k]) / float64(n)
		if mag < 1e-10 {
			mag = 1e-10
		}
		bins[k] = Bin{
			Frequency:   float64(k) * sampleRate / float64(n),
			MagnitudeDB: 20 * math.Log10(mag),
		}
	}
	return bins
}

// fft runs an in-place iterative radix-2 decimation-in-time Cooley-Tukey
// transform: bit-reversal permutation followed by the butterfly passes.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angleStep := -2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				angle := angleStep * float64(k)
				wr, wi := math.Cos(angle), math.Sin(angle)

				ai, bi := start+k, start+k+half
				tr := re[bi]*wr - im[bi]*wi
				ti := re[bi]*wi + im[bi]*wr

				re[bi] = re[ai] - tr
				im[bi] = im[ai] - ti
				re[ai] = re[ai] + tr
				im[ai] = im[ai] + ti
			}
		}
	}
}

func largestPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
