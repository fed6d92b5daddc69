package noise

import "math/rand"

// RandSource adapts a *rand.Rand into a UniformSource.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource wraps rng (create with rand.New(rand.NewSource(seed))).
func NewRandSource(rng *rand.Rand) *RandSource {
	return &RandSource{rng: rng}
}

func (s *RandSource) Float64() float64 {
	return s.rng.Float64()
}
