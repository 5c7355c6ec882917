package forecast

import "math/rand"

// Noise supplies the bounded non-negative jitter used by projectors and
// estimators. Implementations must return values in [0, max).
type Noise interface {
	Jitter(max float64) float64
}

type randNoise struct {
	rng *rand.Rand
}

// NewNoise returns a Noise whose sequence is fully determined by seed.
func NewNoise(seed int64) Noise {
	return &randNoise{rng: rand.New(rand.NewSource(seed))}
}

// Jitter always consumes one draw so the sequence does not depend on max.
func (n *randNoise) Jitter(max float64) float64 {
	r := n.rng.Float64()
	if max <= 0 {
		return 0
	}
	return r * max
}

// NoNoise is a Noise that always returns 0.
type NoNoise struct{}

func (NoNoise) Jitter(float64) float64 { return 0 }
