package gen

import "math/rand"

// Source supplies primitive random draws. Implementations must be
// deterministic given their own state so that seeded runs replay
// exactly.
type Source interface {
	// Categorical returns an index into probs, distributed
	// proportionally to the entries. probs must be non-empty and sum
	// to 1 (validated upstream at grammar load).
	Categorical(probs []float64) int

	// Bernoulli returns true with probability p.
	Bernoulli(p float64) bool
}

// randSource draws from an injected *rand.Rand.
type randSource struct {
	rng *rand.Rand
}

// NewRandSource wraps rng as a Source. The caller owns the generator;
// sharing one generator across concurrent runs is not supported.
func NewRandSource(rng *rand.Rand) Source {
	return &randSource{rng: rng}
}

func (s *randSource) Categorical(probs []float64) int {
	u := s.rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if u < cum {
			return i
		}
	}
	// Rounding slack: the cumulative sum may land a hair under 1.
	return len(probs) - 1
}

func (s *randSource) Bernoulli(p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	return s.rng.Float64() < p
}
