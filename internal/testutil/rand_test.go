package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_SameSeedSameStream(t *testing.T) {
	a, b := RNG(42), RNG(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestSource_SameSeedSameDraws(t *testing.T) {
	a, b := Source(42), Source(42)
	probs := []float64{0.25, 0.25, 0.5}
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Categorical(probs), b.Categorical(probs))
		assert.Equal(t, a.Bernoulli(0.5), b.Bernoulli(0.5))
	}
}
