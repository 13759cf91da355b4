package testutil

import (
	"math/rand"

	"github.com/roach88/normjump/internal/gen"
)

// RNG returns a seeded generator for deterministic tests.
func RNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Source returns a seeded draw source for deterministic tests.
func Source(seed int64) gen.Source {
	return gen.NewRandSource(RNG(seed))
}
