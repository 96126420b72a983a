package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for resampling
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for a resampling kind and test key.
	// Identical inputs give identical draws, so repeated tests reproduce their null distributions.
	Stream(ctx context.Context, kind, testKey string, baseSeed int64) (*rand.Rand, error)
}
