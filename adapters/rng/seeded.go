package rng

import (
	"context"
	"math/rand"
)

// SeededRNG derives independent deterministic streams from a base seed
type SeededRNG struct{}

// NewSeededRNG creates the RNG adapter
func NewSeededRNG() *SeededRNG {
	return &SeededRNG{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *SeededRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream hashes kind and test key into the base seed
func (r *SeededRNG) Stream(ctx context.Context, kind, testKey string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if kind != "" {
		seed = int64(hashString(kind)) + seed
	}
	if testKey != "" {
		seed = int64(hashString(testKey)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}
