package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// HashFloats fingerprints a shape and its values
func HashFloats(rows, cols int, values []float64) Hash {
	buf := make([]byte, 16+8*len(values))
	binary.LittleEndian.PutUint64(buf[0:], uint64(rows))
	binary.LittleEndian.PutUint64(buf[8:], uint64(cols))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[16+8*i:], math.Float64bits(v))
	}
	return NewHash(buf)
}
