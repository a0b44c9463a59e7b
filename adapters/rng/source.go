package rng

import (
	"context"
	"math/rand"
)

// Source implements ports.RNGPort with math/rand sources. It is stateless and
// safe for concurrent use; each call returns an independent *rand.Rand.
type Source struct{}

// NewSource creates a seeded stream source
func NewSource() *Source {
	return &Source{}
}

// SeededStream creates a deterministic random number generator for a named operation.
// The name is mixed into the seed so different operations get independent streams.
func (s *Source) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString is djb2
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
