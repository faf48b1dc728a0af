package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/gramsearch/prg"
)

// RNG wraps a seeded math/rand source. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset rewinds the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 { return r.seed }

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Base returns a uniformly chosen base.
func (r *RNG) Base() prg.Symbol {
	return prg.Bases[r.Intn(prg.NumBases)]
}

// Bases returns n uniformly chosen bases.
func (r *RNG) Bases(n int) []prg.Symbol {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]prg.Symbol, n)
	for i := range out {
		out[i] = prg.Bases[r.rand.Intn(prg.NumBases)]
	}
	return out
}
