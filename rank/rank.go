// Package rank answers base-rank queries over a BWT: how many times base c
// occurs among the first i BWT symbols.
//
// Each base gets a bitset over BWT rows. Cumulative counts are stored every
// stride rows, so a query is one checkpoint lookup plus popcounts over at
// most stride/64 words.
package rank

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/gramsearch/prg"
)

// DefaultStride is the default checkpoint spacing in rows.
const DefaultStride = 256

// Source is the BWT the cache is built from.
type Source interface {
	Len() uint64
	BWT(i uint64) prg.Symbol
}

type options struct {
	stride uint64
}

// Option configures New.
type Option func(*options)

// WithStride sets the checkpoint spacing. It is rounded up to a multiple of
// 64; smaller strides trade memory for fewer popcounts per query.
func WithStride(stride uint64) Option {
	return func(o *options) {
		if stride < 64 {
			stride = 64
		}
		o.stride = (stride + 63) &^ 63
	}
}

// Cache is an immutable base-rank structure. It is safe for concurrent use.
type Cache struct {
	n      uint64
	stride uint64
	sets   [prg.NumBases]*bitset.BitSet
	words  [prg.NumBases][]uint64
	checks [prg.NumBases][]uint64 // checks[b][k] = occurrences of b in rows [0, k*stride)
}

// New builds a cache over src.
func New(src Source, opts ...Option) *Cache {
	o := options{stride: DefaultStride}
	for _, fn := range opts {
		fn(&o)
	}

	n := src.Len()
	c := &Cache{n: n, stride: o.stride}
	for b := range c.sets {
		c.sets[b] = bitset.New(uint(n))
	}
	for i := uint64(0); i < n; i++ {
		if s := src.BWT(i); s.IsBase() {
			c.sets[s-prg.A].Set(uint(i))
		}
	}

	wordsPerBlock := c.stride / 64
	blocks := n/c.stride + 1
	for b := range c.sets {
		words := c.sets[b].Words()
		checks := make([]uint64, blocks)
		for k := uint64(1); k < blocks; k++ {
			sum := checks[k-1]
			for _, w := range words[(k-1)*wordsPerBlock : k*wordsPerBlock] {
				sum += uint64(bits.OnesCount64(w))
			}
			checks[k] = sum
		}
		c.words[b] = words
		c.checks[b] = checks
	}
	return c
}

// Rank returns the number of rows j < i whose BWT symbol is s. Non-base
// symbols always rank 0; i is clamped to the BWT length.
func (c *Cache) Rank(s prg.Symbol, i uint64) uint64 {
	if !s.IsBase() {
		return 0
	}
	if i > c.n {
		i = c.n
	}
	b := s - prg.A
	words := c.words[b]

	r := c.checks[b][i/c.stride]
	end := i / 64
	for w := (i / c.stride) * (c.stride / 64); w < end; w++ {
		r += uint64(bits.OnesCount64(words[w]))
	}
	if rem := i % 64; rem != 0 {
		r += uint64(bits.OnesCount64(words[end] & (1<<rem - 1)))
	}
	return r
}

// Count returns the total occurrences of base s in the BWT.
func (c *Cache) Count(s prg.Symbol) uint64 { return c.Rank(s, c.n) }

// Len returns the number of rows covered.
func (c *Cache) Len() uint64 { return c.n }

// Stride returns the checkpoint spacing.
func (c *Cache) Stride() uint64 { return c.stride }

// SizeInBytes estimates the memory held by the cache.
func (c *Cache) SizeInBytes() uint64 {
	var size uint64
	for b := range c.sets {
		size += uint64(len(c.words[b]))*8 + uint64(len(c.checks[b]))*8
	}
	return size
}
