// Package rng provides the injectable random source used by the draw engine.
package rng

import "math/rand/v2"

// Source returns uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 { return f() }

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Default returns the auto-seeded, concurrency-safe global source.
func Default() Source { return globalSource{} }

// NewSeeded returns a reproducible source. It is not safe for concurrent use.
func NewSeeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, 0))
}

// Intn returns a uniform index in [0, n). n must be positive.
func Intn(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	// a misbehaving source returning 1.0 must not index past the end
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Pick returns a uniformly chosen element of xs. xs must be non-empty.
func Pick[T any](src Source, xs []T) T {
	return xs[Intn(src, len(xs))]
}

// Shuffle returns a Fisher-Yates shuffled copy of xs.
func Shuffle[T any](src Source, xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	for i := len(out) - 1; i > 0; i-- {
		j := Intn(src, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
