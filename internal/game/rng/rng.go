// Package rng exposes the entropy source for treasure placement as an
// injectable capability.
//
// The placement shuffle was designed around a weak, block-derived entropy
// source and is therefore predictable by whoever controls the seed input.
// That weakness is preserved deliberately for behavioral parity: swap in a
// strong Source for deployments that need unpredictable placement, and a
// Fixed source in tests.
package rng

import (
	"encoding/binary"
	"time"
)

// Source yields pseudo-random values for the placement shuffle.
type Source interface {
	Next() uint64
}

// Weak is the default source: an xorshift stream seeded from the wall clock,
// mirroring the predictability profile of block-level entropy. Not safe for
// anything adversarial.
type Weak struct {
	state uint64
}

// NewWeak seeds a Weak source from the current time.
func NewWeak() *Weak {
	seed := uint64(time.Now().UnixNano())
	if seed == 0 {
		seed = 1
	}
	return &Weak{state: seed}
}

func (w *Weak) Next() uint64 {
	// xorshift64
	w.state ^= w.state << 13
	w.state ^= w.state >> 7
	w.state ^= w.state << 17
	return w.state
}

// Fixed is a deterministic source for tests.
type Fixed struct {
	state uint64
}

// NewFixed seeds a deterministic source.
func NewFixed(seed uint64) *Fixed {
	if seed == 0 {
		seed = 1
	}
	return &Fixed{state: seed}
}

func (f *Fixed) Next() uint64 {
	f.state ^= f.state << 13
	f.state ^= f.state >> 7
	f.state ^= f.state << 17
	return f.state
}

// SeedFromBytes folds arbitrary entropy bytes into a seed, for deployments
// that derive placement from an external entropy beacon.
func SeedFromBytes(b []byte) uint64 {
	var buf [8]byte
	copy(buf[:], b)
	seed := binary.BigEndian.Uint64(buf[:])
	for i := 8; i+8 <= len(b); i += 8 {
		seed ^= binary.BigEndian.Uint64(b[i : i+8])
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}
