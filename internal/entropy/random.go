// Package entropy provides the injectable random source used for combat
// side effects, bot decisions, and diplomacy rolls.
// Seeded sources make every stochastic step reproducible in tests.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Source supplies randomness to the engine and the bots.
type Source interface {
	Float64() float64 // Uniform in [0, 1)
	IntN(n int) int   // Uniform in [0, n); n must be positive
}

// Seeded is a deterministic PCG-backed source.
type Seeded struct {
	r *mrand.Rand
}

// NewSeeded creates a deterministic source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))}
}

func (s *Seeded) Float64() float64 { return s.r.Float64() }
func (s *Seeded) IntN(n int) int   { return s.r.IntN(n) }

// Crypto draws from crypto/rand. Used when no seed is configured.
type Crypto struct{}

func (Crypto) Float64() float64 { return cryptoRandFloat() }

func (Crypto) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(cryptoRandFloat() * float64(n))
}

// New returns a seeded source, or a crypto source when seed is 0.
func New(seed int64) Source {
	if seed == 0 {
		return Crypto{}
	}
	return NewSeeded(seed)
}

// Chance reports whether a roll on src lands below p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Fixed replays a scripted sequence of floats, cycling when exhausted.
// IntN maps the next float onto [0, n).
type Fixed struct {
	Values []float64
	next   int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

func (f *Fixed) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
