/*
NAME
  prng.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package prng implements the deterministic, seedable, re-windable integer
// stream shared by the sender and receiver to schedule embedding positions
// and watermark signs. It is explicitly not a cryptographically secure
// generator: the cipher layer (cryptoface) is the security boundary, and
// this package only needs to agree bit-for-bit between two independent
// instances given the same seed and iteration count.
package prng

import "github.com/pkg/errors"

// multiplier and increment are the classic Numerical Recipes LCG
// parameters, chosen for a full-period 32-bit generator with simple
// integer arithmetic that both peers can reproduce exactly.
const (
	multiplier = 1664525
	increment  = 1013904223
)

// Stream is a deterministic pseudo-random integer generator.
type Stream struct {
	state uint32
	iters int64
}

// New returns a Stream seeded from seed, equivalent to calling Seed.
func New(seed []byte) (*Stream, error) {
	s := &Stream{}
	if err := s.Seed(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Seed folds the first 4 bytes of seed, little-endian, into the generator's
// 32-bit state and resets the iteration counter to 0. Seeds shorter than 4
// bytes are zero-extended.
func (s *Stream) Seed(seed []byte) error {
	if len(seed) == 0 {
		return errors.New("prng: empty seed")
	}
	var v uint32
	for i := 0; i < 4 && i < len(seed); i++ {
		v |= uint32(seed[i]) << uint(8*i)
	}
	s.state = v
	s.iters = 0
	return nil
}

// Iters returns the number of values produced by Next since the last Seed.
func (s *Stream) Iters() int64 {
	return s.iters
}

// Next returns the next value in [0, modulo) and advances the stream.
func (s *Stream) Next(modulo int) (int, error) {
	if modulo <= 0 {
		return 0, errors.Errorf("prng: non-positive modulo %d", modulo)
	}
	s.state = s.state*multiplier + increment
	s.iters++
	// Use the high bits, which mix better than the low bits in an LCG.
	return int((uint64(s.state>>8) * uint64(modulo)) >> 24), nil
}

// Rewind reseeds from key and discards iters outputs, leaving the stream
// positioned exactly where a fresh Seed(key) followed by iters calls to
// Next would leave it. Callers use this to replay a subsequence deterministically
// derived from a shared key.
func (s *Stream) Rewind(key []byte, iters int64) error {
	if err := s.Seed(key); err != nil {
		return err
	}
	for i := int64(0); i < iters; i++ {
		if _, err := s.Next(1 << 30); err != nil {
			return err
		}
	}
	return nil
}
