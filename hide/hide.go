/*
NAME
  hide.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package hide implements the two self-invertible hiding transforms applied
// to the subliminal bitstream before it reaches the residue embedder, and
// after extraction. See spec.md section 4.9.
package hide

import (
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/internal/prng"
	"github.com/covertaudio/vorbistego/vlog"
)

// Method identifies which hiding transform a session uses.
type Method int

const (
	Identity Method = iota
	Parity
)

// bitsParity is the number of pseudo-random floor bits XORed into each
// plain bit by the Parity method (steganos_channel.h's BITS_PARITY).
const bitsParity = 2

// Apply runs the named hiding transform over plainBits bits of plain,
// returning the transformed bitstream packed MSB-first. Both transforms
// are self-inverse: calling Apply a second time with the same floor vector
// and a PRNG rewound to the same starting point recovers the original
// bits, per spec.md section 4.9.
func Apply(method Method, plain []byte, plainBits int, floor []int32, stream *prng.Stream) ([]byte, error) {
	switch method {
	case Identity:
		return applyIdentity(plain, plainBits)
	case Parity:
		return applyParity(plain, plainBits, floor, stream)
	default:
		return nil, vlog.New(vlog.InvalidArgument, "hide.Apply", "unknown hiding method")
	}
}

func applyIdentity(plain []byte, plainBits int) ([]byte, error) {
	if plainBits < 0 {
		return nil, vlog.New(vlog.InvalidArgument, "hide.applyIdentity", "negative bit count")
	}
	var w bitops.BitWriter
	w.WriteBits(bitops.ReadBits(plain, 0, plainBits), plainBits)
	return w.Bytes(), nil
}

// applyParity XORs each plain bit with bitsParity pseudo-random bits drawn
// from the floor vector (treated as a flat array of 32-bit words), per
// steganos_channel.c's parity_bits_method.
func applyParity(plain []byte, plainBits int, floor []int32, stream *prng.Stream) ([]byte, error) {
	if plainBits < 0 {
		return nil, vlog.New(vlog.InvalidArgument, "hide.applyParity", "negative bit count")
	}
	if len(floor) == 0 {
		return nil, vlog.New(vlog.InvalidArgument, "hide.applyParity", "empty floor vector")
	}
	if stream == nil {
		return nil, vlog.New(vlog.InvalidArgument, "hide.applyParity", "nil PRNG stream")
	}

	floorBits := len(floor) * 32

	var w bitops.BitWriter
	for i := 0; i < plainBits; i++ {
		bit := bitops.ReadBits(plain, i, 1)

		for j := 0; j < bitsParity; j++ {
			rnd, err := stream.Next(floorBits)
			if err != nil {
				return nil, vlog.Wrap(vlog.Internal, "hide.applyParity", err)
			}
			elem := rnd / 32
			shift := uint(rnd % 32)
			bit ^= uint64((floor[elem] >> shift) & 1)
		}

		w.WriteBits(bit, 1)
	}

	return w.Bytes(), nil
}
