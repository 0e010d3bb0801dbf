/*
NAME
  capacity.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package capacity analyzes an MDCT residue vector to determine how many
// subliminal bits each coefficient can safely carry, and runs the
// aggressiveness feedback controller that converts a desired long-run
// channel usage into a per-frame bit budget. See spec.md section 4.6.
package capacity

import (
	"github.com/covertaudio/vorbistego/internal/itu468"
	"github.com/covertaudio/vorbistego/vlog"
)

// MaxSubliminalSize is the largest number of subliminal bits a single frame
// can carry: the RES_HEADER/ISS size field is one byte wide, so the field
// itself cannot represent more than 2^8-1 (spec.md section 6).
const MaxSubliminalSize = 1<<8 - 1

// maxNbits bounds the per-coefficient bit budget to 32, mirroring the
// original's BITS_PER_BYTE*sizeof(int) range check on a 32-bit int.
const maxNbits = 32

// Frame holds the per-coefficient capacity analysis for one audio frame:
// the maximum and minimum number of bits each residue coefficient can
// carry, their frame-wide totals, and the absolute-value [Lower, Upper]
// range the residue embedder may legally place a coefficient in.
type Frame struct {
	Max []int
	Min []int

	// Lower and Upper bound the absolute value a coefficient may take after
	// embedding, derived from the ITU-R BS.468-4 tolerance band around the
	// original value (steganos_channel.c's _write_subliminal_data).
	Lower []float64
	Upper []float64

	MaxTotal int
	MinTotal int
}

// Analyze computes a Frame's capacity from its residue vector and sample
// rate, following steganos_channel.c's set_subliminal_capacity_limit: for
// each coefficient, the ITU-R BS.468-4 tolerance band bounds how far the
// coefficient could move while staying inaudible, and the base-2 log of
// that bound (rounded down) is the number of least-significant bits of the
// coefficient that are free to carry subliminal data.
func Analyze(residue []float64, rate int) (*Frame, error) {
	if len(residue) == 0 {
		return nil, vlog.New(vlog.InvalidArgument, "Analyze", "empty residue vector")
	}
	if rate <= 0 {
		return nil, vlog.New(vlog.InvalidArgument, "Analyze", "non-positive rate")
	}

	f := &Frame{
		Max:   make([]int, len(residue)),
		Min:   make([]int, len(residue)),
		Lower: make([]float64, len(residue)),
		Upper: make([]float64, len(residue)),
	}

	for i, r := range residue {
		freq := float64(i) * (float64(rate) / (2 * float64(len(residue))))

		neg, pos, err := itu468.VarTol(freq, r)
		if err != nil {
			return nil, vlog.Wrap(vlog.Internal, "Analyze", err)
		}

		// Equally-signed variation (same sign as the residue) gives the
		// larger of the two capacities; oppositely-signed gives the
		// smaller, per steganos_channel.c's ESRV/OSRV split.
		var esrv, osrv float64
		sameSign := (r < 0 && neg < 0) || (r > 0 && neg > 0)
		if sameSign {
			esrv, osrv = neg, pos
		} else {
			osrv, esrv = neg, pos
		}

		maxBits := log2Bits(r + esrv)
		minBits := log2Bits(r + osrv)

		if maxBits >= 1 {
			f.Max[i] = maxBits
			f.MaxTotal += maxBits
		}
		if minBits >= 1 {
			f.Min[i] = minBits
			f.MinTotal += minBits
		}

		if f.Min[i] > f.Max[i] {
			f.Min[i], f.Max[i] = f.Max[i], f.Min[i]
		}

		if sameSign {
			f.Upper[i] = ceil(r + neg)
			f.Lower[i] = floor(r + pos)
		} else {
			f.Lower[i] = ceil(r + neg)
			f.Upper[i] = floor(r + pos)
		}
	}

	return f, nil
}

func ceil(v float64) float64 {
	i := float64(int64(v))
	if v > i {
		return i + 1
	}
	return i
}

func floor(v float64) float64 {
	i := float64(int64(v))
	if v < i {
		return i - 1
	}
	return i
}

// log2Bits computes floor(log2(|v|)), clamped to maxNbits, and matching the
// original's integer-shift loop rather than a floating point log2 call:
// round |v| to the nearest integer, then count how many times it can be
// halved before reaching 1.
func log2Bits(v float64) int {
	aux := int(roundHalfAwayFromZero(v))
	if aux < 0 {
		aux = -aux
	}

	nbits := 0
	for aux > 1 {
		nbits++
		aux >>= 1
	}

	if nbits > maxNbits {
		nbits = maxNbits
	}
	return nbits
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	frac := v - float64(int64(v))
	if frac >= 0.5 {
		return float64(int64(v) + 1)
	}
	return float64(int64(v))
}
