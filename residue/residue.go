/*
NAME
  residue.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package residue implements the embedder and extractor that write and
// read variable numbers of least-significant bits into MDCT residue
// coefficients under the per-coefficient budgets capacity.Analyze
// produces. See spec.md section 4.7.
package residue

import (
	"math"

	"github.com/covertaudio/vorbistego/capacity"
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/vlog"
)

// maxSignificantBits bounds how many bits of a coefficient's magnitude the
// extractor will treat as meaningful, per spec.md's design note: "the
// per-byte extraction loop... assumes <= 32 significant bits per
// coefficient. Coefficients beyond that range are clamped to 32 bits."
const maxSignificantBits = 32

// Embed writes up to dataBits bits of data into residue, walking the
// coefficients named by lineup in order and using frame's per-coefficient
// budgets and [Lower, Upper] ranges. It returns the number of bits actually
// embedded, which may be less than dataBits if lineup is exhausted first.
//
// For each coefficient it prefers the largest j (between the coefficient's
// min and max capacity) such that the candidate value v = (1<<j) | next j
// bits of data falls inside [|Lower|, |Upper|]; if no candidate fits, it
// falls back to the candidate nearest to the range (the "relax" branch),
// which may exceed the psychoacoustic tolerance.
func Embed(res []float64, lineup []int, frame *capacity.Frame, data []byte, dataBits int) (int, error) {
	if len(res) == 0 || len(lineup) == 0 || frame == nil {
		return 0, vlog.New(vlog.InvalidArgument, "Embed", "empty residue, lineup or frame")
	}

	written := 0
	for _, pos := range lineup {
		if written >= dataBits {
			break
		}
		if pos < 0 || pos >= len(res) {
			return written, vlog.New(vlog.InvalidArgument, "Embed", "lineup index out of range")
		}

		neg := res[pos] < 0

		maxBits := frame.Max[pos]
		minBits := frame.Min[pos]

		if maxBits+written > dataBits {
			maxBits = dataBits - written
			if maxBits < minBits {
				minBits = maxBits
			}
		}
		if maxBits <= 0 {
			continue
		}

		subValue := bitops.ReadBits(data, written, maxBits)

		lower := math.Abs(frame.Lower[pos])
		upper := math.Abs(frame.Upper[pos])

		committed := false
		nearestValue := uint64(0)
		nearestDiff := math.MaxFloat64
		haveNearest := false

		j := maxBits
		for ; j >= minBits && j > 0; j-- {
			curr := subValue + (uint64(1) << uint(j))
			cf := float64(curr)

			if cf >= lower && cf <= upper {
				res[pos] = cf
				written += j
				committed = true
				break
			}

			d := math.Abs(cf - lower)
			if u := math.Abs(cf - upper); u < d {
				d = u
			}
			if d < nearestDiff {
				nearestDiff = d
				nearestValue = curr
				haveNearest = true
			}

			subValue >>= 1
		}

		if !committed {
			if !haveNearest {
				return written, vlog.New(vlog.Internal, "Embed", "no candidate value found for coefficient")
			}
			res[pos] = float64(nearestValue)
			written += log2Bits(nearestValue)
		}

		if neg {
			res[pos] = -res[pos]
		}
	}

	return written, nil
}

// log2Bits counts how many times v can be halved before reaching 1,
// mirroring steganos_channel.c's "efficient integer binary logarithm" loop.
func log2Bits(v uint64) int {
	n := 0
	for v > 1 {
		n++
		v >>= 1
	}
	return n
}

// Extract reads the subliminal bits out of residue, walking lineup in
// order, and returns them packed MSB-first into a byte slice along with
// the total number of bits recovered. A coefficient whose absolute value
// is <= 1 carries no bits.
func Extract(res []float64, lineup []int) ([]byte, int, error) {
	if len(res) == 0 || len(lineup) == 0 {
		return nil, 0, vlog.New(vlog.InvalidArgument, "Extract", "empty residue or lineup")
	}

	var w bitops.BitWriter
	for _, pos := range lineup {
		if pos < 0 || pos >= len(res) {
			return nil, 0, vlog.New(vlog.InvalidArgument, "Extract", "lineup index out of range")
		}

		fvalue := math.Abs(res[pos])
		if fvalue <= 1 {
			continue
		}

		v := uint64(fvalue + 0.5)
		msb := log2Bits(v)
		if msb > maxSignificantBits {
			msb = maxSignificantBits
		}
		if msb == 0 {
			continue
		}

		mantissa := v - (uint64(1) << uint(msb))
		w.WriteBits(mantissa, msb)
	}

	return w.Bytes(), w.Len(), nil
}
