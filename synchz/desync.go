/*
NAME
  desync.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package synchz

import (
	"github.com/covertaudio/vorbistego/hide"
	"github.com/covertaudio/vorbistego/internal/prng"
	"github.com/covertaudio/vorbistego/vlog"
)

// DesynchronizeISS forces the first SizeFieldBits bits of the size field
// to read as zero once unhidden, by writing SizeFieldBits two-valued
// residues (magnitude 2 or 3, so the embedder's single mantissa bit
// carries exactly the pre-hidden zero) into the first SizeFieldBits
// positions of lineup. Used when the current frame has nothing to carry
// under ISS, to avoid a false positive at the receiver. See spec.md
// section 4.8, "Desynchronize / ISS".
func DesynchronizeISS(res []float64, lineup []int, method hide.Method, stream *prng.Stream, floor []int32) error {
	if len(lineup) < SizeFieldBits {
		return vlog.New(vlog.InvalidArgument, "synchz.DesynchronizeISS", "lineup shorter than size field")
	}

	hidden, err := hide.Apply(method, make([]byte, 1), SizeFieldBits, floor, stream)
	if err != nil {
		return vlog.Wrap(vlog.Internal, "synchz.DesynchronizeISS", err)
	}

	for i := 0; i < SizeFieldBits; i++ {
		pos := lineup[i]
		if pos < 0 || pos >= len(res) {
			return vlog.New(vlog.InvalidArgument, "synchz.DesynchronizeISS", "lineup index out of range")
		}

		bit := (hidden[i/8] >> uint(7-i%8)) & 1
		magnitude := float64(2 + bit)
		if res[pos] < 0 {
			res[pos] = -magnitude
		} else {
			res[pos] = magnitude
		}
	}

	return nil
}
