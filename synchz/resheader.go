/*
NAME
  resheader.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package synchz

import (
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/residue"
	"github.com/covertaudio/vorbistego/vlog"
)

// EncodeHeader returns the RES_HEADER framing (magic byte followed by an
// 8-bit payload length) packed MSB-first, ready to be hidden and embedded
// ahead of the payload bits.
func EncodeHeader(payloadLen int) ([]byte, error) {
	if payloadLen < 0 || payloadLen > MaxPayloadSize {
		return nil, vlog.New(vlog.InvalidArgument, "synchz.EncodeHeader", "payload length out of range")
	}
	var w bitops.BitWriter
	w.WriteBits(uint64(Magic), 8)
	w.WriteBits(uint64(payloadLen), SizeFieldBits)
	return w.Bytes(), nil
}

// DecodeHeader interprets the first HeaderBits bits of an already-unhidden
// buffer as a RES_HEADER frame. present is false when the magic byte does
// not match, meaning the frame carries no subliminal data.
func DecodeHeader(buf []byte) (payloadLen int, present bool, err error) {
	if len(buf) == 0 {
		return 0, false, vlog.New(vlog.InvalidArgument, "synchz.DecodeHeader", "empty buffer")
	}
	if bitops.ReadBits(buf, 0, 8) != uint64(Magic) {
		return 0, false, nil
	}
	return int(bitops.ReadBits(buf, 8, SizeFieldBits)), true, nil
}

// ForcedHeaderBits is the RES_HEADER frame width when the primary SIZE
// field reads as the MaxPayloadSize escape sentinel: a secondary 8-bit
// size field carrying the true payload length follows immediately, per
// spec.md section 6's "SIZE=0xFF is reserved under ISS fallback" note and
// section 4.11 step 4.
const ForcedHeaderBits = HeaderBits + SizeFieldBits

// DesynchronizeResHeader guards against a false positive when the current
// frame has nothing to carry: it peeks at what a receiver would extract
// from the raw residue (pre-hiding) over the header's bit width, and if
// that happens to already equal the magic byte, perturbs the first
// coefficient in lineup so the frame reads as empty. See spec.md section
// 4.8, "Desynchronize / RES_HEADER".
func DesynchronizeResHeader(res []float64, lineup []int) error {
	if len(lineup) == 0 {
		return vlog.New(vlog.InvalidArgument, "synchz.DesynchronizeResHeader", "empty lineup")
	}

	peek, bits, err := residue.Extract(res, lineup)
	if err != nil {
		return vlog.Wrap(vlog.Internal, "synchz.DesynchronizeResHeader", err)
	}
	if bits < 8 || bitops.ReadBits(peek, 0, 8) != uint64(Magic) {
		return nil
	}

	pos := lineup[0]
	if pos < 0 || pos >= len(res) {
		return vlog.New(vlog.InvalidArgument, "synchz.DesynchronizeResHeader", "lineup index out of range")
	}
	v := int64(res[pos])
	res[pos] = float64(v ^ 1)
	return nil
}

// DecodeISSWithFallback implements spec.md section 4.8's receive-side
// fallback: when the ISS watermark reads as bit 0, the frame is retried
// against the RES_HEADER framing of fallbackHeader (an already-extracted,
// already-unhidden buffer for the same frame) before the frame is
// declared empty, to catch false negatives.
func DecodeISSWithFallback(posts []int, cfg *Config, fallbackHeader []byte) (bit int, viaFallback bool, err error) {
	bit, err = Decode(posts, cfg)
	if err != nil {
		return 0, false, err
	}
	if bit == 1 {
		return 1, false, nil
	}

	if fallbackHeader != nil {
		if _, present, herr := DecodeHeader(fallbackHeader); herr == nil && present {
			return 1, true, nil
		}
	}
	return 0, false, nil
}
