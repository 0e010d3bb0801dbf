/*
NAME
  bitflow.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package stego

import (
	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/vlog"
)

// bitSource adapts the byte-granular crypto ring buffer to the bit-granular
// appetite of a frame's subliminal budget, carrying any bits left over from
// a byte that was only partially consumed forward to the next frame. See
// spec.md section 4.11 step 5, "handling bit-level carry from prior frames
// via read % 8". peek/consume are split so the sender can try an embed at
// one bit count and commit a smaller one once the residue embedder reports
// how much actually fit (spec.md section 4.10 step 9's retry note).
type bitSource struct {
	ring     *cryptochan.Ring
	carry    byte // low carryLen bits hold the next bits to emit, MSB-first order
	carryLen int  // 0..7
}

// available returns the number of whole bits the source could currently
// produce without blocking on more ring input.
func (b *bitSource) available() int {
	return b.carryLen + b.ring.Len()*8
}

// peek returns the next n bits (n <= available()) packed MSB-first, without
// consuming them.
func (b *bitSource) peek(n int) ([]byte, error) {
	if n < 0 || n > b.available() {
		return nil, vlog.New(vlog.InvalidArgument, "stego.bitSource.peek", "requested more bits than available")
	}

	var w bitops.BitWriter
	remaining := n

	if b.carryLen > 0 {
		use := b.carryLen
		if use > remaining {
			use = remaining
		}
		shift := uint(b.carryLen - use)
		w.WriteBits(uint64(b.carry)>>shift, use)
		remaining -= use
	}

	if remaining > 0 {
		nBytes := (remaining + 7) / 8
		raw := b.ring.Peek(nBytes)
		w.WriteBits(bitops.ReadBits(raw, 0, remaining), remaining)
	}

	return w.Bytes(), nil
}

// consume discards exactly n bits (n <= available()) from the front of the
// source, updating the partial-byte carry.
func (b *bitSource) consume(n int) error {
	if n < 0 || n > b.available() {
		return vlog.New(vlog.InvalidArgument, "stego.bitSource.consume", "requested more bits than available")
	}

	need := n
	if b.carryLen > 0 {
		use := b.carryLen
		if use > need {
			use = need
		}
		remaining := b.carryLen - use
		if remaining > 0 {
			b.carry &= (1 << uint(remaining)) - 1
		} else {
			b.carry = 0
		}
		b.carryLen = remaining
		need -= use
	}

	if need > 0 {
		nBytes := (need + 7) / 8
		raw := append([]byte(nil), b.ring.Peek(nBytes)...)
		if err := b.ring.Discard(nBytes); err != nil {
			return vlog.Wrap(vlog.Internal, "stego.bitSource.consume", err)
		}
		leftover := nBytes*8 - need
		if leftover > 0 {
			b.carry = byte(bitops.ReadBits(raw, need, leftover))
			b.carryLen = leftover
		}
	}

	return nil
}

// bitSink is the receive-side mirror of bitSource: it accumulates extracted
// bits and flushes completed bytes into the ring, carrying any partial byte
// forward to the next frame.
type bitSink struct {
	ring     *cryptochan.Ring
	carry    byte
	carryLen int
}

// put appends bits (packed MSB-first in data, bits valid) to the sink,
// writing every whole byte formed to the ring.
func (s *bitSink) put(data []byte, bits int) error {
	var w bitops.BitWriter
	if s.carryLen > 0 {
		w.WriteBits(uint64(s.carry), s.carryLen)
	}
	w.WriteBits(bitops.ReadBits(data, 0, bits), bits)

	total := s.carryLen + bits
	fullBytes := total / 8
	rem := total % 8
	out := w.Bytes()

	if fullBytes > 0 {
		if err := s.ring.Append(out[:fullBytes]); err != nil {
			return vlog.Wrap(vlog.Internal, "stego.bitSink.put", err)
		}
	}

	if rem > 0 {
		s.carry = byte(bitops.ReadBits(out, fullBytes*8, rem))
		s.carryLen = rem
	} else {
		s.carry, s.carryLen = 0, 0
	}

	return nil
}
