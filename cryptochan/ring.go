/*
NAME
  ring.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package cryptochan

import "github.com/covertaudio/vorbistego/vlog"

// minRingCapacityFactor sets the smallest ring buffer capacity cryptochan will
// accept, expressed as a multiple of the largest packet this Config can
// produce (spec.md section 3, "Crypto ring buffer": capacity at least
// 2x max packet size).
const minRingCapacityFactor = 2

// Ring is a byte ring buffer that smooths the mismatch between packet
// boundaries (produced/parsed in whole units) and the embedding layer's
// per-frame appetite (which wants whatever bytes are available, in
// arbitrary-sized chunks). It is not safe for concurrent use; each stego
// Session owns one.
type Ring struct {
	buf  []byte
	used int
}

// NewRing allocates a Ring with the given capacity. capacity must be at
// least minRingCapacityFactor times maxPacketLen.
func NewRing(capacity, maxPacketLen int) (*Ring, error) {
	if capacity < minRingCapacityFactor*maxPacketLen {
		return nil, vlog.New(vlog.InvalidArgument, "NewRing", "capacity too small for max packet length")
	}
	return &Ring{buf: make([]byte, capacity)}, nil
}

// Cap returns the ring's total capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Len returns the number of bytes currently buffered.
func (r *Ring) Len() int { return r.used }

// Free returns the number of bytes that can still be appended.
func (r *Ring) Free() int { return len(r.buf) - r.used }

// Append copies p onto the end of the buffered data. It fails if p does not
// fit in the remaining free space.
func (r *Ring) Append(p []byte) error {
	if len(p) > r.Free() {
		return vlog.New(vlog.InvalidArgument, "Ring.Append", "not enough free space")
	}
	copy(r.buf[r.used:], p)
	r.used += len(p)
	return nil
}

// Peek returns a view of the first n buffered bytes without consuming them.
// It panics if n exceeds Len, matching slice semantics; callers are
// expected to check Len first.
func (r *Ring) Peek(n int) []byte {
	return r.buf[:n]
}

// Bytes returns a view of all currently buffered bytes.
func (r *Ring) Bytes() []byte {
	return r.buf[:r.used]
}

// Discard drops the first n buffered bytes, shifting the remainder down to
// offset 0.
func (r *Ring) Discard(n int) error {
	if n < 0 || n > r.used {
		return vlog.New(vlog.InvalidArgument, "Ring.Discard", "n out of range")
	}
	copy(r.buf, r.buf[n:r.used])
	r.used -= n
	return nil
}
