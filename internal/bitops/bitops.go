/*
NAME
  bitops.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package bitops provides the big-endian integer codec and bit-level
// rotation primitives shared by the crypto packet codec and the
// steganographic bit-packing helpers.
package bitops

import "github.com/pkg/errors"

// BitsPerByte is the number of bits in a byte, named for readability at
// call sites that mix byte and bit offsets.
const BitsPerByte = 8

// PutUint32 writes v into dst[off:off+4] using big-endian byte ordering,
// i.e. the most significant byte is written at the lowest offset. dst must
// have at least off+4 bytes.
func PutUint32(dst []byte, off int, v uint32) error {
	if off < 0 || off+4 > len(dst) {
		return errors.Errorf("bitops: PutUint32 out of range: off=%d len=%d", off, len(dst))
	}
	for i := 0; i < 4; i++ {
		dst[off+i] = byte(v >> uint(8*(4-i-1)))
	}
	return nil
}

// Uint32 reads a big-endian uint32 from src[off:off+4].
func Uint32(src []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(src) {
		return 0, errors.Errorf("bitops: Uint32 out of range: off=%d len=%d", off, len(src))
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(src[off+i]) << uint(8*(4-i-1))
	}
	return v, nil
}

// PutUint64 writes v into dst[off:off+8] using big-endian byte ordering.
func PutUint64(dst []byte, off int, v uint64) error {
	if off < 0 || off+8 > len(dst) {
		return errors.Errorf("bitops: PutUint64 out of range: off=%d len=%d", off, len(dst))
	}
	for i := 0; i < 8; i++ {
		dst[off+i] = byte(v >> uint(8*(8-i-1)))
	}
	return nil
}

// Uint64 reads a big-endian uint64 from src[off:off+8].
func Uint64(src []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(src) {
		return 0, errors.Errorf("bitops: Uint64 out of range: off=%d len=%d", off, len(src))
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(src[off+i]) << uint(8*(8-i-1))
	}
	return v, nil
}

// Rol rotates the first nbits bits of s left by k bits, treating s as one
// contiguous big-endian bitstream (bit 0 is the MSB of s[0]). Bits rotated
// off the top re-enter at the bottom. nbits must not exceed 8*len(s).
func Rol(s []byte, nbits, k int) ([]byte, error) {
	return rotate(s, nbits, k)
}

// Ror rotates the first nbits bits of s right by k bits. It is the exact
// inverse of Rol for the same nbits and k: Ror(Rol(s, n, k), n, k) == s.
func Ror(s []byte, nbits, k int) ([]byte, error) {
	return rotate(s, nbits, -k)
}

// rotate performs a left rotation by k bits (negative k rotates right) over
// the first nbits bits of s, returning a newly allocated result the same
// length as s. Bits beyond nbits are copied through unchanged.
func rotate(s []byte, nbits, k int) ([]byte, error) {
	if nbits < 0 || nbits > len(s)*BitsPerByte {
		return nil, errors.Errorf("bitops: rotate: nbits %d out of range for %d bytes", nbits, len(s))
	}
	if nbits == 0 {
		out := make([]byte, len(s))
		copy(out, s)
		return out, nil
	}

	k %= nbits
	if k < 0 {
		k += nbits
	}
	if k == 0 {
		out := make([]byte, len(s))
		copy(out, s)
		return out, nil
	}

	out := make([]byte, len(s))
	copy(out, s)
	for i := 0; i < nbits; i++ {
		srcBit := (i + k) % nbits
		if bitAt(s, srcBit) {
			setBit(out, i)
		} else {
			clearBit(out, i)
		}
	}
	return out, nil
}

// bitAt reports the value of the i-th bit of s, counting from the MSB of
// s[0] as bit 0.
func bitAt(s []byte, i int) bool {
	byteIdx := i / BitsPerByte
	bitIdx := uint(7 - i%BitsPerByte)
	return s[byteIdx]&(1<<bitIdx) != 0
}

func setBit(s []byte, i int) {
	byteIdx := i / BitsPerByte
	bitIdx := uint(7 - i%BitsPerByte)
	s[byteIdx] |= 1 << bitIdx
}

func clearBit(s []byte, i int) {
	byteIdx := i / BitsPerByte
	bitIdx := uint(7 - i%BitsPerByte)
	s[byteIdx] &^= 1 << bitIdx
}
