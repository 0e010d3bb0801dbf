/*
NAME
  synchz.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package synchz implements the two interchangeable synchronization
// backends a session picks between at init: RES_HEADER, a plain magic-byte
// framing of the subliminal payload, and ISS, an improved-spread-spectrum
// watermark over the floor's post vector. See spec.md section 4.8.
package synchz

// Method selects a synchronization backend. A session holds one constant
// for its lifetime, except for the ISS-to-RES_HEADER receive-side
// fallback spec.md section 4.8 describes.
type Method int

const (
	ResHeader Method = iota
	ISS
	// ForcedResHeader is not a session-level configuration value — spec.md
	// section 6 only exposes ResHeader and ISS to session setup — but a
	// third, internal-only value the per-frame drivers switch to for a
	// single frame when the ISS presence watermark reads absent, per
	// spec.md section 4.11 steps 2 and 4: the floor posts stay
	// unwatermarked while the raw residue still carries a RES_HEADER-shaped
	// frame.
	ForcedResHeader
)

// Magic is the RES_HEADER presence byte (steganos_channel.h's
// SYNCHRO_HEADER_BYTES_RES worth of 0xFF).
const Magic byte = 0xFF

// SizeFieldBits is the width of the payload-length field that follows the
// magic byte (or, under ISS, follows directly after the watermark bit).
const SizeFieldBits = 8

// HeaderBits is the total bit length of the RES_HEADER framing (magic byte
// plus size field).
const HeaderBits = 8 + SizeFieldBits

// MaxPayloadSize is the largest payload length the 8-bit size field can
// represent.
const MaxPayloadSize = 1<<SizeFieldBits - 1
