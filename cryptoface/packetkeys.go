/*
NAME
  packetkeys.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package cryptoface

import (
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/vlog"
)

// PreparePacketKeys derives the fresh 128-bit per-packet key described in
// spec.md section 4.3: set the cipher to (masterKey, iv), encrypt the
// 16-byte block emission||packet (both big-endian uint64), and use the
// resulting bytes as the cipher key for this packet (and, when hmac is
// enabled, as the digest key too -- the same-key choice is the newer,
// authoritative path per DESIGN.md's Open Question notes).
func (h *Handle) PreparePacketKeys(masterKey, iv []byte, emission, packet uint64) ([]byte, error) {
	buf := make([]byte, 16)
	if err := bitops.PutUint64(buf, 0, emission); err != nil {
		return nil, vlog.Wrap(vlog.Internal, "PreparePacketKeys", err)
	}
	if err := bitops.PutUint64(buf, 8, packet); err != nil {
		return nil, vlog.Wrap(vlog.Internal, "PreparePacketKeys", err)
	}

	derived, err := h.Encrypt(masterKey, iv, buf)
	if err != nil {
		return nil, vlog.Wrap(vlog.Internal, "PreparePacketKeys", err)
	}
	return derived, nil
}
