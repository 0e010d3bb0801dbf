/*
NAME
  handle.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package cryptoface

import (
	"crypto/hmac"
	"crypto/rc4"
	"crypto/sha1"
	"hash"

	"github.com/covertaudio/vorbistego/vlog"
)

// Handle wraps the whitelisted stream cipher and digest implementations
// behind the façade spec.md section 4.3 describes. It holds no key state of
// its own: every operation takes the key it needs, because vorbistego
// derives a fresh key per packet (PreparePacketKeys) rather than keeping a
// single long-lived cipher session across packets.
type Handle struct {
	CipherAlgo CipherAlgo
	DigestAlgo DigestAlgo
	HMAC       bool
}

// Open validates the requested algorithms against the whitelist and returns
// a ready-to-use Handle.
func Open(cipherAlgo CipherAlgo, digestAlgo DigestAlgo, hmacFlag bool) (*Handle, error) {
	if !IsCipherSupported(cipherAlgo) {
		return nil, vlog.New(vlog.Unsupported, "cryptoface.Open", "cipher algorithm not supported")
	}
	if !IsDigestSupported(digestAlgo, hmacFlag) {
		return nil, vlog.New(vlog.Unsupported, "cryptoface.Open", "digest algorithm not supported")
	}
	return &Handle{CipherAlgo: cipherAlgo, DigestAlgo: digestAlgo, HMAC: hmacFlag}, nil
}

// Close releases any resources held by the handle. Present for symmetry
// with the scoped-acquisition lifecycle described in spec.md section 5;
// the stdlib cipher/hash primitives this façade wraps hold no OS resources,
// so Close is currently a no-op.
func (h *Handle) Close() error { return nil }

// Encrypt and Decrypt are the same operation for the whitelisted stream
// cipher (ARCFOUR/RC4): XOR the data against the keystream produced by key.
// The IV parameter is accepted for interface symmetry with ciphers that
// need one; ARCFOUR does not use it (see DESIGN.md, "Same key for ciphering
// and HMAC").

// Encrypt ciphers data under key, returning a newly allocated ciphertext of
// the same length.
func (h *Handle) Encrypt(key, iv, data []byte) ([]byte, error) {
	return h.xor(key, data)
}

// Decrypt deciphers data under key. For the whitelisted stream cipher this
// is identical to Encrypt.
func (h *Handle) Decrypt(key, iv, data []byte) ([]byte, error) {
	return h.xor(key, data)
}

func (h *Handle) xor(key, data []byte) ([]byte, error) {
	switch h.CipherAlgo {
	case CipherARCFOUR:
		c, err := rc4.NewCipher(key)
		if err != nil {
			return nil, vlog.Wrap(vlog.Internal, "cryptoface.xor", err)
		}
		out := make([]byte, len(data))
		c.XORKeyStream(out, data)
		return out, nil
	default:
		return nil, vlog.New(vlog.Unsupported, "cryptoface.xor", "cipher algorithm not supported")
	}
}

// Digest computes the digest of data under the handle's digest algorithm.
// If key is non-nil and HMAC is enabled, the digest is a keyed HMAC;
// otherwise key is ignored and a plain digest is computed.
func (h *Handle) Digest(key, data []byte) ([]byte, error) {
	hh, err := h.newHash(key)
	if err != nil {
		return nil, err
	}
	hh.Write(data)
	return hh.Sum(nil), nil
}

// Len returns the digest's output length in bytes.
func (h *Handle) Len() int {
	return DigestLen(h.DigestAlgo)
}

func (h *Handle) newHash(key []byte) (hash.Hash, error) {
	switch h.DigestAlgo {
	case DigestSHA1:
		if h.HMAC && key != nil {
			return hmac.New(sha1.New, key), nil
		}
		return sha1.New(), nil
	default:
		return nil, vlog.New(vlog.Unsupported, "cryptoface.newHash", "digest algorithm not supported")
	}
}

// CheckIntegrity recomputes the digest of data under key and compares it
// against digest, reporting true when they match (the "newer", authoritative
// polarity per spec.md section 9 -- the original's inverted _check_integrity
// is not replicated).
func (h *Handle) CheckIntegrity(key, data, digest []byte) (bool, error) {
	got, err := h.Digest(key, data)
	if err != nil {
		return false, err
	}
	if len(got) != len(digest) {
		return false, nil
	}
	var diff byte
	for i := range got {
		diff |= got[i] ^ digest[i]
	}
	return diff == 0, nil
}
