/*
NAME
  algo.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package cryptoface is the cipher and digest façade described in spec.md
// section 4.3: a small whitelist of supported algorithms, handle
// open/close, key/IV installation, stream encrypt/decrypt and digest
// operations, and per-packet key derivation.
package cryptoface

import (
	"strings"

	"github.com/covertaudio/vorbistego/vlog"
)

// CipherAlgo identifies a whitelisted stream cipher.
type CipherAlgo int

const (
	CipherUnknown CipherAlgo = iota
	CipherARCFOUR
)

// DigestAlgo identifies a whitelisted message digest.
type DigestAlgo int

const (
	DigestUnknown DigestAlgo = iota
	DigestSHA1
)

// Ciphers returns the whitelisted cipher algorithms, in preference order
// (index 0 is the default).
func Ciphers() []CipherAlgo { return []CipherAlgo{CipherARCFOUR} }

// Digests returns the whitelisted digest algorithms, in preference order.
func Digests() []DigestAlgo { return []DigestAlgo{DigestSHA1} }

// IsCipherSupported reports whether algo is in the whitelist.
func IsCipherSupported(algo CipherAlgo) bool {
	return algo == CipherARCFOUR
}

// IsDigestSupported reports whether algo is in the whitelist. The hmac flag
// does not currently change support (HMAC is supported with SHA1), but is
// accepted to mirror the original's _is_supported_md signature.
func IsDigestSupported(algo DigestAlgo, hmac bool) bool {
	return algo == DigestSHA1
}

// CipherAlgoFromName maps a cipher name to a CipherAlgo, defaulting to
// ARCFOUR when name is empty.
func CipherAlgoFromName(name string) (CipherAlgo, error) {
	if name == "" {
		name = "ARCFOUR"
	}
	switch strings.ToUpper(name) {
	case "ARCFOUR", "RC4":
		return CipherARCFOUR, nil
	default:
		return CipherUnknown, vlog.New(vlog.Unsupported, "CipherAlgoFromName", "unknown cipher algorithm: "+name)
	}
}

// DigestAlgoFromName maps a digest name to a DigestAlgo, defaulting to SHA1
// when name is empty.
func DigestAlgoFromName(name string) (DigestAlgo, error) {
	if name == "" {
		name = "SHA1"
	}
	switch strings.ToUpper(name) {
	case "SHA1", "SHA-1":
		return DigestSHA1, nil
	default:
		return DigestUnknown, vlog.New(vlog.Unsupported, "DigestAlgoFromName", "unknown digest algorithm: "+name)
	}
}

// DigestLen returns the output length in bytes of algo.
func DigestLen(algo DigestAlgo) int {
	switch algo {
	case DigestSHA1:
		return 20
	default:
		return 0
	}
}
