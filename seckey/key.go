/*
NAME
  key.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package seckey provides the opaque, immutable key material type shared by
// the cryptographic and steganographic layers (spec.md section 3, "Key
// material").
package seckey

import "github.com/pkg/errors"

// Key is an opaque immutable byte sequence with an associated length.
// Construction copies the bytes; Zero overwrites them. The length field
// always matches len(buf); this invariant is maintained by construction
// and never exposed for direct mutation.
type Key struct {
	buf []byte
}

// New copies b into a new Key. The caller retains ownership of b.
func New(b []byte) (*Key, error) {
	if len(b) == 0 {
		return nil, errors.New("seckey: empty key material")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Key{buf: cp}, nil
}

// Bytes returns a copy of the key's bytes. Callers must not assume the
// returned slice aliases internal storage.
func (k *Key) Bytes() []byte {
	cp := make([]byte, len(k.buf))
	copy(cp, k.buf)
	return cp
}

// Len returns the key length in bytes.
func (k *Key) Len() int {
	return len(k.buf)
}

// Zero overwrites the key material with zeros. The Key must not be used
// afterwards.
func (k *Key) Zero() {
	for i := range k.buf {
		k.buf[i] = 0
	}
	k.buf = nil
}
