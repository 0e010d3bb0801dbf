package cryptoface

import (
	"bytes"
	"testing"
)

func mustHandle(t *testing.T, hmacFlag bool) *Handle {
	t.Helper()
	h, err := Open(CipherARCFOUR, DigestSHA1, hmacFlag)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	h := mustHandle(t, false)
	key := []byte("0123456789ABCDEF")
	iv := make([]byte, 16)
	plain := []byte("the quick brown fox")

	cipher, err := h.Encrypt(key, iv, plain)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(cipher, plain) {
		t.Fatal("ciphertext should differ from plaintext")
	}

	back, err := h.Decrypt(key, iv, cipher)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, plain) {
		t.Fatalf("round trip mismatch: got %q want %q", back, plain)
	}
}

func TestDigestDeterministic(t *testing.T) {
	h := mustHandle(t, false)
	data := []byte("packet body")
	d1, err := h.Digest(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := h.Digest(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d1, d2) {
		t.Fatal("digest should be deterministic")
	}
	if len(d1) != h.Len() {
		t.Fatalf("digest length %d != Len() %d", len(d1), h.Len())
	}
}

func TestCheckIntegrity(t *testing.T) {
	h := mustHandle(t, false)
	data := []byte("payload")
	digest, err := h.Digest(nil, data)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := h.CheckIntegrity(nil, data, digest)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected matching digest to report equal=true")
	}

	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0xFF
	ok, err = h.CheckIntegrity(nil, tampered, digest)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected tampered data to report equal=false")
	}
}

func TestPreparePacketKeysDiffersByPacketID(t *testing.T) {
	h := mustHandle(t, false)
	masterKey := bytes.Repeat([]byte{0x42}, 16)
	iv := make([]byte, 16)

	k1, err := h.PreparePacketKeys(masterKey, iv, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := h.PreparePacketKeys(masterKey, iv, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(k1, k2) {
		t.Fatal("expected distinct per-packet keys for distinct packet ids")
	}

	k1Again, err := h.PreparePacketKeys(masterKey, iv, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(k1, k1Again) {
		t.Fatal("expected deterministic per-packet key for same (emission,packet)")
	}
}

func TestUnsupportedAlgorithmsRejected(t *testing.T) {
	if _, err := Open(CipherUnknown, DigestSHA1, false); err == nil {
		t.Fatal("expected error for unsupported cipher")
	}
	if _, err := Open(CipherARCFOUR, DigestUnknown, false); err == nil {
		t.Fatal("expected error for unsupported digest")
	}
}

func TestAlgoFromName(t *testing.T) {
	c, err := CipherAlgoFromName("")
	if err != nil || c != CipherARCFOUR {
		t.Fatalf("expected default ARCFOUR, got %v, %v", c, err)
	}
	if _, err := CipherAlgoFromName("AES256"); err == nil {
		t.Fatal("expected error for unknown cipher name")
	}

	d, err := DigestAlgoFromName("sha1")
	if err != nil || d != DigestSHA1 {
		t.Fatalf("expected SHA1, got %v, %v", d, err)
	}
}
