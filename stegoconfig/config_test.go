/*
NAME
  config_test.go

DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate
  and Update).

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package stegoconfig

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/vlog"
)

type nopLogger struct{}

func (nopLogger) SetLevel(int8)                     {}
func (nopLogger) Log(int8, string, ...interface{}) {}

func TestValidateDefaults(t *testing.T) {
	c := &Config{Key: make([]byte, 16)}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.CipherName != defaultCipherName {
		t.Errorf("CipherName = %q, want %q", c.CipherName, defaultCipherName)
	}
	if c.DigestName != defaultDigestName {
		t.Errorf("DigestName = %q, want %q", c.DigestName, defaultDigestName)
	}
	if c.StartPacket != defaultStartPacket {
		t.Errorf("StartPacket = %d, want %d", c.StartPacket, defaultStartPacket)
	}
	if c.DefaultDataSize != defaultDefaultDataSize {
		t.Errorf("DefaultDataSize = %d, want %d", c.DefaultDataSize, defaultDefaultDataSize)
	}
	if c.HideMethod != defaultHideMethod {
		t.Errorf("HideMethod = %q, want %q", c.HideMethod, defaultHideMethod)
	}
	if c.SyncMethod != defaultSyncMethod {
		t.Errorf("SyncMethod = %q, want %q", c.SyncMethod, defaultSyncMethod)
	}
	if c.Aggressiveness != defaultAggressiveness {
		t.Errorf("Aggressiveness = %d, want %d", c.Aggressiveness, defaultAggressiveness)
	}
	if len(c.resolvedIV()) != 16 {
		t.Errorf("resolved IV length = %d, want 16", len(c.resolvedIV()))
	}
}

func TestValidateRejectsShortKey(t *testing.T) {
	c := &Config{Key: []byte{0x01, 0x02}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for a too-short key")
	}
}

func TestValidateRequiresSigmaUnderISS(t *testing.T) {
	c := &Config{Key: make([]byte, 16), SyncMethod: "ISS", Sigma: 0}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Sigma != defaultSigma {
		t.Errorf("Sigma = %v, want default %v after validation", c.Sigma, defaultSigma)
	}
}

func TestUpdateFromVariableMap(t *testing.T) {
	c := &Config{Logger: nopLogger{}}
	vars := map[string]string{
		KeyCipherName:     "ARCFOUR",
		KeyDigestName:     "SHA1",
		KeyKey:            "000102030405060708090a0b0c0d0e0f",
		KeyIV:             "0a1b2c3d4e5f6a7b0a1b2c3d4e5f6a7b",
		KeyEmission:       "7",
		KeyStartPacket:    "3",
		KeyHideMethod:     "Parity",
		KeySyncMethod:     "ISS",
		KeyAggressiveness: "8",
		KeySigma:          "2.5",
	}
	c.Update(vars)

	if c.CipherName != "ARCFOUR" || c.DigestName != "SHA1" {
		t.Fatalf("cipher/digest not updated: %+v", c)
	}
	wantKey := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}
	wantIV := []byte{0x0a, 0x1b, 0x2c, 0x3d, 0x4e, 0x5f, 0x6a, 0x7b, 0x0a, 0x1b, 0x2c, 0x3d, 0x4e, 0x5f, 0x6a, 0x7b}
	if !cmp.Equal(c.Key, wantKey) {
		t.Errorf("Key mismatch: %s", cmp.Diff(wantKey, c.Key))
	}
	if !cmp.Equal(c.IV, wantIV) {
		t.Errorf("IV mismatch: %s", cmp.Diff(wantIV, c.IV))
	}
	if c.Emission != 7 || c.StartPacket != 3 {
		t.Fatalf("emission/packet not updated: emission=%d packet=%d", c.Emission, c.StartPacket)
	}
	if c.HideMethod != "Parity" || c.SyncMethod != "ISS" {
		t.Fatalf("method fields not updated: hide=%q sync=%q", c.HideMethod, c.SyncMethod)
	}
	if c.Aggressiveness != 8 {
		t.Fatalf("Aggressiveness = %d, want 8", c.Aggressiveness)
	}
	if c.Sigma != 2.5 {
		t.Fatalf("Sigma = %v, want 2.5", c.Sigma)
	}
}

func TestNewSessionWiresComponents(t *testing.T) {
	c := &Config{
		Key:             make([]byte, 16),
		DefaultDataSize: 24,
		Aggressiveness:  5,
		Logger:          vlog.NopLogger{},
	}

	ring, err := cryptochan.NewRing(512, 128)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := c.NewSession(ring)
	if err != nil {
		t.Fatal(err)
	}
	if sess == nil {
		t.Fatal("NewSession returned a nil session")
	}
}

func TestNewSessionRejectsUnsupportedCipher(t *testing.T) {
	c := &Config{
		Key:             make([]byte, 16),
		DefaultDataSize: 24,
		Aggressiveness:  5,
		CipherName:      "AES256",
		Logger:          vlog.NopLogger{},
	}
	ring, err := cryptochan.NewRing(512, 128)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.NewSession(ring); err == nil {
		t.Fatal("expected error for an unsupported cipher name")
	}
}
