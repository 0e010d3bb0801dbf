/*
NAME
  packet.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package cryptochan implements the cryptographic packet codec, the ring
// buffer that smooths mismatches between packet boundaries and audio frame
// capacity, and the forward (sender)/inverse (receiver) drivers that tie
// them to a payload source/sink file. See spec.md sections 4.4-4.6.
package cryptochan

import (
	"github.com/covertaudio/vorbistego/cryptoface"
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/seckey"
	"github.com/covertaudio/vorbistego/vlog"
)

// Wire format constants, spec.md section 6.
const (
	SyncHeaderLen     = 3
	LengthHeaderLen   = 4
	IVHeaderLen       = 16
	EmissionHeaderLen = 8
	PacketHeaderLen   = 8
	HeaderLen         = SyncHeaderLen + LengthHeaderLen + IVHeaderLen + EmissionHeaderLen + PacketHeaderLen // 39

	MaxPayload          = 1<<32 - 1
	DefaultPayloadSize  = 512
	MinDigestLen        = 3
	MaxDigestLen        = 64
	DataDigestRatioHint = 16 // RATIO_DD in the original.
)

// SyncHeader is the fixed 3-byte magic that opens every packet.
var SyncHeader = [SyncHeaderLen]byte{0xFF, 0xFF, 0xFF}

// Config is the per-session cryptographic configuration, spec.md section 3
// "Cryptographic configuration".
type Config struct {
	Handle *cryptoface.Handle

	MaxData         int // cc.max_data: cap derived from digest length and DataDigestRatioHint.
	DefaultDataSize int

	MasterKey *seckey.Key
	IV        *seckey.Key

	Emission uint64
	Packet   uint64 // session's current/expected packet id; 0 is the terminal sentinel.
}

// NewConfig builds a Config from session parameters, matching
// cryptos_config_init: max_data is digest-length-proportional, and
// defaultDataSize falls back to DefaultPayloadSize (capped at max_data) when
// given as 0.
func NewConfig(h *cryptoface.Handle, key, iv []byte, emission, packet uint64, defaultDataSize int) (*Config, error) {
	if h == nil {
		return nil, vlog.New(vlog.InvalidArgument, "NewConfig", "nil handle")
	}
	if len(key) < 16 {
		return nil, vlog.New(vlog.InvalidArgument, "NewConfig", "key must be at least 16 bytes")
	}

	mk, err := seckey.New(key)
	if err != nil {
		return nil, vlog.Wrap(vlog.InvalidArgument, "NewConfig", err)
	}

	var ivKey *seckey.Key
	if len(iv) == 0 {
		ivKey, err = seckey.New(defaultIV[:])
	} else {
		ivKey, err = seckey.New(iv)
	}
	if err != nil {
		return nil, vlog.Wrap(vlog.InvalidArgument, "NewConfig", err)
	}

	maxData := h.Len() * DataDigestRatioHint

	if defaultDataSize <= 0 {
		defaultDataSize = DefaultPayloadSize
	}
	if defaultDataSize > maxData {
		defaultDataSize = maxData
	}

	return &Config{
		Handle:          h,
		MaxData:         maxData,
		DefaultDataSize: defaultDataSize,
		MasterKey:       mk,
		IV:              ivKey,
		Emission:        emission,
		Packet:          packet,
	}, nil
}

// defaultIV is used when no IV is supplied at session init, per spec.md
// section 6 "initial IV ... when absent, use a built-in constant".
var defaultIV = [IVHeaderLen]byte{
	0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x6A, 0x7B,
	0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x6A, 0x7B,
}

// prepareKeys derives the per-packet key from cc's current IV and
// (emission, packet) pair.
func prepareKeys(cc *Config) ([]byte, error) {
	key, err := cc.Handle.PreparePacketKeys(cc.MasterKey.Bytes(), cc.IV.Bytes(), cc.Emission, cc.Packet)
	if err != nil {
		return nil, vlog.Wrap(vlog.Internal, "prepareKeys", err)
	}
	return key, nil
}

// ProducePacket assembles one packet from data, per spec.md section 4.4.
// It returns the complete wire-format packet and the number of bytes of
// data actually consumed into it (which may be less than len(data), capped
// by MaxPayload, cc.MaxData and cc.DefaultDataSize). On success cc.Packet is
// advanced by one, unless it was already 0 (the end-of-stream sentinel,
// which stays 0).
func ProducePacket(cc *Config, data []byte) (packet []byte, written int, err error) {
	if cc == nil {
		return nil, 0, vlog.New(vlog.InvalidArgument, "ProducePacket", "nil config")
	}
	if len(data) == 0 {
		return nil, 0, vlog.New(vlog.InvalidArgument, "ProducePacket", "empty data")
	}

	write := len(data)
	if write > MaxPayload {
		write = MaxPayload
	}
	if write > cc.MaxData {
		write = cc.MaxData
	}
	if write > cc.DefaultDataSize {
		write = cc.DefaultDataSize
	}

	digestLen := cc.Handle.Len()
	packetLen := HeaderLen + write + digestLen
	out := make([]byte, packetLen)

	idx := 0
	copy(out[idx:], SyncHeader[:])
	idx += SyncHeaderLen

	if err := bitops.PutUint32(out, idx, uint32(write)); err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ProducePacket", err)
	}
	idx += LengthHeaderLen

	iv := cc.IV.Bytes()
	if len(iv) != IVHeaderLen {
		return nil, 0, vlog.New(vlog.InvalidArgument, "ProducePacket", "wrong IV length")
	}
	copy(out[idx:], iv)
	idx += IVHeaderLen

	if err := bitops.PutUint64(out, idx, cc.Emission); err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ProducePacket", err)
	}
	idx += EmissionHeaderLen

	if err := bitops.PutUint64(out, idx, cc.Packet); err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ProducePacket", err)
	}
	idx += PacketHeaderLen

	packetKey, err := prepareKeys(cc)
	if err != nil {
		return nil, 0, err
	}

	cipherText, err := cc.Handle.Encrypt(packetKey, iv, data[:write])
	if err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ProducePacket", err)
	}
	copy(out[idx:], cipherText)
	idx += write

	digestKey := []byte(nil)
	if cc.Handle.HMAC {
		digestKey = packetKey
	}
	digest, err := cc.Handle.Digest(digestKey, out[SyncHeaderLen:idx])
	if err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ProducePacket", err)
	}
	copy(out[idx:], digest)

	// Advance the packet id for the next packet. A packet id of 0 (the
	// end-of-stream sentinel) is left unchanged, per spec.md section 3.
	if cc.Packet != 0 {
		cc.Packet++
	}

	return out, write, nil
}
