/*
NAME
  parse.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package cryptochan

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/seckey"
	"github.com/covertaudio/vorbistego/vlog"
)

// ParsePacket parses one packet out of the front of buf, per the ordered
// check sequence of spec.md section 4.4:
//
//  1. no data yet (buf shorter than SyncHeaderLen): EndOfStream.
//  2. SYNC mismatch: BadMessage, consume=1 (resynchronize byte-by-byte).
//  3. incomplete packet (buf shorter than header+claimed data+digest):
//     EndOfStream, consume=0 (wait for more bytes).
//  4. install the packet's IV into cc.
//  5. emission id mismatch: BadMessage, consume=whole packet.
//  6. packet id 0: end-of-stream sentinel, reported as EndOfStream.
//  7. packet id mismatch with cc.Packet: BadMessage, consume=whole packet.
//  8. derive the per-packet key.
//  9. digest mismatch: CheckFail, consume=whole packet.
//  10. decrypt and advance cc.Packet.
//
// On success it returns the decrypted payload and the number of bytes
// consumed from buf (the full packet length). On any error, consumed still
// reports how many bytes the caller should discard from its buffer before
// retrying (vlog.Error's Consume field carries the same number).
func ParsePacket(cc *Config, buf []byte) (payload []byte, consumed int, err error) {
	if cc == nil {
		return nil, 0, vlog.New(vlog.InvalidArgument, "ParsePacket", "nil config")
	}

	if len(buf) < SyncHeaderLen {
		return nil, 0, vlog.New(vlog.EndOfStream, "ParsePacket", "not enough data for sync header")
	}
	if !bytes.Equal(buf[:SyncHeaderLen], SyncHeader[:]) {
		return nil, 1, vlog.WithConsume("ParsePacket", "sync header mismatch", 1)
	}

	if len(buf) < HeaderLen {
		return nil, 0, vlog.New(vlog.EndOfStream, "ParsePacket", "not enough data for header")
	}

	idx := SyncHeaderLen
	dataLen64, err := bitops.Uint32(buf, idx)
	if err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ParsePacket", err)
	}
	dataLen := int(dataLen64)
	idx += LengthHeaderLen

	digestLen := cc.Handle.Len()
	packetLen := HeaderLen + dataLen + digestLen
	if len(buf) < packetLen {
		return nil, 0, vlog.New(vlog.EndOfStream, "ParsePacket", "packet not fully buffered yet")
	}

	iv := append([]byte(nil), buf[idx:idx+IVHeaderLen]...)
	idx += IVHeaderLen

	emission, err := bitops.Uint64(buf, idx)
	if err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ParsePacket", err)
	}
	idx += EmissionHeaderLen

	packetID, err := bitops.Uint64(buf, idx)
	if err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ParsePacket", err)
	}
	idx += PacketHeaderLen

	// Install the IV for this packet before deriving keys, matching
	// cryptos_channel.c's parse_packet ordering.
	ivKey, err := seckey.New(iv)
	if err != nil {
		return nil, 0, vlog.Wrap(vlog.Internal, "ParsePacket", err)
	}
	cc.IV = ivKey

	if emission != cc.Emission {
		return nil, packetLen, vlog.WithConsume("ParsePacket", "emission id mismatch", packetLen)
	}

	if packetID == 0 {
		return nil, packetLen, vlog.New(vlog.EndOfStream, "ParsePacket", "end-of-stream sentinel packet")
	}

	if packetID != cc.Packet {
		return nil, packetLen, vlog.WithConsume("ParsePacket", "packet id mismatch", packetLen)
	}

	packetKey, err := prepareKeys(cc)
	if err != nil {
		return nil, packetLen, err
	}

	body := buf[SyncHeaderLen : idx+dataLen]
	digest := buf[idx+dataLen : packetLen]

	digestKey := []byte(nil)
	if cc.Handle.HMAC {
		digestKey = packetKey
	}
	ok, err := cc.Handle.CheckIntegrity(digestKey, body, digest)
	if err != nil {
		return nil, packetLen, vlog.Wrap(vlog.Internal, "ParsePacket", err)
	}
	if !ok {
		return nil, packetLen, &vlog.Error{Code: vlog.CheckFail, Op: "ParsePacket", Consume: packetLen, Err: errors.New("digest check failed")}
	}

	plain, err := cc.Handle.Decrypt(packetKey, iv, buf[idx:idx+dataLen])
	if err != nil {
		return nil, packetLen, vlog.Wrap(vlog.Internal, "ParsePacket", err)
	}

	cc.Packet++

	return plain, packetLen, nil
}
