/*
NAME
  drivers.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package cryptochan

import (
	"io"

	"github.com/covertaudio/vorbistego/vlog"
)

// Forward is the sender-side driver, spec.md section 4.5. It tops the ring
// buffer up with one freshly produced packet read from r, unless ring
// already holds at least minFill bytes (the caller's per-frame appetite,
// e.g. the embedding layer's current subliminal capacity) in which case it
// is a no-op.
//
// Forward reads at most cc.DefaultDataSize bytes from r in a single Read
// call, mirroring the original's single read(2) per packet. When that read
// returns data together with io.EOF, the produced packet carries those
// final bytes and is marked as the terminal packet (packet id 0); Forward
// then returns io.EOF so the caller knows not to invoke it again. A read
// that returns io.EOF with zero bytes returns (0, io.EOF) without producing
// anything. A reader that reports io.EOF only on a later zero-byte Read
// (os.File and strings.Reader do) therefore never gets a terminal packet:
// its last data packet keeps an ordinary non-zero packet id.
func Forward(cc *Config, ring *Ring, r io.Reader, minFill int) (n int, err error) {
	if cc == nil || ring == nil || r == nil {
		return 0, vlog.New(vlog.InvalidArgument, "Forward", "nil argument")
	}

	if ring.Len() >= minFill {
		return 0, nil
	}

	buf := make([]byte, cc.DefaultDataSize)
	rn, rerr := r.Read(buf)
	if rn == 0 {
		if rerr == io.EOF {
			return 0, io.EOF
		}
		if rerr != nil {
			return 0, vlog.Wrap(vlog.Internal, "Forward", rerr)
		}
		return 0, nil
	}

	atEOF := rerr == io.EOF
	if atEOF {
		cc.Packet = 0
	}

	packet, written, perr := ProducePacket(cc, buf[:rn])
	if perr != nil {
		return 0, perr
	}
	if written != rn {
		return 0, vlog.New(vlog.Internal, "Forward", "produced packet did not cover the whole read")
	}

	if err := ring.Append(packet); err != nil {
		return 0, vlog.Wrap(vlog.Internal, "Forward", err)
	}

	if atEOF {
		return rn, io.EOF
	}
	return rn, nil
}

// Inverse is the receiver-side driver, spec.md section 4.5. It attempts to
// parse exactly one packet from the front of ring:
//
//   - If ring does not yet hold a complete packet, Inverse returns (0, nil)
//     so the caller can top it up and retry.
//   - If parsing fails with BadMessage or CheckFail, the offending bytes
//     are discarded from ring and the error is returned so the caller can
//     log/count it; ring is left ready for the next attempt.
//   - If the parsed packet is the terminal sentinel (packet id 0), its
//     bytes are discarded from ring and Inverse returns io.EOF.
//   - Otherwise the decrypted payload is written to w in full, its bytes
//     are discarded from ring, and Inverse returns the payload length.
func Inverse(cc *Config, ring *Ring, w io.Writer) (n int, err error) {
	if cc == nil || ring == nil || w == nil {
		return 0, vlog.New(vlog.InvalidArgument, "Inverse", "nil argument")
	}

	payload, consumed, perr := ParsePacket(cc, ring.Bytes())
	if perr != nil {
		if vlog.Is(perr, vlog.EndOfStream) {
			if consumed == 0 {
				return 0, nil
			}
			if err := ring.Discard(consumed); err != nil {
				return 0, vlog.Wrap(vlog.Internal, "Inverse", err)
			}
			return 0, io.EOF
		}

		if consumed > 0 {
			if err := ring.Discard(consumed); err != nil {
				return 0, vlog.Wrap(vlog.Internal, "Inverse", err)
			}
		}
		return 0, perr
	}

	if err := ring.Discard(consumed); err != nil {
		return 0, vlog.Wrap(vlog.Internal, "Inverse", err)
	}

	wn, werr := w.Write(payload)
	if werr != nil {
		return 0, vlog.Wrap(vlog.Internal, "Inverse", werr)
	}
	if wn != len(payload) {
		return 0, vlog.New(vlog.Internal, "Inverse", "short write")
	}

	return wn, nil
}
