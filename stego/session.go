/*
NAME
  session.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package stego drives the per-frame sender and receiver sequences that tie
// the crypto packet layer (cryptochan) to the steganographic embedding
// layer (capacity, residue, hide, synchz): deriving per-frame subkeys,
// building the residue lineup, budgeting and embedding or extracting
// subliminal bits, and handling the bit-level carry between a frame's
// appetite and the byte-granular packet stream. See spec.md sections 4.10
// and 4.11.
package stego

import (
	"io"

	"github.com/covertaudio/vorbistego/audioframe"
	"github.com/covertaudio/vorbistego/capacity"
	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/hide"
	"github.com/covertaudio/vorbistego/internal/bitops"
	"github.com/covertaudio/vorbistego/internal/prng"
	"github.com/covertaudio/vorbistego/residue"
	"github.com/covertaudio/vorbistego/synchz"
	"github.com/covertaudio/vorbistego/vlog"
)

// Session holds the state that lives across a stream of frames: the crypto
// configuration and ring shared with cryptochan, the aggressiveness
// controller, the chosen hiding/synchronization methods, and the PRNG
// stream reseeded fresh at the start of every frame. One Session drives
// either the sender or the receiver side of a channel, never both.
type Session struct {
	CC   *cryptochan.Config
	Ring *cryptochan.Ring
	Agg  *capacity.Controller

	Hide  hide.Method
	Sync  synchz.Method
	Sigma float64 // ISS watermark standard deviation; unused under RES_HEADER

	Delay  int // frames to skip before engaging, spec.md section 4.10 step 1
	frames int

	PRNG *prng.Stream

	src  bitSource
	sink bitSink

	lineup       []int
	hidingSubkey []byte
}

// NewSession builds a Session. sigma is only consulted when syncMethod is
// synchz.ISS, and must then be positive.
func NewSession(cc *cryptochan.Config, ring *cryptochan.Ring, agg *capacity.Controller, hideMethod hide.Method, syncMethod synchz.Method, sigma float64, delayFrames int) (*Session, error) {
	if cc == nil || ring == nil || agg == nil {
		return nil, vlog.New(vlog.InvalidArgument, "stego.NewSession", "nil argument")
	}
	if syncMethod == synchz.ISS && sigma <= 0 {
		return nil, vlog.New(vlog.InvalidArgument, "stego.NewSession", "non-positive sigma")
	}
	if delayFrames < 0 {
		return nil, vlog.New(vlog.InvalidArgument, "stego.NewSession", "negative delay")
	}

	return &Session{
		CC:    cc,
		Ring:  ring,
		Agg:   agg,
		Hide:  hideMethod,
		Sync:  syncMethod,
		Sigma: sigma,
		Delay: delayFrames,
		PRNG:  &prng.Stream{},
		src:   bitSource{ring: ring},
		sink:  bitSink{ring: ring},
	}, nil
}

// resetFrame clears the per-frame state that is rebuilt at the start of
// every frame: the lineup and the derived subkey. The PRNG itself is
// reseeded by deriveFrameKeys, not reset here.
func (s *Session) resetFrame() {
	s.lineup = nil
	s.hidingSubkey = nil
}

// ResetEmission reimplements steganos_state_reset_iter: the coarser,
// per-iteration reset run between emissions (audio files) rather than
// between frames. It zeroes the frame/delay counter and snaps the
// aggressiveness controller's running totals back to their starting point,
// without touching the crypto configuration, ring buffer, or cipher/digest
// handles, so one Session can be reused across a fresh emission.
func (s *Session) ResetEmission() {
	s.frames = 0
	s.Agg.Reset()
}

// deriveFrameKeys derives this frame's subkey from its post-ordering index
// and seeds the session's PRNG from it, per steganos_prepare_packet_keys.
func (s *Session) deriveFrameKeys(postOrderIndex []int) error {
	subkey, err := deriveSubkeys(s.CC, postOrderIndex)
	if err != nil {
		return err
	}
	s.hidingSubkey = subkey
	if err := s.PRNG.Seed(subkey); err != nil {
		return vlog.Wrap(vlog.Internal, "stego.deriveFrameKeys", err)
	}
	return nil
}

// headerOverhead returns the number of framing bits the active
// synchronization method spends ahead of the payload.
func (s *Session) headerOverhead() int {
	if s.Sync == synchz.ResHeader {
		return synchz.HeaderBits
	}
	return synchz.SizeFieldBits
}

// assembleMetaData packs the wire framing (magic byte under RES_HEADER or
// the per-frame ForcedResHeader escape, nothing extra under ISS since
// presence is normally carried by the floor watermark) followed by the
// size field and the payload bits, all MSB-first, ready for hide.Apply.
func assembleMetaData(method synchz.Method, payload []byte, payloadBits int) ([]byte, int) {
	hasMagic := method == synchz.ResHeader || method == synchz.ForcedResHeader

	var w bitops.BitWriter
	if hasMagic {
		w.WriteBits(uint64(synchz.Magic), 8)
	}
	w.WriteBits(uint64(payloadBits), synchz.SizeFieldBits)
	w.WriteBits(bitops.ReadBits(payload, 0, payloadBits), payloadBits)

	total := synchz.SizeFieldBits + payloadBits
	if hasMagic {
		total += 8
	}
	return w.Bytes(), total
}

// sliceBits repacks n bits of data starting at bit offset offset into a
// fresh, 0-based byte buffer.
func sliceBits(data []byte, offset, n int) []byte {
	var w bitops.BitWriter
	w.WriteBits(bitops.ReadBits(data, offset, n), n)
	return w.Bytes()
}

// EncodeFrame runs the sender driver for one audio frame (spec.md section
// 4.10): it tops up the crypto ring from src, analyzes the frame's residue
// capacity, builds the lineup, derives an aggressiveness-driven payload
// budget, and either embeds metadata and payload or desynchronizes the
// frame when there is nothing to send. It returns the number of subliminal
// bits committed to the residue (0 on a skipped or desynchronized frame).
func (s *Session) EncodeFrame(frame *audioframe.Frame, src io.Reader) (int, error) {
	s.frames++
	if s.frames <= s.Delay {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.EncodeFrame", "delay frame")
	}
	if err := frame.Validate(); err != nil {
		return 0, err
	}

	s.resetFrame()
	if err := s.deriveFrameKeys(frame.ForwardIndex); err != nil {
		return 0, err
	}

	fillTarget := (capacity.MaxSubliminalSize + 7) / 8
	if _, err := cryptochan.Forward(s.CC, s.Ring, src, fillTarget); err != nil && err != io.EOF {
		return 0, err
	}

	capFrame, err := capacity.Analyze(frame.Residue, frame.Rate)
	if err != nil {
		return 0, err
	}

	overhead := s.headerOverhead()
	if capFrame.MinTotal <= overhead {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.EncodeFrame", "insufficient minimum capacity")
	}

	lineup, err := buildLineup(s.PRNG, len(frame.Residue))
	if err != nil {
		return 0, err
	}
	s.lineup = lineup
	metaStartIters := s.PRNG.Iters()

	var cfg *synchz.Config
	if s.Sync == synchz.ISS {
		cfg, err = synchz.NewConfig(frame.Posts, s.Sigma, s.PRNG)
		if err != nil {
			return 0, err
		}
		metaStartIters = s.PRNG.Iters()
	}

	target := s.Agg.DesiredUsage(capFrame)
	maxPayload := synchz.MaxPayloadSize
	if s.Sync == synchz.ISS {
		maxPayload = synchz.MaxPayloadSize - 1 // reserve 0xFF for the RES_HEADER fallback probe
	}
	if target > maxPayload {
		target = maxPayload
	}

	available := s.src.available()
	payloadBits := target
	if payloadBits > available {
		payloadBits = available
	}

	frameMethod := s.Sync
	if payloadBits > 0 && s.Sync == synchz.ISS {
		newPosts, committed, encErr := synchz.Encode(frame.Posts, 1, cfg, frame, frame.Floor)
		if encErr != nil || !committed {
			// The watermark could not be committed within tolerance. Fall
			// back to ForcedResHeader for this frame only (spec.md section
			// 4.11 steps 2 and 4): leave the posts unwatermarked, signaling
			// presence bit 0, but still frame the payload with a real magic
			// byte so the receiver's fallback check recovers it.
			frameMethod = synchz.ForcedResHeader
		} else {
			frame.Posts = newPosts
		}
	}

	if payloadBits <= 0 {
		if err := s.desynchronize(frame, cfg, metaStartIters); err != nil {
			return 0, err
		}
		s.Agg.Record(capFrame, 0)
		return 0, nil
	}

	committedBits, err := s.embedWithRetry(frame, capFrame, frameMethod, payloadBits, metaStartIters)
	if err != nil {
		if derr := s.desynchronize(frame, cfg, metaStartIters); derr != nil {
			return 0, derr
		}
		s.Agg.Record(capFrame, 0)
		return 0, nil
	}

	s.Agg.Record(capFrame, committedBits)
	return committedBits, nil
}

// embedWithRetry assembles and embeds the header/size/payload metadata for
// payloadBits worth of source data, framed under method (normally s.Sync,
// but ForcedResHeader when EncodeFrame has fallen back for this frame). If
// the residue embedder cannot fit the full plan (lineup exhaustion), it
// rewinds the PRNG to metaStartIters and retries once with a plan shrunk to
// whatever actually fit, per spec.md section 4.10 step 9's "retry with
// prng_rewind" note.
func (s *Session) embedWithRetry(frame *audioframe.Frame, capFrame *capacity.Frame, method synchz.Method, payloadBits int, metaStartIters int64) (int, error) {
	try := func(bits int) (metaBits int, written int, err error) {
		payload, perr := s.src.peek(bits)
		if perr != nil {
			return 0, 0, perr
		}
		metaData, mb := assembleMetaData(method, payload, bits)
		hidden, herr := hide.Apply(s.Hide, metaData, mb, frame.Floor, s.PRNG)
		if herr != nil {
			return mb, 0, herr
		}
		w, eerr := residue.Embed(frame.Residue, s.lineup, capFrame, hidden, mb)
		if eerr != nil {
			return mb, 0, eerr
		}
		return mb, w, nil
	}

	metaBits, written, err := try(payloadBits)
	if err != nil {
		return 0, err
	}

	if written < metaBits {
		overhead := metaBits - payloadBits
		shrunk := written - overhead
		if shrunk < 0 {
			shrunk = 0
		}
		if err := s.PRNG.Rewind(s.hidingSubkey, metaStartIters); err != nil {
			return 0, vlog.Wrap(vlog.Internal, "stego.embedWithRetry", err)
		}
		metaBits, _, err = try(shrunk)
		if err != nil {
			return 0, err
		}
		payloadBits = shrunk
	}

	if err := s.src.consume(payloadBits); err != nil {
		return 0, err
	}
	return metaBits, nil
}

// desynchronize marks the current frame as carrying nothing: under
// RES_HEADER it guards the raw residue against an accidental magic-byte
// collision; under ISS it watermarks the floor posts to signal absence and
// then guards the RES_HEADER fallback check the same way. afterIters is
// the PRNG position to rewind to before any hide.Apply call this path
// makes, so it lines up with what a receiver reaches at the same point in
// its own decode.
func (s *Session) desynchronize(frame *audioframe.Frame, cfg *synchz.Config, afterIters int64) error {
	switch s.Sync {
	case synchz.ResHeader:
		return synchz.DesynchronizeResHeader(frame.Residue, s.lineup)
	case synchz.ISS:
		if err := s.PRNG.Rewind(s.hidingSubkey, afterIters); err != nil {
			return vlog.Wrap(vlog.Internal, "stego.desynchronize", err)
		}
		newPosts, committed, err := synchz.Encode(frame.Posts, 0, cfg, frame, frame.Floor)
		if err != nil {
			return err
		}
		if committed {
			frame.Posts = newPosts
		}
		return synchz.DesynchronizeISS(frame.Residue, s.lineup, s.Hide, s.PRNG, frame.Floor)
	default:
		return vlog.New(vlog.InvalidArgument, "stego.desynchronize", "unknown synchronization method")
	}
}

// DecodeFrame runs the receiver driver for one audio frame (spec.md section
// 4.11): it analyzes the frame's residue capacity exactly as the sender
// did, builds the same lineup from the same per-frame subkey, then
// extracts and unhides whatever framing and payload the active
// synchronization method finds. Extracted payload bytes are queued to the
// crypto ring and any complete packets are written to sink. It returns the
// number of subliminal payload bits recovered (0 for an empty frame).
func (s *Session) DecodeFrame(frame *audioframe.Frame, sink io.Writer) (int, error) {
	s.frames++
	if s.frames <= s.Delay {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.DecodeFrame", "delay frame")
	}
	if err := frame.Validate(); err != nil {
		return 0, err
	}

	s.resetFrame()
	if err := s.deriveFrameKeys(frame.ForwardIndex); err != nil {
		return 0, err
	}

	capFrame, err := capacity.Analyze(frame.Residue, frame.Rate)
	if err != nil {
		return 0, err
	}
	if capFrame.MinTotal <= s.headerOverhead() {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.DecodeFrame", "insufficient minimum capacity")
	}

	lineup, err := buildLineup(s.PRNG, len(frame.Residue))
	if err != nil {
		return 0, err
	}
	s.lineup = lineup

	raw, bits, err := residue.Extract(frame.Residue, lineup)
	if err != nil {
		return 0, err
	}

	switch s.Sync {
	case synchz.ResHeader:
		return s.decodeResHeader(frame, raw, bits, sink)
	case synchz.ISS:
		return s.decodeISS(frame, raw, bits, sink)
	default:
		return 0, vlog.New(vlog.InvalidArgument, "stego.Session.DecodeFrame", "unknown synchronization method")
	}
}

func (s *Session) decodeResHeader(frame *audioframe.Frame, raw []byte, bits int, sink io.Writer) (int, error) {
	if bits < synchz.HeaderBits {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.decodeResHeader", "not enough extracted bits for header")
	}
	headerBuf, err := hide.Apply(s.Hide, raw, synchz.HeaderBits, frame.Floor, s.PRNG)
	if err != nil {
		return 0, err
	}
	payloadLen, present, err := synchz.DecodeHeader(headerBuf)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, nil
	}
	if bits < synchz.HeaderBits+payloadLen {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.decodeResHeader", "not enough extracted bits for payload")
	}

	payloadRaw := sliceBits(raw, synchz.HeaderBits, payloadLen)
	payload, err := hide.Apply(s.Hide, payloadRaw, payloadLen, frame.Floor, s.PRNG)
	if err != nil {
		return 0, err
	}
	if err := s.sink.put(payload, payloadLen); err != nil {
		return 0, err
	}
	if err := s.drainPackets(sink); err != nil && err != io.EOF {
		return 0, err
	}
	return payloadLen, nil
}

// decodeISS runs the ISS receive path (spec.md section 4.11 steps 2 and 4).
// The presence bit is read straight off the floor posts, with no hiding or
// PRNG draws involved, so it can be checked before either of the two
// mutually exclusive bit layouts below is unhidden: a bit of 1 means this
// frame's raw bits are ISS-shaped (an 8-bit size field directly followed by
// payload, no magic byte, since presence is already carried by the
// watermark); a bit of 0 switches the frame to ForcedResHeader and the raw
// bits are instead read as a RES_HEADER frame, which recovers both the
// ordinary "nothing to send" case (DesynchronizeISS forces a zero size
// field that never matches the magic byte) and EncodeFrame's forced
// fallback when the watermark failed to commit.
func (s *Session) decodeISS(frame *audioframe.Frame, raw []byte, bits int, sink io.Writer) (int, error) {
	cfg, err := synchz.NewConfig(frame.Posts, s.Sigma, s.PRNG)
	if err != nil {
		return 0, err
	}

	presence, err := synchz.Decode(frame.Posts, cfg)
	if err != nil {
		return 0, err
	}
	if presence == 0 {
		return s.decodeForcedResHeader(frame, raw, bits, sink)
	}

	if bits < synchz.SizeFieldBits {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.decodeISS", "not enough extracted bits for size field")
	}
	sizeBuf, err := hide.Apply(s.Hide, raw, synchz.SizeFieldBits, frame.Floor, s.PRNG)
	if err != nil {
		return 0, err
	}
	payloadLen := int(bitops.ReadBits(sizeBuf, 0, synchz.SizeFieldBits))

	if bits < synchz.SizeFieldBits+payloadLen {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.decodeISS", "not enough extracted bits for payload")
	}

	payloadRaw := sliceBits(raw, synchz.SizeFieldBits, payloadLen)
	payload, err := hide.Apply(s.Hide, payloadRaw, payloadLen, frame.Floor, s.PRNG)
	if err != nil {
		return 0, err
	}
	if err := s.sink.put(payload, payloadLen); err != nil {
		return 0, err
	}
	if err := s.drainPackets(sink); err != nil && err != io.EOF {
		return 0, err
	}
	return payloadLen, nil
}

// decodeForcedResHeader reads the raw bits as a RES_HEADER frame: magic
// byte, size field, and — only when that size field reads as the
// MaxPayloadSize escape sentinel — a secondary 8-bit size field carrying
// the true payload length (spec.md section 6, section 4.11 step 4). A
// magic mismatch means the frame genuinely carries nothing.
func (s *Session) decodeForcedResHeader(frame *audioframe.Frame, raw []byte, bits int, sink io.Writer) (int, error) {
	if bits < synchz.HeaderBits {
		return 0, nil
	}
	headerBuf, err := hide.Apply(s.Hide, raw, synchz.HeaderBits, frame.Floor, s.PRNG)
	if err != nil {
		return 0, err
	}
	payloadLen, present, err := synchz.DecodeHeader(headerBuf)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, nil
	}

	headerBits := synchz.HeaderBits
	if payloadLen == synchz.MaxPayloadSize {
		if bits < synchz.ForcedHeaderBits {
			return 0, vlog.New(vlog.FrameSkip, "stego.Session.decodeForcedResHeader", "not enough extracted bits for secondary size field")
		}
		secondaryRaw := sliceBits(raw, synchz.HeaderBits, synchz.SizeFieldBits)
		secondaryBuf, err := hide.Apply(s.Hide, secondaryRaw, synchz.SizeFieldBits, frame.Floor, s.PRNG)
		if err != nil {
			return 0, err
		}
		payloadLen = int(bitops.ReadBits(secondaryBuf, 0, synchz.SizeFieldBits))
		headerBits = synchz.ForcedHeaderBits
	}

	if bits < headerBits+payloadLen {
		return 0, vlog.New(vlog.FrameSkip, "stego.Session.decodeForcedResHeader", "not enough extracted bits for payload")
	}

	payloadRaw := sliceBits(raw, headerBits, payloadLen)
	payload, err := hide.Apply(s.Hide, payloadRaw, payloadLen, frame.Floor, s.PRNG)
	if err != nil {
		return 0, err
	}
	if err := s.sink.put(payload, payloadLen); err != nil {
		return 0, err
	}
	if err := s.drainPackets(sink); err != nil && err != io.EOF {
		return 0, err
	}
	return payloadLen, nil
}

// drainPackets parses as many complete packets as the ring currently holds,
// writing each decrypted payload to sink. It stops (without error) once the
// ring no longer holds a complete packet, and returns io.EOF once the
// terminal sentinel packet has been seen.
func (s *Session) drainPackets(sink io.Writer) error {
	for {
		n, err := cryptochan.Inverse(s.CC, s.Ring, sink)
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			if vlog.Is(err, vlog.BadMessage) || vlog.Is(err, vlog.CheckFail) {
				continue
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
