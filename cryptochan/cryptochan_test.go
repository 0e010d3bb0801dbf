package cryptochan

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/covertaudio/vorbistego/cryptoface"
	"github.com/covertaudio/vorbistego/vlog"
)

func mustConfigPair(t *testing.T) (sender, receiver *Config) {
	t.Helper()
	h, err := cryptoface.Open(cryptoface.CipherARCFOUR, cryptoface.DigestSHA1, false)
	if err != nil {
		t.Fatal(err)
	}
	key := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, 16)

	sender, err = NewConfig(h, key, iv, 7, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err = NewConfig(h, key, iv, 7, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	return sender, receiver
}

func TestProduceParseRoundTrip(t *testing.T) {
	sender, receiver := mustConfigPair(t)
	data := []byte("the quick brown fox jumps over the lazy dog")

	packet, written, err := ProducePacket(sender, data)
	if err != nil {
		t.Fatal(err)
	}
	if written != len(data) {
		t.Fatalf("written = %d, want %d", written, len(data))
	}

	payload, consumed, err := ParsePacket(receiver, packet)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(packet) {
		t.Fatalf("consumed = %d, want %d", consumed, len(packet))
	}
	if !bytes.Equal(payload, data) {
		t.Fatalf("payload = %q, want %q", payload, data)
	}
	if receiver.Packet != 2 {
		t.Fatalf("receiver.Packet = %d, want 2", receiver.Packet)
	}
}

func TestParsePacketBadSync(t *testing.T) {
	_, receiver := mustConfigPair(t)
	buf := []byte{0x00, 0x00, 0x00, 0xAA, 0xBB}

	_, consumed, err := ParsePacket(receiver, buf)
	if err == nil {
		t.Fatal("expected error for bad sync header")
	}
	if !vlog.Is(err, vlog.BadMessage) {
		t.Fatalf("expected BadMessage, got %v", err)
	}
	if consumed != 1 {
		t.Fatalf("consumed = %d, want 1", consumed)
	}
}

func TestParsePacketIncomplete(t *testing.T) {
	sender, receiver := mustConfigPair(t)
	packet, _, err := ProducePacket(sender, []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}

	_, consumed, err := ParsePacket(receiver, packet[:len(packet)-1])
	if err == nil {
		t.Fatal("expected error for incomplete packet")
	}
	if !vlog.Is(err, vlog.EndOfStream) {
		t.Fatalf("expected EndOfStream (wait for more), got %v", err)
	}
	if consumed != 0 {
		t.Fatalf("consumed = %d, want 0", consumed)
	}
}

func TestParsePacketWrongEmission(t *testing.T) {
	h, err := cryptoface.Open(cryptoface.CipherARCFOUR, cryptoface.DigestSHA1, false)
	if err != nil {
		t.Fatal(err)
	}
	key := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, 16)

	sender, err := NewConfig(h, key, iv, 1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := NewConfig(h, key, iv, 2, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	packet, _, err := ProducePacket(sender, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	_, consumed, err := ParsePacket(receiver, packet)
	if !vlog.Is(err, vlog.BadMessage) {
		t.Fatalf("expected BadMessage for emission mismatch, got %v", err)
	}
	if consumed != len(packet) {
		t.Fatalf("consumed = %d, want %d", consumed, len(packet))
	}
}

func TestParsePacketTamperedDigest(t *testing.T) {
	sender, receiver := mustConfigPair(t)
	packet, _, err := ProducePacket(sender, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	packet[len(packet)-1] ^= 0xFF

	_, consumed, err := ParsePacket(receiver, packet)
	if !vlog.Is(err, vlog.CheckFail) {
		t.Fatalf("expected CheckFail, got %v", err)
	}
	if consumed != len(packet) {
		t.Fatalf("consumed = %d, want %d", consumed, len(packet))
	}
}

func TestEndOfStreamSentinel(t *testing.T) {
	sender, receiver := mustConfigPair(t)
	sender.Packet = 0 // terminal packet id, per spec.md section 3.

	packet, _, err := ProducePacket(sender, []byte("last bytes"))
	if err != nil {
		t.Fatal(err)
	}

	_, consumed, err := ParsePacket(receiver, packet)
	if !vlog.Is(err, vlog.EndOfStream) {
		t.Fatalf("expected EndOfStream, got %v", err)
	}
	if consumed != len(packet) {
		t.Fatalf("consumed = %d, want %d", consumed, len(packet))
	}
}

func TestForwardInverseDriversEndToEnd(t *testing.T) {
	sender, receiver := mustConfigPair(t)

	source := strings.NewReader(strings.Repeat("a message longer than one default packet, repeated to force more than one produce/parse cycle across the ring buffer boundary", 4))

	ring, err := NewRing(4096, HeaderLen+sender.DefaultDataSize+sender.Handle.Len())
	if err != nil {
		t.Fatal(err)
	}

	var sink bytes.Buffer
	var gotEOF bool

	for i := 0; i < 64 && !gotEOF; i++ {
		if _, err := Forward(sender, ring, source, 1); err != nil && err != io.EOF {
			t.Fatalf("Forward: %v", err)
		} else if err == io.EOF {
			gotEOF = true
		}

		for {
			n, err := Inverse(receiver, ring, &sink)
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Inverse: %v", err)
			}
			if n == 0 {
				break
			}
		}
	}

	if !gotEOF {
		t.Fatal("expected Forward to eventually report io.EOF")
	}
}

func TestRingAppendDiscard(t *testing.T) {
	r, err := NewRing(20, 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Append([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", r.Len())
	}
	if err := r.Discard(2); err != nil {
		t.Fatal(err)
	}
	if got := string(r.Bytes()); got != "llo" {
		t.Fatalf("Bytes() = %q, want %q", got, "llo")
	}
}

func TestNewRingRejectsUndersizedCapacity(t *testing.T) {
	if _, err := NewRing(5, 10); err == nil {
		t.Fatal("expected error for capacity smaller than 2x max packet length")
	}
}
