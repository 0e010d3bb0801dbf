package hide

import (
	"bytes"
	"testing"

	"github.com/covertaudio/vorbistego/internal/prng"
)

func TestIdentityIsNoOp(t *testing.T) {
	plain := []byte{0b10110010}
	got, err := Apply(Identity, plain, 8, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("Identity changed the bits: got %08b want %08b", got[0], plain[0])
	}
}

func floorVector(n int) []int32 {
	f := make([]int32, n)
	for i := range f {
		f[i] = int32(i*2654435761 + 17)
	}
	return f
}

func TestParitySelfInverse(t *testing.T) {
	floor := floorVector(8)
	key := []byte("hiding-key-0123456789")

	plain := []byte{0b10110101, 0b01011010}
	plainBits := 16

	sender, err := prng.New(key)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := Apply(Parity, plain, plainBits, floor, sender)
	if err != nil {
		t.Fatal(err)
	}

	receiver, err := prng.New(key)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Apply(Parity, sub, plainBits, floor, receiver)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < plainBits; i++ {
		want := (plain[i/8] >> uint(7-i%8)) & 1
		got := (back[i/8] >> uint(7-i%8)) & 1
		if want != got {
			t.Fatalf("bit %d mismatch: got %d want %d", i, got, want)
		}
	}
}

func TestParityChangesBitsGenerally(t *testing.T) {
	floor := floorVector(8)
	stream, err := prng.New([]byte("another-key"))
	if err != nil {
		t.Fatal(err)
	}
	plain := bytes.Repeat([]byte{0xAA}, 4)
	sub, err := Apply(Parity, plain, 32, floor, stream)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(sub, plain) {
		t.Fatal("expected parity transform to change at least some bits for this floor/key")
	}
}

func TestApplyRejectsUnknownMethod(t *testing.T) {
	if _, err := Apply(Method(99), []byte{0}, 1, nil, nil); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestApplyParityRejectsEmptyFloor(t *testing.T) {
	stream, err := prng.New([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(Parity, []byte{0xFF}, 8, nil, stream); err == nil {
		t.Fatal("expected error for empty floor vector")
	}
}
