package bitops

import "testing"

func TestReadBitsMSBFirst(t *testing.T) {
	data := []byte{0b10110000}
	if got := ReadBits(data, 0, 4); got != 0b1011 {
		t.Fatalf("ReadBits = %b, want 1011", got)
	}
	if got := ReadBits(data, 2, 4); got != 0b1100 {
		t.Fatalf("ReadBits = %b, want 1100", got)
	}
}

func TestBitWriterRoundTrip(t *testing.T) {
	var w BitWriter
	w.WriteBits(0b1011, 4)
	w.WriteBits(0b00, 2)
	w.WriteBits(0b1, 1)

	if w.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", w.Len())
	}

	got := ReadBits(w.Bytes(), 0, 7)
	want := uint64(0b1011001)
	if got != want {
		t.Fatalf("round trip: got %b, want %b", got, want)
	}
}

func TestBitWriterGrowsAcrossByteBoundary(t *testing.T) {
	var w BitWriter
	for i := 0; i < 12; i++ {
		w.WriteBits(uint64(i%2), 1)
	}
	if len(w.Bytes()) != 2 {
		t.Fatalf("expected 2 bytes for 12 bits, got %d", len(w.Bytes()))
	}
}
