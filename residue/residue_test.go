package residue

import (
	"testing"

	"github.com/covertaudio/vorbistego/capacity"
)

func buildFrame(t *testing.T, res []float64) *capacity.Frame {
	t.Helper()
	f, err := capacity.Analyze(res, 44100)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	res := make([]float64, 128)
	for i := range res {
		v := float64((i*53)%400) - 200
		if v == 0 {
			v = 5
		}
		res[i] = v
	}
	frame := buildFrame(t, res)

	lineup := make([]int, len(res))
	for i := range lineup {
		lineup[i] = i
	}

	data := []byte{0b10110101, 0b11001100}
	dataBits := 16

	written, err := Embed(res, lineup, frame, data, dataBits)
	if err != nil {
		t.Fatal(err)
	}
	if written == 0 {
		t.Fatal("expected some bits to be embedded")
	}

	extracted, bits, err := Extract(res, lineup)
	if err != nil {
		t.Fatal(err)
	}
	if bits < written {
		t.Fatalf("extracted fewer bits (%d) than embedded (%d)", bits, written)
	}

	for i := 0; i < written; i++ {
		want := (data[i/8] >> uint(7-i%8)) & 1
		got := (extracted[i/8] >> uint(7-i%8)) & 1
		if want != got {
			t.Fatalf("bit %d mismatch: got %d want %d", i, got, want)
		}
	}
}

func TestEmbedRejectsOutOfRangeLineup(t *testing.T) {
	res := []float64{10, 20, 30}
	frame := buildFrame(t, res)
	if _, err := Embed(res, []int{5}, frame, []byte{0xFF}, 4); err == nil {
		t.Fatal("expected error for out-of-range lineup index")
	}
}

func TestExtractSkipsSmallCoefficients(t *testing.T) {
	res := []float64{0, 1, -1, 0.5}
	_, bits, err := Extract(res, []int{0, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if bits != 0 {
		t.Fatalf("expected 0 bits from all-small coefficients, got %d", bits)
	}
}

func TestEmbedStopsWhenDataBitsExhausted(t *testing.T) {
	res := make([]float64, 16)
	for i := range res {
		res[i] = 300
	}
	frame := buildFrame(t, res)

	lineup := make([]int, len(res))
	for i := range lineup {
		lineup[i] = i
	}

	written, err := Embed(res, lineup, frame, []byte{0xFF}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if written > 3 {
		t.Fatalf("written = %d, should not exceed requested dataBits", written)
	}
}
