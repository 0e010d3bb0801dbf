package synchz

import (
	"testing"

	"github.com/covertaudio/vorbistego/audioframe"
	"github.com/covertaudio/vorbistego/hide"
	"github.com/covertaudio/vorbistego/internal/bitops"
)

func TestResHeaderRoundTrip(t *testing.T) {
	buf, err := EncodeHeader(42)
	if err != nil {
		t.Fatal(err)
	}
	n, present, err := DecodeHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("expected header to be present")
	}
	if n != 42 {
		t.Fatalf("payload length = %d, want 42", n)
	}
}

func TestDecodeHeaderRejectsWrongMagic(t *testing.T) {
	buf := []byte{0x00, 0x2A}
	_, present, err := DecodeHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatal("expected header not present for non-magic byte")
	}
}

func TestDesynchronizeResHeaderFlipsOnFalsePositive(t *testing.T) {
	res := make([]float64, 12)
	for i := 0; i < 8; i++ {
		res[i] = 3 // log2Bits(3)=1, mantissa=1: eight such coefficients read as 0xFF.
	}
	lineup := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	if err := DesynchronizeResHeader(res, lineup); err != nil {
		t.Fatal(err)
	}
	if res[0] == 3 {
		t.Fatal("expected first coefficient to be perturbed")
	}
}

func TestDesynchronizeResHeaderLeavesNonMagicUntouched(t *testing.T) {
	res := []float64{5, 3, 3, 3, 3, 3, 3, 3}
	lineup := []int{0, 1, 2, 3, 4, 5, 6, 7}
	orig := append([]float64(nil), res...)

	if err := DesynchronizeResHeader(res, lineup); err != nil {
		t.Fatal(err)
	}
	for i := range res {
		if res[i] != orig[i] {
			t.Fatalf("coefficient %d changed though header was not a false positive", i)
		}
	}
}

func TestDecodeSignLogic(t *testing.T) {
	cfg := &Config{Sigma: 1, U: []float64{1, -1, 1, -1}, NormSq: 4, Lambda: 0.5, Alpha: 0.1}

	bit, err := Decode([]int{10, 0, 10, 0}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if bit != 1 {
		t.Fatalf("bit = %d, want 1", bit)
	}

	bit, err = Decode([]int{0, 10, 0, 10}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if bit != 0 {
		t.Fatalf("bit = %d, want 0", bit)
	}
}

func TestDecodeIndeterminateOnZeroProjection(t *testing.T) {
	cfg := &Config{Sigma: 1, U: []float64{1, -1, 1, -1}, NormSq: 4, Lambda: 0.5, Alpha: 0.1}
	if _, err := Decode([]int{7, 7, 7, 7}, cfg); err == nil {
		t.Fatal("expected SyncFail for a zero projection")
	}
}

func TestEncodeNaturallyAligned(t *testing.T) {
	cfg := &Config{Sigma: 1, U: []float64{1, -1, 1, -1}, NormSq: 4, Lambda: 0.5, Alpha: 0.1}
	posts := []int{10, 0, 10, 0} // r = 5, well past alpha/lambda = 0.2 for bit 1

	out, committed, err := Encode(posts, 1, cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !committed {
		t.Fatal("expected natural alignment to commit")
	}
	for i := range posts {
		if out[i] != posts[i] {
			t.Fatalf("naturally aligned posts should not change: got %v want %v", out, posts)
		}
	}
}

func TestEncodeAppliesWatermarkAndCommits(t *testing.T) {
	cfg := &Config{Sigma: 5, U: []float64{5, -5, 5, -5}, NormSq: 100, Lambda: 0.5, Alpha: 2}
	posts := []int{100, 100, 100, 100}

	frame := &audioframe.Frame{
		Rate:         64,
		PostList:     []int{0, 20, 40, 63},
		ForwardIndex: []int{0, 1, 2, 3},
		Floor:        make([]int32, 64),
	}
	origFloor := make([]int32, 64)
	for i := range origFloor {
		origFloor[i] = 100
	}

	out, committed, err := Encode(posts, 1, cfg, frame, origFloor)
	if err != nil {
		t.Fatal(err)
	}
	if !committed {
		t.Fatal("expected watermark to commit")
	}
	want := []int{110, 90, 110, 90}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("posts = %v, want %v", out, want)
		}
	}

	finalBit, err := Decode(out, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if finalBit != 1 {
		t.Fatalf("final projection signals bit %d, want 1", finalBit)
	}
}

func TestSimulateFloorFlatPosts(t *testing.T) {
	frame := &audioframe.Frame{
		Rate:         64,
		PostList:     []int{0, 20, 40, 63},
		ForwardIndex: []int{0, 1, 2, 3},
		Floor:        make([]int32, 64),
	}
	sim, err := SimulateFloor(frame, []int{50, 50, 50, 50})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range sim {
		if v != 50 {
			t.Fatalf("floor[%d] = %v, want 50 for flat posts", i, v)
		}
	}
}

func TestDesynchronizeISSForcesZeroBits(t *testing.T) {
	res := []float64{-7, 8, 9, -10, 11, 12, -13, 14, 15}
	lineup := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}

	if err := DesynchronizeISS(res, lineup, hide.Identity, nil, nil); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < SizeFieldBits; i++ {
		if res[lineup[i]] != 2 && res[lineup[i]] != -2 {
			t.Fatalf("position %d = %v, want magnitude-2 coefficient carrying a zero bit", i, res[lineup[i]])
		}
	}
	if res[lineup[8]] != 15 {
		t.Fatal("position beyond the size field should be untouched")
	}
}

func TestDecodeISSWithFallbackRetriesResHeader(t *testing.T) {
	cfg := &Config{Sigma: 1, U: []float64{1, -1, 1, -1}, NormSq: 4, Lambda: 0.5, Alpha: 0.1}
	posts := []int{0, 10, 0, 10} // bit 0

	header, err := EncodeHeader(9)
	if err != nil {
		t.Fatal(err)
	}

	bit, viaFallback, err := DecodeISSWithFallback(posts, cfg, header)
	if err != nil {
		t.Fatal(err)
	}
	if bit != 1 || !viaFallback {
		t.Fatalf("expected fallback to recover bit 1, got bit=%d viaFallback=%v", bit, viaFallback)
	}
}

func TestDecodeISSWithFallbackDeclaresEmpty(t *testing.T) {
	cfg := &Config{Sigma: 1, U: []float64{1, -1, 1, -1}, NormSq: 4, Lambda: 0.5, Alpha: 0.1}
	posts := []int{0, 10, 0, 10} // bit 0

	bit, viaFallback, err := DecodeISSWithFallback(posts, cfg, []byte{0x00, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	if bit != 0 || viaFallback {
		t.Fatalf("expected frame to read empty, got bit=%d viaFallback=%v", bit, viaFallback)
	}
}

// sanity check that bitops round-trips the way EncodeHeader/DecodeHeader
// and the extraction-based desync checks assume.
func TestBitopsAssumptionForHeaderBits(t *testing.T) {
	var w bitops.BitWriter
	w.WriteBits(uint64(Magic), 8)
	w.WriteBits(9, SizeFieldBits)
	buf := w.Bytes()
	if bitops.ReadBits(buf, 0, 8) != uint64(Magic) {
		t.Fatal("magic byte did not round-trip")
	}
	if bitops.ReadBits(buf, 8, SizeFieldBits) != 9 {
		t.Fatal("size field did not round-trip")
	}
}
