package carrier

import "testing"

func sineSamples(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		// Simple deterministic triangle-ish wave, loud enough to exercise
		// capacity.Analyze without needing math.Sin.
		v := (i % 200) - 100
		samples[i] = v * 100
	}
	return samples
}

func TestBuildProducesValidFrame(t *testing.T) {
	p := Params{Rate: 48000, WindowLen: 256, Mult: 4, NumPosts: 8}
	samples := sineSamples(p.WindowLen)

	frame, err := Build(samples, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := frame.Validate(); err != nil {
		t.Fatalf("built frame failed Validate: %v", err)
	}
	if len(frame.Residue) != p.WindowLen/2 {
		t.Errorf("Residue length = %d, want %d", len(frame.Residue), p.WindowLen/2)
	}
	if len(frame.Posts) != p.NumPosts {
		t.Errorf("Posts length = %d, want %d", len(frame.Posts), p.NumPosts)
	}
}

func TestBuildRejectsMismatchedWindow(t *testing.T) {
	p := Params{Rate: 48000, WindowLen: 256, Mult: 4, NumPosts: 8}
	if _, err := Build(make([]int, 100), p); err == nil {
		t.Fatal("expected an error for a mismatched sample window")
	}
}

func TestBuildRejectsTooFewPosts(t *testing.T) {
	p := Params{Rate: 48000, WindowLen: 256, Mult: 4, NumPosts: 1}
	if _, err := Build(sineSamples(p.WindowLen), p); err == nil {
		t.Fatal("expected an error for fewer than two posts")
	}
}

func TestReleaseRoundTripsResidue(t *testing.T) {
	p := Params{Rate: 48000, WindowLen: 256, Mult: 4, NumPosts: 8}
	samples := sineSamples(p.WindowLen)

	frame, err := Build(samples, p)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]int, p.WindowLen)
	if err := Release(frame, out); err != nil {
		t.Fatal(err)
	}
	for i, r := range frame.Residue {
		want := round(r)
		if out[i] != want {
			t.Fatalf("sample %d = %d, want %d", i, out[i], want)
		}
	}
}

func TestReleaseRejectsMismatchedLength(t *testing.T) {
	p := Params{Rate: 48000, WindowLen: 256, Mult: 4, NumPosts: 8}
	frame, err := Build(sineSamples(p.WindowLen), p)
	if err != nil {
		t.Fatal(err)
	}
	if err := Release(frame, make([]int, 10)); err == nil {
		t.Fatal("expected an error for a mismatched output length")
	}
}
