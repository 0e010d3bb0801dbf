package numbers

import "testing"

func TestSeek(t *testing.T) {
	seq := []int{3, 1, 4, 1, 5}
	if !Seek(seq, 4) {
		t.Fatal("expected 4 to be found")
	}
	if Seek(seq, 9) {
		t.Fatal("did not expect 9 to be found")
	}
}

func TestSeekInterval(t *testing.T) {
	seq := []int{3, 1, 4, 1, 5}
	if !SeekInterval(seq, 4, 10) {
		t.Fatal("expected match in [4,10]")
	}
	if SeekInterval(seq, 6, 10) {
		t.Fatal("did not expect match in [6,10]")
	}
}
