/*
NAME
  carrier.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package carrier maps between raw PCM sample windows and the
// audioframe.Frame descriptor the stego session operates on. spec.md
// section 2's Non-goals explicitly leave the audio codec itself
// unspecified ("The design does not specify the audio codec itself"): a
// real deployment sits this package atop a Vorbis encoder/decoder's
// already-computed MDCT residue and floor-post vectors. The cmd/ demo
// binaries have no such codec, so carrier treats each window of raw PCM
// samples directly as a residue vector and derives a floor from it the
// same way the core's synchz package already renders one from posts,
// giving the demo pipeline real, audible samples to carry the channel
// without reimplementing Vorbis.
package carrier

import (
	"github.com/covertaudio/vorbistego/audioframe"
	"github.com/covertaudio/vorbistego/synchz"
	"github.com/covertaudio/vorbistego/vlog"
)

// Params configures how a sample window is carved into a Frame.
type Params struct {
	Rate      int // samples/second
	WindowLen int // samples per window; Residue/Floor/Frame.WindowLen all derive from this
	Mult      int // floor-line quantization multiplier, spec.md section 3
	NumPosts  int // number of evenly spaced floor posts
}

// Build turns one window of PCM samples (length params.WindowLen) into a
// Frame: the samples become the residue vector directly, the posts are the
// per-segment average sample magnitude quantized by Mult, and the floor is
// synchz.SimulateFloor's rendering of those posts, exactly as a receiver
// would reconstruct it from the post indices alone.
func Build(samples []int, p Params) (*audioframe.Frame, error) {
	if len(samples) != p.WindowLen {
		return nil, vlog.New(vlog.InvalidArgument, "carrier.Build", "sample window length mismatch")
	}
	if p.NumPosts < 2 {
		return nil, vlog.New(vlog.InvalidArgument, "carrier.Build", "need at least two posts")
	}

	half := p.WindowLen / 2
	residue := make([]float64, half)
	for i, s := range samples[:half] {
		residue[i] = float64(s)
	}

	postList, forwardIndex := evenPosts(half, p.NumPosts)
	posts := make([]int, p.NumPosts)
	for i := range postList {
		lo, hi := postList[i], half
		if i+1 < len(postList) {
			hi = postList[i+1]
		}
		posts[i] = quantizeSegment(residue[lo:hi], p.Mult)
	}

	frame := &audioframe.Frame{
		Rate:         p.Rate,
		WindowLen:    p.WindowLen,
		Mult:         p.Mult,
		PostList:     postList,
		ForwardIndex: forwardIndex,
		Posts:        posts,
		Residue:      residue,
		Floor:        make([]int32, half),
	}

	floor, err := synchz.SimulateFloor(frame, posts)
	if err != nil {
		return nil, err
	}
	frame.Floor = floor
	return frame, nil
}

// Release copies a Frame's residue back into a PCM sample window of the
// same length the window was built from, rounding to the nearest integer.
// It is called on the sender side after Session.EncodeFrame has embedded
// the frame's subliminal data, turning the watermarked residue back into
// audio.
func Release(frame *audioframe.Frame, samples []int) error {
	half := len(frame.Residue)
	if len(samples) != half*2 {
		return vlog.New(vlog.InvalidArgument, "carrier.Release", "sample window length mismatch")
	}
	for i, r := range frame.Residue {
		samples[i] = round(r)
	}
	return nil
}

// evenPosts lays out numPosts evenly spaced x-positions across [0, half),
// with ForwardIndex the trivial already-sorted ordering.
func evenPosts(half, numPosts int) (postList, forwardIndex []int) {
	postList = make([]int, numPosts)
	forwardIndex = make([]int, numPosts)
	step := half / numPosts
	for i := range postList {
		postList[i] = i * step
		forwardIndex[i] = i
	}
	return postList, forwardIndex
}

// quantizeSegment returns the average absolute sample value across seg,
// quantized to the nearest multiple of mult, as render_line0's posts
// expect (spec.md section 3, "floor-line quantization multiplier").
func quantizeSegment(seg []float64, mult int) int {
	if len(seg) == 0 || mult <= 0 {
		return 0
	}
	var sum float64
	for _, v := range seg {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	avg := sum / float64(len(seg))
	return round(avg/float64(mult)) * mult
}

func round(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
