/*
NAME
  audioframe.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package audioframe defines the per-frame audio descriptor the
// steganographic layer consumes without owning: sample rate, MDCT window
// length, floor quantization multiplier, post geometry, and the live
// residue/floor vectors. See spec.md section 3, "Audio frame descriptor".
package audioframe

import "github.com/covertaudio/vorbistego/vlog"

// MaxPosts is the upper bound on a frame's post vector length (spec.md
// section 3: "length P <= 64").
const MaxPosts = 64

// Frame is one audio frame's worth of codec state, valid for the duration
// of that frame's processing. The core package never owns a Frame; it
// reads and mutates Residue (and, under ISS, the post heights in Posts) in
// place.
type Frame struct {
	Rate      int // samples/second
	WindowLen int // MDCT window length, W; Residue and Floor have length W/2

	Mult int // floor-line quantization multiplier

	PostList     []int // x-axis positions of the floor's posts, length P
	ForwardIndex []int // ordering of PostList by increasing x, length P
	Posts        []int // y-axis quantized post heights, length P; watermarked in place under ISS

	Residue []float64 // length WindowLen/2
	Floor   []int32   // length WindowLen/2, quantized floor-line values
}

// Validate checks the internal length invariants spec.md section 3
// requires of a frame descriptor.
func (f *Frame) Validate() error {
	if f == nil {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "nil frame")
	}
	if f.Rate <= 0 {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "non-positive rate")
	}
	if f.WindowLen <= 0 || f.WindowLen%2 != 0 {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "window length must be positive and even")
	}
	if f.Mult <= 0 {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "non-positive floor multiplier")
	}
	if len(f.PostList) == 0 || len(f.PostList) > MaxPosts {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "post list length out of range")
	}
	if len(f.ForwardIndex) != len(f.PostList) {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "forward index length mismatch")
	}
	if len(f.Posts) != len(f.PostList) {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "posts length mismatch")
	}
	half := f.WindowLen / 2
	if len(f.Residue) != half {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "residue vector length mismatch")
	}
	if len(f.Floor) != half {
		return vlog.New(vlog.InvalidArgument, "Frame.Validate", "floor vector length mismatch")
	}
	return nil
}
