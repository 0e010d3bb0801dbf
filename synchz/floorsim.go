/*
NAME
  floorsim.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package synchz

import (
	"github.com/covertaudio/vorbistego/audioframe"
	"github.com/covertaudio/vorbistego/internal/itu468"
	"github.com/covertaudio/vorbistego/vlog"
)

// SimulateFloor reconstructs the floor a decoder would interpolate from
// posts, walking frame.ForwardIndex in x order and rendering a Bresenham
// line between each pair of consecutive active posts, per
// steganos_channel.c's render_line0. posts must be indexed the same way
// as frame.PostList (not pre-sorted by ForwardIndex).
func SimulateFloor(frame *audioframe.Frame, posts []int) ([]int32, error) {
	if frame == nil {
		return nil, vlog.New(vlog.InvalidArgument, "synchz.SimulateFloor", "nil frame")
	}
	if len(posts) != len(frame.PostList) {
		return nil, vlog.New(vlog.InvalidArgument, "synchz.SimulateFloor", "posts length mismatch")
	}

	out := make([]int32, len(frame.Floor))
	for k := 0; k+1 < len(frame.ForwardIndex); k++ {
		i0 := frame.ForwardIndex[k]
		i1 := frame.ForwardIndex[k+1]
		renderLine(frame.PostList[i0], frame.PostList[i1], posts[i0], posts[i1], out)
	}
	return out, nil
}

// renderLine draws the integer Bresenham line from (x0,y0) to (x1,y1) into
// dst[x0:x1], a port of render_line0: the per-step delta alternates
// between the truncated average slope and that slope nudged by one,
// weighted so the cumulative error tracks the true line. Unlike
// render_line0, which relies on the next segment's call to fill in its own
// start point, this fills dst[x1] too: SimulateFloor calls renderLine
// standalone per segment rather than as a chain sharing one running (x,y),
// and the two adjacent segments always agree on the shared post's value.
func renderLine(x0, x1, y0, y1 int, dst []int32) {
	if x1 <= x0 {
		if x0 >= 0 && x0 < len(dst) {
			dst[x0] = int32(y0)
		}
		return
	}

	dy := y1 - y0
	adx := x1 - x0
	ady := dy
	if ady < 0 {
		ady = -ady
	}
	base := dy / adx
	sy := base + 1
	if dy < 0 {
		sy = base - 1
	}

	ady -= absInt(base * adx)

	x, y, err := x0, y0, 0
	if x >= 0 && x < len(dst) {
		dst[x] = int32(y)
	}
	for x+1 < x1 {
		x++
		err += ady
		if err >= adx {
			err -= adx
			y += sy
		} else {
			y += base
		}
		if x >= 0 && x < len(dst) {
			dst[x] = int32(y)
		}
	}
	if x1 >= 0 && x1 < len(dst) {
		dst[x1] = int32(y1)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// withinTolerance reports whether sample, at floor index x of a frame with
// the given rate and total floor length n, lies within the ITU-R BS.468-4
// band around original.
func withinTolerance(x, n, rate int, sample int32, original int32) (bool, error) {
	freq := float64(x) * (float64(rate) / (2 * float64(n)))
	neg, pos, err := itu468.VarTol(freq, float64(original))
	if err != nil {
		return false, err
	}
	lo, hi := float64(original)+neg, float64(original)+pos
	if lo > hi {
		lo, hi = hi, lo
	}
	v := float64(sample)
	return v >= lo && v <= hi, nil
}
