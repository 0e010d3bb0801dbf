/*
NAME
  iss.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package synchz

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/covertaudio/vorbistego/audioframe"
	"github.com/covertaudio/vorbistego/internal/prng"
	"github.com/covertaudio/vorbistego/vlog"
)

// maxWalkbackIters bounds the endpoint walkback loop in Encode. Each
// iteration steps at most two posts (the endpoints of one offending
// segment) by one quantum, so the budget covers walking one segment's
// endpoints back across the whole [0,255] post range, not every post of a
// large frame; Encode reports SyncFail when the budget runs out.
const maxWalkbackIters = 512

// Config holds the per-frame ISS parameters derived from a frame's post
// vector and the session's synchro subkey: the pseudo-random sign sequence
// u, and the closed-form lambda/alpha watermark strength, per spec.md
// section 4.8.
type Config struct {
	Sigma  float64
	U      []float64
	NormSq float64 // sum(u_i^2)
	Lambda float64
	Alpha  float64
}

// NewConfig derives an ISS Config for the current frame's post values.
// subkeyStream must be positioned at the start of this frame's synchro
// subsequence; it is advanced by len(posts) draws.
func NewConfig(posts []int, sigma float64, subkeyStream *prng.Stream) (*Config, error) {
	if len(posts) < 2 {
		return nil, vlog.New(vlog.InvalidArgument, "synchz.NewConfig", "need at least two posts")
	}
	if sigma <= 0 {
		return nil, vlog.New(vlog.InvalidArgument, "synchz.NewConfig", "non-positive sigma")
	}
	if subkeyStream == nil {
		return nil, vlog.New(vlog.InvalidArgument, "synchz.NewConfig", "nil PRNG stream")
	}

	p := len(posts)
	u := make([]float64, p)
	for i := 0; i < p; i++ {
		bit, err := subkeyStream.Next(2)
		if err != nil {
			return nil, vlog.Wrap(vlog.Internal, "synchz.NewConfig", err)
		}
		if bit == 1 {
			u[i] = sigma
		} else {
			u[i] = -sigma
		}
	}

	fpost := make([]float64, p)
	for i, v := range posts {
		fpost[i] = float64(v)
	}
	variance := stat.Variance(fpost, nil)
	if variance <= 0 {
		return nil, vlog.New(vlog.SyncFail, "synchz.NewConfig", "degenerate post vector has zero variance")
	}

	ratio := float64(p) * sigma * sigma / variance
	disc := (1+ratio)*(1+ratio) - 4*ratio
	if disc < 0 {
		disc = 0
	}
	lambda := (1 + ratio - math.Sqrt(disc)) / 2

	alphaSq := 1 - lambda*lambda*variance/(float64(p)*sigma*sigma)
	if alphaSq < 0 {
		alphaSq = 0
	}

	return &Config{
		Sigma:  sigma,
		U:      u,
		NormSq: float64(p) * sigma * sigma,
		Lambda: lambda,
		Alpha:  math.Sqrt(alphaSq),
	}, nil
}

// Project computes the projection statistic r = sum((post_i - mean) * u_i)
// / ||u||^2.
func Project(posts []int, cfg *Config) (float64, error) {
	if cfg == nil || len(cfg.U) != len(posts) {
		return 0, vlog.New(vlog.InvalidArgument, "synchz.Project", "config/posts length mismatch")
	}

	var sum float64
	for _, v := range posts {
		sum += float64(v)
	}
	mean := sum / float64(len(posts))

	var r float64
	for i, v := range posts {
		r += (float64(v) - mean) * cfg.U[i]
	}
	return r / cfg.NormSq, nil
}

// Decode reports the bit an ISS watermark over posts currently signals. It
// returns a SyncFail error on an exactly-zero projection, which spec.md
// section 4.8 calls out as Indeterminate.
func Decode(posts []int, cfg *Config) (int, error) {
	r, err := Project(posts, cfg)
	if err != nil {
		return 0, err
	}
	switch {
	case r > 0:
		return 1, nil
	case r < 0:
		return 0, nil
	default:
		return 0, vlog.New(vlog.SyncFail, "synchz.Decode", "indeterminate projection")
	}
}

// Encode watermarks posts to signal bit, re-simulating the decoder's floor
// reconstruction and walking modified posts back toward their original
// values whenever a sample would fall outside its ITU-R BS.468-4
// tolerance band against origFloor. It returns the (possibly unmodified)
// post vector to use and whether the encode committed; on failure the
// original posts are returned unchanged alongside a SyncFail error.
func Encode(posts []int, bit int, cfg *Config, frame *audioframe.Frame, origFloor []int32) ([]int, bool, error) {
	r, err := Project(posts, cfg)
	if err != nil {
		return posts, false, err
	}

	b := -1.0
	if bit == 1 {
		b = 1.0
	}

	if b*r > cfg.Alpha/cfg.Lambda {
		return posts, true, nil
	}

	work := append([]int(nil), posts...)
	for i := range work {
		variation := round((cfg.Alpha*b - cfg.Lambda*r) * cfg.U[i])
		nv := work[i] + variation
		if nv < 0 {
			nv = 0
		}
		if nv > 255 {
			nv = 255
		}
		work[i] = nv
	}

	if err := walkbackToTolerance(frame, work, posts, origFloor); err != nil {
		return posts, false, err
	}

	rFinal, err := Project(work, cfg)
	if err != nil {
		return posts, false, err
	}
	finalBit := -1
	switch {
	case rFinal > 0:
		finalBit = 1
	case rFinal < 0:
		finalBit = 0
	}
	if finalBit != bit {
		return posts, false, vlog.New(vlog.SyncFail, "synchz.Encode", "watermark sign lost after tolerance walkback")
	}

	return work, true, nil
}

// walkbackToTolerance simulates the floor work would produce and, for any
// sample outside its ITU tolerance band against origFloor, steps both
// endpoints of the offending segment one quantum back toward orig, re-simulating until either the whole floor is within
// tolerance or the iteration budget is exhausted.
func walkbackToTolerance(frame *audioframe.Frame, work, orig []int, origFloor []int32) error {
	n := len(frame.Floor)

	for iter := 0; iter < maxWalkbackIters; iter++ {
		sim, err := SimulateFloor(frame, work)
		if err != nil {
			return err
		}

		violatedX := -1
		for x := 0; x < n; x++ {
			ok, err := withinTolerance(x, n, frame.Rate, sim[x], origFloor[x])
			if err != nil {
				return err
			}
			if !ok {
				violatedX = x
				break
			}
		}
		if violatedX == -1 {
			return nil
		}

		i0, i1 := segmentEndpoints(frame, violatedX)
		walkOne(work, orig, i0)
		if i1 != i0 {
			walkOne(work, orig, i1)
		}
	}

	return vlog.New(vlog.SyncFail, "synchz.walkbackToTolerance", "tolerance not reached within iteration budget")
}

// segmentEndpoints returns the two post indices (into frame.PostList)
// bracketing floor sample x.
func segmentEndpoints(frame *audioframe.Frame, x int) (int, int) {
	for k := 0; k+1 < len(frame.ForwardIndex); k++ {
		i0 := frame.ForwardIndex[k]
		i1 := frame.ForwardIndex[k+1]
		if x >= frame.PostList[i0] && x <= frame.PostList[i1] {
			return i0, i1
		}
	}
	last := frame.ForwardIndex[len(frame.ForwardIndex)-1]
	return last, last
}

// walkOne steps work[idx] one unit toward orig[idx], if it is not already
// there.
func walkOne(work, orig []int, idx int) {
	if work[idx] > orig[idx] {
		work[idx]--
	} else if work[idx] < orig[idx] {
		work[idx]++
	}
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
