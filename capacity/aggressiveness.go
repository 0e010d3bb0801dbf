/*
NAME
  aggressiveness.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package capacity

import "github.com/covertaudio/vorbistego/vlog"

// Controller tracks the desired (Da) versus real (Ra) long-run channel
// usage, expressed in tenths (1..10), and derives a per-frame bit budget
// that nudges Ra back toward Da. Grounded on steganos_channel.c's
// steganos_state_init / hide_data aggressiveness bookkeeping.
type Controller struct {
	Da int     // Desired aggressiveness, 1..10.
	Ra float64 // Real aggressiveness observed so far.

	MetadataSent     int
	TotalSubCapacity int
}

// NewController builds a Controller with the given desired aggressiveness.
// Ra starts equal to Da, matching steganos_state_init.
func NewController(da int) (*Controller, error) {
	if da < 1 || da > 10 {
		return nil, vlog.New(vlog.InvalidArgument, "NewController", "aggressiveness must be in [1,10]")
	}
	return &Controller{Da: da, Ra: float64(da)}, nil
}

// DesiredUsage returns the number of subliminal bits this frame should
// attempt to carry, given the frame's maximum capacity. It implements the
// self-correcting rule from hide_data: the aggressiveness applied to this
// frame is (Da-Ra)+Da, clamped to [0,10], so that, averaged with the
// previous Ra, the result tends back toward Da. The result is further
// clamped to [0, MaxSubliminalSize].
func (c *Controller) DesiredUsage(frame *Frame) int {
	p := (float64(c.Da) - c.Ra) + float64(c.Da)
	if p < 0 {
		p = 0
	}
	if p > 10 {
		p = 10
	}

	usage := (p * float64(frame.MaxTotal)) / 10

	var iusage int
	switch {
	case usage > MaxSubliminalSize:
		iusage = MaxSubliminalSize
	case usage < 0:
		iusage = 0
	default:
		iusage = int(usage + 0.5)
	}

	return iusage
}

// Reset snaps Ra back to Da and zeros the running totals, per
// steganos_state_reset_iter's per-iteration (not per-frame) reset: a new
// emission starts its feedback loop fresh without reopening cipher or
// digest handles.
func (c *Controller) Reset() {
	c.Ra = float64(c.Da)
	c.MetadataSent = 0
	c.TotalSubCapacity = 0
}

// Record updates Ra after a frame has been encoded: totalSubCapacity
// accumulates frame.MaxTotal, metadataSent accumulates the subliminal bits
// actually embedded (0 if the frame was skipped), and Ra is recomputed as
// 10 * metadataSent / totalSubCapacity.
func (c *Controller) Record(frame *Frame, bitsSent int) {
	c.MetadataSent += bitsSent
	c.TotalSubCapacity += frame.MaxTotal
	if c.TotalSubCapacity > 0 {
		c.Ra = 10 * float64(c.MetadataSent) / float64(c.TotalSubCapacity)
	}
}
