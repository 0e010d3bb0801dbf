/*
NAME
  lineup.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package stego

import (
	"github.com/covertaudio/vorbistego/internal/prng"
	"github.com/covertaudio/vorbistego/vlog"
)

// buildLineup computes a permutation of [0, n) by repeatedly drawing a
// random index from stream and rejecting any already chosen, per
// steganos_channel.c's calculate_residue_lineup. The result is
// reproducible given the same stream position on both peers.
func buildLineup(stream *prng.Stream, n int) ([]int, error) {
	if stream == nil {
		return nil, vlog.New(vlog.InvalidArgument, "stego.buildLineup", "nil PRNG stream")
	}
	if n <= 0 {
		return nil, vlog.New(vlog.InvalidArgument, "stego.buildLineup", "non-positive length")
	}

	lineup := make([]int, n)
	occupied := make([]bool, n)

	for i := 0; i < n; {
		v, err := stream.Next(n)
		if err != nil {
			return nil, vlog.Wrap(vlog.Internal, "stego.buildLineup", err)
		}
		if occupied[v] {
			continue
		}
		occupied[v] = true
		lineup[i] = v
		i++
	}

	return lineup, nil
}
