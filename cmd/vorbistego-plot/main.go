/*
NAME
  main.go

DESCRIPTION
  vorbistego-plot is a debug tool that runs a WAV carrier through the
  capacity analysis and aggressiveness feedback loop a real session would
  use, and plots the per-frame capacity bounds alongside the controller's
  chosen usage and its converging real aggressiveness.

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package main

import (
	"flag"
	"os"

	"github.com/go-audio/wav"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/covertaudio/vorbistego/capacity"
	"github.com/covertaudio/vorbistego/internal/carrier"
	"github.com/covertaudio/vorbistego/vlog"
)

func main() {
	var (
		carrierInPath = flag.String("carrier-in", "", "path to the WAV file to analyze")
		outPath       = flag.String("out", "capacity.png", "path to write the plot PNG to")
		aggressive    = flag.Int("aggressiveness", 5, "desired aggressiveness, 1-10")
		windowLen     = flag.Int("windowlen", 4096, "MDCT window length in samples")
		mult          = flag.Int("mult", 4, "floor-line quantization multiplier")
		numPosts      = flag.Int("posts", 16, "number of evenly spaced floor posts per frame")
	)
	flag.Parse()

	log := vlog.NewWriterLogger(vlog.Info, os.Stderr)

	in, err := os.Open(*carrierInPath)
	if err != nil {
		log.Log(vlog.Fatal, "could not open carrier file", "error", err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		log.Log(vlog.Fatal, "could not decode carrier WAV", "error", err)
	}

	ctrl, err := capacity.NewController(*aggressive)
	if err != nil {
		log.Log(vlog.Fatal, "could not build aggressiveness controller", "error", err)
	}

	params := carrier.Params{Rate: buf.Format.SampleRate, WindowLen: *windowLen, Mult: *mult, NumPosts: *numPosts}

	var maxPts, minPts, usagePts, raPts plotter.XYs
	for start, i := 0, 0.0; start+*windowLen <= len(buf.Data); start, i = start+*windowLen, i+1 {
		window := buf.Data[start : start+*windowLen]

		frame, err := carrier.Build(window, params)
		if err != nil {
			log.Log(vlog.Warning, "skipping frame, could not build", "error", err, "frame", i)
			continue
		}

		capFrame, err := capacity.Analyze(frame.Residue, frame.Rate)
		if err != nil {
			log.Log(vlog.Warning, "skipping frame, could not analyze capacity", "error", err, "frame", i)
			continue
		}

		usage := ctrl.DesiredUsage(capFrame)
		ctrl.Record(capFrame, usage)

		maxPts = append(maxPts, plotter.XY{X: i, Y: float64(capFrame.MaxTotal)})
		minPts = append(minPts, plotter.XY{X: i, Y: float64(capFrame.MinTotal)})
		usagePts = append(usagePts, plotter.XY{X: i, Y: float64(usage)})
		raPts = append(raPts, plotter.XY{X: i, Y: ctrl.Ra})
	}

	p := plot.New()
	p.Title.Text = "vorbistego capacity and aggressiveness telemetry"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "bits"

	addLine(log, p, "max capacity", maxPts)
	addLine(log, p, "min capacity", minPts)
	addLine(log, p, "chosen usage", usagePts)
	addLine(log, p, "real aggressiveness (x10)", scaleRa(raPts))

	if err := p.Save(8*vg.Inch, 4*vg.Inch, *outPath); err != nil {
		log.Log(vlog.Fatal, "could not save plot", "error", err)
	}

	log.Log(vlog.Info, "plot written", "path", *outPath, "frames", len(maxPts))
}

// addLine adds one named line series to p, logging and skipping it on
// failure rather than aborting the whole plot.
func addLine(log *vlog.WriterLogger, p *plot.Plot, name string, pts plotter.XYs) {
	if len(pts) == 0 {
		return
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		log.Log(vlog.Warning, "could not build line series", "error", err, "series", name)
		return
	}
	p.Add(line)
	p.Legend.Add(name, line)
}

// scaleRa rescales the (0..10) real-aggressiveness series onto the same
// rough magnitude as the bit-count series it shares an axis with.
func scaleRa(pts plotter.XYs) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		out[i] = plotter.XY{X: pt.X, Y: pt.Y * 10}
	}
	return out
}
