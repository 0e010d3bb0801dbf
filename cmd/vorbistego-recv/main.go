/*
NAME
  main.go

DESCRIPTION
  vorbistego-recv recovers a payload previously embedded by
  vorbistego-send from a watermarked WAV carrier.

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package main

import (
	"encoding/hex"
	"flag"
	"os"

	"github.com/go-audio/wav"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/internal/carrier"
	"github.com/covertaudio/vorbistego/stegoconfig"
	"github.com/covertaudio/vorbistego/vlog"
)

func main() {
	var (
		carrierInPath = flag.String("carrier-in", "", "path to the watermarked WAV file")
		payloadOut    = flag.String("payload-out", "recovered.bin", "path to write the recovered payload to")

		cipherName = flag.String("cipher", "", "cipher algorithm name, e.g. ARCFOUR")
		digestName = flag.String("digest", "", "digest algorithm name, e.g. SHA1")
		hmacFlag   = flag.Bool("hmac", false, "use HMAC construction for the digest")
		keyHex     = flag.String("key", "", "shared master key, hex encoded, at least 16 bytes")
		ivHex      = flag.String("iv", "", "initialization vector, hex encoded, 16 bytes")
		emission   = flag.Uint64("emission", 0, "EMISSION_ID carried in every packet")
		startPkt   = flag.Uint64("packet", 1, "first PACKET_ID expected")
		dataSize   = flag.Int("datasize", 0, "default per-packet payload size in bytes; 0 picks the built-in default")

		hideMethod = flag.String("hide", "Identity", "hiding method: Identity or Parity")
		syncMethod = flag.String("sync", "ResHeader", "synchronization method: ResHeader or ISS")
		agg        = flag.Int("aggressiveness", 5, "desired aggressiveness, 1-10")
		sigma      = flag.Float64("sigma", 1.0, "ISS watermark strength, required when -sync=ISS")
		delay      = flag.Int("delay", 0, "leading audio frames that were left untouched during encoding")

		windowLen = flag.Int("windowlen", 4096, "MDCT window length in samples, must match the sender")
		mult      = flag.Int("mult", 4, "floor-line quantization multiplier, must match the sender")
		numPosts  = flag.Int("posts", 16, "number of evenly spaced floor posts per frame, must match the sender")

		logPath  = flag.String("log", "vorbistego-recv.log", "path to the log file")
		logLevel = flag.Int("loglevel", int(vlog.Info), "minimum log level, 0=Debug .. 4=Fatal")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{Filename: *logPath, MaxSize: 50, MaxBackups: 5, MaxAge: 28}
	log := vlog.NewWriterLogger(int8(*logLevel), fileLog)

	key, err := hex.DecodeString(*keyHex)
	if err != nil {
		log.Log(vlog.Fatal, "bad -key hex", "error", err)
	}
	var iv []byte
	if *ivHex != "" {
		iv, err = hex.DecodeString(*ivHex)
		if err != nil {
			log.Log(vlog.Fatal, "bad -iv hex", "error", err)
		}
	}

	cfg := &stegoconfig.Config{
		CipherName:      *cipherName,
		DigestName:      *digestName,
		HMAC:            *hmacFlag,
		Key:             key,
		IV:              iv,
		Emission:        *emission,
		StartPacket:     *startPkt,
		DefaultDataSize: *dataSize,
		HideMethod:      *hideMethod,
		SyncMethod:      *syncMethod,
		Aggressiveness:  *agg,
		Sigma:           *sigma,
		DelayFrames:     *delay,
		Logger:          log,
		LogLevel:        int8(*logLevel),
	}

	maxPacketLen := cryptochan.HeaderLen + *dataSize
	if *dataSize <= 0 {
		maxPacketLen = cryptochan.HeaderLen + cryptochan.DefaultPayloadSize
	}
	ring, err := cryptochan.NewRing(8*maxPacketLen, maxPacketLen)
	if err != nil {
		log.Log(vlog.Fatal, "could not allocate crypto ring", "error", err)
	}

	sess, err := cfg.NewSession(ring)
	if err != nil {
		log.Log(vlog.Fatal, "could not build session", "error", err)
	}

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

	out, err := os.Create(*payloadOut)
	if err != nil {
		log.Log(vlog.Fatal, "could not create payload output file", "error", err)
	}
	defer out.Close()

	params := carrier.Params{Rate: buf.Format.SampleRate, WindowLen: *windowLen, Mult: *mult, NumPosts: *numPosts}

	var frames, totalRead int
	for start := 0; start+*windowLen <= len(buf.Data); start += *windowLen {
		window := buf.Data[start : start+*windowLen]

		frame, err := carrier.Build(window, params)
		if err != nil {
			log.Log(vlog.Fatal, "could not build frame", "error", err, "frame", frames)
		}

		n, err := sess.DecodeFrame(frame, out)
		if err != nil {
			if vlog.Is(err, vlog.FrameSkip) {
				log.Log(vlog.Debug, "frame skipped, insufficient capacity", "frame", frames)
			} else {
				log.Log(vlog.Warning, "decode failed", "error", err, "frame", frames)
			}
		}
		totalRead += n
		frames++
	}

	log.Log(vlog.Info, "extraction complete", "frames", frames, "bitsRecovered", totalRead)
}
