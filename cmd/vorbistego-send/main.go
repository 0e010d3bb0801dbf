/*
NAME
  main.go

DESCRIPTION
  vorbistego-send embeds a payload file into a WAV carrier, producing a
  second WAV that sounds the same but carries the enciphered payload in
  its (synthetic) residue and floor posts.

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

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/internal/carrier"
	"github.com/covertaudio/vorbistego/stegoconfig"
	"github.com/covertaudio/vorbistego/vlog"
)

func main() {
	var (
		payloadPath   = flag.String("payload", "", "path to the plaintext payload file to embed")
		carrierInPath = flag.String("carrier-in", "", "path to the WAV file to use as carrier")
		carrierOut    = flag.String("carrier-out", "out.wav", "path to write the watermarked WAV to")

		cipherName = flag.String("cipher", "", "cipher algorithm name, e.g. ARCFOUR")
		digestName = flag.String("digest", "", "digest algorithm name, e.g. SHA1")
		hmacFlag   = flag.Bool("hmac", false, "use HMAC construction for the digest")
		keyHex     = flag.String("key", "", "shared master key, hex encoded, at least 16 bytes")
		ivHex      = flag.String("iv", "", "initialization vector, hex encoded, 16 bytes")
		emission   = flag.Uint64("emission", 0, "EMISSION_ID carried in every packet")
		startPkt   = flag.Uint64("packet", 1, "first PACKET_ID to use")
		dataSize   = flag.Int("datasize", 0, "default per-packet payload size in bytes; 0 picks the built-in default")

		hideMethod = flag.String("hide", "Identity", "hiding method: Identity or Parity")
		syncMethod = flag.String("sync", "ResHeader", "synchronization method: ResHeader or ISS")
		agg        = flag.Int("aggressiveness", 5, "desired aggressiveness, 1-10")
		sigma      = flag.Float64("sigma", 1.0, "ISS watermark strength, required when -sync=ISS")
		delay      = flag.Int("delay", 0, "leading audio frames left untouched before encoding begins")

		windowLen = flag.Int("windowlen", 4096, "MDCT window length in samples, must be even")
		mult      = flag.Int("mult", 4, "floor-line quantization multiplier")
		numPosts  = flag.Int("posts", 16, "number of evenly spaced floor posts per frame")

		logPath  = flag.String("log", "vorbistego-send.log", "path to the log file")
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

	payload, err := os.Open(*payloadPath)
	if err != nil {
		log.Log(vlog.Fatal, "could not open payload file", "error", err)
	}
	defer payload.Close()

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

	out, err := os.Create(*carrierOut)
	if err != nil {
		log.Log(vlog.Fatal, "could not create output file", "error", err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, buf.Format.SampleRate, int(dec.BitDepth), buf.Format.NumChannels, 1)

	params := carrier.Params{Rate: buf.Format.SampleRate, WindowLen: *windowLen, Mult: *mult, NumPosts: *numPosts}

	var frames, totalWritten int
	for start := 0; start+*windowLen <= len(buf.Data); start += *windowLen {
		window := buf.Data[start : start+*windowLen]

		frame, err := carrier.Build(window, params)
		if err != nil {
			log.Log(vlog.Fatal, "could not build frame", "error", err, "frame", frames)
		}

		n, err := sess.EncodeFrame(frame, payload)
		if err != nil {
			if vlog.Is(err, vlog.FrameSkip) {
				log.Log(vlog.Debug, "frame skipped, insufficient capacity", "frame", frames)
			} else {
				log.Log(vlog.Fatal, "encode failed", "error", err, "frame", frames)
			}
		}
		totalWritten += n

		if err := carrier.Release(frame, window); err != nil {
			log.Log(vlog.Fatal, "could not release frame", "error", err, "frame", frames)
		}

		if err := enc.Write(&audio.IntBuffer{
			Format:         buf.Format,
			Data:           window,
			SourceBitDepth: int(dec.BitDepth),
		}); err != nil {
			log.Log(vlog.Fatal, "could not write carrier frame", "error", err, "frame", frames)
		}
		frames++
	}

	if err := enc.Close(); err != nil {
		log.Log(vlog.Fatal, "could not finalize output WAV", "error", err)
	}

	log.Log(vlog.Info, "embedding complete", "frames", frames, "bitsWritten", totalWritten)
}
