/*
NAME
  config.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package stegoconfig provides the session parameters a vorbistego sender
// or receiver is configured from, in the style of revid's config package:
// a plain struct of fields with default values, an Update method driven by
// a string-keyed variable table, and a Validate method that fills in
// defaults for anything missing or out of range. See spec.md section 6,
// "Session parameters consumed from the environment".
package stegoconfig

import (
	"github.com/covertaudio/vorbistego/capacity"
	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/cryptoface"
	"github.com/covertaudio/vorbistego/hide"
	"github.com/covertaudio/vorbistego/stego"
	"github.com/covertaudio/vorbistego/synchz"
	"github.com/covertaudio/vorbistego/vlog"
)

// defaultIV is the built-in constant used when no IV is supplied.
var defaultIV = [16]byte{0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x6A, 0x7B, 0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x6A, 0x7B}

// Config provides the parameters relevant to a vorbistego session. A new
// Config's fields are either set directly or through Update, then passed
// through Validate before NewSession is called.
type Config struct {
	// CipherName and DigestName select the cryptographic façade's
	// algorithms, by name (spec.md section 4.3).
	CipherName string
	DigestName string
	HMAC       bool

	// Key is the shared master key, at least 16 bytes.
	Key []byte

	// IV is the 128-bit initialization vector. When empty, Validate fills
	// in the built-in default.
	IV []byte

	Emission    uint64 // EMISSION_ID carried in every packet.
	StartPacket uint64 // first PACKET_ID the session will use.

	// DefaultDataSize is the default per-packet payload size in bytes.
	DefaultDataSize int

	// HideMethod and SyncMethod select the steganographic hiding transform
	// and synchronization backend (spec.md sections 4.8, 4.9).
	HideMethod string
	SyncMethod string

	// Aggressiveness is the desired per-frame aggressiveness, 1..10
	// (spec.md section 4.6).
	Aggressiveness int

	// Sigma is the ISS watermark strength, required to be > 0 when
	// SyncMethod is "ISS".
	Sigma float64

	// DelayFrames is the number of leading audio frames left untouched
	// before encoding begins (spec.md section 4.10).
	DelayFrames int

	// Logger receives structured log lines; defaults to vlog.NopLogger.
	Logger vlog.Logger

	// LogLevel is the session logging verbosity level.
	LogLevel int8
}

// Validate checks Config's fields and fills in defaults for anything
// missing or out of range, the way revid.Config.Validate iterates the
// Variables table's own Validate funcs.
func (c *Config) Validate() error {
	if c.Logger == nil {
		c.Logger = vlog.NopLogger{}
	}
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	if len(c.Key) < 16 {
		return vlog.New(vlog.InvalidArgument, "Config.Validate", "key must be at least 16 bytes")
	}
	return nil
}

// Update takes a map of configuration variable names to string values,
// parses each and sets the corresponding Config field, the way
// revid.Config.Update does from the variables table.
func (c *Config) Update(vars map[string]string) {
	for _, v := range Variables {
		if value, ok := vars[v.Name]; ok && v.Update != nil {
			v.Update(c, value)
		}
	}
}

// LogInvalidField logs that a field was bad or unset and is being
// defaulted, mirroring revid.Config.LogInvalidField.
func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Log(vlog.Warning, name+" bad or unset, defaulting", name, def)
}

// resolvedIV returns the configured IV, or the built-in default when none
// was supplied.
func (c *Config) resolvedIV() []byte {
	if len(c.IV) == 0 {
		iv := make([]byte, len(defaultIV))
		copy(iv, defaultIV[:])
		return iv
	}
	return c.IV
}

// NewSession builds a cryptographic handle, a crypto-channel Config, a
// capacity controller, and a stego.Session from c, wiring them together
// the way a cmd/ binary's setup code does (spec.md section 9, "a session
// object that owns its cipher handles via scoped acquisition").
func (c *Config) NewSession(ring *cryptochan.Ring) (*stego.Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cipherAlgo, err := cryptoface.CipherAlgoFromName(c.CipherName)
	if err != nil {
		return nil, err
	}
	digestAlgo, err := cryptoface.DigestAlgoFromName(c.DigestName)
	if err != nil {
		return nil, err
	}
	handle, err := cryptoface.Open(cipherAlgo, digestAlgo, c.HMAC)
	if err != nil {
		return nil, err
	}

	cc, err := cryptochan.NewConfig(handle, c.Key, c.resolvedIV(), c.Emission, c.StartPacket, c.DefaultDataSize)
	if err != nil {
		return nil, err
	}

	agg, err := capacity.NewController(c.Aggressiveness)
	if err != nil {
		return nil, err
	}

	hideMethod, err := hideMethodFromName(c.HideMethod)
	if err != nil {
		return nil, err
	}
	syncMethod, err := syncMethodFromName(c.SyncMethod)
	if err != nil {
		return nil, err
	}

	return stego.NewSession(cc, ring, agg, hideMethod, syncMethod, c.Sigma, c.DelayFrames)
}

func hideMethodFromName(name string) (hide.Method, error) {
	switch name {
	case "", "Identity":
		return hide.Identity, nil
	case "Parity":
		return hide.Parity, nil
	default:
		return 0, vlog.New(vlog.Unsupported, "hideMethodFromName", "unknown hiding method: "+name)
	}
}

func syncMethodFromName(name string) (synchz.Method, error) {
	switch name {
	case "", "ResHeader":
		return synchz.ResHeader, nil
	case "ISS":
		return synchz.ISS, nil
	default:
		return 0, vlog.New(vlog.Unsupported, "syncMethodFromName", "unknown synchronization method: "+name)
	}
}
