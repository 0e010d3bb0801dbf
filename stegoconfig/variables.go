/*
NAME
  variables.go

DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type
  in a string format, a function for updating the variable in the Config
  struct from a string, and finally a validation function to check the
  validity of the corresponding field value in the Config.

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package stegoconfig

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/covertaudio/vorbistego/vlog"
)

// Config map keys.
const (
	KeyCipherName      = "CipherName"
	KeyDigestName      = "DigestName"
	KeyHMAC            = "HMAC"
	KeyKey             = "Key"
	KeyIV              = "IV"
	KeyEmission        = "Emission"
	KeyStartPacket     = "StartPacket"
	KeyDefaultDataSize = "DefaultDataSize"
	KeyHideMethod      = "HideMethod"
	KeySyncMethod      = "SyncMethod"
	KeyAggressiveness  = "Aggressiveness"
	KeySigma           = "Sigma"
	KeyDelayFrames     = "DelayFrames"
	KeyLogging         = "Logging"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
	typeHex    = "hex"
)

// Default variable values, spec.md section 6.
const (
	defaultCipherName      = "ARCFOUR"
	defaultDigestName      = "SHA1"
	defaultStartPacket     = 1
	defaultDefaultDataSize = 512
	defaultHideMethod      = "Identity"
	defaultSyncMethod      = "ResHeader"
	defaultAggressiveness  = 5
	defaultSigma           = 1.0
	defaultLogLevel        = vlog.Error
)

// Variables describes the variables that can be used for vorbistego session
// control. These structs provide the name and type of a variable, a
// function for updating this variable in a Config, and a function for
// validating the value of the variable, the way revid/config.Variables
// does for revid.Config.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyCipherName,
		Type:   "enum:ARCFOUR",
		Update: func(c *Config, v string) { c.CipherName = v },
		Validate: func(c *Config) {
			if c.CipherName == "" {
				c.LogInvalidField(KeyCipherName, defaultCipherName)
				c.CipherName = defaultCipherName
			}
		},
	},
	{
		Name:   KeyDigestName,
		Type:   "enum:SHA1",
		Update: func(c *Config, v string) { c.DigestName = v },
		Validate: func(c *Config) {
			if c.DigestName == "" {
				c.LogInvalidField(KeyDigestName, defaultDigestName)
				c.DigestName = defaultDigestName
			}
		},
	},
	{
		Name:   KeyHMAC,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.HMAC = parseBool(KeyHMAC, v, c) },
	},
	{
		Name: KeyKey,
		Type: typeHex,
		Update: func(c *Config, v string) {
			b, err := hex.DecodeString(v)
			if err != nil {
				c.Logger.Log(vlog.Warning, "invalid Key param", "value", v)
				return
			}
			c.Key = b
		},
	},
	{
		Name: KeyIV,
		Type: typeHex,
		Update: func(c *Config, v string) {
			b, err := hex.DecodeString(v)
			if err != nil {
				c.Logger.Log(vlog.Warning, "invalid IV param", "value", v)
				return
			}
			c.IV = b
		},
		Validate: func(c *Config) {
			if len(c.IV) != 16 {
				c.LogInvalidField(KeyIV, "built-in default")
				c.IV = nil
			}
		},
	},
	{
		Name:   KeyEmission,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Emission = parseUint64(KeyEmission, v, c) },
	},
	{
		Name:   KeyStartPacket,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.StartPacket = parseUint64(KeyStartPacket, v, c) },
		Validate: func(c *Config) {
			if c.StartPacket == 0 {
				c.LogInvalidField(KeyStartPacket, defaultStartPacket)
				c.StartPacket = defaultStartPacket
			}
		},
	},
	{
		Name:   KeyDefaultDataSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.DefaultDataSize = parseInt(KeyDefaultDataSize, v, c) },
		Validate: func(c *Config) {
			if c.DefaultDataSize <= 0 {
				c.LogInvalidField(KeyDefaultDataSize, defaultDefaultDataSize)
				c.DefaultDataSize = defaultDefaultDataSize
			}
		},
	},
	{
		Name:   KeyHideMethod,
		Type:   "enum:Identity,Parity",
		Update: func(c *Config, v string) { c.HideMethod = v },
		Validate: func(c *Config) {
			switch c.HideMethod {
			case "Identity", "Parity":
			default:
				c.LogInvalidField(KeyHideMethod, defaultHideMethod)
				c.HideMethod = defaultHideMethod
			}
		},
	},
	{
		Name:   KeySyncMethod,
		Type:   "enum:ResHeader,ISS",
		Update: func(c *Config, v string) { c.SyncMethod = v },
		Validate: func(c *Config) {
			switch c.SyncMethod {
			case "ResHeader", "ISS":
			default:
				c.LogInvalidField(KeySyncMethod, defaultSyncMethod)
				c.SyncMethod = defaultSyncMethod
			}
		},
	},
	{
		Name:   KeyAggressiveness,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Aggressiveness = parseInt(KeyAggressiveness, v, c) },
		Validate: func(c *Config) {
			if c.Aggressiveness < 1 || c.Aggressiveness > 10 {
				c.LogInvalidField(KeyAggressiveness, defaultAggressiveness)
				c.Aggressiveness = defaultAggressiveness
			}
		},
	},
	{
		Name: KeySigma,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.Logger.Log(vlog.Warning, "invalid Sigma param", "value", v)
				return
			}
			c.Sigma = f
		},
		Validate: func(c *Config) {
			if c.SyncMethod == "ISS" && c.Sigma <= 0 {
				c.LogInvalidField(KeySigma, defaultSigma)
				c.Sigma = defaultSigma
			}
		},
	},
	{
		Name:   KeyDelayFrames,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.DelayFrames = parseInt(KeyDelayFrames, v, c) },
		Validate: func(c *Config) {
			if c.DelayFrames < 0 {
				c.LogInvalidField(KeyDelayFrames, 0)
				c.DelayFrames = 0
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "debug":
				c.LogLevel = vlog.Debug
			case "info":
				c.LogLevel = vlog.Info
			case "warning":
				c.LogLevel = vlog.Warning
			case "error":
				c.LogLevel = vlog.Error
			case "fatal":
				c.LogLevel = vlog.Fatal
			default:
				c.Logger.Log(vlog.Warning, "invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case vlog.Debug, vlog.Info, vlog.Warning, vlog.Error, vlog.Fatal:
			default:
				c.LogLevel = defaultLogLevel
			}
		},
	},
}

func parseInt(n, v string, c *Config) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		c.Logger.Log(vlog.Warning, "expected integer for param "+n, "value", v)
	}
	return i
}

func parseUint64(n, v string, c *Config) uint64 {
	u, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Log(vlog.Warning, "expected unsigned int for param "+n, "value", v)
	}
	return u
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Log(vlog.Warning, "expected bool for param "+n, "value", v)
	}
	return
}
