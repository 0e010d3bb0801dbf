/*
NAME
  vlog.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package vlog provides the logging interface threaded through every
// vorbistego session, and the tagged error type used across the crypto and
// steganographic layers in place of a C-style errno-plus-status-code
// convention.
package vlog

import (
	"fmt"

	"github.com/pkg/errors"
)

// Logging levels, matching the severities revid.Logger expects from its
// caller-supplied implementation.
const (
	Debug int8 = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is implemented by anything that can receive leveled, structured
// log lines. A concrete implementation is wired in by cmd/ binaries; core
// packages only depend on this interface.
type Logger interface {
	SetLevel(int8)
	Log(level int8, message string, params ...interface{})
}

// NopLogger discards everything. It is the zero-value default used by
// sessions that are not given an explicit Logger.
type NopLogger struct{}

func (NopLogger) SetLevel(int8)                                {}
func (NopLogger) Log(level int8, message string, params ...interface{}) {}

// Code classifies a vorbistego error, mirroring spec.md section 7.
type Code int

const (
	// InvalidArgument is returned for null/out-of-range parameters or
	// undersized buffers.
	InvalidArgument Code = iota
	// Unsupported is returned when a cipher or digest algorithm is not
	// whitelisted.
	Unsupported
	// BadMessage is returned for wire-format violations: bad SYNC, bad
	// emission id, bad packet id.
	BadMessage
	// CheckFail is returned when a packet's integrity digest does not
	// match.
	CheckFail
	// FrameSkip is returned when the current audio frame cannot safely
	// carry data.
	FrameSkip
	// SyncFail is returned when the chosen synchronization backend cannot
	// encode the intended bit in the current frame.
	SyncFail
	// EndOfStream is returned once a packet id of 0 has been observed.
	EndOfStream
	// Internal is returned for unexpected failures in underlying crypto
	// primitives.
	Internal
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid argument"
	case Unsupported:
		return "unsupported"
	case BadMessage:
		return "bad message"
	case CheckFail:
		return "integrity check failed"
	case FrameSkip:
		return "frame skip"
	case SyncFail:
		return "sync fail"
	case EndOfStream:
		return "end of stream"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a tagged error carrying a Code (spec.md section 7), an optional
// Consume byte count (how many bytes a BadMessage caller should discard
// before retrying), and a wrapped cause.
type Error struct {
	Code    Code
	Op      string
	Consume int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with a stack-traced cause via pkg/errors, unless
// msg is empty in which case no cause is attached.
func New(code Code, op, msg string) *Error {
	var err error
	if msg != "" {
		err = errors.New(msg)
	}
	return &Error{Code: code, Op: op, Err: err}
}

// Wrap attaches a Code and op to an existing cause, adding a stack trace via
// pkg/errors if cause does not already carry one.
func Wrap(code Code, op string, cause error) *Error {
	return &Error{Code: code, Op: op, Err: errors.WithStack(cause)}
}

// WithConsume is a convenience constructor for BadMessage errors that tell
// the caller how many bytes to discard before retrying (e.g. resync past a
// bad SYNC field).
func WithConsume(op, msg string, consume int) *Error {
	return &Error{Code: BadMessage, Op: op, Consume: consume, Err: errors.New(msg)}
}

// Is reports whether err is a *Error with the given code, unwrapping as
// needed.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
