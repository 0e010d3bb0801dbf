/*
NAME
  writer_logger.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package vlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// names gives each level the short tag ausocean's logging.Logger
// implementations print.
var names = map[int8]string{
	Debug:   "DEBUG",
	Info:    "INFO",
	Warning: "WARNING",
	Error:   "ERROR",
	Fatal:   "FATAL",
}

// WriterLogger is a minimal concrete Logger that formats leveled,
// structured log lines and writes them to an underlying io.Writer (a
// lumberjack.Logger in the cmd/ binaries, rolling the file by size and
// age). Suppress silences everything below Error, mirroring the
// cloud-var-driven "Suppress" toggle revid/config exposes.
type WriterLogger struct {
	mu       sync.Mutex
	w        io.Writer
	level    int8
	suppress bool
}

// NewWriterLogger returns a WriterLogger writing to w at the given minimum
// level.
func NewWriterLogger(level int8, w io.Writer) *WriterLogger {
	return &WriterLogger{w: w, level: level}
}

// SetLevel changes the minimum level that will be written.
func (l *WriterLogger) SetLevel(level int8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetSuppress toggles suppression of everything below Error.
func (l *WriterLogger) SetSuppress(suppress bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suppress = suppress
}

// Log writes message at level, followed by any params as key/value pairs,
// unless level is below the logger's threshold (or, under suppression,
// below Error).
func (l *WriterLogger) Log(level int8, message string, params ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	if l.suppress && level < Error {
		return
	}

	name, ok := names[level]
	if !ok {
		name = "UNKNOWN"
	}

	line := fmt.Sprintf("%s %s %s", time.Now().UTC().Format(time.RFC3339), name, message)
	for i := 0; i+1 < len(params); i += 2 {
		line += fmt.Sprintf(" %v=%v", params[i], params[i+1])
	}
	fmt.Fprintln(l.w, line)

	if level == Fatal {
		os.Exit(1)
	}
}
