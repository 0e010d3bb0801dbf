package vlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(Warning, &buf)

	l.Log(Debug, "should not appear")
	l.Log(Warning, "should appear", "key", "value")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("Debug line leaked through a Warning threshold: %q", out)
	}
	if !strings.Contains(out, "should appear") || !strings.Contains(out, "key=value") {
		t.Fatalf("Warning line missing or malformed: %q", out)
	}
}

func TestWriterLoggerSuppressHidesBelowError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(Debug, &buf)
	l.SetSuppress(true)

	l.Log(Warning, "warning line")
	l.Log(Error, "error line")

	out := buf.String()
	if strings.Contains(out, "warning line") {
		t.Fatalf("Warning line was not suppressed: %q", out)
	}
	if !strings.Contains(out, "error line") {
		t.Fatalf("Error line missing: %q", out)
	}
}
