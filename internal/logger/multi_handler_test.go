package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandlerFanOut(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)
	log := slog.New(multi)

	log.Info("hello")

	if !strings.Contains(a.String(), "hello") {
		t.Error("first handler did not receive record")
	}
	if !strings.Contains(b.String(), "hello") {
		t.Error("second handler did not receive record")
	}
}

func TestMultiHandlerSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(nil, slog.NewJSONHandler(&buf, nil), nil)
	log := slog.New(multi)

	log.Info("resilient")

	if !strings.Contains(buf.String(), "resilient") {
		t.Error("record lost when nil handlers present")
	}
}

func TestMultiHandlerRespectsLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	multi := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(multi)

	log.Debug("verbose detail")

	if !strings.Contains(debugBuf.String(), "verbose detail") {
		t.Error("debug handler should receive debug record")
	}
	if warnBuf.Len() != 0 {
		t.Error("warn handler should not receive debug record")
	}
}
