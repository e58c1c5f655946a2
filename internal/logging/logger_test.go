package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cwbudde/admrender/internal/logging"
)

func noColor() *bool {
	b := false
	return &b
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Output: &buf, Color: noColor()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("rendered target", slog.String(logging.FieldTarget, "Dialogue"), slog.Int(logging.FieldFrames, 48000))

	out := buf.String()
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
	if !strings.Contains(out, "INFO  rendered target") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "    - target: Dialogue\n") || !strings.Contains(out, "    - frames: 48000\n") {
		t.Fatalf("missing fields: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI codes: %q", out)
	}
}

func TestConsoleLoggerDebugIncludesCallerAndRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Output: &buf, Color: noColor()})
	if err != nil {
		t.Fatal(err)
	}
	logger, id := logging.WithRunID(logger)

	logger.Debug("block")
	logger.Info("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.Contains(lines[0], "logger_test.go:") {
		t.Fatalf("expected caller on debug line: %q", lines[0])
	}
	if !strings.Contains(buf.String(), "run_id: "+id) {
		t.Fatalf("debug output lacks run id: %q", buf.String())
	}
	if strings.Count(buf.String(), id) != 1 {
		t.Fatalf("run id should only appear on the debug record: %q", buf.String())
	}
}

func TestConsoleLoggerGroupsAndColor(t *testing.T) {
	var buf bytes.Buffer
	color := true
	logger, err := logging.New(logging.Options{Output: &buf, Color: &color})
	if err != nil {
		t.Fatal(err)
	}

	logger.WithGroup("gain").Warn("override", slog.Float64("db", -3.5), logging.Error(errors.New("bad")))

	out := buf.String()
	if !strings.Contains(out, "\x1b[33mWARN \x1b[0m") {
		t.Fatalf("expected coloured level: %q", out)
	}
	if !strings.Contains(out, "gain.db") || !strings.Contains(out, "-3.5") {
		t.Fatalf("missing grouped attr: %q", out)
	}
	if !strings.Contains(out, ": bad\n") {
		t.Fatalf("missing error: %q", out)
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "JSON", Level: "warn", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger, id := logging.WithRunID(logger)

	logger.Info("hidden")
	logger.Warn("target failed", slog.String(logging.FieldElementID, "AO_1001"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["msg"] != "target failed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry[logging.FieldRunID] != id || entry[logging.FieldElementID] != "AO_1001" {
		t.Fatalf("missing attributes: %v", entry)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a UUID: %v", id, err)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts: %v", entry)
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
	if _, err := logging.New(logging.Options{Level: "verbose"}); err == nil {
		t.Fatal("expected level error")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
