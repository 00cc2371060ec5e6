package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf})

	logger.Debug("debug suppressed")
	if got := buf.Len(); got != 0 {
		t.Fatalf("expected debug output to be suppressed, got %d bytes", got)
	}

	logger.Info("visible message", "path", "a.sql")
	out := buf.String()
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "path=a.sql") {
		t.Fatalf("expected text log line, got %q", out)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Verbose: true, Writer: &buf})

	logger.Debug("debug visible")
	if out := buf.String(); !strings.Contains(out, "debug visible") {
		t.Fatalf("expected debug output when verbose, got %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Format: FormatJSON})
	logger.Info("parsed", "errors", 2)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "parsed" || record["errors"] != float64(2) {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "TEXT": FormatText, " json ": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	slogLogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger := NewSlogAdapter(slogLogger)

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", "err", "boom")
	logger.With("component", "parser").Info("scoped")

	out := buf.String()
	for _, want := range []string{"debug message", "key=value", "info message", "warn message", "err=boom", "component=parser"} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, want to contain %q", out, want)
		}
	}
}

func TestSlogAdapterNilFallsBackToDefault(t *testing.T) {
	if NewSlogAdapter(nil).logger == nil {
		t.Fatalf("expected default logger")
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(*NopLogger); !ok {
		t.Fatalf("OrNop(nil) should return a NopLogger")
	}
	adapter := NewSlogAdapter(slog.Default())
	if OrNop(adapter) != Logger(adapter) {
		t.Fatalf("OrNop should pass through non-nil loggers")
	}
	nop := NewNopLogger()
	nop.Debug("ignored")
	if nop.With("k", "v") != Logger(nop) {
		t.Fatalf("NopLogger.With should return itself")
	}
}
