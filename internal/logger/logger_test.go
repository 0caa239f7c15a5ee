package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "returns empty when limit non-positive", input: "hello world", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates and adds ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "counts runes not bytes", input: "résumé review", limit: 6, expect: "résumé..."},
		{name: "trims surrounding whitespace", input: "  spaced  ", limit: 5, expect: "space..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		json, debug bool
		level       zapcore.Level
	}{
		{json: false, debug: false, level: zapcore.InfoLevel},
		{json: true, debug: true, level: zapcore.DebugLevel},
	} {
		l, err := New(tc.json, tc.debug)
		if err != nil {
			t.Fatalf("New(%v, %v): %v", tc.json, tc.debug, err)
		}
		if !l.Core().Enabled(tc.level) {
			t.Fatalf("expected level %v to be enabled", tc.level)
		}
		if tc.level == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatal("debug must be disabled without the debug flag")
		}
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected no-op logger for nil input")
	}

	core, observed := observer.New(zapcore.InfoLevel)
	l := zap.New(core)
	OrNop(l).Info("kept")

	if observed.Len() != 1 {
		t.Fatalf("expected the provided logger to be returned, got %d entries", observed.Len())
	}
}
