// log/log_test.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		s     string
		level slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	} {
		if l := ParseLevel(tc.s); l != tc.level {
			t.Errorf("%q: got level %v, expected %v", tc.s, l, tc.level)
		}
	}
}

func TestLoggerLevelsAndCallstack(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, "info")

	lg.Debug("hidden")
	lg.Infof("visible %d", 42)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single log record, got %d: %s", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log record isn't valid JSON: %v", err)
	}
	if rec["msg"] != "visible 42" {
		t.Errorf("unexpected message %v", rec["msg"])
	}
	cs, ok := rec["callstack"].([]any)
	if !ok || len(cs) == 0 {
		t.Fatalf("expected callstack attribute, got %v", rec["callstack"])
	}
	if frame, ok := cs[0].(map[string]any); !ok || frame["file"] != "log_test.go" {
		t.Errorf("expected first frame in log_test.go, got %v", cs[0])
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, "debug").With(slog.String("aircraft", "c172"))
	lg.Debug("computing")

	if !strings.Contains(buf.String(), `"aircraft":"c172"`) {
		t.Errorf("expected attribute in output: %s", buf.String())
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger
	// None of these should panic.
	lg.Debug("debug")
	lg.Debugf("debug %d", 1)
	lg.Info("info")
	lg.Infof("info %d", 1)
	if lg.With("a", 1) != nil {
		t.Errorf("With on nil logger should return nil")
	}
}
