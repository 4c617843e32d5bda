package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestDefaultLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)
	logger.SetLevel(WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown", Fields{"frames": 97})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written below warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown frames=97") {
		t.Errorf("missing warn line, got %q", out)
	}
}

func TestDefaultLoggerFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf).WithFields(Fields{"b": 2, "a": 1})

	logger.Error(errors.New("boom"), "failed", Fields{"c": 3})

	want := "[ERROR] failed: boom a=1 b=2 c=3\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestDefaultLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), ContextFieldsKey{}, Fields{"file": "room.wav"})

	NewWriterLogger(&buf).WithContext(ctx).Info("decoded")

	if !strings.Contains(buf.String(), "file=room.wav") {
		t.Errorf("context fields missing: %q", buf.String())
	}
}

func TestLogrusLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusWriterLogger(&buf, true)
	logger.SetLevel(DebugLevel)

	logger.WithFields(Fields{"component": "blind_rt60"}).Debug("iteration", Fields{"itr": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "iteration" || entry["component"] != "blind_rt60" || entry["itr"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["level"] != "debug" {
		t.Errorf("level = %v, want debug", entry["level"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", DebugLevel, true},
		{" WARNING ", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"verbose", InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("global logger = %T, want *NoOpLogger", GetGlobalLogger())
	}
}

func TestDefaultLoggerRoutesAndColors(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := &DefaultLogger{
		out:       log.New(&out, "", 0),
		errOut:    log.New(&errOut, "", 0),
		level:     DebugLevel,
		useColors: true,
	}

	logger.Info("frames")
	logger.Warn("clipped")

	if out.String() != "[INFO] frames\n" {
		t.Errorf("stdout = %q, want uncolored info line", out.String())
	}
	want := ColorYellow + "[WARN] clipped" + ColorReset + "\n"
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestDefaultLoggerWithFieldsLeavesParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWriterLogger(&buf)
	_ = parent.WithFields(Fields{"file": "room.wav"})

	parent.Info("done")

	if buf.String() != "[INFO] done\n" {
		t.Errorf("parent picked up child fields: %q", buf.String())
	}
}
