package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_Log(t *testing.T) {
	logger := New(LevelInfo, &bytes.Buffer{})

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "scraping site",
			fields:  Fields{"host": "example.nemtilmeld.dk"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "retrying fetch",
			want:    false, // won't log (below INFO)
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "site failed",
			err:     errors.New("listing unreachable"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger.output = &buf

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	logger.Warn("event skipped", Fields{"url": "https://example.dk/123/"}, errors.New("no start time"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not one JSON object: %v (got %q)", err, buf.String())
	}

	if entry.Level != "WARN" {
		t.Errorf("Level = %q, want WARN", entry.Level)
	}
	if entry.Message != "event skipped" {
		t.Errorf("Message = %q, want \"event skipped\"", entry.Message)
	}
	if entry.Error != "no start time" {
		t.Errorf("Error = %q, want \"no start time\"", entry.Error)
	}
	if entry.Fields["url"] != "https://example.dk/123/" {
		t.Errorf("Fields[url] = %v", entry.Fields["url"])
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("entries should be newline-terminated")
	}
}

func TestLogEntry_JSON(t *testing.T) {
	entry := LogEntry{
		Timestamp: "2026-01-01T00:00:00Z",
		Level:     "INFO",
		Message:   "run complete",
		Fields: Fields{
			"sites":  "3",
			"events": "17",
		},
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded LogEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.Message != entry.Message {
		t.Errorf("Message = %v, want %v", decoded.Message, entry.Message)
	}
}

func TestCounters(t *testing.T) {
	c := NewCounters()

	c.Incr("events.emitted")
	c.Incr("events.emitted")
	c.Incr("events.emitted")
	c.Add("fetch.pages", 5)

	snap := c.Snapshot()
	if snap["events.emitted"] != 3 {
		t.Errorf("Counter = %v, want 3", snap["events.emitted"])
	}
	if snap["fetch.pages"] != 5 {
		t.Errorf("Counter = %v, want 5", snap["fetch.pages"])
	}

	// Snapshot must be a copy, not the live map.
	snap["events.emitted"] = 99
	if c.Snapshot()["events.emitted"] != 3 {
		t.Error("Snapshot() returned the live map")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	// Package-level functions must not panic.
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil, nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	IncrCounter("test")
	AddCounter("test", 2)

	snapshot := CountersSnapshot()
	if snapshot["test"] != 3 {
		t.Errorf("CountersSnapshot()[test] = %v, want 3", snapshot["test"])
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			logged := buf.Len() > 0
			if logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}
