package cliutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Paintersrp/tether/internal/supervise"
)

func TestEncodeLogEventInfersLevel(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{name: "errorToken", message: "[ERROR] failed to start", expected: "error"},
		{name: "warnToken", message: "WARN worker requires attention", expected: "warn"},
		{name: "infoToken", message: "info: worker ready", expected: "info"},
		{name: "noTokenDefaults", message: "worker started", expected: "info"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			var errBuf bytes.Buffer

			event := supervise.Event{
				Timestamp: time.Unix(0, 0),
				Worker:    "app",
				Message:   tc.message,
			}

			EncodeLogEvent(json.NewEncoder(&out), &errBuf, event)

			if errBuf.Len() != 0 {
				t.Fatalf("unexpected stderr output: %s", errBuf.String())
			}

			var record LogRecord
			if err := json.Unmarshal(out.Bytes(), &record); err != nil {
				t.Fatalf("decode record: %v", err)
			}
			if record.Level != tc.expected {
				t.Fatalf("expected level %q, got %q", tc.expected, record.Level)
			}
			if record.Worker != "app" {
				t.Fatalf("expected worker name to carry through, got %q", record.Worker)
			}
			if record.Source != supervise.LogSourceStdout {
				t.Fatalf("expected default source, got %q", record.Source)
			}
		})
	}
}

func TestHumanFormatterPlain(t *testing.T) {
	formatter := NewHumanFormatter(false, false)
	line := formatter.Format(supervise.Event{
		Timestamp: time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC),
		Worker:    "profiler",
		Message:   "sampling started",
	})

	if !strings.Contains(line, "profiler") {
		t.Fatalf("expected worker name in line %q", line)
	}
	if !strings.Contains(line, "sampling started") {
		t.Fatalf("expected message in line %q", line)
	}
	if !strings.HasPrefix(line, "12:30:45") {
		t.Fatalf("expected timestamp prefix in line %q", line)
	}
}

func TestHumanFormatterRedacts(t *testing.T) {
	formatter := NewHumanFormatter(false, true)
	line := formatter.Format(supervise.Event{
		Worker:  "profiler",
		Message: "API_TOKEN=super-secret upload enabled",
	})

	if strings.Contains(line, "super-secret") {
		t.Fatalf("expected secret to be masked in line %q", line)
	}
	if !strings.Contains(line, "[redacted]") {
		t.Fatalf("expected redaction marker in line %q", line)
	}
}

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "templateVar",
			input: "connecting with ${UPLOAD_TOKEN}",
			want:  "connecting with ${[redacted]}",
		},
		{
			name:  "keyAssignment",
			input: "PASSWORD=hunter2 ready",
			want:  "PASSWORD=[redacted] ready",
		},
		{
			name:  "untouched",
			input: "no secrets here",
			want:  "no secrets here",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RedactSecrets(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
