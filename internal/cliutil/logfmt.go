package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Paintersrp/tether/internal/supervise"
)

// LogRecord represents a structured worker log event ready for JSON
// encoding.
type LogRecord struct {
	Timestamp time.Time `json:"ts"`
	Worker    string    `json:"worker"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
	Source    string    `json:"source"`
}

// NewLogRecord converts a supervise event into a structured log record.
func NewLogRecord(event supervise.Event) LogRecord {
	level := event.Level
	if level == "" {
		if inferred := inferLogLevel(event.Message); inferred != "" {
			level = inferred
		} else {
			level = "info"
		}
	}
	source := event.Source
	if source == "" {
		source = supervise.LogSourceStdout
	}
	return LogRecord{
		Timestamp: event.Timestamp,
		Worker:    event.Worker,
		Level:     level,
		Message:   event.Message,
		Source:    source,
	}
}

var levelTokenPattern = regexp.MustCompile(`(?i)\b(error|warn|info)\b`)

func inferLogLevel(message string) string {
	matches := levelTokenPattern.FindStringSubmatch(message)
	if len(matches) < 2 {
		return ""
	}
	switch strings.ToLower(matches[1]) {
	case "error":
		return "error"
	case "warn":
		return "warn"
	case "info":
		return "info"
	default:
		return ""
	}
}

// EncodeLogEvent encodes a log event to JSON, reporting errors to stderr
// if needed.
func EncodeLogEvent(enc *json.Encoder, stderr io.Writer, event supervise.Event) {
	if enc == nil {
		return
	}
	record := NewLogRecord(event)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := enc.Encode(&record); err != nil {
		fmt.Fprintf(stderr, "error: encode log: %v\n", err)
	}
}

// HumanFormatter renders worker events as single colored lines for
// terminal consumption.
type HumanFormatter struct {
	colorize bool
	redact   bool

	warnColor   *color.Color
	errorColor  *color.Color
	workerColor *color.Color
}

// NewHumanFormatter constructs a formatter. Colors are only applied when
// colorize is true; redact masks known secret patterns in messages.
func NewHumanFormatter(colorize, redact bool) *HumanFormatter {
	return &HumanFormatter{
		colorize:    colorize,
		redact:      redact,
		warnColor:   color.New(color.FgYellow),
		errorColor:  color.New(color.FgRed),
		workerColor: color.New(color.FgCyan),
	}
}

// Format renders one event as a line without a trailing newline.
func (f *HumanFormatter) Format(event supervise.Event) string {
	record := NewLogRecord(event)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	message := record.Message
	if f.redact {
		message = RedactSecrets(message)
	}

	worker := record.Worker
	if f.colorize {
		worker = f.workerColor.Sprint(worker)
		switch record.Level {
		case "warn":
			message = f.warnColor.Sprint(message)
		case "error":
			message = f.errorColor.Sprint(message)
		}
	}
	return fmt.Sprintf("%s %s | %s", record.Timestamp.Format("15:04:05.000"), worker, message)
}
