package supervise

import "time"

// Log sources attached to worker events.
const (
	LogSourceStdout = "stdout"
	LogSourceStderr = "stderr"
	LogSourceSystem = "system"
)

// Event is a single log line or lifecycle note emitted by a worker.
type Event struct {
	Worker    string
	Timestamp time.Time
	Level     string
	Message   string
	Source    string
}
