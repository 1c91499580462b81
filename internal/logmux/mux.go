package logmux

import (
	"fmt"
	"sync"
	"time"

	"github.com/Paintersrp/tether/internal/supervise"
)

// Mux fans in log events from multiple workers and delivers them via a
// bounded channel. When downstream consumers cannot keep up and the
// output buffer would overflow, the mux drops entries and emits a
// synthesized warning event carrying the number of discarded lines.
type Mux struct {
	out chan supervise.Event

	mu     sync.Mutex
	drops  map[string]int
	inputs sync.WaitGroup
}

// New constructs a mux backed by a channel of the provided size. A size
// of zero results in a minimally buffered channel.
func New(size int) *Mux {
	if size <= 0 {
		size = 1
	}
	return &Mux{
		out:   make(chan supervise.Event, size),
		drops: make(map[string]int),
	}
}

// Output exposes the muxed event channel.
func (m *Mux) Output() <-chan supervise.Event {
	return m.out
}

// Add registers a new source channel. The mux consumes events until the
// source channel is closed.
func (m *Mux) Add(source <-chan supervise.Event) {
	if source == nil {
		return
	}
	m.inputs.Add(1)
	go func() {
		defer m.inputs.Done()
		for evt := range source {
			m.deliver(normalize(evt))
		}
	}()
}

// Close waits for all sources to be drained, emits any pending drop
// counts, and closes the output channel.
func (m *Mux) Close() {
	m.inputs.Wait()
	for worker, count := range m.collectDrops() {
		m.out <- dropEvent(worker, count)
	}
	close(m.out)
}

func (m *Mux) deliver(evt supervise.Event) {
	if !m.flushPending(evt.Worker) {
		m.recordDrops(evt.Worker, 1)
		return
	}
	if m.trySend(evt) {
		return
	}
	m.recordDrops(evt.Worker, 1)
}

func (m *Mux) flushPending(worker string) bool {
	for {
		count := m.takeDrops(worker)
		if count == 0 {
			return true
		}
		if m.trySend(dropEvent(worker, count)) {
			continue
		}
		m.recordDrops(worker, count)
		return false
	}
}

func (m *Mux) takeDrops(worker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := m.drops[worker]
	if count != 0 {
		delete(m.drops, worker)
	}
	return count
}

func (m *Mux) recordDrops(worker string, count int) {
	if count <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drops[worker] += count
}

func (m *Mux) collectDrops() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.drops) == 0 {
		return nil
	}
	dup := make(map[string]int, len(m.drops))
	for worker, count := range m.drops {
		if count == 0 {
			continue
		}
		dup[worker] = count
	}
	m.drops = make(map[string]int)
	return dup
}

func (m *Mux) trySend(evt supervise.Event) bool {
	select {
	case m.out <- evt:
		return true
	default:
		return false
	}
}

func normalize(evt supervise.Event) supervise.Event {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	if evt.Source == "" {
		evt.Source = supervise.LogSourceStdout
	}
	if evt.Level == "" {
		if evt.Source == supervise.LogSourceStderr {
			evt.Level = "warn"
		} else {
			evt.Level = "info"
		}
	}
	return evt
}

func dropEvent(worker string, count int) supervise.Event {
	return supervise.Event{
		Timestamp: time.Now(),
		Worker:    worker,
		Message:   fmt.Sprintf("dropped=%d", count),
		Level:     "warn",
		Source:    supervise.LogSourceSystem,
	}
}
