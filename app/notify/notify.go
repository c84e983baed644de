// Package notify is the single user-facing error channel. Callers decide what
// is worth reporting; sinks only deliver, never block and never fail the
// caller.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Sink interface {
	Notify(message string, detail error)
}

type Notification struct {
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

func newNotification(message string, detail error) Notification {
	n := Notification{Message: message, At: time.Now()}
	if detail != nil {
		n.Detail = detail.Error()
	}
	return n
}

// LogSink writes notifications to the structured log.
type LogSink struct{}

func (LogSink) Notify(message string, detail error) {
	slog.Error(message, "error", detail)
}

// Recorder keeps the most recent notifications in memory.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	entries  []Notification
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 50
	}
	return &Recorder{capacity: capacity}
}

func (r *Recorder) Notify(message string, detail error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, newNotification(message, detail))
	if overflow := len(r.entries) - r.capacity; overflow > 0 {
		r.entries = append(r.entries[:0:0], r.entries[overflow:]...)
	}
}

// Recent returns the recorded notifications, oldest first.
func (r *Recorder) Recent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := make([]Notification, len(r.entries))
	copy(recent, r.entries)
	return recent
}

// Multi delivers every notification to each sink in order.
type Multi []Sink

func (m Multi) Notify(message string, detail error) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(message, detail)
		}
	}
}
