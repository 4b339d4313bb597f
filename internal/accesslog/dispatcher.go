package accesslog

import (
	"context"
	"sync"
	"time"

	"citoyens/internal/models"

	"github.com/sirupsen/logrus"
)

const sinkWriteTimeout = 5 * time.Second

// Sink persists access log entries.
type Sink interface {
	Name() string
	Write(ctx context.Context, entry models.LogEntry) error
}

// Dispatcher queues entries in memory and hands them to the sinks from a single worker.
// Enqueue never blocks; when the buffer is full the entry is dropped.
type Dispatcher struct {
	entries chan models.LogEntry
	sinks   []Sink
	log     logrus.FieldLogger
	onDrop  func()

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with the given buffer size.
func NewDispatcher(buffer int, log logrus.FieldLogger, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		entries: make(chan models.LogEntry, buffer),
		sinks:   sinks,
		log:     log,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// OnDrop registers a callback invoked for each dropped entry. Call before the first Enqueue.
func (d *Dispatcher) OnDrop(fn func()) {
	d.onDrop = fn
}

// Enqueue offers an entry to the queue and reports whether it was accepted.
func (d *Dispatcher) Enqueue(entry models.LogEntry) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.entries <- entry:
		return true
	default:
		if d.onDrop != nil {
			d.onDrop()
		}
		d.log.WithField("url", entry.URL).Warn("access log queue full, entry dropped")
		return false
	}
}

// Close stops accepting entries and waits for the queued ones to be written or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.entries)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for entry := range d.entries {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
			if err := sink.Write(ctx, entry); err != nil {
				d.log.WithError(err).WithField("sink", sink.Name()).Error("failed to write access log entry")
			}
			cancel()
		}
	}
}
