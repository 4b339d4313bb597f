package accesslog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"citoyens/internal/models"
)

// FileSink appends one line per entry to a flat file.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) path for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open access log file: %w", err)
	}
	return &FileSink{file: f}, nil
}

func (s *FileSink) Name() string { return "file" }

// Write appends the formatted entry.
func (s *FileSink) Write(_ context.Context, entry models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.WriteString(FormatLine(entry)); err != nil {
		return fmt.Errorf("failed to append access log line: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Recorder persists entries, typically a services.LogService.
type Recorder interface {
	Record(ctx context.Context, entry models.LogEntry) error
}

// StoreSink writes entries to the logs collection.
type StoreSink struct {
	recorder Recorder
}

// NewStoreSink wraps recorder as a Sink.
func NewStoreSink(recorder Recorder) *StoreSink {
	return &StoreSink{recorder: recorder}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Write(ctx context.Context, entry models.LogEntry) error {
	return s.recorder.Record(ctx, entry)
}

// Publisher ships encoded entries to a message broker.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// BrokerSink forwards entries to a broker; a consumer on the other side persists them.
type BrokerSink struct {
	publisher Publisher
}

// NewBrokerSink wraps publisher as a Sink.
func NewBrokerSink(publisher Publisher) *BrokerSink {
	return &BrokerSink{publisher: publisher}
}

func (s *BrokerSink) Name() string { return "broker" }

func (s *BrokerSink) Write(ctx context.Context, entry models.LogEntry) error {
	body, err := Encode(entry)
	if err != nil {
		return fmt.Errorf("failed to encode access log entry: %w", err)
	}
	return s.publisher.Publish(ctx, body)
}

// Replay decodes a broker message and writes it to sink.
func Replay(ctx context.Context, sink Sink, body []byte) error {
	entry, err := Decode(body)
	if err != nil {
		return err
	}
	return sink.Write(ctx, entry)
}
