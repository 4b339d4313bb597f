package repositories

import (
	"context"
	"sort"
	"sync"

	"citoyens/internal/models"

	"github.com/google/uuid"
)

// MockLogRepository is an in-memory implementation of LogRepository.
type MockLogRepository struct {
	entries []models.LogEntry
	mu      sync.RWMutex
}

// NewMockLogRepository creates a new instance of MockLogRepository.
func NewMockLogRepository() *MockLogRepository {
	return &MockLogRepository{}
}

// Append stores a log entry.
func (r *MockLogRepository) Append(_ context.Context, entry *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// List returns entries matching filter, newest first.
func (r *MockLogRepository) List(_ context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.LogEntry{}
	for _, e := range r.entries {
		if filter.Service != "" && e.Service != filter.Service {
			continue
		}
		if filter.Level != "" && e.Level != filter.Level {
			continue
		}
		if filter.Start != nil && e.Timestamp.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && e.Timestamp.After(*filter.End) {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
