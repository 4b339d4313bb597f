package services

import (
	"context"
	"strconv"

	"citoyens/internal/models"
	"citoyens/internal/repositories"
)

// LogService records and queries access logs.
type LogService struct {
	repo repositories.LogRepository
}

// NewLogService creates a new LogService.
func NewLogService(repo repositories.LogRepository) *LogService {
	return &LogService{repo: repo}
}

// Record persists a single access log entry.
func (s *LogService) Record(ctx context.Context, entry models.LogEntry) error {
	if err := s.repo.Append(ctx, &entry); err != nil {
		return storeError("record log entry", err)
	}
	return nil
}

// List returns log entries matching filter, newest first.
func (s *LogService) List(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list log entries", err)
	}
	return entries, nil
}

// Stats aggregates the entries matching filter.
func (s *LogService) Stats(ctx context.Context, filter models.LogFilter) (*models.LogStats, error) {
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &models.LogStats{
		Total:       len(entries),
		TopActions:  map[string]int{},
		StatusCodes: map[string]int{},
	}

	var totalResponseTime int64
	for _, e := range entries {
		if e.Success {
			stats.Success++
		}
		switch e.Level {
		case "error":
			stats.Errors++
		case "warning":
			stats.Warnings++
		}
		totalResponseTime += e.ResponseTimeMs
		if e.Action != "" {
			stats.TopActions[e.Action]++
		}
		if e.StatusCode != 0 {
			stats.StatusCodes[strconv.Itoa(e.StatusCode)]++
		}
	}

	if len(entries) > 0 {
		// rounded mean
		n := int64(len(entries))
		stats.AverageResponseTime = (totalResponseTime + n/2) / n
	}
	return stats, nil
}
