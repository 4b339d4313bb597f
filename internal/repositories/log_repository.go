package repositories

import (
	"context"

	"citoyens/internal/models"
)

// LogRepository defines the interface for access log persistence.
type LogRepository interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	// List returns entries matching filter, newest first.
	List(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error)
}
