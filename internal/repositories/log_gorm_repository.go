package repositories

import (
	"context"
	"fmt"

	"citoyens/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLogLimit caps a log query when the filter sets no limit.
const DefaultLogLimit = 100

// GORMLogRepository is a GORM implementation of LogRepository.
type GORMLogRepository struct {
	db *gorm.DB
}

// NewGORMLogRepository creates a new instance of GORMLogRepository.
func NewGORMLogRepository(db *gorm.DB) *GORMLogRepository {
	return &GORMLogRepository{db: db}
}

// Append stores a log entry.
func (r *GORMLogRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	// timestamps compare as text on sqlite, so every stored and queried time is UTC
	entry.Timestamp = entry.Timestamp.UTC()
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// List retrieves log entries matching the filter.
func (r *GORMLogRepository) List(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.LogEntry{})
	if filter.Service != "" {
		q = q.Where("service = ?", filter.Service)
	}
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}
	if filter.Start != nil {
		q = q.Where("timestamp >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		q = q.Where("timestamp <= ?", filter.End.UTC())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	entries := []models.LogEntry{}
	if err := q.Order("timestamp desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	return entries, nil
}

// AutoMigrate creates the citizen and log tables and their indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Citizen{}, &models.LogEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
