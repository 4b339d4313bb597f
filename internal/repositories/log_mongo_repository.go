package repositories

import (
	"context"
	"fmt"

	"citoyens/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLogRepository stores access logs in the "logs" collection.
type MongoLogRepository struct {
	coll *mongo.Collection
}

// NewMongoLogRepository creates a new instance of MongoLogRepository.
func NewMongoLogRepository(db *mongo.Database) *MongoLogRepository {
	return &MongoLogRepository{coll: db.Collection(models.LogEntry{}.TableName())}
}

// Append stores a log entry document.
func (r *MongoLogRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// List retrieves log entries matching the filter.
func (r *MongoLogRepository) List(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	query := bson.M{}
	if filter.Service != "" {
		query["service"] = filter.Service
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}
	if filter.Start != nil || filter.End != nil {
		ts := bson.M{}
		if filter.Start != nil {
			ts["$gte"] = *filter.Start
		}
		if filter.End != nil {
			ts["$lte"] = *filter.End
		}
		query["timestamp"] = ts
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	entries := []models.LogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode log entries: %w", err)
	}
	return entries, nil
}
