// Package store opens the configured backend and exposes its repositories.
package store

import (
	"context"
	"fmt"
	"time"

	"citoyens/internal/config"
	"citoyens/internal/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Store bundles the repositories of one backend.
type Store struct {
	Name     string
	Citizens repositories.CitizenRepository
	Logs     repositories.LogRepository
	close    func(ctx context.Context) error
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend named by cfg.StoreDriver: sqlite, postgres, mongo or memory.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return openGORM(cfg.StoreDriver, sqlite.Open(cfg.DatabaseDSN))
	case "postgres":
		return openGORM(cfg.StoreDriver, postgres.Open(cfg.DatabaseDSN))
	case "mongo", "mongodb":
		return openMongo(ctx, cfg)
	case "memory":
		log.Warn("using the in-memory store, data is lost on restart")
		return &Store{
			Name:     "memory",
			Citizens: repositories.NewMockCitizenRepository(),
			Logs:     repositories.NewMockLogRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openGORM(name string, dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", name, err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}

	return &Store{
		Name:     name,
		Citizens: repositories.NewGORMCitizenRepository(db),
		Logs:     repositories.NewGORMLogRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	citizens := repositories.NewMongoCitizenRepository(db)
	if err := citizens.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Name:     "mongo",
		Citizens: citizens,
		Logs:     repositories.NewMongoLogRepository(db),
		close:    client.Disconnect,
	}, nil
}
