package repositories

import (
	"context"
	"errors"

	"citoyens/internal/models"
)

var (
	// ErrRecordNotFound is returned when no document matches a lookup.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a write violates the unique NCI index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// CitizenRepository defines the interface for citizen data access.
type CitizenRepository interface {
	// Create inserts c and assigns its ID.
	Create(ctx context.Context, c *models.Citizen) error
	GetByID(ctx context.Context, id string) (*models.Citizen, error)
	FindOneByNCI(ctx context.Context, nci string) (*models.Citizen, error)
	// List returns citizens ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]models.Citizen, error)
	Update(ctx context.Context, c *models.Citizen) error
	// Delete does not fail when the id is unknown.
	Delete(ctx context.Context, id string) error
}
