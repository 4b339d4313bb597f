package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"citoyens/internal/models"

	"github.com/google/uuid"
)

// MockCitizenRepository is an in-memory implementation of CitizenRepository.
type MockCitizenRepository struct {
	citizens map[string]models.Citizen
	mu       sync.RWMutex
}

// NewMockCitizenRepository creates a new instance of MockCitizenRepository.
func NewMockCitizenRepository() *MockCitizenRepository {
	return &MockCitizenRepository{
		citizens: make(map[string]models.Citizen),
	}
}

// nciTaken must be called with the lock held.
func (r *MockCitizenRepository) nciTaken(nci, exceptID string) bool {
	for id, c := range r.citizens {
		if c.NCI == nci && id != exceptID {
			return true
		}
	}
	return false
}

// Create adds a new citizen.
func (r *MockCitizenRepository) Create(_ context.Context, c *models.Citizen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nciTaken(c.NCI, "") {
		return fmt.Errorf("citizen with NCI %s: %w", c.NCI, ErrDuplicateKey)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.citizens[c.ID] = *c
	return nil
}

// GetByID returns a citizen by its ID.
func (r *MockCitizenRepository) GetByID(_ context.Context, id string) (*models.Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.citizens[id]
	if !ok {
		return nil, fmt.Errorf("citizen with ID %s: %w", id, ErrRecordNotFound)
	}
	return &c, nil
}

// FindOneByNCI returns the citizen holding nci.
func (r *MockCitizenRepository) FindOneByNCI(_ context.Context, nci string) (*models.Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.citizens {
		if c.NCI == nci {
			found := c
			return &found, nil
		}
	}
	return nil, fmt.Errorf("citizen with NCI %s: %w", nci, ErrRecordNotFound)
}

// List returns a window of citizens, newest first.
func (r *MockCitizenRepository) List(_ context.Context, limit, offset int) ([]models.Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Citizen, 0, len(r.citizens))
	for _, c := range r.citizens {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []models.Citizen{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Update replaces an existing citizen.
func (r *MockCitizenRepository) Update(_ context.Context, c *models.Citizen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.citizens[c.ID]
	if !ok {
		return fmt.Errorf("citizen with ID %s: %w", c.ID, ErrRecordNotFound)
	}
	if r.nciTaken(c.NCI, c.ID) {
		return fmt.Errorf("citizen with NCI %s: %w", c.NCI, ErrDuplicateKey)
	}
	updated := *c
	updated.CreatedAt = existing.CreatedAt
	r.citizens[c.ID] = updated
	return nil
}

// Delete removes a citizen by its ID.
func (r *MockCitizenRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.citizens, id)
	return nil
}
