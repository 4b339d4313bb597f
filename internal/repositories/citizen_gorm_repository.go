package repositories

import (
	"context"
	"errors"
	"fmt"

	"citoyens/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCitizenRepository is a GORM implementation of CitizenRepository.
// The gorm.DB must be opened with TranslateError enabled so unique violations surface as gorm.ErrDuplicatedKey.
type GORMCitizenRepository struct {
	db *gorm.DB
}

// NewGORMCitizenRepository creates a new instance of GORMCitizenRepository.
func NewGORMCitizenRepository(db *gorm.DB) *GORMCitizenRepository {
	return &GORMCitizenRepository{
		db: db,
	}
}

// Create inserts a new citizen in the database.
func (r *GORMCitizenRepository) Create(ctx context.Context, c *models.Citizen) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("citizen with NCI %s: %w", c.NCI, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create citizen: %w", err)
	}
	return nil
}

// GetByID retrieves a single citizen by its ID.
func (r *GORMCitizenRepository) GetByID(ctx context.Context, id string) (*models.Citizen, error) {
	var c models.Citizen
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("citizen with ID %s: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get citizen by ID %s: %w", id, err)
	}
	return &c, nil
}

// FindOneByNCI retrieves the citizen holding the given NCI.
func (r *GORMCitizenRepository) FindOneByNCI(ctx context.Context, nci string) (*models.Citizen, error) {
	var c models.Citizen
	if err := r.db.WithContext(ctx).Where("nci = ?", nci).Limit(1).Take(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("citizen with NCI %s: %w", nci, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get citizen by NCI %s: %w", nci, err)
	}
	return &c, nil
}

// List retrieves a window of citizens, newest first.
func (r *GORMCitizenRepository) List(ctx context.Context, limit, offset int) ([]models.Citizen, error) {
	citizens := []models.Citizen{}
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&citizens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list citizens: %w", err)
	}
	return citizens, nil
}

// Update overwrites the mutable fields of an existing citizen.
// updated_at is written from c; an explicit map value keeps GORM from stamping its own time.
func (r *GORMCitizenRepository) Update(ctx context.Context, c *models.Citizen) error {
	res := r.db.WithContext(ctx).
		Model(&models.Citizen{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"last_name":   c.LastName,
			"first_name":  c.FirstName,
			"father_name": c.FatherName,
			"mother_name": c.MotherName,
			"nci":         c.NCI,
			"photo":       c.Photo,
			"updated_at":  c.UpdatedAt,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("citizen with NCI %s: %w", c.NCI, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to update citizen: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("citizen with ID %s: %w", c.ID, ErrRecordNotFound)
	}
	return nil
}

// Delete removes a citizen by its ID. Deleting a missing row is not an error.
func (r *GORMCitizenRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Citizen{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete citizen: %w", err)
	}
	return nil
}
