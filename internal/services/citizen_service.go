package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"citoyens/internal/models"
	"citoyens/internal/repositories"
	"citoyens/internal/validation"
)

// CitizenService handles business logic related to citizens.
type CitizenService struct {
	repo repositories.CitizenRepository
	now  func() time.Time
}

// Option configures a CitizenService.
type Option func(*CitizenService)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *CitizenService) {
		s.now = now
	}
}

// NewCitizenService creates a new CitizenService.
func NewCitizenService(repo repositories.CitizenRepository, opts ...Option) *CitizenService {
	s := &CitizenService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalize(c *models.Citizen) {
	c.LastName = strings.TrimSpace(c.LastName)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.FatherName = strings.TrimSpace(c.FatherName)
	c.MotherName = strings.TrimSpace(c.MotherName)
	c.NCI = strings.TrimSpace(c.NCI)
}

func validate(c *models.Citizen) error {
	errs := validation.ValidateCitizen(validation.Payload{
		LastName:   c.LastName,
		FirstName:  c.FirstName,
		FatherName: c.FatherName,
		MotherName: c.MotherName,
		NCI:        c.NCI,
		Photo:      c.Photo,
	})
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Save validates and registers a new citizen.
//
// The NCI lookup and the insert are two separate store calls; two concurrent saves of the
// same NCI can both pass the lookup. The repository unique index rejects the second insert.
func (s *CitizenService) Save(ctx context.Context, input models.CitizenInput) (*models.Citizen, error) {
	c := &models.Citizen{
		LastName:   input.LastName,
		FirstName:  input.FirstName,
		FatherName: input.FatherName,
		MotherName: input.MotherName,
		NCI:        input.NCI,
		Photo:      input.Photo,
	}
	normalize(c)
	if err := validate(c); err != nil {
		return nil, err
	}

	existing, err := s.FindByNCI(ctx, c.NCI)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateNCI
	}

	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateNCI
		}
		return nil, storeError("create citizen", err)
	}
	return c, nil
}

// Update merges patch into the citizen identified by id, re-validates the whole record and persists it.
func (s *CitizenService) Update(ctx context.Context, id string, patch models.CitizenPatch) (*models.Citizen, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	patch.Apply(c)
	normalize(c)
	if err := validate(c); err != nil {
		return nil, err
	}

	holder, err := s.FindByNCI(ctx, c.NCI)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.ID != c.ID {
		return nil, ErrDuplicateNCI
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRecordNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrDuplicateNCI
		}
		return nil, storeError("update citizen", err)
	}
	return c, nil
}

// FindByNCI returns the citizen holding nci, or nil when there is none.
func (s *CitizenService) FindByNCI(ctx context.Context, nci string) (*models.Citizen, error) {
	c, err := s.repo.FindOneByNCI(ctx, strings.TrimSpace(nci))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find citizen by NCI", err)
	}
	return c, nil
}

// FindByID returns the citizen with the given id, or nil when there is none.
func (s *CitizenService) FindByID(ctx context.Context, id string) (*models.Citizen, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find citizen by ID", err)
	}
	return c, nil
}

// FindAll returns a window of citizens ordered by creation time, newest first.
// Offset paging can skip or repeat rows when citizens are added or removed between pages.
func (s *CitizenService) FindAll(ctx context.Context, limit, offset int) ([]models.Citizen, error) {
	citizens, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, storeError("list citizens", err)
	}
	return citizens, nil
}

// DeleteByID removes a citizen. Deleting an id that no longer exists succeeds.
func (s *CitizenService) DeleteByID(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete citizen", err)
	}
	return nil
}
