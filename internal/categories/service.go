package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
)

// Service exposes public reads and admin-managed writes for the taxonomy.
type Service struct {
	repo *Repository
}

// NewService builds a categories service.
func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &Service{repo: repo}, nil
}

// UpsertCategoryInput carries admin-editable category fields.
type UpsertCategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// List returns the full taxonomy.
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return rows, nil
}

// Get loads one category.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return category, nil
}

// Create adds a taxonomy entry with a unique name.
func (s *Service) Create(ctx context.Context, input UpsertCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return category, nil
}

// Update renames or redescribes a taxonomy entry.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpsertCategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if existing, err := s.repo.FindByName(ctx, name); err == nil && existing.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
	}

	category.Name = name
	category.Description = input.Description
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	return category, nil
}

// Delete removes a category that no product references.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category has products")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return nil
}
