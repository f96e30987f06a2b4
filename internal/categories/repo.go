package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
)

// Repository exposes category persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a categories repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindByID loads a single category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName performs a case-insensitive name lookup.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category.
func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(category).Error
}

// Update persists name and description changes.
func (r *Repository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":        category.Name,
			"description": category.Description,
		}).Error
}

// Delete removes the category row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

// CountProducts returns how many products reference the category.
func (r *Repository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count, err
}
