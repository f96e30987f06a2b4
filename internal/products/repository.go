package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new listing.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a product regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByID loads a product visible to buyers.
func (r *Repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("SellerProfile").
		Preload("Category").
		First(&product, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Save persists all mutable listing columns.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Deactivate soft deletes the listing.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// SetStock overwrites the absolute stock quantity.
func (r *Repository) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity).Error
}

// SetFeatured flips the featured flag.
func (r *Repository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_featured", featured).Error
}

// DecrementStock conditionally reserves stock. It returns false without
// changing the row when the remaining quantity is insufficient.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RestoreStock returns previously reserved quantity to the listing.
func (r *Repository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}

// ListFilter narrows the public catalog browse.
type ListFilter struct {
	CategoryID      *uuid.UUID
	SellerProfileID *uuid.UUID
	Search          string
	Organic         *bool
	FairTrade       *bool
	GMOFree         *bool
	FeaturedOnly    bool
	IncludeInactive bool
	Limit           int
	Cursor          *pagination.Cursor
}

// List returns catalog rows matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(filter.Limit)
	normalized := pagination.NormalizeLimit(filter.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.SellerProfileID != nil {
		query = query.Where("seller_profile_id = ?", *filter.SellerProfileID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Organic != nil {
		query = query.Where("is_organic = ?", *filter.Organic)
	}
	if filter.FairTrade != nil {
		query = query.Where("is_fair_trade = ?", *filter.FairTrade)
	}
	if filter.GMOFree != nil {
		query = query.Where("is_gmo_free = ?", *filter.GMOFree)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// ListFeatured returns up to limit active featured products.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error
	return rows, err
}
