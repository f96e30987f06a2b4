package rfq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

// Repository exposes RFQ and quote persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an rfq repo bound to the provided GORM DB.
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

// Create inserts a new request.
func (r *Repository) Create(ctx context.Context, rfq *models.RFQ) error {
	if rfq.ID == uuid.Nil {
		rfq.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rfq).Error
}

// FindByID loads a request with its quotes and their seller profiles.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RFQ, error) {
	var rfq models.RFQ
	err := r.db.WithContext(ctx).
		Preload("Quotes").
		Preload("Quotes.SellerProfile").
		First(&rfq, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

// Save persists the buyer-editable request columns.
func (r *Repository) Save(ctx context.Context, rfq *models.RFQ) error {
	return r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Where("id = ?", rfq.ID).
		Updates(map[string]any{
			"category_id":  rfq.CategoryID,
			"product_name": rfq.ProductName,
			"description":  rfq.Description,
			"quantity":     rfq.Quantity,
			"unit":         rfq.Unit,
			"expires_at":   rfq.ExpiresAt,
		}).Error
}

// UpdateStatus overwrites the request status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RFQStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the request and, via cascade, its quotes.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.RFQ{}, "id = ?", id).Error
}

// MarkExpired labels every stale OPEN or QUOTED request and reports how
// many rows changed. Read paths treat expires_at as authoritative either way.
func (r *Repository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Where("status IN ? AND expires_at < ?", []enums.RFQStatus{enums.RFQStatusOpen, enums.RFQStatusQuoted}, now).
		Update("status", enums.RFQStatusExpired)
	return result.RowsAffected, result.Error
}

// ListFilter narrows RFQ listings.
type ListFilter struct {
	UserID     *uuid.UUID
	CategoryID *uuid.UUID
	Status     *enums.RFQStatus
	OpenOnly   bool
	ActiveAt   *time.Time
	Limit      int
	Cursor     *pagination.Cursor
}

// List returns requests matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.RFQ, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(filter.Limit)
	normalized := pagination.NormalizeLimit(filter.Limit)

	query := r.db.WithContext(ctx).Model(&models.RFQ{}).Preload("Quotes")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OpenOnly {
		query = query.Where("status IN ?", []enums.RFQStatus{enums.RFQStatusOpen, enums.RFQStatusQuoted})
	}
	if filter.ActiveAt != nil {
		query = query.Where("expires_at > ?", *filter.ActiveAt)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.RFQ
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

// FindQuote loads one quote with its request.
func (r *Repository) FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("RFQ").
		Preload("SellerProfile").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// FindQuoteForSeller loads the seller's quote on a request, if any.
func (r *Repository) FindQuoteForSeller(ctx context.Context, rfqID, sellerProfileID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Where("rfq_id = ? AND seller_profile_id = ?", rfqID, sellerProfileID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateQuote inserts a seller quote.
func (r *Repository) CreateQuote(ctx context.Context, quote *models.Quote) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(quote).Error
}

// SaveQuote persists the seller-editable quote columns.
func (r *Repository) SaveQuote(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", quote.ID).
		Updates(map[string]any{
			"price_per_unit": quote.PricePerUnit,
			"quantity":       quote.Quantity,
			"unit":           quote.Unit,
			"delivery_days":  quote.DeliveryDays,
			"notes":          quote.Notes,
		}).Error
}

// MarkQuoteSelected flags the winning quote.
func (r *Repository) MarkQuoteSelected(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", id).
		Update("is_selected", true).Error
}

// DeleteQuote removes one quote.
func (r *Repository) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Quote{}, "id = ?", id).Error
}

// CountQuotes returns how many quotes a request holds.
func (r *Repository) CountQuotes(ctx context.Context, rfqID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("rfq_id = ?", rfqID).
		Count(&count).Error
	return count, err
}

// ListQuotesForSeller returns the seller's quotes, newest first.
func (r *Repository) ListQuotesForSeller(ctx context.Context, sellerProfileID uuid.UUID) ([]models.Quote, error) {
	var rows []models.Quote
	err := r.db.WithContext(ctx).
		Preload("RFQ").
		Where("seller_profile_id = ?", sellerProfileID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
