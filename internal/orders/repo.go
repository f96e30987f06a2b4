package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
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

// Create inserts the order together with its frozen items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus overwrites the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status *enums.OrderStatus
	Limit  int
	Cursor *pagination.Cursor
}

// ListForBuyer returns the buyer's orders, newest first.
func (r *Repository) ListForBuyer(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Order, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("user_id = ?", userID)
	return r.list(ctx, query, filter)
}

// ListForSeller returns orders containing the seller's items, newest first.
// The seller_ids array column carries a GIN index for this lookup.
func (r *Repository) ListForSeller(ctx context.Context, sellerProfileID uuid.UUID, filter ListFilter) ([]models.Order, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items", "seller_profile_id = ?", sellerProfileID).
		Where("? = ANY(seller_ids)", sellerProfileID)
	return r.list(ctx, query, filter)
}

func (r *Repository) list(ctx context.Context, query *gorm.DB, filter ListFilter) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(filter.Limit)
	normalized := pagination.NormalizeLimit(filter.Limit)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.Order
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
