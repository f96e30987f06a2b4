package rfq

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/organimart/organimart-backend/pkg/db/models"
)

// CreateRFQInput carries a buyer's new request for quotes.
type CreateRFQInput struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ProductName string     `json:"product_name" validate:"required"`
	Description *string    `json:"description,omitempty"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	Unit        string     `json:"unit" validate:"required"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateRFQInput carries a partial edit; nil fields stay untouched.
type UpdateRFQInput struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ProductName *string    `json:"product_name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CloseRFQInput optionally names the winning quote.
type CloseRFQInput struct {
	SelectedQuoteID *uuid.UUID `json:"selected_quote_id,omitempty"`
}

// CreateQuoteInput carries a seller's bid on a request.
type CreateQuoteInput struct {
	PricePerUnit decimal.Decimal `json:"price_per_unit" validate:"required"`
	Quantity     int             `json:"quantity" validate:"required,gt=0"`
	Unit         string          `json:"unit,omitempty"`
	DeliveryDays *int            `json:"delivery_days,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

// UpdateQuoteInput carries a partial quote revision.
type UpdateQuoteInput struct {
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	DeliveryDays *int             `json:"delivery_days,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// ListInput narrows request listings.
type ListInput struct {
	Status     string
	CategoryID string
	Limit      int
	Cursor     string
}

// ListResult carries a page of requests plus the next cursor.
type ListResult struct {
	RFQs       []models.RFQ
	NextCursor string
}

// View is a caller-scoped read of a request. For sellers who have not
// quoted, Quotes is nil and only the count survives.
type View struct {
	RFQ        *models.RFQ `json:"rfq"`
	QuoteCount int         `json:"quote_count"`
	Redacted   bool        `json:"redacted"`
}
