package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput carries the seller-supplied listing fields.
type CreateProductInput struct {
	CategoryID       *uuid.UUID       `json:"category_id,omitempty"`
	Name             string           `json:"name" validate:"required"`
	Description      *string          `json:"description,omitempty"`
	Unit             string           `json:"unit" validate:"required"`
	RetailPrice      decimal.Decimal  `json:"retail_price"`
	WholesalePrice   *decimal.Decimal `json:"wholesale_price,omitempty"`
	StockQuantity    int              `json:"stock_quantity"`
	MinOrderQuantity int              `json:"min_order_quantity"`
	IsOrganic        bool             `json:"is_organic"`
	IsFairTrade      bool             `json:"is_fair_trade"`
	IsGMOFree        bool             `json:"is_gmo_free"`
	Images           []string         `json:"images,omitempty"`
}

// UpdateProductInput applies partial changes to an existing listing.
type UpdateProductInput struct {
	CategoryID       *uuid.UUID       `json:"category_id,omitempty"`
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Unit             *string          `json:"unit,omitempty"`
	RetailPrice      *decimal.Decimal `json:"retail_price,omitempty"`
	WholesalePrice   *decimal.Decimal `json:"wholesale_price,omitempty"`
	MinOrderQuantity *int             `json:"min_order_quantity,omitempty"`
	IsOrganic        *bool            `json:"is_organic,omitempty"`
	IsFairTrade      *bool            `json:"is_fair_trade,omitempty"`
	IsGMOFree        *bool            `json:"is_gmo_free,omitempty"`
	Images           *[]string        `json:"images,omitempty"`
}

// UpdateStockInput sets the absolute stock level for a listing.
type UpdateStockInput struct {
	StockQuantity int `json:"stock_quantity"`
}
