package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/organimart/organimart-backend/pkg/enums"
)

// Product represents a seller listing. Rows are soft deleted by clearing
// IsActive so order items keep a valid reference.
type Product struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerProfileID  uuid.UUID         `gorm:"column:seller_profile_id;type:uuid;not null;index"`
	CategoryID       *uuid.UUID        `gorm:"column:category_id;type:uuid;index"`
	Name             string            `gorm:"column:name;not null"`
	Description      *string           `gorm:"column:description"`
	Unit             enums.ProductUnit `gorm:"column:unit;type:product_unit;not null"`
	RetailPrice      decimal.Decimal   `gorm:"column:retail_price;type:numeric(10,2);not null"`
	WholesalePrice   *decimal.Decimal  `gorm:"column:wholesale_price;type:numeric(10,2)"`
	StockQuantity    int               `gorm:"column:stock_quantity;not null;default:0"`
	MinOrderQuantity int               `gorm:"column:min_order_quantity;not null;default:1"`
	IsActive         bool              `gorm:"column:is_active;not null;default:true"`
	IsFeatured       bool              `gorm:"column:is_featured;not null;default:false"`
	IsOrganic        bool              `gorm:"column:is_organic;not null;default:false"`
	IsFairTrade      bool              `gorm:"column:is_fair_trade;not null;default:false"`
	IsGMOFree        bool              `gorm:"column:is_gmo_free;not null;default:false"`
	Images           pq.StringArray    `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	SellerProfile *SellerProfile `gorm:"foreignKey:SellerProfileID"`
	Category      *Category      `gorm:"foreignKey:CategoryID"`
}
