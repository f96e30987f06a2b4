package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem freezes a product line at checkout. Unit and total prices are
// copied from the product so later price edits never touch placed orders.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SellerProfileID uuid.UUID       `gorm:"column:seller_profile_id;type:uuid;not null;index"`
	ProductName     string          `gorm:"column:product_name;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
