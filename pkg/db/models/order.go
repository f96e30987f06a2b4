package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/organimart/organimart-backend/pkg/db/types"
	"github.com/organimart/organimart-backend/pkg/enums"
)

// Order is an immutable snapshot of a cart at checkout time. SellerIDs
// denormalizes the distinct seller profiles across the items so seller
// order views avoid a join through order_items.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'PENDING'"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax             decimal.Decimal   `gorm:"column:tax;type:numeric(10,2);not null"`
	Shipping        decimal.Decimal   `gorm:"column:shipping;type:numeric(10,2);not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	ShippingAddress *string           `gorm:"column:shipping_address"`
	BillingAddress  *string           `gorm:"column:billing_address"`
	PaymentMethod   *string           `gorm:"column:payment_method"`
	Notes           *string           `gorm:"column:notes"`
	SellerIDs       dbtypes.UUIDArray `gorm:"column:seller_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
