package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/organimart/organimart-backend/pkg/enums"
)

// Quote is a seller response to an RFQ. The unique index on
// (rfq_id, seller_profile_id) enforces one quote per seller per request.
type Quote struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RFQID           uuid.UUID         `gorm:"column:rfq_id;type:uuid;not null;uniqueIndex:idx_quote_rfq_seller"`
	SellerProfileID uuid.UUID         `gorm:"column:seller_profile_id;type:uuid;not null;uniqueIndex:idx_quote_rfq_seller"`
	PricePerUnit    decimal.Decimal   `gorm:"column:price_per_unit;type:numeric(10,2);not null"`
	Quantity        int               `gorm:"column:quantity;not null"`
	Unit            enums.ProductUnit `gorm:"column:unit;type:product_unit;not null"`
	DeliveryDays    *int              `gorm:"column:delivery_days"`
	Notes           *string           `gorm:"column:notes"`
	IsSelected      bool              `gorm:"column:is_selected;not null;default:false"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	RFQ           *RFQ           `gorm:"foreignKey:RFQID"`
	SellerProfile *SellerProfile `gorm:"foreignKey:SellerProfileID"`
}

// TotalPrice is the quoted line total.
func (q Quote) TotalPrice() decimal.Decimal {
	return q.PricePerUnit.Mul(decimal.NewFromInt(int64(q.Quantity)))
}
