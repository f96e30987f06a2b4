package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/types"
)

// BuyerProfile carries purchasing details for BUYER accounts.
type BuyerProfile struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName     *string        `gorm:"column:company_name"`
	ShippingAddress *types.Address `gorm:"column:shipping_address;type:address_t"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
