package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/types"
)

// SellerProfile carries the storefront identity for SELLER accounts.
// IsVerified flips true when an admin activates the seller.
type SellerProfile struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName    string         `gorm:"column:business_name;not null"`
	Description     *string        `gorm:"column:description"`
	BusinessAddress *types.Address `gorm:"column:business_address;type:address_t"`
	IsVerified      bool           `gorm:"column:is_verified;not null;default:false"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`

	Categories []Category `gorm:"many2many:seller_categories;joinForeignKey:SellerProfileID;joinReferences:CategoryID"`
}
