package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerCategory joins sellers to the categories they list in.
type SellerCategory struct {
	SellerProfileID uuid.UUID `gorm:"column:seller_profile_id;type:uuid;primaryKey"`
	CategoryID      uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
