package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/enums"
)

// RFQ is a buyer request for quotes. ExpiresAt governs the request
// lifecycle; status EXPIRED is only written by the housekeeping sweep.
type RFQ struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RFQNumber   string            `gorm:"column:rfq_number;not null;uniqueIndex"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	CategoryID  *uuid.UUID        `gorm:"column:category_id;type:uuid;index"`
	ProductName string            `gorm:"column:product_name;not null"`
	Description *string           `gorm:"column:description"`
	Quantity    int               `gorm:"column:quantity;not null"`
	Unit        enums.ProductUnit `gorm:"column:unit;type:product_unit;not null"`
	Status      enums.RFQStatus   `gorm:"column:status;type:rfq_status;not null;default:'OPEN'"`
	ExpiresAt   time.Time         `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Category *Category `gorm:"foreignKey:CategoryID"`
	Quotes   []Quote   `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
}

// Expired reports whether the request has passed its deadline. The stored
// status may lag behind this check.
func (r RFQ) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
