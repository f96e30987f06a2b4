package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductCertification links a product to a verified certification. The
// unique index keeps each pair linked at most once.
type ProductCertification struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_certification"`
	CertificationID uuid.UUID `gorm:"column:certification_id;type:uuid;not null;uniqueIndex:idx_product_certification"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`

	Product       *Product       `gorm:"foreignKey:ProductID"`
	Certification *Certification `gorm:"foreignKey:CertificationID"`
}
