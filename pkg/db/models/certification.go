package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/enums"
)

// Certification is a seller claim pending admin review. Once VERIFIED the
// row is frozen against seller edits.
type Certification struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerProfileID uuid.UUID                 `gorm:"column:seller_profile_id;type:uuid;not null;index"`
	Name            string                    `gorm:"column:name;not null"`
	IssuingBody     string                    `gorm:"column:issuing_body;not null"`
	CertificateID   *string                   `gorm:"column:certificate_id"`
	IssuedAt        *time.Time                `gorm:"column:issued_at"`
	ExpiresAt       *time.Time                `gorm:"column:expires_at"`
	DocumentURL     *string                   `gorm:"column:document_url"`
	Status          enums.CertificationStatus `gorm:"column:status;type:certification_status;not null;default:'PENDING'"`
	Notes           *string                   `gorm:"column:notes"`
	VerifiedBy      *uuid.UUID                `gorm:"column:verified_by;type:uuid"`
	VerifiedAt      *time.Time                `gorm:"column:verified_at"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime"`

	SellerProfile *SellerProfile `gorm:"foreignKey:SellerProfileID"`
}
