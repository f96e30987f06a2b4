package certifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/db/models"
)

// CreateCertificationInput carries a seller's new claim.
type CreateCertificationInput struct {
	Name          string     `json:"name" validate:"required"`
	IssuingBody   string     `json:"issuing_body" validate:"required"`
	CertificateID *string    `json:"certificate_id,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DocumentURL   *string    `json:"document_url,omitempty" validate:"omitempty,url"`
}

// UpdateCertificationInput carries a partial edit; nil fields stay untouched.
type UpdateCertificationInput struct {
	Name          *string    `json:"name,omitempty"`
	IssuingBody   *string    `json:"issuing_body,omitempty"`
	CertificateID *string    `json:"certificate_id,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DocumentURL   *string    `json:"document_url,omitempty" validate:"omitempty,url"`
}

// ReviewInput carries an admin decision on one claim.
type ReviewInput struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// BulkReviewInput applies one decision to several claims at once.
type BulkReviewInput struct {
	CertificationIDs []uuid.UUID `json:"certification_ids" validate:"required,min=1"`
	Status           string      `json:"status" validate:"required"`
	Notes            *string     `json:"notes,omitempty"`
}

// LinkProductInput names the product a claim should attach to.
type LinkProductInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// ListInput narrows certification listings.
type ListInput struct {
	Status string
	Limit  int
	Cursor string
}

// ListResult carries a page of claims plus the next cursor.
type ListResult struct {
	Certifications []models.Certification
	NextCursor     string
}
