package certifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

// Repository exposes certification and product-link persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a certifications repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new claim.
func (r *Repository) Create(ctx context.Context, cert *models.Certification) error {
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(cert).Error
}

// FindByID loads one claim with its owning seller profile.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Certification, error) {
	var cert models.Certification
	err := r.db.WithContext(ctx).
		Preload("SellerProfile").
		First(&cert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindByIDs loads claims for a bulk review, seller profiles included.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Certification, error) {
	var rows []models.Certification
	err := r.db.WithContext(ctx).
		Preload("SellerProfile").
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

// Save persists the seller-editable columns and resets the review state.
func (r *Repository) Save(ctx context.Context, cert *models.Certification) error {
	return r.db.WithContext(ctx).
		Model(&models.Certification{}).
		Where("id = ?", cert.ID).
		Updates(map[string]any{
			"name":           cert.Name,
			"issuing_body":   cert.IssuingBody,
			"certificate_id": cert.CertificateID,
			"issued_at":      cert.IssuedAt,
			"expires_at":     cert.ExpiresAt,
			"document_url":   cert.DocumentURL,
			"status":         cert.Status,
			"notes":          cert.Notes,
			"verified_by":    cert.VerifiedBy,
			"verified_at":    cert.VerifiedAt,
		}).Error
}

// SetReview records an admin decision.
func (r *Repository) SetReview(ctx context.Context, id uuid.UUID, status enums.CertificationStatus, adminID uuid.UUID, reviewedAt time.Time, notes *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Certification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"verified_by": adminID,
			"verified_at": reviewedAt,
			"notes":       notes,
		}).Error
}

// Delete removes one claim.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Certification{}, "id = ?", id).Error
}

// ListFilter narrows certification listings.
type ListFilter struct {
	SellerProfileID *uuid.UUID
	Status          *enums.CertificationStatus
	Limit           int
	Cursor          *pagination.Cursor
}

// List returns claims matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Certification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(filter.Limit)
	normalized := pagination.NormalizeLimit(filter.Limit)

	query := r.db.WithContext(ctx).Model(&models.Certification{}).Preload("SellerProfile")
	if filter.SellerProfileID != nil {
		query = query.Where("seller_profile_id = ?", *filter.SellerProfileID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.Certification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// CountLinks reports how many products reference a claim.
func (r *Repository) CountLinks(ctx context.Context, certificationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductCertification{}).
		Where("certification_id = ?", certificationID).
		Count(&count).Error
	return count, err
}

// FindLink loads a product-certification pair, if present.
func (r *Repository) FindLink(ctx context.Context, productID, certificationID uuid.UUID) (*models.ProductCertification, error) {
	var link models.ProductCertification
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND certification_id = ?", productID, certificationID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// CreateLink attaches a claim to a product.
func (r *Repository) CreateLink(ctx context.Context, link *models.ProductCertification) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

// DeleteLink detaches a claim from a product.
func (r *Repository) DeleteLink(ctx context.Context, productID, certificationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ? AND certification_id = ?", productID, certificationID).
		Delete(&models.ProductCertification{}).Error
}

// ListForProduct returns the verified claims attached to a product.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.Certification, error) {
	var rows []models.Certification
	err := r.db.WithContext(ctx).
		Joins("JOIN product_certifications pc ON pc.certification_id = certifications.id").
		Where("pc.product_id = ? AND certifications.status = ?", productID, enums.CertificationStatusVerified).
		Order("certifications.created_at DESC").
		Find(&rows).Error
	return rows, err
}
