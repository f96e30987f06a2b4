package certifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/organimart/organimart-backend/pkg/db"
	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/outbox"
	"github.com/organimart/organimart-backend/pkg/outbox/payloads"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sellerProfileFinder interface {
	FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the certification review workflow: seller claims,
// admin verification, and product links.
type Service struct {
	repo     *Repository
	sellers  sellerProfileFinder
	products productFinder
	tx       txRunner
	outbox   outboxPublisher
}

// ServiceParams bundles the dependencies required to build a certifications service.
type ServiceParams struct {
	Repo     *Repository
	Sellers  sellerProfileFinder
	Products productFinder
	Tx       txRunner
	Outbox   outboxPublisher
}

// NewService builds a certifications service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("certifications repository required")
	}
	if params.Sellers == nil {
		return nil, fmt.Errorf("seller profile finder required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{
		repo:     params.Repo,
		sellers:  params.Sellers,
		products: params.Products,
		tx:       params.Tx,
		outbox:   params.Outbox,
	}, nil
}

// Create registers a seller claim for admin review.
func (s *Service) Create(ctx context.Context, sellerUserID uuid.UUID, input CreateCertificationInput) (*models.Certification, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	issuingBody := strings.TrimSpace(input.IssuingBody)
	if name == "" || issuingBody == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and issuing body are required")
	}

	cert := &models.Certification{
		SellerProfileID: profile.ID,
		Name:            name,
		IssuingBody:     issuingBody,
		CertificateID:   input.CertificateID,
		IssuedAt:        input.IssuedAt,
		ExpiresAt:       input.ExpiresAt,
		DocumentURL:     input.DocumentURL,
		Status:          enums.CertificationStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, cert); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create certification")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCertificationSubmitted,
			AggregateType: enums.AggregateCertification,
			AggregateID:   cert.ID,
			Actor:         buildActor(sellerUserID, enums.UserRoleSeller),
			Data: payloads.CertificationSubmittedEvent{
				CertificationID: cert.ID,
				SellerUserID:    sellerUserID,
				Name:            cert.Name,
				IssuingBody:     cert.IssuingBody,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

// ListMine returns the seller's own claims.
func (s *Service) ListMine(ctx context.Context, sellerUserID uuid.UUID, input ListInput) (*ListResult, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, err
	}
	filter.SellerProfileID = &profile.ID

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller certifications")
	}
	return buildListResult(rows, next), nil
}

// ListQueue returns the admin review queue, PENDING first by default.
func (s *Service) ListQueue(ctx context.Context, input ListInput) (*ListResult, error) {
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, err
	}
	if filter.Status == nil {
		pending := enums.CertificationStatusPending
		filter.Status = &pending
	}

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list certification queue")
	}
	return buildListResult(rows, next), nil
}

// Get returns one claim visible to the caller.
func (s *Service) Get(ctx context.Context, callerUserID uuid.UUID, callerRole enums.UserRole, certID uuid.UUID) (*models.Certification, error) {
	cert, err := s.findCertification(ctx, certID)
	if err != nil {
		return nil, err
	}

	switch {
	case callerRole == enums.UserRoleAdmin:
	case cert.SellerProfile != nil && cert.SellerProfile.UserID == callerUserID:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certification not found")
	}
	return cert, nil
}

// Update edits a claim still under review. Any edit drops the row back to
// PENDING and wipes the previous review so stale approvals never survive
// a content change. A VERIFIED claim is frozen outright.
func (s *Service) Update(ctx context.Context, sellerUserID, certID uuid.UUID, input UpdateCertificationInput) (*models.Certification, error) {
	cert, err := s.requireOwnedCertification(ctx, sellerUserID, certID)
	if err != nil {
		return nil, err
	}
	if cert.Status == enums.CertificationStatusVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "verified certification cannot be edited")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		cert.Name = name
	}
	if input.IssuingBody != nil {
		issuingBody := strings.TrimSpace(*input.IssuingBody)
		if issuingBody == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "issuing body is required")
		}
		cert.IssuingBody = issuingBody
	}
	if input.CertificateID != nil {
		cert.CertificateID = input.CertificateID
	}
	if input.IssuedAt != nil {
		cert.IssuedAt = input.IssuedAt
	}
	if input.ExpiresAt != nil {
		cert.ExpiresAt = input.ExpiresAt
	}
	if input.DocumentURL != nil {
		cert.DocumentURL = input.DocumentURL
	}

	cert.Status = enums.CertificationStatusPending
	cert.Notes = nil
	cert.VerifiedBy = nil
	cert.VerifiedAt = nil

	if err := s.repo.Save(ctx, cert); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update certification")
	}
	return cert, nil
}

// Delete removes a claim that no product references.
func (s *Service) Delete(ctx context.Context, sellerUserID, certID uuid.UUID) error {
	cert, err := s.requireOwnedCertification(ctx, sellerUserID, certID)
	if err != nil {
		return err
	}

	links, err := s.repo.CountLinks(ctx, cert.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count certification links")
	}
	if links > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "certification is linked to products").
			WithDetails(map[string]any{"linked_products": links})
	}

	if err := s.repo.Delete(ctx, cert.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete certification")
	}
	return nil
}

// LinkProduct attaches a verified claim to one of the seller's own products.
func (s *Service) LinkProduct(ctx context.Context, sellerUserID, certID uuid.UUID, input LinkProductInput) (*models.ProductCertification, error) {
	cert, err := s.requireOwnedCertification(ctx, sellerUserID, certID)
	if err != nil {
		return nil, err
	}
	if cert.Status != enums.CertificationStatusVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "certification is not verified")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	// Another seller's product reads as not-found rather than forbidden,
	// so callers cannot tell whether the id exists.
	if product.SellerProfileID != cert.SellerProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if _, err := s.repo.FindLink(ctx, product.ID, cert.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already linked to this certification")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing link")
	}

	link := &models.ProductCertification{ProductID: product.ID, CertificationID: cert.ID}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_product_certification") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already linked to this certification")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link product")
	}
	return link, nil
}

// UnlinkProduct detaches a claim from one of the seller's products.
func (s *Service) UnlinkProduct(ctx context.Context, sellerUserID, certID, productID uuid.UUID) error {
	cert, err := s.requireOwnedCertification(ctx, sellerUserID, certID)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindLink(ctx, productID, cert.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load link")
	}
	if err := s.repo.DeleteLink(ctx, productID, cert.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unlink product")
	}
	return nil
}

// ListForProduct returns the verified claims shown on a product page.
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.Certification, error) {
	rows, err := s.repo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list product certifications")
	}
	return rows, nil
}

// Review records an admin decision and notifies the owning seller.
func (s *Service) Review(ctx context.Context, adminUserID, certID uuid.UUID, input ReviewInput) (*models.Certification, error) {
	status, notes, err := parseReview(input.Status, input.Notes)
	if err != nil {
		return nil, err
	}

	cert, err := s.findCertification(ctx, certID)
	if err != nil {
		return nil, err
	}

	reviewedAt := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.review(ctx, tx, cert, status, adminUserID, reviewedAt, notes)
	})
	if err != nil {
		return nil, err
	}

	cert.Status = status
	cert.Notes = notes
	cert.VerifiedBy = &adminUserID
	cert.VerifiedAt = &reviewedAt
	return cert, nil
}

// BulkReview applies one decision to several claims in a single
// transaction. Unknown ids fail the whole batch before any write.
func (s *Service) BulkReview(ctx context.Context, adminUserID uuid.UUID, input BulkReviewInput) (int, error) {
	status, notes, err := parseReview(input.Status, input.Notes)
	if err != nil {
		return 0, err
	}
	if len(input.CertificationIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "certification ids are required")
	}

	ids := dedupe(input.CertificationIDs)
	certs, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load certifications")
	}
	if len(certs) != len(ids) {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "one or more certifications not found").
			WithDetails(map[string]any{"requested": len(ids), "found": len(certs)})
	}

	reviewedAt := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range certs {
			if err := s.review(ctx, tx, &certs[i], status, adminUserID, reviewedAt, notes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(certs), nil
}

func (s *Service) review(ctx context.Context, tx *gorm.DB, cert *models.Certification, status enums.CertificationStatus, adminUserID uuid.UUID, reviewedAt time.Time, notes *string) error {
	if err := s.repo.WithTx(tx).SetReview(ctx, cert.ID, status, adminUserID, reviewedAt, notes); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review certification")
	}

	sellerUserID := uuid.Nil
	if cert.SellerProfile != nil {
		sellerUserID = cert.SellerProfile.UserID
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCertificationReviewed,
		AggregateType: enums.AggregateCertification,
		AggregateID:   cert.ID,
		Actor:         buildActor(adminUserID, enums.UserRoleAdmin),
		Data: payloads.CertificationReviewedEvent{
			CertificationID: cert.ID,
			SellerUserID:    sellerUserID,
			Name:            cert.Name,
			Status:          status,
			Notes:           notes,
		},
	})
}

func (s *Service) findCertification(ctx context.Context, certID uuid.UUID) (*models.Certification, error) {
	cert, err := s.repo.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load certification")
	}
	return cert, nil
}

func (s *Service) requireOwnedCertification(ctx context.Context, sellerUserID, certID uuid.UUID) (*models.Certification, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	cert, err := s.findCertification(ctx, certID)
	if err != nil {
		return nil, err
	}
	if cert.SellerProfileID != profile.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certification not found")
	}
	return cert, nil
}

func (s *Service) requireSeller(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	profile, err := s.sellers.FindSellerProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller profile")
	}
	return profile, nil
}

func parseReview(rawStatus string, notes *string) (enums.CertificationStatus, *string, error) {
	status, err := enums.ParseCertificationStatus(rawStatus)
	if err != nil || !status.IsReviewOutcome() {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "review status must be VERIFIED or REJECTED")
	}
	return status, notes, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: string(role)}
}

func buildListFilter(input ListInput) (ListFilter, error) {
	filter := ListFilter{Limit: input.Limit}
	if input.Status != "" {
		status, err := enums.ParseCertificationStatus(input.Status)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	filter.Cursor = cursor
	return filter, nil
}

func buildListResult(rows []models.Certification, next *pagination.Cursor) *ListResult {
	result := &ListResult{Certifications: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result
}
