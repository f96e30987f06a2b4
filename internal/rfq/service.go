package rfq

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

// defaultExpiry applies when the buyer leaves expires_at blank.
const defaultExpiry = 7 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sellerProfileFinder interface {
	FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

// Service exposes the request-for-quote negotiation flow.
type Service struct {
	repo    *Repository
	sellers sellerProfileFinder
	tx      txRunner
	outbox  outboxPublisher
}

// ServiceParams bundles the dependencies required to build an rfq service.
type ServiceParams struct {
	Repo    *Repository
	Sellers sellerProfileFinder
	Tx      txRunner
	Outbox  outboxPublisher
}

// NewService builds an rfq service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if params.Sellers == nil {
		return nil, fmt.Errorf("seller profile finder required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{
		repo:    params.Repo,
		sellers: params.Sellers,
		tx:      params.Tx,
		outbox:  params.Outbox,
	}, nil
}

// Create posts a buyer request. Seller fan-out happens asynchronously; the
// matching sellers are resolved when the event is consumed.
func (s *Service) Create(ctx context.Context, buyerUserID uuid.UUID, input CreateRFQInput) (*models.RFQ, error) {
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	unit, err := enums.ParseProductUnit(input.Unit)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
	}

	now := nowFunc()
	expiresAt := now.Add(defaultExpiry)
	if input.ExpiresAt != nil {
		expiresAt = input.ExpiresAt.UTC()
	}
	if !expiresAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	rfq := &models.RFQ{
		RFQNumber:   NewRFQNumber(now),
		UserID:      buyerUserID,
		CategoryID:  input.CategoryID,
		ProductName: name,
		Description: input.Description,
		Quantity:    input.Quantity,
		Unit:        unit,
		Status:      enums.RFQStatusOpen,
		ExpiresAt:   expiresAt,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, rfq); err != nil {
			if dbpkg.IsUniqueViolation(err, "rfq_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "rfq number collision, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rfq")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRFQCreated,
			AggregateType: enums.AggregateRFQ,
			AggregateID:   rfq.ID,
			Actor:         buildActor(buyerUserID, enums.UserRoleBuyer),
			Data: payloads.RFQCreatedEvent{
				RFQID:       rfq.ID,
				RFQNumber:   rfq.RFQNumber,
				BuyerUserID: buyerUserID,
				CategoryID:  rfq.CategoryID,
				ProductName: rfq.ProductName,
				Quantity:    rfq.Quantity,
				Unit:        rfq.Unit,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

// ListOpen returns requests sellers can still bid on. The expires_at
// comparison filters stale rows even when the sweep has not relabeled them.
func (s *Service) ListOpen(ctx context.Context, input ListInput) (*ListResult, error) {
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, err
	}
	now := nowFunc()
	filter.OpenOnly = true
	filter.Status = nil
	filter.ActiveAt = &now

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list open rfqs")
	}
	return buildListResult(rows, next), nil
}

// ListMine returns the buyer's own requests.
func (s *Service) ListMine(ctx context.Context, buyerUserID uuid.UUID, input ListInput) (*ListResult, error) {
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, err
	}
	filter.UserID = &buyerUserID

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyer rfqs")
	}
	return buildListResult(rows, next), nil
}

// Get returns one request scoped to the caller. The owning buyer, admins,
// and sellers who already quoted see everything; other sellers get a
// redacted view with quotes collapsed to a count.
func (s *Service) Get(ctx context.Context, callerUserID uuid.UUID, callerRole enums.UserRole, rfqID uuid.UUID) (*View, error) {
	rfq, err := s.findRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	view := &View{RFQ: rfq, QuoteCount: len(rfq.Quotes)}
	switch {
	case callerRole == enums.UserRoleAdmin:
	case rfq.UserID == callerUserID:
	case callerRole == enums.UserRoleSeller && s.hasQuoteFrom(ctx, rfq, callerUserID):
	default:
		redacted := *rfq
		redacted.Quotes = nil
		view.RFQ = &redacted
		view.Redacted = true
	}
	return view, nil
}

// Update edits a request that has not yet attracted quotes.
func (s *Service) Update(ctx context.Context, buyerUserID, rfqID uuid.UUID, input UpdateRFQInput) (*models.RFQ, error) {
	rfq, err := s.requireOwnedRFQ(ctx, buyerUserID, rfqID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(rfq); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		rfq.CategoryID = input.CategoryID
	}
	if input.ProductName != nil {
		name := strings.TrimSpace(*input.ProductName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		rfq.ProductName = name
	}
	if input.Description != nil {
		rfq.Description = input.Description
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		rfq.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		unit, err := enums.ParseProductUnit(*input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
		rfq.Unit = unit
	}
	if input.ExpiresAt != nil {
		expiresAt := input.ExpiresAt.UTC()
		if !expiresAt.After(nowFunc()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
		}
		rfq.ExpiresAt = expiresAt
	}

	if err := s.repo.Save(ctx, rfq); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rfq")
	}
	return rfq, nil
}

// Delete removes a request that has not yet attracted quotes.
func (s *Service) Delete(ctx context.Context, buyerUserID, rfqID uuid.UUID) error {
	rfq, err := s.requireOwnedRFQ(ctx, buyerUserID, rfqID)
	if err != nil {
		return err
	}
	if err := s.requireEditable(rfq); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, rfq.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete rfq")
	}
	return nil
}

// Close finalizes a request, optionally selecting a winning quote. Every
// quoting seller learns the outcome through the emitted event.
func (s *Service) Close(ctx context.Context, buyerUserID, rfqID uuid.UUID, input CloseRFQInput) (*models.RFQ, error) {
	rfq, err := s.requireOwnedRFQ(ctx, buyerUserID, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.Status == enums.RFQStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rfq already closed")
	}

	var selected *models.Quote
	if input.SelectedQuoteID != nil {
		for i := range rfq.Quotes {
			if rfq.Quotes[i].ID == *input.SelectedQuoteID {
				selected = &rfq.Quotes[i]
				break
			}
		}
		if selected == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote does not belong to this rfq")
		}
	}

	sellerUserIDs := make([]uuid.UUID, 0, len(rfq.Quotes))
	var selectedUserID *uuid.UUID
	for _, quote := range rfq.Quotes {
		if quote.SellerProfile == nil {
			continue
		}
		sellerUserIDs = append(sellerUserIDs, quote.SellerProfile.UserID)
		if selected != nil && quote.ID == selected.ID {
			userID := quote.SellerProfile.UserID
			selectedUserID = &userID
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if selected != nil {
			if err := repo.MarkQuoteSelected(ctx, selected.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "select quote")
			}
		}
		if err := repo.UpdateStatus(ctx, rfq.ID, enums.RFQStatusClosed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close rfq")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRFQClosed,
			AggregateType: enums.AggregateRFQ,
			AggregateID:   rfq.ID,
			Actor:         buildActor(buyerUserID, enums.UserRoleBuyer),
			Data: payloads.RFQClosedEvent{
				RFQID:           rfq.ID,
				RFQNumber:       rfq.RFQNumber,
				BuyerUserID:     rfq.UserID,
				SelectedQuoteID: input.SelectedQuoteID,
				SellerUserIDs:   sellerUserIDs,
				SelectedUserID:  selectedUserID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	rfq.Status = enums.RFQStatusClosed
	if selected != nil {
		selected.IsSelected = true
	}
	return rfq, nil
}

func (s *Service) findRFQ(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.repo.FindByID(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rfq")
	}
	return rfq, nil
}

func (s *Service) requireOwnedRFQ(ctx context.Context, buyerUserID, rfqID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.findRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.UserID != buyerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
	}
	return rfq, nil
}

// requireEditable gates buyer edits: quotes freeze the request, a closed
// request stays closed, and a lapsed deadline blocks writes even when the
// stored status has not been relabeled yet.
func (s *Service) requireEditable(rfq *models.RFQ) error {
	if len(rfq.Quotes) > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "rfq already has quotes")
	}
	if rfq.Status == enums.RFQStatusClosed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is closed")
	}
	if rfq.Expired(nowFunc()) {
		return pkgerrors.New(pkgerrors.CodeExpired, "rfq has expired")
	}
	return nil
}

func (s *Service) hasQuoteFrom(ctx context.Context, rfq *models.RFQ, sellerUserID uuid.UUID) bool {
	profile, err := s.sellers.FindSellerProfile(ctx, sellerUserID)
	if err != nil {
		return false
	}
	for _, quote := range rfq.Quotes {
		if quote.SellerProfileID == profile.ID {
			return true
		}
	}
	return false
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: string(role)}
}

func buildListFilter(input ListInput) (ListFilter, error) {
	filter := ListFilter{Limit: input.Limit}
	if input.Status != "" {
		status, err := enums.ParseRFQStatus(input.Status)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	if input.CategoryID != "" {
		categoryID, err := uuid.Parse(input.CategoryID)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter")
		}
		filter.CategoryID = &categoryID
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	filter.Cursor = cursor
	return filter, nil
}

func buildListResult(rows []models.RFQ, next *pagination.Cursor) *ListResult {
	result := &ListResult{RFQs: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result
}

// nowFunc is swapped in tests to pin rfq numbers and expiry checks.
var nowFunc = defaultNow
