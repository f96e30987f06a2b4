package rfq

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/organimart/organimart-backend/pkg/db"
	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/outbox"
	"github.com/organimart/organimart-backend/pkg/outbox/payloads"
)

// SubmitQuote records a verified seller's bid. The first quote on an open
// request flips its status to QUOTED inside the same transaction.
func (s *Service) SubmitQuote(ctx context.Context, sellerUserID, rfqID uuid.UUID, input CreateQuoteInput) (*models.Quote, error) {
	profile, err := s.requireVerifiedSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	rfq, err := s.findRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if err := s.requireQuotable(rfq); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindQuoteForSeller(ctx, rfq.ID, profile.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "quote already submitted for this rfq")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing quote")
	}

	if !input.PricePerUnit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	unit := rfq.Unit
	if input.Unit != "" {
		unit, err = enums.ParseProductUnit(input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
	}

	quote := &models.Quote{
		RFQID:           rfq.ID,
		SellerProfileID: profile.ID,
		PricePerUnit:    input.PricePerUnit.Round(2),
		Quantity:        input.Quantity,
		Unit:            unit,
		DeliveryDays:    input.DeliveryDays,
		Notes:           input.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateQuote(ctx, quote); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_quote_rfq_seller") {
				return pkgerrors.New(pkgerrors.CodeConflict, "quote already submitted for this rfq")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quote")
		}
		if rfq.Status == enums.RFQStatusOpen {
			if err := repo.UpdateStatus(ctx, rfq.ID, enums.RFQStatusQuoted); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark rfq quoted")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteSubmitted,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Actor:         buildActor(sellerUserID, enums.UserRoleSeller),
			Data: payloads.QuoteSubmittedEvent{
				QuoteID:      quote.ID,
				RFQID:        rfq.ID,
				RFQNumber:    rfq.RFQNumber,
				BuyerUserID:  rfq.UserID,
				SellerName:   profile.BusinessName,
				PricePerUnit: quote.PricePerUnit,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if rfq.Status == enums.RFQStatusOpen {
		rfq.Status = enums.RFQStatusQuoted
	}
	return quote, nil
}

// UpdateQuote revises the seller's own bid while the request is still live.
func (s *Service) UpdateQuote(ctx context.Context, sellerUserID, quoteID uuid.UUID, input UpdateQuoteInput) (*models.Quote, error) {
	profile, quote, err := s.requireOwnedQuote(ctx, sellerUserID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := s.requireQuotable(quote.RFQ); err != nil {
		return nil, err
	}

	if input.PricePerUnit != nil {
		if !input.PricePerUnit.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		quote.PricePerUnit = input.PricePerUnit.Round(2)
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		quote.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		unit, err := enums.ParseProductUnit(*input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
		quote.Unit = unit
	}
	if input.DeliveryDays != nil {
		quote.DeliveryDays = input.DeliveryDays
	}
	if input.Notes != nil {
		quote.Notes = input.Notes
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SaveQuote(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quote")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteUpdated,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Actor:         buildActor(sellerUserID, enums.UserRoleSeller),
			Data: payloads.QuoteUpdatedEvent{
				QuoteID:      quote.ID,
				RFQID:        quote.RFQID,
				RFQNumber:    quote.RFQ.RFQNumber,
				BuyerUserID:  quote.RFQ.UserID,
				SellerName:   profile.BusinessName,
				PricePerUnit: quote.PricePerUnit,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// DeleteQuote withdraws the seller's own bid. Removing the last quote
// reverts the request from QUOTED back to OPEN.
func (s *Service) DeleteQuote(ctx context.Context, sellerUserID, quoteID uuid.UUID) error {
	_, quote, err := s.requireOwnedQuote(ctx, sellerUserID, quoteID)
	if err != nil {
		return err
	}
	if quote.IsSelected {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "selected quote cannot be withdrawn")
	}
	if quote.RFQ != nil && quote.RFQ.Status == enums.RFQStatusClosed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is closed")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteQuote(ctx, quote.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete quote")
		}

		remaining, err := repo.CountQuotes(ctx, quote.RFQID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count quotes")
		}
		if remaining == 0 && quote.RFQ != nil && quote.RFQ.Status == enums.RFQStatusQuoted {
			if err := repo.UpdateStatus(ctx, quote.RFQID, enums.RFQStatusOpen); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reopen rfq")
			}
		}
		return nil
	})
}

// GetQuote returns one quote visible to the caller.
func (s *Service) GetQuote(ctx context.Context, callerUserID uuid.UUID, callerRole enums.UserRole, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.findQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	switch {
	case callerRole == enums.UserRoleAdmin:
	case quote.RFQ != nil && quote.RFQ.UserID == callerUserID:
	case quote.SellerProfile != nil && quote.SellerProfile.UserID == callerUserID:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return quote, nil
}

// ListMyQuotes returns the seller's bids across all requests.
func (s *Service) ListMyQuotes(ctx context.Context, sellerUserID uuid.UUID) ([]models.Quote, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	quotes, err := s.repo.ListQuotesForSeller(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller quotes")
	}
	return quotes, nil
}

// requireQuotable gates seller writes: a closed request takes no more bids
// and the expires_at comparison blocks stale ones regardless of status.
func (s *Service) requireQuotable(rfq *models.RFQ) error {
	if rfq == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
	}
	if rfq.Status == enums.RFQStatusClosed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is closed")
	}
	if rfq.Expired(nowFunc()) {
		return pkgerrors.New(pkgerrors.CodeExpired, "rfq has expired")
	}
	return nil
}

func (s *Service) findQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindQuote(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	return quote, nil
}

func (s *Service) requireOwnedQuote(ctx context.Context, sellerUserID, quoteID uuid.UUID) (*models.SellerProfile, *models.Quote, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, nil, err
	}
	quote, err := s.findQuote(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	if quote.SellerProfileID != profile.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return profile, quote, nil
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

func (s *Service) requireVerifiedSeller(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	profile, err := s.requireSeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsVerified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not verified")
	}
	return profile, nil
}
