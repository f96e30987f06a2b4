package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes profile reads and owner-scoped updates.
type Service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a profiles service with the required dependencies.
func NewService(repo *Repository, tx txRunner) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Service{repo: repo, tx: tx}, nil
}

// UpdateBuyerProfileInput carries buyer-editable fields.
type UpdateBuyerProfileInput struct {
	CompanyName     *string        `json:"company_name,omitempty"`
	ShippingAddress *types.Address `json:"shipping_address,omitempty"`
}

// UpdateSellerProfileInput carries seller-editable fields.
type UpdateSellerProfileInput struct {
	BusinessName    *string        `json:"business_name,omitempty"`
	Description     *string        `json:"description,omitempty"`
	BusinessAddress *types.Address `json:"business_address,omitempty"`
	CategoryIDs     *[]uuid.UUID   `json:"category_ids,omitempty"`
}

// GetBuyerProfile returns the caller's buyer profile.
func (s *Service) GetBuyerProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	profile, err := s.repo.FindBuyerProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer profile")
	}
	return profile, nil
}

// GetSellerProfile returns the caller's seller profile with categories.
func (s *Service) GetSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	profile, err := s.repo.FindSellerProfileWithCategories(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller profile")
	}
	return profile, nil
}

// UpdateBuyerProfile applies partial changes to the caller's buyer profile.
func (s *Service) UpdateBuyerProfile(ctx context.Context, userID uuid.UUID, input UpdateBuyerProfileInput) (*models.BuyerProfile, error) {
	profile, err := s.GetBuyerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		profile.CompanyName = input.CompanyName
	}
	if input.ShippingAddress != nil {
		profile.ShippingAddress = input.ShippingAddress
	}

	if err := s.repo.SaveBuyerProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save buyer profile")
	}
	return profile, nil
}

// UpdateSellerProfile applies partial changes and swaps category links in one
// transaction when category ids are provided.
func (s *Service) UpdateSellerProfile(ctx context.Context, userID uuid.UUID, input UpdateSellerProfileInput) (*models.SellerProfile, error) {
	profile, err := s.repo.FindSellerProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller profile")
	}

	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_name cannot be empty")
		}
		profile.BusinessName = name
	}
	if input.Description != nil {
		profile.Description = input.Description
	}
	if input.BusinessAddress != nil {
		profile.BusinessAddress = input.BusinessAddress
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveSellerProfile(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save seller profile")
		}
		if input.CategoryIDs == nil {
			return nil
		}

		ids := dedupe(*input.CategoryIDs)
		if len(ids) > 0 {
			count, err := repo.CountCategories(ctx, ids)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check categories")
			}
			if count != int64(len(ids)) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown category id")
			}
		}
		if err := repo.ReplaceSellerCategories(ctx, profile.ID, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace seller categories")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSellerProfile(ctx, userID)
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
