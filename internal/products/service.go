package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

type sellerProfileFinder interface {
	FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

// Service exposes catalog reads and seller-scoped listing management.
type Service struct {
	repo    *Repository
	sellers sellerProfileFinder
}

// NewService builds a products service with the required dependencies.
func NewService(repo *Repository, sellers sellerProfileFinder) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller profile finder required")
	}
	return &Service{repo: repo, sellers: sellers}, nil
}

// BrowseInput narrows the public catalog listing.
type BrowseInput struct {
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Search     string
	Organic    *bool
	FairTrade  *bool
	GMOFree    *bool
	Featured   bool
	Limit      int
	Cursor     string
}

// BrowseResult carries a catalog page plus the next cursor.
type BrowseResult struct {
	Products   []models.Product
	NextCursor string
}

// Browse lists active products for buyers.
func (s *Service) Browse(ctx context.Context, input BrowseInput) (*BrowseResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListFilter{
		CategoryID:      input.CategoryID,
		SellerProfileID: input.SellerID,
		Search:          strings.TrimSpace(input.Search),
		Organic:         input.Organic,
		FairTrade:       input.FairTrade,
		GMOFree:         input.GMOFree,
		FeaturedOnly:    input.Featured,
		Limit:           input.Limit,
		Cursor:          cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	result := &BrowseResult{Products: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// Featured returns the active featured listings.
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	rows, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured products")
	}
	return rows, nil
}

// Get returns one active product for buyers.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

// ListMine returns the caller's listings including soft-deleted ones.
func (s *Service) ListMine(ctx context.Context, sellerUserID uuid.UUID, limit int, cursorStr string) (*BrowseResult, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(cursorStr)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListFilter{
		SellerProfileID: &profile.ID,
		IncludeInactive: true,
		Limit:           limit,
		Cursor:          cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller products")
	}

	result := &BrowseResult{Products: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// Create adds a listing for a verified seller.
func (s *Service) Create(ctx context.Context, sellerUserID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	profile, err := s.requireVerifiedSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	unit, err := enums.ParseProductUnit(input.Unit)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
	}
	if input.RetailPrice.IsNegative() || input.RetailPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail_price must be positive")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}
	minQty := input.MinOrderQuantity
	if minQty == 0 {
		minQty = 1
	}
	if minQty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_quantity must be at least 1")
	}

	product := &models.Product{
		SellerProfileID:  profile.ID,
		CategoryID:       input.CategoryID,
		Name:             name,
		Description:      input.Description,
		Unit:             unit,
		RetailPrice:      input.RetailPrice,
		WholesalePrice:   input.WholesalePrice,
		StockQuantity:    input.StockQuantity,
		MinOrderQuantity: minQty,
		IsActive:         true,
		IsOrganic:        input.IsOrganic,
		IsFairTrade:      input.IsFairTrade,
		IsGMOFree:        input.IsGMOFree,
		Images:           pq.StringArray(input.Images),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return product, nil
}

// Update applies partial changes to a listing the caller owns.
func (s *Service) Update(ctx context.Context, sellerUserID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.requireOwnedProduct(ctx, sellerUserID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Unit != nil {
		unit, err := enums.ParseProductUnit(*input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
		product.Unit = unit
	}
	if input.RetailPrice != nil {
		if input.RetailPrice.IsNegative() || input.RetailPrice.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail_price must be positive")
		}
		product.RetailPrice = *input.RetailPrice
	}
	if input.WholesalePrice != nil {
		product.WholesalePrice = input.WholesalePrice
	}
	if input.MinOrderQuantity != nil {
		if *input.MinOrderQuantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_quantity must be at least 1")
		}
		product.MinOrderQuantity = *input.MinOrderQuantity
	}
	if input.IsOrganic != nil {
		product.IsOrganic = *input.IsOrganic
	}
	if input.IsFairTrade != nil {
		product.IsFairTrade = *input.IsFairTrade
	}
	if input.IsGMOFree != nil {
		product.IsGMOFree = *input.IsGMOFree
	}
	if input.Images != nil {
		product.Images = pq.StringArray(*input.Images)
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
	}
	return product, nil
}

// Delete soft deletes a listing so existing order items keep their reference.
func (s *Service) Delete(ctx context.Context, sellerUserID, productID uuid.UUID) error {
	product, err := s.requireOwnedProduct(ctx, sellerUserID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
	}
	return nil
}

// UpdateStock sets the absolute stock level on a listing the caller owns.
func (s *Service) UpdateStock(ctx context.Context, sellerUserID, productID uuid.UUID, input UpdateStockInput) (*models.Product, error) {
	product, err := s.requireOwnedProduct(ctx, sellerUserID, productID)
	if err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}
	if err := s.repo.SetStock(ctx, product.ID, input.StockQuantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set stock")
	}
	product.StockQuantity = input.StockQuantity
	return product, nil
}

// SetFeatured flips the admin-managed featured flag.
func (s *Service) SetFeatured(ctx context.Context, productID uuid.UUID, featured bool) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.SetFeatured(ctx, product.ID, featured); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set featured")
	}
	product.IsFeatured = featured
	return product, nil
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

func (s *Service) requireOwnedProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Product, error) {
	profile, err := s.requireSeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.SellerProfileID != profile.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	return product, nil
}
