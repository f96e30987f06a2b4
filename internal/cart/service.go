package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/internal/pricing"
	"github.com/organimart/organimart-backend/pkg/db/models"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
)

type productFinder interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the buyer cart operations.
type Service struct {
	repo     *Repository
	products productFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(repo *Repository, products productFinder) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &Service{repo: repo, products: products}, nil
}

// AddItemInput carries the add-to-cart payload.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// UpdateItemInput carries the quantity change for one line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// View is the cart read model returned to buyers. Lines whose products
// vanished, went inactive, or no longer cover the requested quantity are
// pruned before totals are computed.
type View struct {
	Items        []models.CartItem `json:"items"`
	RemovedCount int               `json:"removed_count,omitempty"`
	Totals       pricing.Totals    `json:"totals"`
}

// Get returns the self-healed cart with current totals.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	items, err := s.repo.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart")
	}

	kept := make([]models.CartItem, 0, len(items))
	var stale []uuid.UUID
	for _, item := range items {
		if item.Product == nil || !item.Product.IsActive || item.Product.StockQuantity < item.Quantity {
			stale = append(stale, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	if len(stale) > 0 {
		if err := s.repo.DeleteByIDs(ctx, stale); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prune cart")
		}
	}

	totals := pricing.Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
	}
	if len(kept) > 0 {
		totals = pricing.ComputeTotals(subtotalOf(kept))
	}

	return &View{
		Items:        kept,
		RemovedCount: len(stale),
		Totals:       totals,
	}, nil
}

// AddItem adds a product line or merges the quantity into an existing line.
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindActiveByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	existing, err := s.repo.FindLine(ctx, userID, product.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}

	quantity := input.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}
	if err := validateQuantity(product, quantity, existing != nil); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.repo.SetQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
	} else {
		line := &models.CartItem{
			UserID:    userID,
			ProductID: product.ID,
			Quantity:  quantity,
		}
		if err := s.repo.Create(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart line")
		}
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets the quantity on one of the buyer's lines.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item, err := s.requireOwnedLine(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindActiveByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Product vanished underneath the line; drop it.
			if err := s.repo.Delete(ctx, item.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prune cart line")
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product no longer available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if err := validateQuantity(product, input.Quantity, false); err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantity(ctx, item.ID, input.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}

	return s.Get(ctx, userID)
}

// RemoveItem deletes one of the buyer's lines.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	item, err := s.requireOwnedLine(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
	}
	return s.Get(ctx, userID)
}

// Clear empties the buyer's cart.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func (s *Service) requireOwnedLine(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := s.repo.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	if item.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return &item, nil
}

// validateQuantity checks one line against the product constraints. A fresh
// quantity that exceeds stock is a plain validation failure; only a merged
// quantity (existing line + new units) reports INSUFFICIENT_STOCK.
func validateQuantity(product *models.Product, quantity int, merged bool) error {
	if quantity < product.MinOrderQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity below minimum order quantity").
			WithDetails(map[string]any{"min_order_quantity": product.MinOrderQuantity})
	}
	if quantity > product.StockQuantity {
		details := map[string]any{
			"requested": quantity,
			"available": product.StockQuantity,
		}
		if merged {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
				WithDetails(details)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
			WithDetails(details)
	}
	return nil
}

func subtotalOf(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		subtotal = subtotal.Add(item.Product.RetailPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}
