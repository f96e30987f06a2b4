package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/internal/cart"
	"github.com/organimart/organimart-backend/internal/pricing"
	"github.com/organimart/organimart-backend/internal/products"
	dbpkg "github.com/organimart/organimart-backend/pkg/db"
	"github.com/organimart/organimart-backend/pkg/db/models"
	dbtypes "github.com/organimart/organimart-backend/pkg/db/types"
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

// Service exposes checkout, cancellation, and fulfillment progression.
type Service struct {
	repo     *Repository
	carts    *cart.Repository
	products *products.Repository
	sellers  sellerProfileFinder
	tx       txRunner
	outbox   outboxPublisher
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo     *Repository
	Carts    *cart.Repository
	Products *products.Repository
	Sellers  sellerProfileFinder
	Tx       txRunner
	Outbox   outboxPublisher
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
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
		repo:     params.Repo,
		carts:    params.Carts,
		products: params.Products,
		sellers:  params.Sellers,
		tx:       params.Tx,
		outbox:   params.Outbox,
	}, nil
}

// CreateFromCart snapshots the buyer's cart into an order. Stock is reserved
// with conditional decrements inside the transaction, so two concurrent
// checkouts can never oversell a product.
func (s *Service) CreateFromCart(ctx context.Context, buyerUserID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	var order *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		orderRepo := s.repo.WithTx(tx)

		lines, err := cartRepo.ListWithProducts(ctx, buyerUserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart")
		}

		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		sellerSet := make(map[uuid.UUID]struct{})
		sellerIDs := dbtypes.UUIDArray{}

		for _, line := range lines {
			product := line.Product
			if product == nil || !product.IsActive {
				// A deactivated listing fails the whole checkout; the line
				// survives in the cart for the buyer to remove.
				msg := "product is no longer available"
				details := map[string]any{"product_id": line.ProductID}
				if product != nil {
					msg = fmt.Sprintf("product %q is no longer available", product.Name)
					details["product_name"] = product.Name
				}
				return pkgerrors.New(pkgerrors.CodeStateConflict, msg).WithDetails(details)
			}
			if line.Quantity < product.MinOrderQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity below minimum order quantity").
					WithDetails(map[string]any{
						"product_id":         product.ID,
						"min_order_quantity": product.MinOrderQuantity,
					})
			}

			ok, err := productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
			}
			if !ok {
				available := 0
				if current, lookupErr := productRepo.FindByID(ctx, product.ID); lookupErr == nil {
					available = current.StockQuantity
				}
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %q", product.Name)).
					WithDetails(map[string]any{
						"product_id":   product.ID,
						"product_name": product.Name,
						"requested":    line.Quantity,
						"available":    available,
					})
			}

			unitPrice := product.RetailPrice.Round(2)
			totalPrice := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			subtotal = subtotal.Add(totalPrice)

			items = append(items, models.OrderItem{
				ProductID:       product.ID,
				SellerProfileID: product.SellerProfileID,
				ProductName:     product.Name,
				Quantity:        line.Quantity,
				UnitPrice:       unitPrice,
				TotalPrice:      totalPrice,
			})
			if _, seen := sellerSet[product.SellerProfileID]; !seen {
				sellerSet[product.SellerProfileID] = struct{}{}
				sellerIDs = append(sellerIDs, product.SellerProfileID)
			}
		}

		billingAddress := input.BillingAddress
		if billingAddress == nil {
			billingAddress = input.ShippingAddress
		}

		totals := pricing.ComputeTotals(subtotal)
		order = &models.Order{
			OrderNumber:     NewOrderNumber(nowFunc()),
			UserID:          buyerUserID,
			Status:          enums.OrderStatusPending,
			Subtotal:        totals.Subtotal,
			Tax:             totals.Tax,
			Shipping:        totals.Shipping,
			Total:           totals.Total,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  billingAddress,
			PaymentMethod:   input.PaymentMethod,
			Notes:           input.Notes,
			SellerIDs:       sellerIDs,
			Items:           items,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, "order_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order number collision, retry checkout")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		if err := cartRepo.Clear(ctx, buyerUserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		sellerUserIDs, err := sellerUserIDsFor(ctx, tx, sellerIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve sellers")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(buyerUserID, enums.UserRoleBuyer),
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				BuyerUserID:   buyerUserID,
				SellerUserIDs: sellerUserIDs,
				Total:         order.Total,
				ItemCount:     len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel lets the buyer abort an order before fulfillment starts. Reserved
// stock flows back to the listings.
func (s *Service) Cancel(ctx context.Context, buyerUserID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.UserID != buyerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !order.Status.IsCancellable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
			WithDetails(map[string]any{"status": order.Status})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		if err := orderRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		for _, item := range order.Items {
			if err := productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
			}
		}

		sellerUserIDs, err := sellerUserIDsFor(ctx, tx, order.SellerIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve sellers")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(buyerUserID, enums.UserRoleBuyer),
			Data: payloads.OrderCanceledEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				BuyerUserID:   order.UserID,
				SellerUserIDs: sellerUserIDs,
				CanceledAt:    nowFunc(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusCancelled
	return order, nil
}

// UpdateStatus advances fulfillment for an order the seller participates in.
// Transitions only move forward; CANCELLED is never reachable here.
func (s *Service) UpdateStatus(ctx context.Context, sellerUserID, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	status, err := enums.ParseOrderStatus(input.Status)
	if err != nil || !status.IsSellerUpdatable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if !containsSeller(order.SellerIDs, profile.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !isForwardTransition(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status cannot move backwards").
			WithDetails(map[string]any{"from": order.Status, "to": status})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(sellerUserID, enums.UserRoleSeller),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				BuyerUserID: order.UserID,
				Status:      status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = status
	return order, nil
}

// Get returns one order visible to the caller.
func (s *Service) Get(ctx context.Context, callerUserID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	switch {
	case callerRole == enums.UserRoleAdmin:
	case order.UserID == callerUserID:
	case callerRole == enums.UserRoleSeller:
		profile, err := s.requireSeller(ctx, callerUserID)
		if err != nil {
			return nil, err
		}
		if !containsSeller(order.SellerIDs, profile.ID) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListMine returns the buyer's order history.
func (s *Service) ListMine(ctx context.Context, buyerUserID uuid.UUID, input ListInput) (*ListResult, error) {
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListForBuyer(ctx, buyerUserID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyer orders")
	}
	return buildListResult(rows, next), nil
}

// ListForSeller returns orders that include the seller's items.
func (s *Service) ListForSeller(ctx context.Context, sellerUserID uuid.UUID, input ListInput) (*ListResult, error) {
	profile, err := s.requireSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListForSeller(ctx, profile.ID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller orders")
	}
	return buildListResult(rows, next), nil
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

var orderStatusRank = map[enums.OrderStatus]int{
	enums.OrderStatusPending:    0,
	enums.OrderStatusConfirmed:  1,
	enums.OrderStatusProcessing: 2,
	enums.OrderStatusShipped:    3,
	enums.OrderStatusDelivered:  4,
}

func isForwardTransition(from, to enums.OrderStatus) bool {
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

func containsSeller(ids dbtypes.UUIDArray, sellerProfileID uuid.UUID) bool {
	for _, id := range ids {
		if id == sellerProfileID {
			return true
		}
	}
	return false
}

func sellerUserIDsFor(ctx context.Context, tx *gorm.DB, sellerProfileIDs dbtypes.UUIDArray) ([]uuid.UUID, error) {
	if len(sellerProfileIDs) == 0 {
		return nil, nil
	}
	var userIDs []uuid.UUID
	err := tx.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("id IN ?", []uuid.UUID(sellerProfileIDs)).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: string(role)}
}

func buildListFilter(input ListInput) (ListFilter, error) {
	filter := ListFilter{Limit: input.Limit}
	if input.Status != "" {
		status, err := enums.ParseOrderStatus(input.Status)
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

func buildListResult(rows []models.Order, next *pagination.Cursor) *ListResult {
	result := &ListResult{Orders: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result
}

// nowFunc is swapped in tests to pin order numbers.
var nowFunc = defaultNow
