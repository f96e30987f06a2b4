package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/internal/cart"
	"github.com/organimart/organimart-backend/internal/products"
	"github.com/organimart/organimart-backend/internal/profiles"
	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/outbox"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS seller_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  business_name TEXT NOT NULL,
  description TEXT,
  business_address TEXT,
  is_verified INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_profile_id TEXT NOT NULL,
  category_id TEXT,
  name TEXT NOT NULL,
  description TEXT,
  unit TEXT NOT NULL,
  retail_price NUMERIC NOT NULL,
  wholesale_price NUMERIC,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  min_order_quantity INTEGER NOT NULL DEFAULT 1,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  is_organic INTEGER NOT NULL DEFAULT 0,
  is_fair_trade INTEGER NOT NULL DEFAULT 0,
  is_gmo_free INTEGER NOT NULL DEFAULT 0,
  images TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  subtotal NUMERIC NOT NULL,
  tax NUMERIC NOT NULL,
  shipping NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  shipping_address TEXT,
  billing_address TEXT,
  payment_method TEXT,
  notes TEXT,
  seller_ids TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  seller_profile_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingPublisher struct {
	events []outbox.DomainEvent
}

func (p *recordingPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

type ordersFixture struct {
	db        *gorm.DB
	svc       *Service
	cartSvc   *cart.Service
	publisher *recordingPublisher
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	db := setupOrdersTestDB(t)
	publisher := &recordingPublisher{}

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Carts:    cart.NewRepository(db),
		Products: products.NewRepository(db),
		Sellers:  profiles.NewRepository(db),
		Tx:       testTxRunner{db: db},
		Outbox:   publisher,
	})
	require.NoError(t, err)

	cartSvc, err := cart.NewService(cart.NewRepository(db), products.NewRepository(db))
	require.NoError(t, err)

	return &ordersFixture{db: db, svc: svc, cartSvc: cartSvc, publisher: publisher}
}

func (f *ordersFixture) mustCreateSeller(t *testing.T) (uuid.UUID, *models.SellerProfile) {
	t.Helper()
	userID := uuid.New()
	profile := &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: "Willow Creek Produce",
		IsVerified:   true,
	}
	require.NoError(t, f.db.Create(profile).Error)
	return userID, profile
}

func (f *ordersFixture) mustCreateProduct(t *testing.T, sellerProfileID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:               uuid.New(),
		SellerProfileID:  sellerProfileID,
		Name:             "Golden Apples",
		Unit:             enums.ProductUnitKilogram,
		RetailPrice:      decimal.RequireFromString(price),
		StockQuantity:    stock,
		MinOrderQuantity: 1,
		IsActive:         true,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *ordersFixture) mustAddToCart(t *testing.T, buyerID, productID uuid.UUID, qty int) {
	t.Helper()
	_, err := f.cartSvc.AddItem(context.Background(), buyerID, cart.AddItemInput{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func TestCreateFromCart_SnapshotsCartAndReservesStock(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"), order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("50.00")), order.Subtotal.String())
	assert.True(t, order.Total.Equal(decimal.RequireFromString("64.00")), order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Golden Apples", order.Items[0].ProductName)
	assert.Equal(t, sellerProfile.ID, order.Items[0].SellerProfileID)

	var stored models.Product
	require.NoError(t, f.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 15, stored.StockQuantity)

	var cartCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", buyerID).Count(&cartCount).Error)
	assert.EqualValues(t, 0, cartCount)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, enums.EventOrderCreated, f.publisher.events[0].EventType)
}

func TestCreateFromCart_InsufficientStockRollsBackEverything(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	plenty := f.mustCreateProduct(t, sellerProfile.ID, "5.00", 20)
	scarce := f.mustCreateProduct(t, sellerProfile.ID, "5.00", 10)
	f.mustAddToCart(t, buyerID, plenty.ID, 5)
	f.mustAddToCart(t, buyerID, scarce.ID, 8)

	// Another checkout grabs most of the scarce stock first.
	ok, err := products.NewRepository(f.db).DecrementStock(context.Background(), scarce.ID, 7)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())
	assert.Contains(t, appErr.Message(), "Golden Apples")

	details, ok := appErr.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 8, details["requested"])
	assert.Equal(t, 3, details["available"])

	// The plenty decrement rolled back with the transaction.
	var stored models.Product
	require.NoError(t, f.db.First(&stored, "id = ?", plenty.ID).Error)
	assert.Equal(t, 20, stored.StockQuantity)

	var cartCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", buyerID).Count(&cartCount).Error)
	assert.EqualValues(t, 2, cartCount)

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
}

func TestCreateFromCart_EmptyCartRejected(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.CreateFromCart(context.Background(), uuid.New(), CreateOrderInput{})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateFromCart_InactiveProductFailsCheckout(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	active := f.mustCreateProduct(t, sellerProfile.ID, "5.00", 20)
	delisted := f.mustCreateProduct(t, sellerProfile.ID, "5.00", 20)
	f.mustAddToCart(t, buyerID, active.ID, 2)
	f.mustAddToCart(t, buyerID, delisted.ID, 2)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", delisted.ID).Update("is_active", false).Error)

	_, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	assert.Contains(t, appErr.Message(), "Golden Apples")
	assert.Contains(t, appErr.Message(), "no longer available")

	// Nothing was ordered and the cart is untouched.
	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)

	var cartCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", buyerID).Count(&cartCount).Error)
	assert.EqualValues(t, 2, cartCount)
}

func TestCreateFromCart_BillingDefaultsToShipping(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	shipping := "12 Orchard Lane, Fresno"
	payment := "card"
	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{
		ShippingAddress: &shipping,
		PaymentMethod:   &payment,
	})
	require.NoError(t, err)

	require.NotNil(t, order.BillingAddress)
	assert.Equal(t, shipping, *order.BillingAddress)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, payment, *order.PaymentMethod)
}

func TestCreateFromCart_ExplicitBillingAddressKept(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	shipping := "12 Orchard Lane, Fresno"
	billing := "PO Box 88, Fresno"
	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{
		ShippingAddress: &shipping,
		BillingAddress:  &billing,
	})
	require.NoError(t, err)

	require.NotNil(t, order.BillingAddress)
	assert.Equal(t, billing, *order.BillingAddress)
}

func TestCancel_RestoresStockWhilePending(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	var stored models.Product
	require.NoError(t, f.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 20, stored.StockQuantity)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, enums.EventOrderCanceled, f.publisher.events[1].EventType)
}

func TestCancel_BlockedOnceProcessing(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusProcessing).Error)

	_, err = f.svc.Cancel(context.Background(), buyerID, order.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestCancel_OtherBuyersOrderHidden(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	sellerUserID, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), sellerUserID, order.ID, UpdateStatusInput{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, updated.Status)

	updated, err = f.svc.UpdateStatus(context.Background(), sellerUserID, order.ID, UpdateStatusInput{Status: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), sellerUserID, order.ID, UpdateStatusInput{Status: "CONFIRMED"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestUpdateStatus_SellerCannotCancel(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	sellerUserID, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), sellerUserID, order.ID, UpdateStatusInput{Status: "CANCELLED"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestUpdateStatus_NonParticipantSellerHidden(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 20)
	f.mustAddToCart(t, buyerID, product.ID, 5)

	order, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
	require.NoError(t, err)

	outsiderUserID, _ := f.mustCreateSeller(t)
	_, err = f.svc.UpdateStatus(context.Background(), outsiderUserID, order.ID, UpdateStatusInput{Status: "CONFIRMED"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListMine_ReturnsBuyerHistory(t *testing.T) {
	f := newOrdersFixture(t)
	buyerID := uuid.New()
	_, sellerProfile := f.mustCreateSeller(t)
	product := f.mustCreateProduct(t, sellerProfile.ID, "10.00", 100)

	for i := 0; i < 3; i++ {
		f.mustAddToCart(t, buyerID, product.ID, 2)
		_, err := f.svc.CreateFromCart(context.Background(), buyerID, CreateOrderInput{})
		require.NoError(t, err)
	}

	result, err := f.svc.ListMine(context.Background(), buyerID, ListInput{})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 3)
	assert.Empty(t, result.NextCursor)
}

func TestNewOrderNumber_Format(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	number := NewOrderNumber(now)

	assert.True(t, strings.HasPrefix(number, fmt.Sprintf("ORD-%d-", now.UnixMilli())), number)
	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 3)
}
