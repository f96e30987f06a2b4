package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/internal/profiles"
	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:products_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
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
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newProductsService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), profiles.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func mustCreateSeller(t *testing.T, db *gorm.DB, verified bool) (uuid.UUID, *models.SellerProfile) {
	t.Helper()
	userID := uuid.New()
	profile := &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: "Willow Creek Produce",
		IsVerified:   verified,
	}
	require.NoError(t, db.Create(profile).Error)
	return userID, profile
}

func validCreateInput() CreateProductInput {
	return CreateProductInput{
		Name:          "Heirloom Tomatoes",
		Unit:          "KG",
		RetailPrice:   decimal.RequireFromString("3.99"),
		StockQuantity: 40,
		IsOrganic:     true,
	}
}

func TestCreateProduct_RequiresVerifiedSeller(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	userID, _ := mustCreateSeller(t, db, false)
	_, err := svc.Create(context.Background(), userID, validCreateInput())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestCreateProduct_DefaultsMinOrderQuantity(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	userID, profile := mustCreateSeller(t, db, true)
	product, err := svc.Create(context.Background(), userID, validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, 1, product.MinOrderQuantity)
	assert.Equal(t, profile.ID, product.SellerProfileID)
	assert.True(t, product.IsActive)
	assert.Equal(t, enums.ProductUnitKilogram, product.Unit)
}

func TestCreateProduct_RejectsNonPositivePrice(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	userID, _ := mustCreateSeller(t, db, true)
	input := validCreateInput()
	input.RetailPrice = decimal.Zero
	_, err := svc.Create(context.Background(), userID, input)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestDeleteProduct_SoftDeletesAndHidesFromBuyers(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	userID, _ := mustCreateSeller(t, db, true)
	product, err := svc.Create(context.Background(), userID, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), userID, product.ID))

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = svc.Get(context.Background(), product.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateProduct_OtherSellerForbidden(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	ownerID, _ := mustCreateSeller(t, db, true)
	product, err := svc.Create(context.Background(), ownerID, validCreateInput())
	require.NoError(t, err)

	otherID, _ := mustCreateSeller(t, db, true)
	name := "Hijacked"
	_, err = svc.Update(context.Background(), otherID, product.ID, UpdateProductInput{Name: &name})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestDecrementStock_ConditionalOnRemainingQuantity(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	repo := NewRepository(db)

	userID, _ := mustCreateSeller(t, db, true)
	input := validCreateInput()
	input.StockQuantity = 5
	product, err := svc.Create(context.Background(), userID, input)
	require.NoError(t, err)

	ok, err := repo.DecrementStock(context.Background(), product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(context.Background(), product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 2, stored.StockQuantity)

	require.NoError(t, repo.RestoreStock(context.Background(), product.ID, 3))
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)
}

func TestBrowse_FiltersCertificationFlags(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	userID, _ := mustCreateSeller(t, db, true)
	organic := validCreateInput()
	_, err := svc.Create(context.Background(), userID, organic)
	require.NoError(t, err)

	conventional := validCreateInput()
	conventional.Name = "Field Corn"
	conventional.IsOrganic = false
	_, err = svc.Create(context.Background(), userID, conventional)
	require.NoError(t, err)

	wantOrganic := true
	result, err := svc.Browse(context.Background(), BrowseInput{Organic: &wantOrganic})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Heirloom Tomatoes", result.Products[0].Name)
}

func TestSetFeatured_TogglesFlag(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	userID, _ := mustCreateSeller(t, db, true)
	product, err := svc.Create(context.Background(), userID, validCreateInput())
	require.NoError(t, err)

	updated, err := svc.SetFeatured(context.Background(), product.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsFeatured)

	featured, err := svc.Featured(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, product.ID, featured[0].ID)
}
