package categories

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

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
)

func setupCategoriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:categories_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
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

func newCategoriesService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCreateCategory_DuplicateNameConflicts(t *testing.T) {
	db := setupCategoriesTestDB(t)
	svc := newCategoriesService(t, db)

	_, err := svc.Create(context.Background(), UpsertCategoryInput{Name: "Vegetables"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), UpsertCategoryInput{Name: "vegetables"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestUpdateCategory_RenameToExistingNameConflicts(t *testing.T) {
	db := setupCategoriesTestDB(t)
	svc := newCategoriesService(t, db)

	_, err := svc.Create(context.Background(), UpsertCategoryInput{Name: "Fruit"})
	require.NoError(t, err)
	grain, err := svc.Create(context.Background(), UpsertCategoryInput{Name: "Grain"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), grain.ID, UpsertCategoryInput{Name: "Fruit"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestDeleteCategory_BlockedWhenProductsReferenceIt(t *testing.T) {
	db := setupCategoriesTestDB(t)
	svc := newCategoriesService(t, db)

	category, err := svc.Create(context.Background(), UpsertCategoryInput{Name: "Dairy"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Product{
		ID:              uuid.New(),
		SellerProfileID: uuid.New(),
		CategoryID:      &category.ID,
		Name:            "Raw Milk",
		Unit:            enums.ProductUnitLiter,
		RetailPrice:     decimal.RequireFromString("4.50"),
	}).Error)

	err = svc.Delete(context.Background(), category.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	require.NoError(t, db.Exec("DELETE FROM products").Error)
	require.NoError(t, svc.Delete(context.Background(), category.ID))

	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
