package profiles

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
)

func setupProfilesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:profiles_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS buyer_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  company_name TEXT,
  shipping_address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS seller_categories (
  seller_profile_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (seller_profile_id, category_id)
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newProfilesService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), sqliteTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func mustCreateSellerProfile(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.SellerProfile {
	t.Helper()
	profile := &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: "Willow Creek Produce",
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func mustCreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestUpdateBuyerProfile_PartialUpdate(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := newProfilesService(t, db)

	userID := uuid.New()
	original := "Old Co"
	require.NoError(t, db.Create(&models.BuyerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		CompanyName: &original,
	}).Error)

	updated := "Harvest Kitchen"
	profile, err := svc.UpdateBuyerProfile(context.Background(), userID, UpdateBuyerProfileInput{
		CompanyName: &updated,
	})
	require.NoError(t, err)
	require.NotNil(t, profile.CompanyName)
	assert.Equal(t, "Harvest Kitchen", *profile.CompanyName)
}

func TestUpdateSellerProfile_ReplacesCategories(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := newProfilesService(t, db)

	userID := uuid.New()
	profile := mustCreateSellerProfile(t, db, userID)
	fruit := mustCreateCategory(t, db, "Fruit")
	grain := mustCreateCategory(t, db, "Grain")
	require.NoError(t, db.Create(&models.SellerCategory{
		SellerProfileID: profile.ID,
		CategoryID:      fruit.ID,
	}).Error)

	ids := []uuid.UUID{grain.ID}
	_, err := svc.UpdateSellerProfile(context.Background(), userID, UpdateSellerProfileInput{
		CategoryIDs: &ids,
	})
	require.NoError(t, err)

	var links []models.SellerCategory
	require.NoError(t, db.Find(&links, "seller_profile_id = ?", profile.ID).Error)
	require.Len(t, links, 1)
	assert.Equal(t, grain.ID, links[0].CategoryID)
}

func TestUpdateSellerProfile_RejectsUnknownCategory(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := newProfilesService(t, db)

	userID := uuid.New()
	mustCreateSellerProfile(t, db, userID)

	ids := []uuid.UUID{uuid.New()}
	_, err := svc.UpdateSellerProfile(context.Background(), userID, UpdateSellerProfileInput{
		CategoryIDs: &ids,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestUpdateSellerProfile_CannotFlipVerification(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := newProfilesService(t, db)

	userID := uuid.New()
	profile := mustCreateSellerProfile(t, db, userID)

	name := "Willow Creek Organics"
	_, err := svc.UpdateSellerProfile(context.Background(), userID, UpdateSellerProfileInput{
		BusinessName: &name,
	})
	require.NoError(t, err)

	var stored models.SellerProfile
	require.NoError(t, db.First(&stored, "id = ?", profile.ID).Error)
	assert.False(t, stored.IsVerified)
	assert.Equal(t, "Willow Creek Organics", stored.BusinessName)
}

func TestGetBuyerProfile_NotFound(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc := newProfilesService(t, db)

	_, err := svc.GetBuyerProfile(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
