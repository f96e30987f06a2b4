package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
)

// Repository exposes buyer/seller profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindBuyerProfile loads the buyer profile owned by the user.
func (r *Repository) FindBuyerProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	var profile models.BuyerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindSellerProfile loads the seller profile owned by the user.
func (r *Repository) FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindSellerProfileWithCategories loads the seller profile plus category links.
func (r *Repository) FindSellerProfileWithCategories(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).
		Preload("Categories").
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveBuyerProfile persists the updated buyer profile columns.
func (r *Repository) SaveBuyerProfile(ctx context.Context, profile *models.BuyerProfile) error {
	return r.db.WithContext(ctx).
		Model(&models.BuyerProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"company_name":     profile.CompanyName,
			"shipping_address": profile.ShippingAddress,
		}).Error
}

// SaveSellerProfile persists the seller-editable profile columns.
// IsVerified is deliberately excluded; only admin activation flips it.
func (r *Repository) SaveSellerProfile(ctx context.Context, profile *models.SellerProfile) error {
	return r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"business_name":    profile.BusinessName,
			"description":      profile.Description,
			"business_address": profile.BusinessAddress,
		}).Error
}

// ReplaceSellerCategories swaps the seller's category links for the given set.
func (r *Repository) ReplaceSellerCategories(ctx context.Context, sellerProfileID uuid.UUID, categoryIDs []uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("seller_profile_id = ?", sellerProfileID).
		Delete(&models.SellerCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.SellerCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		links = append(links, models.SellerCategory{
			SellerProfileID: sellerProfileID,
			CategoryID:      id,
		})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// CountCategories returns how many of the given category ids exist.
func (r *Repository) CountCategories(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

// ListVerifiedSellerUserIDs returns the user ids of verified sellers,
// narrowed to one category when categoryID is set. Fan-out for new
// requests resolves recipients through this at consume time.
func (r *Repository) ListVerifiedSellerUserIDs(ctx context.Context, categoryID *uuid.UUID) ([]uuid.UUID, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("seller_profiles.is_verified = ?", true)
	if categoryID != nil {
		query = query.
			Joins("JOIN seller_categories sc ON sc.seller_profile_id = seller_profiles.id").
			Where("sc.category_id = ?", *categoryID)
	}

	var userIDs []uuid.UUID
	if err := query.Distinct().Pluck("seller_profiles.user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}
