package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/internal/users"
	"github.com/organimart/organimart-backend/pkg/config"
	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/security"
)

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          txRunner
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the user plus the profile matching their role. Buyers are
// active immediately; sellers stay PENDING until an admin approves them.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	role, err := enums.ParseUserRole(req.Role)
	if err != nil || role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be BUYER or SELLER")
	}
	if role == enums.UserRoleSeller && strings.TrimSpace(req.BusinessName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_name is required for sellers")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	status := enums.UserStatusActive
	if role == enums.UserRoleSeller {
		status = enums.UserStatusPending
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Role:         role,
			Status:       status,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		switch role {
		case enums.UserRoleBuyer:
			profile := &models.BuyerProfile{
				ID:              uuid.New(),
				UserID:          user.ID,
				CompanyName:     req.CompanyName,
				ShippingAddress: req.ShippingAddress,
			}
			if err := tx.WithContext(ctx).Create(profile).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create buyer profile")
			}
		case enums.UserRoleSeller:
			profile := &models.SellerProfile{
				ID:              uuid.New(),
				UserID:          user.ID,
				BusinessName:    strings.TrimSpace(req.BusinessName),
				Description:     req.Description,
				BusinessAddress: req.BusinessAddress,
			}
			if err := tx.WithContext(ctx).Create(profile).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create seller profile")
			}
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		User:            users.FromModel(created),
		PendingApproval: status == enums.UserStatusPending,
	}, nil
}
