package auth

import (
	"github.com/organimart/organimart-backend/internal/users"
	"github.com/organimart/organimart-backend/pkg/types"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest contains the payload required for onboarding a new account.
// Seller fields are required when role is SELLER and ignored otherwise.
type RegisterRequest struct {
	FirstName       string         `json:"first_name" validate:"required"`
	LastName        string         `json:"last_name" validate:"required"`
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=8"`
	Phone           *string        `json:"phone,omitempty"`
	Role            string         `json:"role" validate:"required"`
	CompanyName     *string        `json:"company_name,omitempty"`
	ShippingAddress *types.Address `json:"shipping_address,omitempty"`
	BusinessName    string         `json:"business_name,omitempty"`
	Description     *string        `json:"description,omitempty"`
	BusinessAddress *types.Address `json:"business_address,omitempty"`
}

// RegisterResponse reports the created account and whether it can log in yet.
type RegisterResponse struct {
	User            *users.UserDTO `json:"user"`
	PendingApproval bool           `json:"pending_approval"`
}

// LoginResponse contains the token and user produced by a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
}

// ChangePasswordRequest carries the credential rotation payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
