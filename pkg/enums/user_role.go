package enums

import "fmt"

// UserRole maps to the user_role enum in Postgres.
type UserRole string

const (
	UserRoleBuyer  UserRole = "BUYER"
	UserRoleSeller UserRole = "SELLER"
	UserRoleAdmin  UserRole = "ADMIN"
)

var validUserRoles = []UserRole{
	UserRoleBuyer,
	UserRoleSeller,
	UserRoleAdmin,
}

// IsValid checks whether the given role matches the canonical enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw strings into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
