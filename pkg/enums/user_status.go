package enums

import "fmt"

// UserStatus maps to the user_status enum in Postgres. Sellers start PENDING
// and require admin approval before they can log in.
type UserStatus string

const (
	UserStatusPending   UserStatus = "PENDING"
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusRejected  UserStatus = "REJECTED"
)

var validUserStatuses = []UserStatus{
	UserStatusPending,
	UserStatusActive,
	UserStatusSuspended,
	UserStatusRejected,
}

// IsValid checks whether the given status matches the canonical enum.
func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUserStatus converts raw strings into UserStatus.
func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
