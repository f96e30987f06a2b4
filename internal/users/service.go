package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
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

// Service exposes the admin-facing account management operations.
type Service struct {
	repo   *Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a users service with the required dependencies.
func NewService(repo *Repository, tx txRunner, outbox outboxPublisher) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{repo: repo, tx: tx, outbox: outbox}, nil
}

// ListUsersInput narrows the admin user listing.
type ListUsersInput struct {
	Role   string
	Status string
	Limit  int
	Cursor string
}

// ListUsersResult carries a page of users plus the next cursor.
type ListUsersResult struct {
	Users      []UserDTO
	NextCursor string
}

// ListUsers returns users filtered by role and status.
func (s *Service) ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error) {
	filter := ListFilter{Limit: input.Limit}

	if input.Role != "" {
		role, err := enums.ParseUserRole(input.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
		}
		filter.Role = &role
	}
	if input.Status != "" {
		status, err := enums.ParseUserStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	result := &ListUsersResult{Users: make([]UserDTO, 0, len(rows))}
	for i := range rows {
		result.Users = append(result.Users, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// GetUser loads a single user with profile associations.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByIDWithProfiles(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

// ListPendingSellers returns seller accounts awaiting review.
func (s *Service) ListPendingSellers(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.ListPendingSellers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending sellers")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// UpdateUserStatusInput carries an admin status decision.
type UpdateUserStatusInput struct {
	UserID      uuid.UUID
	Status      string
	ActorUserID uuid.UUID
}

// UpdateUserStatus sets the account status. Activating a seller also marks
// their seller profile verified so they can list products.
func (s *Service) UpdateUserStatus(ctx context.Context, input UpdateUserStatusInput) (*UserDTO, error) {
	status, err := enums.ParseUserStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	user, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be moderated")
	}
	if user.Status == status {
		return FromModel(user), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatus(ctx, user.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user status")
		}
		if user.Role == enums.UserRoleSeller && status == enums.UserStatusActive {
			if err := tx.WithContext(ctx).
				Model(&models.SellerProfile{}).
				Where("user_id = ?", user.ID).
				Update("is_verified", true).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify seller profile")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserStatusChanged,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.UserRoleAdmin)},
			Data: payloads.UserStatusChangedEvent{
				UserID: user.ID,
				Role:   user.Role,
				Status: status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	user.Status = status
	return FromModel(user), nil
}
