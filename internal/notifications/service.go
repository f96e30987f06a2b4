package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

// Service defines notification list/read/delete operations plus admin sends.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) error
	DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Send(ctx context.Context, input SendInput) (*models.Notification, error)
	SendBulk(ctx context.Context, input BulkSendInput) (int, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo  Repository
	users userFinder
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// SendInput carries an admin direct message to one user.
type SendInput struct {
	UserID  uuid.UUID       `json:"user_id" validate:"required"`
	Type    string          `json:"type,omitempty"`
	Title   string          `json:"title" validate:"required"`
	Message string          `json:"message" validate:"required"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// BulkSendInput carries one admin message to several users.
type BulkSendInput struct {
	UserIDs []uuid.UUID     `json:"user_ids" validate:"required,min=1"`
	Type    string          `json:"type,omitempty"`
	Title   string          `json:"title" validate:"required"`
	Message string          `json:"message" validate:"required"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository, users userFinder) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user finder required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and notification id required")
	}

	found, err := s.repo.Delete(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.DeleteRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete read notifications")
	}
	return count, nil
}

// Send writes one admin-authored row synchronously so the admin sees
// validation failures immediately.
func (s *service) Send(ctx context.Context, input SendInput) (*models.Notification, error) {
	kind, title, message, err := s.validateMessage(input.Type, input.Title, input.Message)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    input.Data,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send notification")
	}
	return notification, nil
}

// SendBulk writes one row per target user. Every target is validated
// before the first insert so a bad id fails the whole batch.
func (s *service) SendBulk(ctx context.Context, input BulkSendInput) (int, error) {
	kind, title, message, err := s.validateMessage(input.Type, input.Title, input.Message)
	if err != nil {
		return 0, err
	}
	if len(input.UserIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user ids required")
	}

	seen := make(map[uuid.UUID]struct{}, len(input.UserIDs))
	targets := make([]uuid.UUID, 0, len(input.UserIDs))
	for _, userID := range input.UserIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		if err := s.requireUser(ctx, userID); err != nil {
			return 0, err
		}
		targets = append(targets, userID)
	}

	rows := make([]models.Notification, 0, len(targets))
	for _, userID := range targets {
		rows = append(rows, models.Notification{
			UserID:  userID,
			Type:    kind,
			Title:   title,
			Message: message,
			Data:    input.Data,
		})
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send notifications")
	}
	return len(rows), nil
}

func (s *service) validateMessage(rawType, rawTitle, rawMessage string) (enums.NotificationType, string, string, error) {
	title := strings.TrimSpace(rawTitle)
	message := strings.TrimSpace(rawMessage)
	if title == "" || message == "" {
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}

	kind := enums.NotificationTypeSystem
	if rawType != "" {
		parsed, err := enums.ParseNotificationType(rawType)
		if err != nil {
			return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
		}
		kind = parsed
	}
	return kind, title, message, nil
}

func (s *service) requireUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found").
				WithDetails(map[string]any{"user_id": userID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return nil
}
