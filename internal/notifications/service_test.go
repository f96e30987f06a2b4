package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/pkg/db/models"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	paginationpkg "github.com/organimart/organimart-backend/pkg/pagination"
)

type fakeRepository struct {
	created       []models.Notification
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteFn      func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	deleteReadFn  func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	f.created = append(f.created, notifications...)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(f.created)), nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, notificationID)
	}
	return false, nil
}

func (f *fakeRepository) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.deleteReadFn != nil {
		return f.deleteReadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeUserFinder struct {
	known map[uuid.UUID]bool
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.known[id] {
		return &models.User{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo, &fakeUserFinder{known: map[uuid.UUID]bool{}})
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Limit != 1 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s got %s", second.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	errCode := pkgerrors.As(err).Code()
	if errCode != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", errCode)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected not found error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_DeleteNotFound(t *testing.T) {
	repo := &fakeRepository{
		deleteFn: func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newServiceWithRepo(repo)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_DeleteRead(t *testing.T) {
	repo := &fakeRepository{
		deleteReadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 5, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.DeleteRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected delete read error: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 deleted rows, got %d", count)
	}
}

func TestService_SendValidatesTargetUser(t *testing.T) {
	repo := &fakeRepository{}
	known := uuid.New()
	svc, err := NewService(repo, &fakeUserFinder{known: map[uuid.UUID]bool{known: true}})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.Send(context.Background(), SendInput{
		UserID:  uuid.New(),
		Title:   "Maintenance window",
		Message: "The marketplace will be offline tonight.",
	})
	if err == nil {
		t.Fatal("expected not found for unknown target")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}

	sent, err := svc.Send(context.Background(), SendInput{
		UserID:  known,
		Title:   "Maintenance window",
		Message: "The marketplace will be offline tonight.",
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if sent.Type != "SYSTEM" {
		t.Fatalf("expected SYSTEM default type, got %s", sent.Type)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.created))
	}
}

func TestService_SendBulkFailsBeforeAnyWrite(t *testing.T) {
	repo := &fakeRepository{}
	known := uuid.New()
	svc, err := NewService(repo, &fakeUserFinder{known: map[uuid.UUID]bool{known: true}})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.SendBulk(context.Background(), BulkSendInput{
		UserIDs: []uuid.UUID{known, uuid.New()},
		Title:   "Policy update",
		Message: "Please review the new seller terms.",
	})
	if err == nil {
		t.Fatal("expected not found for unknown target")
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no rows written, got %d", len(repo.created))
	}

	count, err := svc.SendBulk(context.Background(), BulkSendInput{
		UserIDs: []uuid.UUID{known, known},
		Title:   "Policy update",
		Message: "Please review the new seller terms.",
	})
	if err != nil {
		t.Fatalf("unexpected bulk send error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected deduped single row, got %d", count)
	}
}

func TestService_SendInvalidType(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.Send(context.Background(), SendInput{
		UserID:  uuid.New(),
		Type:    "CARRIER_PIGEON",
		Title:   "Hello",
		Message: "World",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
