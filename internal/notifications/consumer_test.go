package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/organimart/organimart-backend/pkg/enums"
	"github.com/organimart/organimart-backend/pkg/outbox/payloads"
)

type stubSellerResolver struct {
	userIDs []uuid.UUID
}

func (s *stubSellerResolver) ListVerifiedSellerUserIDs(ctx context.Context, categoryID *uuid.UUID) ([]uuid.UUID, error) {
	return s.userIDs, nil
}

func newTestConsumer(repo *fakeRepository, resolver *stubSellerResolver) *Consumer {
	return &Consumer{repo: repo, sellers: resolver}
}

func mustPayload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func TestConsumer_OrderCreatedFansOutPerSeller(t *testing.T) {
	repo := &fakeRepository{}
	c := newTestConsumer(repo, &stubSellerResolver{})

	firstSeller := uuid.New()
	secondSeller := uuid.New()
	err := c.handleEvent(context.Background(), enums.EventOrderCreated, mustPayload(t, payloads.OrderCreatedEvent{
		OrderID:       uuid.New(),
		OrderNumber:   "ORD-1756600000000-042",
		BuyerUserID:   uuid.New(),
		SellerUserIDs: []uuid.UUID{firstSeller, secondSeller},
		Total:         decimal.RequireFromString("64.80"),
		ItemCount:     2,
	}))
	if err != nil {
		t.Fatalf("unexpected handle error: %v", err)
	}

	if len(repo.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.created))
	}
	for _, row := range repo.created {
		if row.Type != enums.NotificationTypeOrderStatus {
			t.Fatalf("expected ORDER_STATUS type, got %s", row.Type)
		}
	}
	if repo.created[0].UserID != firstSeller || repo.created[1].UserID != secondSeller {
		t.Fatal("expected one row per seller in order")
	}
}

func TestConsumer_RFQCreatedResolvesSellersAtConsumeTime(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	repo := &fakeRepository{}
	c := newTestConsumer(repo, &stubSellerResolver{userIDs: []uuid.UUID{seller, buyer}})

	err := c.handleEvent(context.Background(), enums.EventRFQCreated, mustPayload(t, payloads.RFQCreatedEvent{
		RFQID:       uuid.New(),
		RFQNumber:   "RFQ-1756600000000-017",
		BuyerUserID: buyer,
		ProductName: "Organic Quinoa",
		Quantity:    500,
		Unit:        enums.ProductUnitKilogram,
	}))
	if err != nil {
		t.Fatalf("unexpected handle error: %v", err)
	}

	// The requesting buyer never hears about their own request.
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	if repo.created[0].UserID != seller {
		t.Fatal("expected the verified seller as recipient")
	}
	if repo.created[0].Type != enums.NotificationTypeRFQReceived {
		t.Fatalf("expected RFQ_RECEIVED type, got %s", repo.created[0].Type)
	}
}

func TestConsumer_RFQClosedBranchesOnSelection(t *testing.T) {
	winner := uuid.New()
	loser := uuid.New()
	quoteID := uuid.New()
	repo := &fakeRepository{}
	c := newTestConsumer(repo, &stubSellerResolver{})

	err := c.handleEvent(context.Background(), enums.EventRFQClosed, mustPayload(t, payloads.RFQClosedEvent{
		RFQID:           uuid.New(),
		RFQNumber:       "RFQ-1756600000000-018",
		BuyerUserID:     uuid.New(),
		SelectedQuoteID: &quoteID,
		SellerUserIDs:   []uuid.UUID{winner, loser},
		SelectedUserID:  &winner,
	}))
	if err != nil {
		t.Fatalf("unexpected handle error: %v", err)
	}

	if len(repo.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.created))
	}
	if repo.created[0].Title != "Quote selected" {
		t.Fatalf("expected winner branch, got %q", repo.created[0].Title)
	}
	if repo.created[1].Title != "Request closed" {
		t.Fatalf("expected loser branch, got %q", repo.created[1].Title)
	}
}

func TestConsumer_CertificationReviewedBranchesOnOutcome(t *testing.T) {
	repo := &fakeRepository{}
	c := newTestConsumer(repo, &stubSellerResolver{})
	sellerUserID := uuid.New()
	notes := "document expired"

	err := c.handleEvent(context.Background(), enums.EventCertificationReviewed, mustPayload(t, payloads.CertificationReviewedEvent{
		CertificationID: uuid.New(),
		SellerUserID:    sellerUserID,
		Name:            "USDA Organic",
		Status:          enums.CertificationStatusRejected,
		Notes:           &notes,
	}))
	if err != nil {
		t.Fatalf("unexpected handle error: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	row := repo.created[0]
	if row.Title != "Certification rejected" {
		t.Fatalf("expected rejection branch, got %q", row.Title)
	}
	if row.UserID != sellerUserID {
		t.Fatal("expected the owning seller as recipient")
	}
}

func TestConsumer_CertificationSubmittedIgnored(t *testing.T) {
	repo := &fakeRepository{}
	c := newTestConsumer(repo, &stubSellerResolver{})

	err := c.handleEvent(context.Background(), enums.EventCertificationSubmitted, mustPayload(t, payloads.CertificationSubmittedEvent{
		CertificationID: uuid.New(),
		SellerUserID:    uuid.New(),
		Name:            "USDA Organic",
		IssuingBody:     "USDA",
	}))
	if err != nil {
		t.Fatalf("unexpected handle error: %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(repo.created))
	}
}

func TestConsumer_UserStatusChangedApprovalMessage(t *testing.T) {
	repo := &fakeRepository{}
	c := newTestConsumer(repo, &stubSellerResolver{})
	target := uuid.New()

	err := c.handleEvent(context.Background(), enums.EventUserStatusChanged, mustPayload(t, payloads.UserStatusChangedEvent{
		UserID: target,
		Role:   enums.UserRoleSeller,
		Status: enums.UserStatusActive,
	}))
	if err != nil {
		t.Fatalf("unexpected handle error: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	row := repo.created[0]
	if row.Type != enums.NotificationTypeAccountUpdate {
		t.Fatalf("expected ACCOUNT_UPDATE type, got %s", row.Type)
	}
	if row.Message != "Your seller account has been approved. You can now list products." {
		t.Fatalf("unexpected message %q", row.Message)
	}
}
