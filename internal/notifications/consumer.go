package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	"github.com/organimart/organimart-backend/pkg/logger"
	"github.com/organimart/organimart-backend/pkg/outbox"
	"github.com/organimart/organimart-backend/pkg/outbox/idempotency"
	"github.com/organimart/organimart-backend/pkg/outbox/payloads"
)

const domainNotificationConsumer = "domain-notifications"

type consumerRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

type verifiedSellerResolver interface {
	ListVerifiedSellerUserIDs(ctx context.Context, categoryID *uuid.UUID) ([]uuid.UUID, error)
}

// Consumer turns domain events into per-user notification rows. Recipients
// for new requests are resolved here rather than at emit time, so sellers
// verified after the event was written still receive it.
type Consumer struct {
	repo         consumerRepository
	sellers      verifiedSellerResolver
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a domain notification consumer.
func NewConsumer(repo consumerRepository, sellers verifiedSellerResolver, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller resolver required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		sellers:      sellers,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventOrderCreated:
		return decodeAndHandle(ctx, data, c.handleOrderCreated)
	case enums.EventOrderCanceled:
		return decodeAndHandle(ctx, data, c.handleOrderCanceled)
	case enums.EventOrderStatusChanged:
		return decodeAndHandle(ctx, data, c.handleOrderStatusChanged)
	case enums.EventRFQCreated:
		return decodeAndHandle(ctx, data, c.handleRFQCreated)
	case enums.EventRFQClosed:
		return decodeAndHandle(ctx, data, c.handleRFQClosed)
	case enums.EventQuoteSubmitted:
		return decodeAndHandle(ctx, data, c.handleQuoteSubmitted)
	case enums.EventQuoteUpdated:
		return decodeAndHandle(ctx, data, c.handleQuoteUpdated)
	case enums.EventCertificationReviewed:
		return decodeAndHandle(ctx, data, c.handleCertificationReviewed)
	case enums.EventUserStatusChanged:
		return decodeAndHandle(ctx, data, c.handleUserStatusChanged)
	default:
		// certification_submitted stays outbox-only; admins work the
		// review queue instead of an inbox.
		return nil
	}
}

func decodeAndHandle[T any](ctx context.Context, data json.RawMessage, handle func(context.Context, T) error) error {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return handle(ctx, payload)
}

func (c *Consumer) handleOrderCreated(ctx context.Context, payload payloads.OrderCreatedEvent) error {
	rows := make([]models.Notification, 0, len(payload.SellerUserIDs))
	for _, sellerUserID := range payload.SellerUserIDs {
		rows = append(rows, models.Notification{
			UserID:  sellerUserID,
			Type:    enums.NotificationTypeOrderStatus,
			Title:   "New order received",
			Message: fmt.Sprintf("Order %s includes your products (%d items, $%s total).", payload.OrderNumber, payload.ItemCount, payload.Total.StringFixed(2)),
			Data:    mustData(map[string]any{"order_id": payload.OrderID}),
		})
	}
	return c.repo.CreateBatch(ctx, rows)
}

func (c *Consumer) handleOrderCanceled(ctx context.Context, payload payloads.OrderCanceledEvent) error {
	rows := make([]models.Notification, 0, len(payload.SellerUserIDs))
	for _, sellerUserID := range payload.SellerUserIDs {
		rows = append(rows, models.Notification{
			UserID:  sellerUserID,
			Type:    enums.NotificationTypeOrderStatus,
			Title:   "Order cancelled",
			Message: fmt.Sprintf("Order %s was cancelled by the buyer.", payload.OrderNumber),
			Data:    mustData(map[string]any{"order_id": payload.OrderID}),
		})
	}
	return c.repo.CreateBatch(ctx, rows)
}

func (c *Consumer) handleOrderStatusChanged(ctx context.Context, payload payloads.OrderStatusChangedEvent) error {
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.BuyerUserID,
		Type:    enums.NotificationTypeOrderStatus,
		Title:   "Order update",
		Message: fmt.Sprintf("Order %s is now %s.", payload.OrderNumber, payload.Status),
		Data:    mustData(map[string]any{"order_id": payload.OrderID, "status": payload.Status}),
	})
}

func (c *Consumer) handleRFQCreated(ctx context.Context, payload payloads.RFQCreatedEvent) error {
	sellerUserIDs, err := c.sellers.ListVerifiedSellerUserIDs(ctx, payload.CategoryID)
	if err != nil {
		return fmt.Errorf("resolve sellers: %w", err)
	}

	rows := make([]models.Notification, 0, len(sellerUserIDs))
	for _, sellerUserID := range sellerUserIDs {
		if sellerUserID == payload.BuyerUserID {
			continue
		}
		rows = append(rows, models.Notification{
			UserID:  sellerUserID,
			Type:    enums.NotificationTypeRFQReceived,
			Title:   "New request for quotes",
			Message: fmt.Sprintf("%s requested: %d %s of %s.", payload.RFQNumber, payload.Quantity, payload.Unit, payload.ProductName),
			Data:    mustData(map[string]any{"rfq_id": payload.RFQID}),
		})
	}
	return c.repo.CreateBatch(ctx, rows)
}

func (c *Consumer) handleRFQClosed(ctx context.Context, payload payloads.RFQClosedEvent) error {
	rows := make([]models.Notification, 0, len(payload.SellerUserIDs))
	for _, sellerUserID := range payload.SellerUserIDs {
		title := "Request closed"
		message := fmt.Sprintf("%s was closed. Your quote was not selected.", payload.RFQNumber)
		selected := payload.SelectedUserID != nil && *payload.SelectedUserID == sellerUserID
		if selected {
			title = "Quote selected"
			message = fmt.Sprintf("Congratulations, your quote on %s was selected.", payload.RFQNumber)
		} else if payload.SelectedQuoteID == nil {
			message = fmt.Sprintf("%s was closed without a selection.", payload.RFQNumber)
		}
		rows = append(rows, models.Notification{
			UserID:  sellerUserID,
			Type:    enums.NotificationTypeQuoteReceived,
			Title:   title,
			Message: message,
			Data:    mustData(map[string]any{"rfq_id": payload.RFQID, "selected": selected}),
		})
	}
	return c.repo.CreateBatch(ctx, rows)
}

func (c *Consumer) handleQuoteSubmitted(ctx context.Context, payload payloads.QuoteSubmittedEvent) error {
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.BuyerUserID,
		Type:    enums.NotificationTypeQuoteReceived,
		Title:   "New quote received",
		Message: fmt.Sprintf("%s quoted $%s per unit on %s.", payload.SellerName, payload.PricePerUnit.StringFixed(2), payload.RFQNumber),
		Data:    mustData(map[string]any{"rfq_id": payload.RFQID, "quote_id": payload.QuoteID}),
	})
}

func (c *Consumer) handleQuoteUpdated(ctx context.Context, payload payloads.QuoteUpdatedEvent) error {
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.BuyerUserID,
		Type:    enums.NotificationTypeQuoteReceived,
		Title:   "Quote revised",
		Message: fmt.Sprintf("%s revised their quote on %s to $%s per unit.", payload.SellerName, payload.RFQNumber, payload.PricePerUnit.StringFixed(2)),
		Data:    mustData(map[string]any{"rfq_id": payload.RFQID, "quote_id": payload.QuoteID}),
	})
}

func (c *Consumer) handleCertificationReviewed(ctx context.Context, payload payloads.CertificationReviewedEvent) error {
	title := "Certification verified"
	message := fmt.Sprintf("Your certification %q has been verified.", payload.Name)
	if payload.Status == enums.CertificationStatusRejected {
		title = "Certification rejected"
		message = fmt.Sprintf("Your certification %q was rejected.", payload.Name)
		if payload.Notes != nil && *payload.Notes != "" {
			message = fmt.Sprintf("Your certification %q was rejected: %s", payload.Name, *payload.Notes)
		}
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.SellerUserID,
		Type:    enums.NotificationTypeCertificationUpdate,
		Title:   title,
		Message: message,
		Data:    mustData(map[string]any{"certification_id": payload.CertificationID, "status": payload.Status}),
	})
}

func (c *Consumer) handleUserStatusChanged(ctx context.Context, payload payloads.UserStatusChangedEvent) error {
	message := fmt.Sprintf("Your account status changed to %s.", payload.Status)
	if payload.Role == enums.UserRoleSeller && payload.Status == enums.UserStatusActive {
		message = "Your seller account has been approved. You can now list products."
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeAccountUpdate,
		Title:   "Account update",
		Message: message,
		Data:    mustData(map[string]any{"status": payload.Status}),
	})
}

func mustData(fields map[string]any) json.RawMessage {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return raw
}
