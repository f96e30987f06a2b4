package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/organimart/organimart-backend/pkg/enums"
)

// OrderCreatedEvent signals a new order placed from a cart. SellerUserIDs
// carries the distinct seller accounts so fan-out needs no extra lookups.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	BuyerUserID   uuid.UUID       `json:"buyer_user_id"`
	SellerUserIDs []uuid.UUID     `json:"seller_user_ids"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
}

// OrderCanceledEvent is emitted when a buyer cancels a pre-processing order.
type OrderCanceledEvent struct {
	OrderID       uuid.UUID   `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	BuyerUserID   uuid.UUID   `json:"buyer_user_id"`
	SellerUserIDs []uuid.UUID `json:"seller_user_ids"`
	CanceledAt    time.Time   `json:"canceled_at"`
}

// OrderStatusChangedEvent reports a seller-driven status transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	BuyerUserID uuid.UUID         `json:"buyer_user_id"`
	Status      enums.OrderStatus `json:"status"`
}

// RFQCreatedEvent announces a new request for quotes to matching sellers.
// Recipient sellers are resolved at consume time so late verifications
// still receive the request.
type RFQCreatedEvent struct {
	RFQID       uuid.UUID         `json:"rfq_id"`
	RFQNumber   string            `json:"rfq_number"`
	BuyerUserID uuid.UUID         `json:"buyer_user_id"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	ProductName string            `json:"product_name"`
	Quantity    int               `json:"quantity"`
	Unit        enums.ProductUnit `json:"unit"`
}

// RFQClosedEvent notifies every quoting seller of the outcome.
type RFQClosedEvent struct {
	RFQID           uuid.UUID   `json:"rfq_id"`
	RFQNumber       string      `json:"rfq_number"`
	BuyerUserID     uuid.UUID   `json:"buyer_user_id"`
	SelectedQuoteID *uuid.UUID  `json:"selected_quote_id,omitempty"`
	SellerUserIDs   []uuid.UUID `json:"seller_user_ids"`
	SelectedUserID  *uuid.UUID  `json:"selected_user_id,omitempty"`
}

// QuoteSubmittedEvent tells the requesting buyer a seller responded.
type QuoteSubmittedEvent struct {
	QuoteID      uuid.UUID       `json:"quote_id"`
	RFQID        uuid.UUID       `json:"rfq_id"`
	RFQNumber    string          `json:"rfq_number"`
	BuyerUserID  uuid.UUID       `json:"buyer_user_id"`
	SellerName   string          `json:"seller_name"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// QuoteUpdatedEvent tells the requesting buyer a quote was revised.
type QuoteUpdatedEvent struct {
	QuoteID      uuid.UUID       `json:"quote_id"`
	RFQID        uuid.UUID       `json:"rfq_id"`
	RFQNumber    string          `json:"rfq_number"`
	BuyerUserID  uuid.UUID       `json:"buyer_user_id"`
	SellerName   string          `json:"seller_name"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// CertificationSubmittedEvent records a new seller claim entering review.
type CertificationSubmittedEvent struct {
	CertificationID uuid.UUID `json:"certification_id"`
	SellerUserID    uuid.UUID `json:"seller_user_id"`
	Name            string    `json:"name"`
	IssuingBody     string    `json:"issuing_body"`
}

// CertificationReviewedEvent notifies the owning seller of a review outcome.
type CertificationReviewedEvent struct {
	CertificationID uuid.UUID                 `json:"certification_id"`
	SellerUserID    uuid.UUID                 `json:"seller_user_id"`
	Name            string                    `json:"name"`
	Status          enums.CertificationStatus `json:"status"`
	Notes           *string                   `json:"notes,omitempty"`
}

// UserStatusChangedEvent notifies a user of an admin account decision.
type UserStatusChangedEvent struct {
	UserID uuid.UUID        `json:"user_id"`
	Role   enums.UserRole   `json:"role"`
	Status enums.UserStatus `json:"status"`
}
