package orders

import (
	"github.com/organimart/organimart-backend/pkg/db/models"
)

// CreateOrderInput carries the checkout payload. The billing address
// defaults to the shipping address when omitted; payment method is stored
// as a snapshot only, no processing happens here.
type CreateOrderInput struct {
	ShippingAddress *string `json:"shipping_address,omitempty"`
	BillingAddress  *string `json:"billing_address,omitempty"`
	PaymentMethod   *string `json:"payment_method,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// UpdateStatusInput carries a seller's fulfillment progression.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListInput narrows buyer/seller order listings.
type ListInput struct {
	Status string
	Limit  int
	Cursor string
}

// ListResult carries a page of orders plus the next cursor.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}
