package enums

import "fmt"

// OrderStatus maps to the order_status enum in Postgres.
//
// PENDING -> CONFIRMED -> PROCESSING -> SHIPPED -> DELIVERED, with CANCELLED
// reachable only from PENDING or CONFIRMED. DELIVERED and CANCELLED are
// terminal.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// sellerOrderStatuses are the statuses a seller may move an order to.
// Cancellation is buyer-only and never reachable through the seller path.
var sellerOrderStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// IsValid checks whether the given status matches the canonical enum.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsSellerUpdatable reports whether a seller may set this status.
func (s OrderStatus) IsSellerUpdatable() bool {
	for _, candidate := range sellerOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsCancellable reports whether a buyer may still cancel at this status.
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// ParseOrderStatus converts raw strings into OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
