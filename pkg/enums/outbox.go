package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateRFQ           OutboxAggregateType = "rfq"
	AggregateQuote         OutboxAggregateType = "quote"
	AggregateCertification OutboxAggregateType = "certification"
	AggregateUser          OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateRFQ,
	AggregateQuote,
	AggregateCertification,
	AggregateUser,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated           OutboxEventType = "order_created"
	EventOrderCanceled          OutboxEventType = "order_canceled"
	EventOrderStatusChanged     OutboxEventType = "order_status_changed"
	EventRFQCreated             OutboxEventType = "rfq_created"
	EventRFQClosed              OutboxEventType = "rfq_closed"
	EventQuoteSubmitted         OutboxEventType = "quote_submitted"
	EventQuoteUpdated           OutboxEventType = "quote_updated"
	EventCertificationSubmitted OutboxEventType = "certification_submitted"
	EventCertificationReviewed  OutboxEventType = "certification_reviewed"
	EventUserStatusChanged      OutboxEventType = "user_status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderCanceled,
	EventOrderStatusChanged,
	EventRFQCreated,
	EventRFQClosed,
	EventQuoteSubmitted,
	EventQuoteUpdated,
	EventCertificationSubmitted,
	EventCertificationReviewed,
	EventUserStatusChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
