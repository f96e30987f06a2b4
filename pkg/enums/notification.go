package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOrderStatus         NotificationType = "ORDER_STATUS"
	NotificationTypeRFQReceived         NotificationType = "RFQ_RECEIVED"
	NotificationTypeQuoteReceived       NotificationType = "QUOTE_RECEIVED"
	NotificationTypeCertificationUpdate NotificationType = "CERTIFICATION_UPDATE"
	NotificationTypeAccountUpdate       NotificationType = "ACCOUNT_UPDATE"
	NotificationTypeSystem              NotificationType = "SYSTEM"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderStatus,
	NotificationTypeRFQReceived,
	NotificationTypeQuoteReceived,
	NotificationTypeCertificationUpdate,
	NotificationTypeAccountUpdate,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
