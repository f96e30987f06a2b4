package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/organimart/organimart-backend/pkg/enums"
)

// Notification is an append-only per-user in-app message.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title     string                 `gorm:"column:title;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	Data      json.RawMessage        `gorm:"column:data;type:jsonb"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
