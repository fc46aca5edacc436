// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type   string     `json:"type" gorm:"size:50;not null;index"`
	Title  string     `json:"title" gorm:"size:255;not null"`
	Body   string     `json:"body" gorm:"type:text"`
	Data   JSONB      `json:"data" gorm:"type:jsonb"`
	ReadAt *time.Time `json:"read_at"`
}
