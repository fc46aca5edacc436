// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	BaseModel
	AnnouncementID uuid.UUID         `json:"announcement_id" gorm:"type:uuid;not null;index"`
	ApplicantID    uuid.UUID         `json:"applicant_id" gorm:"type:uuid;not null;index"`
	Count          *int              `json:"count,omitempty"`
	DeliveryDates  DateSlice         `json:"delivery_dates" gorm:"type:jsonb"`
	Notes          string            `json:"notes" gorm:"type:text"`
	Status         ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ApprovedAt     *time.Time        `json:"approved_at"`
	ApprovedBy     *uuid.UUID        `json:"approved_by" gorm:"type:uuid"`

	// Relationships
	Announcement Announcement `json:"announcement,omitempty" gorm:"foreignKey:AnnouncementID"`
	Applicant    User         `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
}
