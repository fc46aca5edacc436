// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// DateSlice stores a list of dates as a JSON column.
type DateSlice []time.Time

func (d DateSlice) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *DateSlice) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for DateSlice", value)
	}

	return json.Unmarshal(bytes, d)
}

// Enums
type UserType string

const (
	UserTypeFarmer  UserType = "farmer"
	UserTypeCompany UserType = "company"
	UserTypeAdmin   UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type AnnouncementType string

const (
	AnnouncementTypeSell AnnouncementType = "sell"
	AnnouncementTypeBuy  AnnouncementType = "buy"
)

type AnnouncementCategory string

const (
	AnnouncementCategoryGoods   AnnouncementCategory = "goods"
	AnnouncementCategoryRent    AnnouncementCategory = "rent"
	AnnouncementCategoryService AnnouncementCategory = "service"
)

type AnnouncementStatus string

const (
	AnnouncementStatusPending   AnnouncementStatus = "pending"
	AnnouncementStatusPublished AnnouncementStatus = "published"
	AnnouncementStatusClosed    AnnouncementStatus = "closed"
	AnnouncementStatusCanceled  AnnouncementStatus = "canceled"
	AnnouncementStatusBlocked   AnnouncementStatus = "blocked"
)

// announcementTransitions is the one-way transition table. No state
// re-enters pending.
var announcementTransitions = map[AnnouncementStatus][]AnnouncementStatus{
	AnnouncementStatusPending:   {AnnouncementStatusPublished, AnnouncementStatusCanceled, AnnouncementStatusBlocked},
	AnnouncementStatusPublished: {AnnouncementStatusClosed, AnnouncementStatusCanceled, AnnouncementStatusBlocked},
	AnnouncementStatusClosed:    {},
	AnnouncementStatusCanceled:  {},
	AnnouncementStatusBlocked:   {},
}

func (s AnnouncementStatus) CanTransitionTo(next AnnouncementStatus) bool {
	for _, allowed := range announcementTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AnnouncementStatus) AllowedNext() []AnnouncementStatus {
	return announcementTransitions[s]
}

func (s AnnouncementStatus) IsTerminal() bool {
	return len(announcementTransitions[s]) == 0
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
	ApplicationStatusClosed   ApplicationStatus = "closed"
)

// applicationTransitions allows a rejected application to be reopened;
// closed is the only fully terminal state.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusClosed},
	ApplicationStatusApproved: {ApplicationStatusClosed},
	ApplicationStatusRejected: {ApplicationStatusPending},
	ApplicationStatusClosed:   {},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) AllowedNext() []ApplicationStatus {
	return applicationTransitions[s]
}

func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}
