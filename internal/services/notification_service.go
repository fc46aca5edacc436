// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

// EventType identifies a lifecycle event emitted by the announcement and
// application state machines.
type EventType string

const (
	EventAnnouncementPublished EventType = "announcement.published"
	EventAnnouncementBlocked   EventType = "announcement.blocked"
	EventAnnouncementClosed    EventType = "announcement.closed"
	EventApplicationCreated    EventType = "application.created"
	EventApplicationApproved   EventType = "application.approved"
	EventApplicationRejected   EventType = "application.rejected"
	EventApplicationClosed     EventType = "application.closed"
)

// Event carries the minimal addressing info for one recipient.
type Event struct {
	Type        EventType    `json:"type"`
	RecipientID uuid.UUID    `json:"recipient_id"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Data        models.JSONB `json:"data,omitempty"`
}

// NotificationService is the single dispatch point for lifecycle events.
// Dispatch failures are logged and swallowed; they never fail or roll back
// the transition that triggered them.
type NotificationService struct {
	db      *gorm.DB
	catalog *CatalogService
}

func NewNotificationService(db *gorm.DB, catalog *CatalogService) *NotificationService {
	return &NotificationService{db: db, catalog: catalog}
}

// Emit persists the event as an in-app notification for its recipient.
func (s *NotificationService) Emit(event Event) {
	if event.RecipientID == uuid.Nil {
		return
	}

	notification := &models.Notification{
		UserID: event.RecipientID,
		Type:   string(event.Type),
		Title:  event.Title,
		Body:   event.Body,
		Data:   event.Data,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"event":     event.Type,
			"recipient": event.RecipientID,
		}).WithError(err).Error("Failed to dispatch notification")
	}
}

// EmitToRegions fans an event out to every eligible user located in any of
// the given regions, excluding one user (the announcement owner). Delivery
// is best-effort per recipient.
func (s *NotificationService) EmitToRegions(regionIDs []int64, exclude uuid.UUID, build func(userID uuid.UUID) Event) {
	if len(regionIDs) == 0 {
		return
	}

	userIDs, err := s.catalog.UsersInRegions(regionIDs, true, true)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve region fan-out audience")
		return
	}

	for _, userID := range userIDs {
		if userID == exclude {
			continue
		}
		s.Emit(build(userID))
	}
}

// Event builders

func AnnouncementPublishedEvent(a *models.Announcement, recipient uuid.UUID) Event {
	return Event{
		Type:        EventAnnouncementPublished,
		RecipientID: recipient,
		Title:       "Announcement published",
		Body:        fmt.Sprintf("Announcement %q is now published", a.Title),
		Data:        models.JSONB{"announcement_id": a.ID.String()},
	}
}

func AnnouncementBlockedEvent(a *models.Announcement) Event {
	return Event{
		Type:        EventAnnouncementBlocked,
		RecipientID: a.OwnerID,
		Title:       "Announcement blocked",
		Body:        fmt.Sprintf("Announcement %q was blocked by an administrator", a.Title),
		Data:        models.JSONB{"announcement_id": a.ID.String()},
	}
}

func AnnouncementClosedEvent(a *models.Announcement, system bool) Event {
	body := fmt.Sprintf("Announcement %q was closed", a.Title)
	if system {
		body = fmt.Sprintf("Announcement %q expired and was closed automatically", a.Title)
	}
	return Event{
		Type:        EventAnnouncementClosed,
		RecipientID: a.OwnerID,
		Title:       "Announcement closed",
		Body:        body,
		Data:        models.JSONB{"announcement_id": a.ID.String(), "system": system},
	}
}

func ApplicationCreatedEvent(app *models.Application, announcement *models.Announcement) Event {
	return Event{
		Type:        EventApplicationCreated,
		RecipientID: announcement.OwnerID,
		Title:       "New application",
		Body:        fmt.Sprintf("A new application was submitted for %q", announcement.Title),
		Data: models.JSONB{
			"announcement_id": announcement.ID.String(),
			"application_id":  app.ID.String(),
		},
	}
}

func ApplicationApprovedEvent(app *models.Application, announcement *models.Announcement) Event {
	return Event{
		Type:        EventApplicationApproved,
		RecipientID: app.ApplicantID,
		Title:       "Application approved",
		Body:        fmt.Sprintf("Your application for %q was approved", announcement.Title),
		Data: models.JSONB{
			"announcement_id": announcement.ID.String(),
			"application_id":  app.ID.String(),
		},
	}
}

func ApplicationRejectedEvent(app *models.Application, announcement *models.Announcement) Event {
	return Event{
		Type:        EventApplicationRejected,
		RecipientID: app.ApplicantID,
		Title:       "Application rejected",
		Body:        fmt.Sprintf("Your application for %q was rejected", announcement.Title),
		Data: models.JSONB{
			"announcement_id": announcement.ID.String(),
			"application_id":  app.ID.String(),
		},
	}
}

func ApplicationClosedEvent(app *models.Application, announcement *models.Announcement) Event {
	return Event{
		Type:        EventApplicationClosed,
		RecipientID: app.ApplicantID,
		Title:       "Application closed",
		Body:        fmt.Sprintf("Your application for %q was closed", announcement.Title),
		Data: models.JSONB{
			"announcement_id": announcement.ID.String(),
			"application_id":  app.ID.String(),
		},
	}
}
