// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

func TestAnnouncementEventBuilders(t *testing.T) {
	owner := uuid.New()
	a := &models.Announcement{
		BaseModel: models.BaseModel{ID: uuid.New()},
		OwnerID:   owner,
		Title:     "Wheat for sale",
	}

	recipient := uuid.New()
	published := AnnouncementPublishedEvent(a, recipient)
	assert.Equal(t, EventAnnouncementPublished, published.Type)
	assert.Equal(t, recipient, published.RecipientID)
	assert.Equal(t, a.ID.String(), published.Data["announcement_id"])

	blocked := AnnouncementBlockedEvent(a)
	assert.Equal(t, EventAnnouncementBlocked, blocked.Type)
	assert.Equal(t, owner, blocked.RecipientID)

	closed := AnnouncementClosedEvent(a, false)
	assert.Equal(t, EventAnnouncementClosed, closed.Type)
	assert.Equal(t, owner, closed.RecipientID)
	assert.Equal(t, false, closed.Data["system"])

	expired := AnnouncementClosedEvent(a, true)
	assert.Equal(t, true, expired.Data["system"])
	assert.Contains(t, expired.Body, "expired")
	assert.NotEqual(t, closed.Body, expired.Body)
}

func TestApplicationEventBuilders(t *testing.T) {
	owner := uuid.New()
	applicant := uuid.New()
	a := &models.Announcement{
		BaseModel: models.BaseModel{ID: uuid.New()},
		OwnerID:   owner,
		Title:     "Tractor rental",
	}
	app := &models.Application{
		BaseModel:      models.BaseModel{ID: uuid.New()},
		AnnouncementID: a.ID,
		ApplicantID:    applicant,
	}

	// A new application addresses the announcement owner; every other
	// application event addresses the applicant.
	created := ApplicationCreatedEvent(app, a)
	assert.Equal(t, EventApplicationCreated, created.Type)
	assert.Equal(t, owner, created.RecipientID)
	assert.Equal(t, app.ID.String(), created.Data["application_id"])

	approved := ApplicationApprovedEvent(app, a)
	assert.Equal(t, EventApplicationApproved, approved.Type)
	assert.Equal(t, applicant, approved.RecipientID)

	rejected := ApplicationRejectedEvent(app, a)
	assert.Equal(t, EventApplicationRejected, rejected.Type)
	assert.Equal(t, applicant, rejected.RecipientID)

	appClosed := ApplicationClosedEvent(app, a)
	assert.Equal(t, EventApplicationClosed, appClosed.Type)
	assert.Equal(t, applicant, appClosed.RecipientID)
}
