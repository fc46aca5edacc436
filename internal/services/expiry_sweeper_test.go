// internal/services/expiry_sweeper_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestExpiredRentPastEndDate(t *testing.T) {
	today := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	a := &models.Announcement{
		Status:   models.AnnouncementStatusPublished,
		Category: models.AnnouncementCategoryRent,
		DateTo:   date(2026, 2, 9),
	}
	assert.True(t, expired(a, today))

	a.DateTo = date(2026, 2, 11)
	assert.False(t, expired(a, today))

	// The end date itself is not yet expired
	a.DateTo = date(2026, 2, 10)
	assert.False(t, expired(a, today))
}

func TestExpiredByExpiryDateAnyCategory(t *testing.T) {
	today := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	a := &models.Announcement{
		Status:     models.AnnouncementStatusPublished,
		Category:   models.AnnouncementCategoryGoods,
		ExpiryDate: date(2026, 2, 1),
	}
	assert.True(t, expired(a, today))

	a.Category = models.AnnouncementCategoryService
	assert.True(t, expired(a, today))

	a.ExpiryDate = date(2026, 3, 1)
	assert.False(t, expired(a, today))

	a.ExpiryDate = nil
	assert.False(t, expired(a, today))
}

func TestExpiredOnlyAppliesToPublished(t *testing.T) {
	today := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	// The published precondition makes repeated sweeps idempotent: a closed
	// announcement is never a candidate again.
	for _, status := range []models.AnnouncementStatus{
		models.AnnouncementStatusPending,
		models.AnnouncementStatusClosed,
		models.AnnouncementStatusCanceled,
		models.AnnouncementStatusBlocked,
	} {
		a := &models.Announcement{
			Status:     status,
			Category:   models.AnnouncementCategoryRent,
			DateTo:     date(2026, 1, 1),
			ExpiryDate: date(2026, 1, 1),
		}
		assert.False(t, expired(a, today), "status %s must not be swept", status)
	}
}
