// internal/services/announcement_rules_test.go
package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/armanrma7/agronetixbeck-sub000/internal/apperrors"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

func intPtr(v int) *int { return &v }

func TestValidateCategoryFieldsGoods(t *testing.T) {
	req := &CreateAnnouncementRequest{
		Category: models.AnnouncementCategoryGoods,
		Count:    intPtr(100),
	}
	assert.NoError(t, validateCategoryFields(req))

	// count is required and must be positive
	req.Count = nil
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)
	req.Count = intPtr(0)
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)

	// daily limit must fit inside count
	req.Count = intPtr(100)
	req.DailyLimit = intPtr(150)
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)
	req.DailyLimit = intPtr(50)
	assert.NoError(t, validateCategoryFields(req))
}

func TestValidateCategoryFieldsRent(t *testing.T) {
	req := &CreateAnnouncementRequest{
		Category: models.AnnouncementCategoryRent,
		DateFrom: date(2026, 1, 1),
		DateTo:   date(2026, 6, 1),
	}
	assert.NoError(t, validateCategoryFields(req))

	// date_from must be strictly before date_to
	req.DateFrom = date(2026, 2, 1)
	req.DateTo = date(2026, 1, 15)
	err := validateCategoryFields(req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "date_from")

	req.DateFrom = date(2026, 1, 1)
	req.DateTo = date(2026, 1, 1)
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)

	// both dates are required
	req.DateTo = nil
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)
}

func TestValidateCategoryFieldsService(t *testing.T) {
	req := &CreateAnnouncementRequest{Category: models.AnnouncementCategoryService}
	assert.NoError(t, validateCategoryFields(req))

	req.Count = intPtr(10)
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)
}

func TestValidateCategoryFieldsPrice(t *testing.T) {
	req := &CreateAnnouncementRequest{
		Category: models.AnnouncementCategoryService,
		Price:    decimal.NewFromFloat(-1.50),
	}
	assert.ErrorIs(t, validateCategoryFields(req), apperrors.ErrValidation)
}

func TestInitialStatusAutoPublish(t *testing.T) {
	// Goods with nothing to review go live immediately
	assert.Equal(t, models.AnnouncementStatusPublished,
		initialStatus(models.AnnouncementCategoryGoods, "", 0))

	// Anything reviewable waits for an admin
	assert.Equal(t, models.AnnouncementStatusPending,
		initialStatus(models.AnnouncementCategoryGoods, "fresh wheat", 0))
	assert.Equal(t, models.AnnouncementStatusPending,
		initialStatus(models.AnnouncementCategoryGoods, "", 2))
	assert.Equal(t, models.AnnouncementStatusPending,
		initialStatus(models.AnnouncementCategoryRent, "", 0))
	assert.Equal(t, models.AnnouncementStatusPending,
		initialStatus(models.AnnouncementCategoryService, "", 0))
}

func TestDefaultExpiry(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	explicit := date(2026, 5, 1)
	dateTo := date(2026, 3, 1)

	assert.Equal(t, *explicit, defaultExpiry(explicit, dateTo, now, 30))
	assert.Equal(t, *dateTo, defaultExpiry(nil, dateTo, now, 30))
	assert.Equal(t, now.AddDate(0, 0, 30), defaultExpiry(nil, nil, now, 30))
}

func TestMutatesBeyondExpiry(t *testing.T) {
	expiry := date(2026, 4, 1)
	assert.False(t, mutatesBeyondExpiry(&UpdateAnnouncementRequest{ExpiryDate: expiry}))
	assert.False(t, mutatesBeyondExpiry(&UpdateAnnouncementRequest{}))

	title := "new title"
	assert.True(t, mutatesBeyondExpiry(&UpdateAnnouncementRequest{Title: &title}))
	assert.True(t, mutatesBeyondExpiry(&UpdateAnnouncementRequest{Count: intPtr(5)}))
	images := []string{}
	assert.True(t, mutatesBeyondExpiry(&UpdateAnnouncementRequest{Images: &images}))
	assert.True(t, mutatesBeyondExpiry(&UpdateAnnouncementRequest{UploadedKeys: []string{"k"}}))
}

func TestDiffStrings(t *testing.T) {
	removed := diffStrings([]string{"a", "b", "c"}, []string{"b"})
	assert.Equal(t, []string{"a", "c"}, removed)

	assert.Nil(t, diffStrings([]string{"a"}, []string{"a"}))
	assert.Equal(t, []string{"a"}, diffStrings([]string{"a"}, nil))
}
