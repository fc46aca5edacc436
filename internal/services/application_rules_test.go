// internal/services/application_rules_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/armanrma7/agronetixbeck-sub000/internal/apperrors"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

func TestValidateApplicationFieldsGoods(t *testing.T) {
	today := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dates := models.DateSlice{*date(2026, 3, 5)}

	assert.NoError(t, validateApplicationFields(
		models.AnnouncementCategoryGoods, intPtr(10), dates, today))

	// count is mandatory on goods
	err := validateApplicationFields(models.AnnouncementCategoryGoods, nil, dates, today)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = validateApplicationFields(models.AnnouncementCategoryGoods, intPtr(0), dates, today)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateApplicationFieldsCountOnlyForGoods(t *testing.T) {
	today := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dates := models.DateSlice{*date(2026, 3, 5)}

	for _, category := range []models.AnnouncementCategory{
		models.AnnouncementCategoryRent,
		models.AnnouncementCategoryService,
	} {
		assert.NoError(t, validateApplicationFields(category, nil, dates, today))
		assert.ErrorIs(t,
			validateApplicationFields(category, intPtr(5), dates, today),
			apperrors.ErrValidation, "count must be rejected for %s", category)
	}
}

func TestValidateApplicationFieldsDeliveryDates(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	// at least one date required
	err := validateApplicationFields(models.AnnouncementCategoryService, nil, nil, today)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// past dates are rejected
	err = validateApplicationFields(models.AnnouncementCategoryService, nil,
		models.DateSlice{*date(2026, 3, 9)}, today)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// today itself is still deliverable even late in the day
	assert.NoError(t, validateApplicationFields(models.AnnouncementCategoryService, nil,
		models.DateSlice{*date(2026, 3, 10)}, today))

	// one bad date poisons the whole set
	err = validateApplicationFields(models.AnnouncementCategoryService, nil,
		models.DateSlice{*date(2026, 3, 12), *date(2026, 2, 1)}, today)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInvalidApplicationTransition(t *testing.T) {
	err := invalidApplicationTransition(models.ApplicationStatusClosed, models.ApplicationStatusApproved)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	var ite *apperrors.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)
	assert.Equal(t, "application", ite.Entity)
	assert.Equal(t, "closed", ite.Current)
	assert.Equal(t, "approved", ite.Target)
	assert.Empty(t, ite.Allowed)
}
