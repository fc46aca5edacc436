// internal/services/quantity_ledger.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/armanrma7/agronetixbeck-sub000/internal/apperrors"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

// QuantityLedger is the single source of truth for how much of a goods
// announcement remains allocatable. The value is always recomputed from
// approved applications, never client-supplied.
type QuantityLedger struct {
	db *gorm.DB
}

func NewQuantityLedger(db *gorm.DB) *QuantityLedger {
	return &QuantityLedger{db: db}
}

// ComputeAvailable derives the remaining quantity, clamped to [0, count].
func ComputeAvailable(count, approvedSum int) int {
	available := count - approvedSum
	if available < 0 {
		available = 0
	}
	if available > count {
		available = count
	}
	return available
}

// ApprovedSum totals the counts of all approved applications on an
// announcement within the given transaction.
func (l *QuantityLedger) ApprovedSum(tx *gorm.DB, announcementID interface{}) (int, error) {
	var sum int64
	err := tx.Model(&models.Application{}).
		Where("announcement_id = ? AND status = ?", announcementID, models.ApplicationStatusApproved).
		Select("COALESCE(SUM(count), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved applications: %w", err)
	}
	return int(sum), nil
}

// Recompute rewrites available_quantity from the approved applications.
// The caller must hold the announcement row lock so concurrent approvals
// serialize on the same row.
func (l *QuantityLedger) Recompute(tx *gorm.DB, announcement *models.Announcement) error {
	if !announcement.IsGoods() || announcement.Count == nil {
		return nil
	}

	approved, err := l.ApprovedSum(tx, announcement.ID)
	if err != nil {
		return err
	}

	available := ComputeAvailable(*announcement.Count, approved)
	announcement.AvailableQuantity = &available

	if err := tx.Model(&models.Announcement{}).
		Where("id = ?", announcement.ID).
		Update("available_quantity", available).Error; err != nil {
		return fmt.Errorf("failed to update available quantity: %w", err)
	}

	return nil
}

// CheckRequested verifies that a requested count fits into the remaining
// quantity. Availability is a moving target between application creation
// and approval, so this runs at both points.
func (l *QuantityLedger) CheckRequested(tx *gorm.DB, announcement *models.Announcement, requested int) error {
	if !announcement.IsGoods() || announcement.Count == nil {
		return nil
	}

	approved, err := l.ApprovedSum(tx, announcement.ID)
	if err != nil {
		return err
	}

	available := ComputeAvailable(*announcement.Count, approved)
	if requested > available {
		return apperrors.Conflictf("requested count %d exceeds available quantity %d", requested, available)
	}

	return nil
}
