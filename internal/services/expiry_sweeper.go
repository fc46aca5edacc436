// internal/services/expiry_sweeper.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

// ExpirySweeper closes published announcements whose end or expiry date has
// passed. It feeds the same close path used by interactive requests, so a
// sweep on an already-closed announcement is naturally a no-op.
type ExpirySweeper struct {
	db            *gorm.DB
	announcements *AnnouncementService
	cron          *cron.Cron

	// mu guards against overlapping passes.
	mu sync.Mutex
}

func NewExpirySweeper(db *gorm.DB, announcements *AnnouncementService) *ExpirySweeper {
	return &ExpirySweeper{
		db:            db,
		announcements: announcements,
	}
}

// Start schedules the sweep with the given cron spec.
func (s *ExpirySweeper) Start(schedule string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Run(); err != nil {
			logrus.WithError(err).Error("Expiry sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()

	logrus.WithField("schedule", schedule).Info("Expiry sweeper started")
	return nil
}

func (s *ExpirySweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// expired reports whether a published announcement should be closed: a rent
// listing past its end date, or any listing past its expiry date.
func expired(a *models.Announcement, today time.Time) bool {
	if a.Status != models.AnnouncementStatusPublished {
		return false
	}
	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if a.Category == models.AnnouncementCategoryRent && a.DateTo != nil && a.DateTo.Before(startOfToday) {
		return true
	}
	if a.ExpiryDate != nil && a.ExpiryDate.Before(startOfToday) {
		return true
	}
	return false
}

// Run executes one sweep pass and returns the number of announcements
// closed. A pass that cannot acquire the lock is skipped, never queued.
func (s *ExpirySweeper) Run() (int, error) {
	if !s.mu.TryLock() {
		logrus.Warn("Expiry sweep already running, skipping pass")
		return 0, nil
	}
	defer s.mu.Unlock()

	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var candidates []models.Announcement
	err := s.db.
		Where("status = ?", models.AnnouncementStatusPublished).
		Where("(category = ? AND date_to < ?) OR (expiry_date IS NOT NULL AND expiry_date < ?)",
			models.AnnouncementCategoryRent, startOfToday, startOfToday).
		Find(&candidates).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load expired announcements: %w", err)
	}

	closed := 0
	for i := range candidates {
		if !expired(&candidates[i], now) {
			continue
		}

		// nil actor: system-initiated close, no closed_by recorded.
		if _, err := s.announcements.Close(nil, false, candidates[i].ID); err != nil {
			// A failure on one announcement must not abort the sweep.
			logrus.WithField("announcement_id", candidates[i].ID).
				WithError(err).Error("Failed to close expired announcement")
			continue
		}
		closed++
	}

	logrus.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"closed":     closed,
	}).Info("Expiry sweep completed")

	return closed, nil
}
