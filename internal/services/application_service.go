// internal/services/application_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armanrma7/agronetixbeck-sub000/internal/apperrors"
	"github.com/armanrma7/agronetixbeck-sub000/internal/database"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
	"github.com/armanrma7/agronetixbeck-sub000/internal/utils"
)

type ApplicationService struct {
	db            *gorm.DB
	ledger        *QuantityLedger
	notifications *NotificationService
}

func NewApplicationService(db *gorm.DB, ledger *QuantityLedger, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		db:            db,
		ledger:        ledger,
		notifications: notifications,
	}
}

type CreateApplicationRequest struct {
	AnnouncementID uuid.UUID        `json:"announcement_id" validate:"required"`
	Count          *int             `json:"count,omitempty"`
	DeliveryDates  models.DateSlice `json:"delivery_dates" validate:"required,min=1"`
	Notes          string           `json:"notes,omitempty"`
}

type EditApplicationRequest struct {
	Count         *int             `json:"count,omitempty"`
	DeliveryDates models.DateSlice `json:"delivery_dates,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// validateApplicationFields checks the count and delivery-date rules
// against the parent announcement's category.
func validateApplicationFields(category models.AnnouncementCategory, count *int, dates models.DateSlice, today time.Time) error {
	if category == models.AnnouncementCategoryGoods {
		if count == nil || *count <= 0 {
			return apperrors.Validationf("count is required for applications on goods announcements")
		}
	} else if count != nil {
		return apperrors.Validationf("count is only allowed on goods announcements")
	}

	if len(dates) == 0 {
		return apperrors.Validationf("at least one delivery date is required")
	}

	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for _, d := range dates {
		if d.Before(startOfToday) {
			return apperrors.Validationf("delivery dates must not be in the past")
		}
	}

	return nil
}

func (s *ApplicationService) Create(applicantID uuid.UUID, req *CreateApplicationRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	var applicant models.User
	if err := s.db.First(&applicant, "id = ?", applicantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %s", applicantID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !applicant.Eligible() {
		return nil, apperrors.Forbiddenf("account must be verified and unlocked to apply")
	}

	var application *models.Application
	var announcement models.Announcement

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// The announcement row lock serializes this check with concurrent
		// approvals against the same ledger.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&announcement, "id = ?", req.AnnouncementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("announcement %s", req.AnnouncementID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if announcement.Status != models.AnnouncementStatusPublished {
			return &apperrors.InvalidTransitionError{
				Entity:  "announcement",
				Current: string(announcement.Status),
				Target:  "application accepted",
				Allowed: []string{string(models.AnnouncementStatusPublished)},
			}
		}
		if announcement.OwnerID == applicantID {
			return apperrors.Forbiddenf("cannot apply to your own announcement")
		}

		if err := validateApplicationFields(announcement.Category, req.Count, req.DeliveryDates, time.Now()); err != nil {
			return err
		}

		// At most one pending application per applicant per announcement.
		var pendingCount int64
		if err := tx.Model(&models.Application{}).
			Where("announcement_id = ? AND applicant_id = ? AND status = ?",
				announcement.ID, applicantID, models.ApplicationStatusPending).
			Count(&pendingCount).Error; err != nil {
			return fmt.Errorf("failed to check pending applications: %w", err)
		}
		if pendingCount > 0 {
			return apperrors.Conflictf("a pending application for this announcement already exists")
		}

		if req.Count != nil {
			if err := s.ledger.CheckRequested(tx, &announcement, *req.Count); err != nil {
				return err
			}
		}

		application = &models.Application{
			AnnouncementID: announcement.ID,
			ApplicantID:    applicantID,
			Count:          req.Count,
			DeliveryDates:  req.DeliveryDates,
			Notes:          req.Notes,
			Status:         models.ApplicationStatusPending,
		}

		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Emit(ApplicationCreatedEvent(application, &announcement))

	return application, nil
}

// Edit changes count, delivery dates or notes. Allowed for the applicant or
// the announcement owner, and only while the application is pending.
func (s *ApplicationService) Edit(actorID uuid.UUID, id uuid.UUID, req *EditApplicationRequest) (*models.Application, error) {
	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Preload("Announcement").
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "applications"}}).
			First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("application %s", id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if actorID != application.ApplicantID && actorID != application.Announcement.OwnerID {
			return apperrors.Forbiddenf("only the applicant or the announcement owner can edit this application")
		}
		if application.Status != models.ApplicationStatusPending {
			return &apperrors.InvalidTransitionError{
				Entity:  "application",
				Current: string(application.Status),
				Target:  "edit",
				Allowed: []string{string(models.ApplicationStatusPending)},
			}
		}

		if req.Count != nil {
			application.Count = req.Count
		}
		if len(req.DeliveryDates) > 0 {
			application.DeliveryDates = req.DeliveryDates
		}
		if req.Notes != nil {
			application.Notes = *req.Notes
		}

		if err := validateApplicationFields(application.Announcement.Category,
			application.Count, application.DeliveryDates, time.Now()); err != nil {
			return err
		}
		if application.Count != nil {
			if err := s.ledger.CheckRequested(tx, &application.Announcement, *application.Count); err != nil {
				return err
			}
		}

		if err := tx.Save(&application).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// Approve accepts a pending application. The availability check runs again
// here because the ledger may have moved since the application was created.
func (s *ApplicationService) Approve(approverID uuid.UUID, id uuid.UUID) (*models.Application, error) {
	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Lock the application row before validating: a concurrent
		// self-close must not slip between the status check and the write.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "applications"}}).
			First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("application %s", id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Lock the announcement row: two concurrent approvals against the
		// same ledger must serialize.
		var announcement models.Announcement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&announcement, "id = ?", application.AnnouncementID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		application.Announcement = announcement

		if announcement.OwnerID != approverID {
			return apperrors.Forbiddenf("only the announcement owner can approve applications")
		}
		if !application.Status.CanTransitionTo(models.ApplicationStatusApproved) {
			return invalidApplicationTransition(application.Status, models.ApplicationStatusApproved)
		}

		if application.Count != nil {
			if err := s.ledger.CheckRequested(tx, &announcement, *application.Count); err != nil {
				return err
			}
		}

		now := time.Now()
		application.Status = models.ApplicationStatusApproved
		application.ApprovedAt = &now
		application.ApprovedBy = &approverID

		if err := tx.Save(&application).Error; err != nil {
			return fmt.Errorf("failed to approve application: %w", err)
		}

		return s.ledger.Recompute(tx, &announcement)
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Emit(ApplicationApprovedEvent(&application, &application.Announcement))

	return &application, nil
}

// Reject declines a pending application. The ledger is untouched.
func (s *ApplicationService) Reject(ownerID uuid.UUID, id uuid.UUID) (*models.Application, error) {
	application, err := s.transition(id, models.ApplicationStatusRejected, func(tx *gorm.DB, app *models.Application) error {
		if app.Announcement.OwnerID != ownerID {
			return apperrors.Forbiddenf("only the announcement owner can reject applications")
		}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	go s.notifications.Emit(ApplicationRejectedEvent(application, &application.Announcement))
	return application, nil
}

// Close ends an application. The announcement owner can close any
// non-terminal application; the applicant can self-close while pending.
// Closing an approved goods application returns its quantity to the ledger.
func (s *ApplicationService) Close(actorID uuid.UUID, id uuid.UUID) (*models.Application, error) {
	var wasApproved bool

	guard := func(tx *gorm.DB, app *models.Application) error {
		if actorID != app.Announcement.OwnerID {
			if actorID != app.ApplicantID {
				return apperrors.Forbiddenf("only the announcement owner or the applicant can close this application")
			}
			if app.Status != models.ApplicationStatusPending {
				return apperrors.Forbiddenf("applicants can only withdraw pending applications")
			}
		}
		wasApproved = app.Status == models.ApplicationStatusApproved
		return nil
	}

	// Approved quantity flows back into the ledger in the same transaction
	// as the status change, so the stored available_quantity is never
	// stranded between the two writes.
	after := func(tx *gorm.DB, app *models.Application) error {
		if !wasApproved {
			return nil
		}
		var announcement models.Announcement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&announcement, "id = ?", app.AnnouncementID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		return s.ledger.Recompute(tx, &announcement)
	}

	application, err := s.transition(id, models.ApplicationStatusClosed, guard, after)
	if err != nil {
		return nil, err
	}

	go s.notifications.Emit(ApplicationClosedEvent(application, &application.Announcement))
	return application, nil
}

// Reopen moves a rejected application back to pending. This is an explicit
// applicant action; the reopened application must satisfy the same rules as
// a fresh one, including the one-pending-per-pair rule.
func (s *ApplicationService) Reopen(applicantID uuid.UUID, id uuid.UUID) (*models.Application, error) {
	return s.transition(id, models.ApplicationStatusPending, func(tx *gorm.DB, app *models.Application) error {
		if app.ApplicantID != applicantID {
			return apperrors.Forbiddenf("only the applicant can reopen an application")
		}
		if app.Announcement.Status != models.AnnouncementStatusPublished {
			return apperrors.Conflictf("the announcement is no longer accepting applications")
		}

		// Delivery dates may have passed since the rejection.
		if err := validateApplicationFields(app.Announcement.Category,
			app.Count, app.DeliveryDates, time.Now()); err != nil {
			return err
		}

		var pendingCount int64
		if err := tx.Model(&models.Application{}).
			Where("announcement_id = ? AND applicant_id = ? AND status = ? AND id != ?",
				app.AnnouncementID, applicantID, models.ApplicationStatusPending, app.ID).
			Count(&pendingCount).Error; err != nil {
			return fmt.Errorf("failed to check pending applications: %w", err)
		}
		if pendingCount > 0 {
			return apperrors.Conflictf("a pending application for this announcement already exists")
		}
		return nil
	}, nil)
}

// transition moves an application to the target status inside a locked
// transaction, guarded by the transition table. The guard runs before the
// status change, the after hook runs once the new status is written; both
// share the transaction so their checks and side effects commit with it.
func (s *ApplicationService) transition(id uuid.UUID, target models.ApplicationStatus,
	guard func(tx *gorm.DB, app *models.Application) error,
	after func(tx *gorm.DB, app *models.Application) error) (*models.Application, error) {

	var application models.Application
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Preload("Announcement").
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "applications"}}).
			First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("application %s", id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if guard != nil {
			if err := guard(tx, &application); err != nil {
				return err
			}
		}

		if !application.Status.CanTransitionTo(target) {
			return invalidApplicationTransition(application.Status, target)
		}

		application.Status = target
		if err := tx.Save(&application).Error; err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}

		if after != nil {
			return after(tx, &application)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func invalidApplicationTransition(current, target models.ApplicationStatus) error {
	allowed := current.AllowedNext()
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &apperrors.InvalidTransitionError{
		Entity:  "application",
		Current: string(current),
		Target:  string(target),
		Allowed: names,
	}
}

func (s *ApplicationService) Get(actorID uuid.UUID, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := s.db.Preload("Announcement").Preload("Applicant").
		First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("application %s", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if actorID != application.ApplicantID && actorID != application.Announcement.OwnerID {
		return nil, apperrors.Forbiddenf("not allowed to view this application")
	}

	return &application, nil
}

// ListForAnnouncement returns the applications on an announcement for its
// owner.
func (s *ApplicationService) ListForAnnouncement(ownerID uuid.UUID, announcementID uuid.UUID, params utils.PaginationParams) ([]models.Application, int64, error) {
	var announcement models.Announcement
	if err := s.db.Select("id", "owner_id").First(&announcement, "id = ?", announcementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFoundf("announcement %s", announcementID)
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	if announcement.OwnerID != ownerID {
		return nil, 0, apperrors.Forbiddenf("only the owner can list an announcement's applications")
	}

	query := s.db.Model(&models.Application{}).
		Where("announcement_id = ?", announcementID).
		Preload("Applicant")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "updated_at", "status"})
	query = utils.ApplyPagination(query, params)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch applications: %w", err)
	}
	return applications, total, nil
}

func (s *ApplicationService) ListMine(applicantID uuid.UUID, params utils.PaginationParams) ([]models.Application, int64, error) {
	query := s.db.Model(&models.Application{}).
		Where("applicant_id = ?", applicantID).
		Preload("Announcement")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "updated_at", "status"})
	query = utils.ApplyPagination(query, params)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch applications: %w", err)
	}
	return applications, total, nil
}
