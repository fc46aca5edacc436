// internal/services/announcement_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armanrma7/agronetixbeck-sub000/internal/apperrors"
	"github.com/armanrma7/agronetixbeck-sub000/internal/config"
	"github.com/armanrma7/agronetixbeck-sub000/internal/database"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
	"github.com/armanrma7/agronetixbeck-sub000/internal/utils"
)

type AnnouncementService struct {
	db            *gorm.DB
	cfg           *config.Config
	ledger        *QuantityLedger
	notifications *NotificationService
	catalog       *CatalogService
	storage       *StorageService
}

func NewAnnouncementService(db *gorm.DB, cfg *config.Config, ledger *QuantityLedger,
	notifications *NotificationService, catalog *CatalogService, storage *StorageService) *AnnouncementService {
	return &AnnouncementService{
		db:            db,
		cfg:           cfg,
		ledger:        ledger,
		notifications: notifications,
		catalog:       catalog,
		storage:       storage,
	}
}

type CreateAnnouncementRequest struct {
	Type        models.AnnouncementType     `json:"type" validate:"required,oneof=sell buy"`
	Category    models.AnnouncementCategory `json:"category" validate:"required,oneof=goods rent service"`
	CategoryID  *int64                      `json:"category_id,omitempty"`
	ItemID      *int64                      `json:"item_id,omitempty"`
	Title       string                      `json:"title" validate:"required,max=255"`
	Description string                      `json:"description,omitempty"`
	Price       decimal.Decimal             `json:"price"`
	Count       *int                        `json:"count,omitempty"`
	DailyLimit  *int                        `json:"daily_limit,omitempty"`
	Unit        string                      `json:"unit,omitempty"`
	DateFrom    *time.Time                  `json:"date_from,omitempty"`
	DateTo      *time.Time                  `json:"date_to,omitempty"`
	MinArea     *float64                    `json:"min_area,omitempty"`
	ExpiryDate  *time.Time                  `json:"expiry_date,omitempty"`
	Images      []string                    `json:"images,omitempty"`
	Regions     []int64                     `json:"regions,omitempty"`
	Villages    []int64                     `json:"villages,omitempty"`
}

type UpdateAnnouncementRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Count       *int             `json:"count,omitempty"`
	DailyLimit  *int             `json:"daily_limit,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	DateFrom    *time.Time       `json:"date_from,omitempty"`
	DateTo      *time.Time       `json:"date_to,omitempty"`
	MinArea     *float64         `json:"min_area,omitempty"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
	Images      *[]string        `json:"images,omitempty"`
	Regions     *[]int64         `json:"regions,omitempty"`
	Villages    *[]int64         `json:"villages,omitempty"`

	// Status is never settable through update; present only so an explicit
	// attempt can be rejected with a descriptive error instead of being
	// silently dropped.
	Status *string `json:"status,omitempty"`

	// UploadedKeys are storage keys of freshly uploaded files, appended to
	// the stored image set.
	UploadedKeys []string `json:"-"`
}

type AnnouncementSearchParams struct {
	utils.PaginationParams
	Type     *models.AnnouncementType     `json:"type,omitempty"`
	Category *models.AnnouncementCategory `json:"category,omitempty"`
	Status   *models.AnnouncementStatus   `json:"status,omitempty"`
	RegionID *int64                       `json:"region_id,omitempty"`
	OwnerID  *uuid.UUID                   `json:"owner_id,omitempty"`
	MinPrice *decimal.Decimal             `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal             `json:"max_price,omitempty"`
}

// validateCategoryFields checks the category-conditional required fields.
func validateCategoryFields(req *CreateAnnouncementRequest) error {
	if req.Price.IsNegative() {
		return apperrors.Validationf("price must not be negative")
	}

	switch req.Category {
	case models.AnnouncementCategoryGoods:
		if req.Count == nil || *req.Count <= 0 {
			return apperrors.Validationf("count must be a positive number for goods announcements")
		}
		if req.DailyLimit != nil && *req.DailyLimit > *req.Count {
			return apperrors.Validationf("daily_limit must not exceed count")
		}
		if req.DateFrom != nil || req.DateTo != nil || req.MinArea != nil {
			return apperrors.Validationf("rent fields are not allowed on goods announcements")
		}
	case models.AnnouncementCategoryRent:
		if req.DateFrom == nil || req.DateTo == nil {
			return apperrors.Validationf("date_from and date_to are required for rent announcements")
		}
		if !req.DateFrom.Before(*req.DateTo) {
			return apperrors.Validationf("date_from must be before date_to")
		}
		if req.Count != nil || req.DailyLimit != nil {
			return apperrors.Validationf("count fields are not allowed on rent announcements")
		}
	case models.AnnouncementCategoryService:
		if req.Count != nil || req.DailyLimit != nil || req.DateFrom != nil || req.DateTo != nil {
			return apperrors.Validationf("category-specific fields are not allowed on service announcements")
		}
	default:
		return apperrors.Validationf("unknown category %q", req.Category)
	}

	return nil
}

// initialStatus implements the auto-publish rule: goods announcements go
// live immediately when there is nothing for an admin to review; rent and
// service always wait for review.
func initialStatus(category models.AnnouncementCategory, description string, imageCount int) models.AnnouncementStatus {
	if category == models.AnnouncementCategoryGoods && description == "" && imageCount == 0 {
		return models.AnnouncementStatusPublished
	}
	return models.AnnouncementStatusPending
}

// defaultExpiry derives the expiry date: an explicit value wins, then the
// rent end date, then the configured offset from creation.
func defaultExpiry(explicit, dateTo *time.Time, now time.Time, defaultDays int) time.Time {
	if explicit != nil {
		return *explicit
	}
	if dateTo != nil {
		return *dateTo
	}
	return now.AddDate(0, 0, defaultDays)
}

func (s *AnnouncementService) Create(ownerID uuid.UUID, req *CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if err := validateCategoryFields(req); err != nil {
		return nil, err
	}
	if len(req.Images) > s.cfg.Marketplace.MaxImages {
		return nil, apperrors.Validationf("at most %d images are allowed", s.cfg.Marketplace.MaxImages)
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %s", ownerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !owner.CanPost() {
		return nil, apperrors.Forbiddenf("only farmers and companies can create announcements")
	}
	if !owner.Eligible() {
		return nil, apperrors.Forbiddenf("account must be verified and unlocked to create announcements")
	}

	if req.CategoryID != nil {
		exists, err := s.catalog.CategoryExists(*req.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NotFoundf("category %d", *req.CategoryID)
		}
	}
	if req.ItemID != nil {
		exists, err := s.catalog.ItemExists(*req.ItemID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NotFoundf("catalog item %d", *req.ItemID)
		}
	}
	for _, regionID := range req.Regions {
		exists, err := s.catalog.RegionExists(regionID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NotFoundf("region %d", regionID)
		}
	}
	for _, villageID := range req.Villages {
		inRegion := false
		for _, regionID := range req.Regions {
			ok, err := s.catalog.VillageBelongsToRegion(villageID, regionID)
			if err != nil {
				return nil, err
			}
			if ok {
				inRegion = true
				break
			}
		}
		if !inRegion {
			return nil, apperrors.Validationf("village %d is not in any targeted region", villageID)
		}
	}

	now := time.Now()
	expiry := defaultExpiry(req.ExpiryDate, req.DateTo, now, s.cfg.Marketplace.DefaultExpiryDays)

	announcement := &models.Announcement{
		OwnerID:     ownerID,
		Type:        req.Type,
		Category:    req.Category,
		CategoryID:  req.CategoryID,
		ItemID:      req.ItemID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Status:      initialStatus(req.Category, req.Description, len(req.Images)),
		Count:       req.Count,
		DailyLimit:  req.DailyLimit,
		Unit:        req.Unit,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		MinArea:     req.MinArea,
		ExpiryDate:  &expiry,
		Images:      pq.StringArray(req.Images),
		Regions:     pq.Int64Array(req.Regions),
		Villages:    pq.Int64Array(req.Villages),
	}

	if announcement.IsGoods() {
		available := *req.Count
		announcement.AvailableQuantity = &available
	}

	if err := s.db.Create(announcement).Error; err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	// Auto-published goods announcements trigger the same notifications
	// as an admin publish.
	if announcement.Status == models.AnnouncementStatusPublished {
		go s.sendPublishNotifications(announcement)
	}

	return announcement, nil
}

func (s *AnnouncementService) Update(actorID uuid.UUID, isAdmin bool, id uuid.UUID, req *UpdateAnnouncementRequest) (*models.Announcement, error) {
	if req.Status != nil {
		return nil, apperrors.Validationf("status cannot be changed through update; use the publish, block, close or cancel endpoints")
	}

	var announcement models.Announcement
	var removedImages []string

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&announcement, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("announcement %s", id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !isAdmin {
			if announcement.OwnerID != actorID {
				return apperrors.Forbiddenf("only the owner can edit this announcement")
			}
			switch announcement.Status {
			case models.AnnouncementStatusPending:
				// Owners edit freely while pending.
			case models.AnnouncementStatusPublished:
				if mutatesBeyondExpiry(req) {
					return apperrors.Forbiddenf("a published announcement allows changing only the expiry date")
				}
			default:
				return apperrors.Forbiddenf("announcement in status %q is not editable", announcement.Status)
			}
		}

		if req.Title != nil {
			announcement.Title = *req.Title
		}
		if req.Description != nil {
			announcement.Description = *req.Description
		}
		if req.Price != nil {
			if req.Price.IsNegative() {
				return apperrors.Validationf("price must not be negative")
			}
			announcement.Price = *req.Price
		}
		if req.Unit != nil {
			announcement.Unit = *req.Unit
		}
		if req.DateFrom != nil {
			announcement.DateFrom = req.DateFrom
		}
		if req.DateTo != nil {
			announcement.DateTo = req.DateTo
		}
		if announcement.Category == models.AnnouncementCategoryRent &&
			announcement.DateFrom != nil && announcement.DateTo != nil &&
			!announcement.DateFrom.Before(*announcement.DateTo) {
			return apperrors.Validationf("date_from must be before date_to")
		}
		if req.MinArea != nil {
			announcement.MinArea = req.MinArea
		}
		if req.ExpiryDate != nil {
			announcement.ExpiryDate = req.ExpiryDate
		}
		if req.Regions != nil {
			announcement.Regions = pq.Int64Array(*req.Regions)
		}
		if req.Villages != nil {
			announcement.Villages = pq.Int64Array(*req.Villages)
		}

		if req.Count != nil {
			if !announcement.IsGoods() {
				return apperrors.Validationf("count applies only to goods announcements")
			}
			if *req.Count <= 0 {
				return apperrors.Validationf("count must be a positive number")
			}
			announcement.Count = req.Count
		}
		if req.DailyLimit != nil {
			if announcement.Count == nil || *req.DailyLimit > *announcement.Count {
				return apperrors.Validationf("daily_limit must not exceed count")
			}
			announcement.DailyLimit = req.DailyLimit
		}

		// Supplying an images list (even empty) replaces the stored set;
		// uploaded files are appended to it.
		if req.Images != nil {
			newSet := append([]string{}, (*req.Images)...)
			removedImages = diffStrings(announcement.Images, newSet)
			announcement.Images = pq.StringArray(newSet)
		}
		if len(req.UploadedKeys) > 0 {
			announcement.Images = append(announcement.Images, req.UploadedKeys...)
		}
		if len(announcement.Images) > s.cfg.Marketplace.MaxImages {
			return apperrors.Validationf("at most %d images are allowed", s.cfg.Marketplace.MaxImages)
		}

		if err := tx.Save(&announcement).Error; err != nil {
			return fmt.Errorf("failed to update announcement: %w", err)
		}

		// Count changes shift the remaining quantity.
		if req.Count != nil {
			if err := s.ledger.Recompute(tx, &announcement); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Removed images are deleted from the backing store best-effort.
	if len(removedImages) > 0 && s.storage != nil {
		go s.storage.Delete(removedImages)
	}

	return &announcement, nil
}

// mutatesBeyondExpiry reports whether the update touches anything besides
// the expiry date.
func mutatesBeyondExpiry(req *UpdateAnnouncementRequest) bool {
	return req.Title != nil || req.Description != nil || req.Price != nil ||
		req.Count != nil || req.DailyLimit != nil || req.Unit != nil ||
		req.DateFrom != nil || req.DateTo != nil || req.MinArea != nil ||
		req.Images != nil || req.Regions != nil || req.Villages != nil ||
		len(req.UploadedKeys) > 0
}

func diffStrings(old []string, kept []string) []string {
	keep := make(map[string]bool, len(kept))
	for _, k := range kept {
		keep[k] = true
	}
	var removed []string
	for _, o := range old {
		if !keep[o] {
			removed = append(removed, o)
		}
	}
	return removed
}

// transition moves an announcement to the target status inside a locked
// transaction. All lifecycle paths, interactive and scheduled, go through
// here so the state machine has a single enforcement point.
func (s *AnnouncementService) transition(id uuid.UUID, target models.AnnouncementStatus,
	guard func(*models.Announcement) error, apply func(*models.Announcement)) (*models.Announcement, error) {

	var announcement models.Announcement
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&announcement, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("announcement %s", id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if guard != nil {
			if err := guard(&announcement); err != nil {
				return err
			}
		}

		if !announcement.Status.CanTransitionTo(target) {
			return &apperrors.InvalidTransitionError{
				Entity:  "announcement",
				Current: string(announcement.Status),
				Target:  string(target),
				Allowed: statusStrings(announcement.Status.AllowedNext()),
			}
		}

		announcement.Status = target
		if apply != nil {
			apply(&announcement)
		}

		if err := tx.Save(&announcement).Error; err != nil {
			return fmt.Errorf("failed to update announcement status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &announcement, nil
}

func statusStrings(statuses []models.AnnouncementStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Publish moves a pending announcement live. Admin only.
func (s *AnnouncementService) Publish(adminID uuid.UUID, id uuid.UUID) (*models.Announcement, error) {
	if err := s.ensureAdmin(adminID); err != nil {
		return nil, err
	}

	announcement, err := s.transition(id, models.AnnouncementStatusPublished, nil, nil)
	if err != nil {
		return nil, err
	}

	go s.sendPublishNotifications(announcement)
	return announcement, nil
}

// Block takes an announcement down from any non-terminal state. Admin only.
func (s *AnnouncementService) Block(adminID uuid.UUID, id uuid.UUID) (*models.Announcement, error) {
	if err := s.ensureAdmin(adminID); err != nil {
		return nil, err
	}

	announcement, err := s.transition(id, models.AnnouncementStatusBlocked, nil, func(a *models.Announcement) {
		admin := adminID
		a.ClosedBy = &admin
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Emit(AnnouncementBlockedEvent(announcement))
	return announcement, nil
}

// Close ends a published announcement. A nil actor marks a system-initiated
// close (expiry sweep) and leaves closed_by empty.
func (s *AnnouncementService) Close(actorID *uuid.UUID, isAdmin bool, id uuid.UUID) (*models.Announcement, error) {
	guard := func(a *models.Announcement) error {
		if actorID != nil && !isAdmin && a.OwnerID != *actorID {
			return apperrors.Forbiddenf("only the owner or an administrator can close this announcement")
		}
		return nil
	}

	announcement, err := s.transition(id, models.AnnouncementStatusClosed, guard, func(a *models.Announcement) {
		a.ClosedBy = actorID
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Emit(AnnouncementClosedEvent(announcement, actorID == nil))
	return announcement, nil
}

// Cancel withdraws an announcement. Owner only.
func (s *AnnouncementService) Cancel(ownerID uuid.UUID, id uuid.UUID) (*models.Announcement, error) {
	guard := func(a *models.Announcement) error {
		if a.OwnerID != ownerID {
			return apperrors.Forbiddenf("only the owner can cancel this announcement")
		}
		return nil
	}

	return s.transition(id, models.AnnouncementStatusCanceled, guard, nil)
}

// Delete soft-deletes by reusing the cancel transition, preserving the row
// for audit history. Owner or admin.
func (s *AnnouncementService) Delete(actorID uuid.UUID, isAdmin bool, id uuid.UUID) (*models.Announcement, error) {
	guard := func(a *models.Announcement) error {
		if !isAdmin && a.OwnerID != actorID {
			return apperrors.Forbiddenf("only the owner or an administrator can delete this announcement")
		}
		return nil
	}

	return s.transition(id, models.AnnouncementStatusCanceled, guard, nil)
}

// RecordView counts a view once per user. Owner views are excluded.
func (s *AnnouncementService) RecordView(userID uuid.UUID, id uuid.UUID) error {
	var announcement models.Announcement
	if err := s.db.Select("id", "owner_id").First(&announcement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("announcement %s", id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if announcement.OwnerID == userID {
		return nil
	}

	view := &models.AnnouncementView{AnnouncementID: id, UserID: userID}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "announcement_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(view)
	if result.Error != nil {
		return fmt.Errorf("failed to record view: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		if err := s.db.Model(&models.Announcement{}).
			Where("id = ?", id).
			Update("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment views: %w", err)
		}
	}

	return nil
}

func (s *AnnouncementService) Get(id uuid.UUID) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := s.db.Preload("Owner").First(&announcement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("announcement %s", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &announcement, nil
}

// Search lists announcements with filters and pagination. Unauthenticated
// callers only ever see published announcements.
func (s *AnnouncementService) Search(params AnnouncementSearchParams, publicOnly bool) ([]models.Announcement, int64, error) {
	query := s.db.Model(&models.Announcement{})

	if publicOnly {
		query = query.Where("status = ?", models.AnnouncementStatusPublished)
	} else if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}
	if params.RegionID != nil {
		query = query.Where("? = ANY(regions)", *params.RegionID)
	}
	if params.MinPrice != nil {
		query = query.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("price <= ?", *params.MaxPrice)
	}
	if params.Search != "" {
		query = query.Where("to_tsvector('simple', title || ' ' || description) @@ plainto_tsquery('simple', ?)", params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count announcements: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "price", "views_count", "expiry_date"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var announcements []models.Announcement
	if err := query.Find(&announcements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch announcements: %w", err)
	}

	return announcements, total, nil
}

func (s *AnnouncementService) ListMine(ownerID uuid.UUID, params utils.PaginationParams) ([]models.Announcement, int64, error) {
	search := AnnouncementSearchParams{PaginationParams: params, OwnerID: &ownerID}
	return s.Search(search, false)
}

func (s *AnnouncementService) ensureAdmin(userID uuid.UUID) error {
	var user models.User
	if err := s.db.Select("id", "user_type").First(&user, "id = ?", userID).Error; err != nil {
		return apperrors.Forbiddenf("administrator account required")
	}
	if user.UserType != models.UserTypeAdmin {
		return apperrors.Forbiddenf("administrator account required")
	}
	return nil
}

// sendPublishNotifications notifies the owner and fans out to verified,
// unlocked users in the announcement's regions.
func (s *AnnouncementService) sendPublishNotifications(announcement *models.Announcement) {
	if s.notifications == nil {
		return
	}

	s.notifications.Emit(AnnouncementPublishedEvent(announcement, announcement.OwnerID))
	s.notifications.EmitToRegions(announcement.Regions, announcement.OwnerID, func(userID uuid.UUID) Event {
		return AnnouncementPublishedEvent(announcement, userID)
	})

	logrus.WithFields(logrus.Fields{
		"announcement_id": announcement.ID,
		"regions":         len(announcement.Regions),
	}).Info("Publish notifications dispatched")
}
