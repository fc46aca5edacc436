// internal/services/catalog_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

// CatalogService validates catalog references and answers region lookups.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) CategoryExists(id int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Category{}).
		Where("id = ? AND active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return count > 0, nil
}

func (s *CatalogService) ItemExists(id int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.CatalogItem{}).
		Where("id = ? AND active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check catalog item: %w", err)
	}
	return count > 0, nil
}

func (s *CatalogService) RegionExists(id int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Region{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check region: %w", err)
	}
	return count > 0, nil
}

func (s *CatalogService) VillageBelongsToRegion(villageID, regionID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Village{}).
		Where("id = ? AND region_id = ?", villageID, regionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check village: %w", err)
	}
	return count > 0, nil
}

// UsersInRegions returns the ids of users located in any of the given
// regions, optionally restricted to verified and unlocked accounts.
func (s *CatalogService) UsersInRegions(regionIDs []int64, verifiedOnly, excludeLocked bool) ([]uuid.UUID, error) {
	if len(regionIDs) == 0 {
		return nil, nil
	}

	query := s.db.Model(&models.User{}).
		Where("region_id IN ? AND status = ?", regionIDs, models.UserStatusActive)
	if verifiedOnly {
		query = query.Where("verified = ?", true)
	}
	if excludeLocked {
		query = query.Where("locked = ?", false)
	}

	var userIDs []uuid.UUID
	if err := query.Pluck("id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users in regions: %w", err)
	}
	return userIDs, nil
}
