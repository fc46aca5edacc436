// internal/models/announcement.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Announcement struct {
	BaseModel
	OwnerID     uuid.UUID            `json:"owner_id" gorm:"type:uuid;not null;index"`
	Type        AnnouncementType     `json:"type" gorm:"type:varchar(10);not null;index"`
	Category    AnnouncementCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	CategoryID  *int64               `json:"category_id"`
	ItemID      *int64               `json:"item_id"`
	Title       string               `json:"title" gorm:"size:255;not null"`
	Description string               `json:"description" gorm:"type:text"`
	Price       decimal.Decimal      `json:"price" gorm:"type:numeric(12,2);not null"`
	Status      AnnouncementStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Goods-only fields. AvailableQuantity is maintained exclusively by the
	// quantity ledger and always satisfies 0 <= available <= count.
	Count             *int   `json:"count,omitempty"`
	DailyLimit        *int   `json:"daily_limit,omitempty"`
	Unit              string `json:"unit,omitempty" gorm:"size:20"`
	AvailableQuantity *int   `json:"available_quantity,omitempty"`

	// Rent-only fields.
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	MinArea  *float64   `json:"min_area,omitempty"`

	ExpiryDate *time.Time     `json:"expiry_date,omitempty" gorm:"index"`
	Images     pq.StringArray `json:"images" gorm:"type:text[]"`
	Regions    pq.Int64Array  `json:"regions" gorm:"type:bigint[]"`
	Villages   pq.Int64Array  `json:"villages" gorm:"type:bigint[]"`
	ViewsCount int            `json:"views_count" gorm:"default:0"`
	ClosedBy   *uuid.UUID     `json:"closed_by,omitempty" gorm:"type:uuid"`

	// Relationships
	Owner        User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:AnnouncementID"`
}

// IsGoods reports whether quantity accounting applies to this announcement.
func (a *Announcement) IsGoods() bool {
	return a.Category == AnnouncementCategoryGoods
}

// AnnouncementView records that a user has seen an announcement. The
// composite unique index makes view counting idempotent per user.
type AnnouncementView struct {
	ID             uint      `json:"id" gorm:"primary_key"`
	AnnouncementID uuid.UUID `json:"announcement_id" gorm:"type:uuid;not null;uniqueIndex:idx_announcement_views_unique"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_announcement_views_unique"`
	CreatedAt      time.Time `json:"created_at"`
}
