// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Phone        string     `json:"phone" gorm:"uniqueIndex;size:20;not null"`
	FullName     string     `json:"full_name" gorm:"size:255"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Verified     bool       `json:"verified" gorm:"default:false"`
	Locked       bool       `json:"locked" gorm:"default:false"`
	RegionID     *int64     `json:"region_id" gorm:"index"`
	VillageID    *int64     `json:"village_id"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Announcements []Announcement `json:"announcements,omitempty" gorm:"foreignKey:OwnerID"`
	Applications  []Application  `json:"applications,omitempty" gorm:"foreignKey:ApplicantID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Eligible reports whether the user may create announcements or
// applications: verified, not locked, account active.
func (u *User) Eligible() bool {
	return u.Verified && !u.Locked && u.Status == UserStatusActive
}

// CanPost reports whether the user type is allowed to create announcements.
func (u *User) CanPost() bool {
	return u.UserType == UserTypeFarmer || u.UserType == UserTypeCompany
}
