package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is a channel account. Username and Email are stored lower-cased.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string         `gorm:"type:varchar(255);not null;index" json:"fullName"`
	Avatar       string         `gorm:"type:text;not null" json:"avatar"`
	CoverImage   string         `gorm:"type:text;not null;default:''" json:"coverImage"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"`
	RefreshToken *string        `gorm:"type:text" json:"-"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasSession reports whether a refresh token is persisted for the user.
func (u *User) HasSession() bool {
	return u.RefreshToken != nil && *u.RefreshToken != ""
}
