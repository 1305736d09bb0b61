package domain

import (
	"time"

	"gorm.io/gorm"
)

// Video is owned by the upload service; this service only reads it for
// watch history.
type Video struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner"`
	VideoFile   string         `gorm:"type:text;not null" json:"videoFile"`
	Thumbnail   string         `gorm:"type:text;not null" json:"thumbnail"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Duration    float64        `gorm:"not null;default:0" json:"duration"`
	Views       int64          `gorm:"not null;default:0" json:"views"`
	IsPublished bool           `gorm:"not null;default:true" json:"isPublished"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
