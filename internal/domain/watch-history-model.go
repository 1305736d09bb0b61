package domain

import "time"

// WatchHistory rows are append-only; ID order is watch order.
type WatchHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_watch_history_user" json:"userId"`
	VideoID   uint      `gorm:"not null" json:"videoId"`
	WatchedAt time.Time `gorm:"autoCreateTime" json:"watchedAt"`
}

func (WatchHistory) TableName() string {
	return "watch_history"
}
