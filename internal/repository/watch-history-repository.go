package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"gorm.io/gorm"
)

type WatchHistoryRepository interface {
	Append(ctx context.Context, userID, videoID uint) error
	ListByUserID(ctx context.Context, userID uint) ([]dto.WatchHistoryItem, error)
	VideoExists(ctx context.Context, videoID uint) (bool, error)
}

type watchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) WatchHistoryRepository {
	return &watchHistoryRepository{db: db}
}

func (w *watchHistoryRepository) Append(ctx context.Context, userID, videoID uint) error {
	entry := &domain.WatchHistory{UserID: userID, VideoID: videoID}
	if err := w.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append watch history: %w", err)
	}
	return nil
}

type watchHistoryRow struct {
	ID            uint
	Title         string
	Description   string
	Thumbnail     string
	VideoFile     string
	Duration      float64
	Views         int64
	CreatedAt     time.Time
	OwnerFullName string
	OwnerUsername string
	OwnerAvatar   string
}

// ListByUserID returns the videos in the order they were watched, each with
// a minimal projection of its owner.
func (w *watchHistoryRepository) ListByUserID(ctx context.Context, userID uint) ([]dto.WatchHistoryItem, error) {
	var rows []watchHistoryRow
	err := w.db.WithContext(ctx).
		Table("watch_history AS h").
		Select(`v.id, v.title, v.description, v.thumbnail, v.video_file, v.duration, v.views, v.created_at,
			o.full_name AS owner_full_name, o.username AS owner_username, o.avatar AS owner_avatar`).
		Joins("JOIN videos v ON v.id = h.video_id AND v.deleted_at IS NULL").
		Joins("JOIN users o ON o.id = v.owner_id").
		Where("h.user_id = ?", userID).
		Order("h.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}

	out := make([]dto.WatchHistoryItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.WatchHistoryItem{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Thumbnail:   r.Thumbnail,
			VideoFile:   r.VideoFile,
			Duration:    r.Duration,
			Views:       r.Views,
			CreatedAt:   r.CreatedAt,
			Owner: dto.OwnerSummary{
				FullName: r.OwnerFullName,
				Username: r.OwnerUsername,
				Avatar:   r.OwnerAvatar,
			},
		})
	}
	return out, nil
}

func (w *watchHistoryRepository) VideoExists(ctx context.Context, videoID uint) (bool, error) {
	var count int64
	err := w.db.WithContext(ctx).Model(&domain.Video{}).Where("id = ?", videoID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
