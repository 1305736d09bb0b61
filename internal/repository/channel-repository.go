package repository

import (
	"context"
	"fmt"

	"github.com/SundayYogurt/channel_service/internal/dto"
	"gorm.io/gorm"
)

type ChannelRepository interface {
	// GetChannelProfile returns nil when no live account has that username.
	// viewerID 0 means anonymous and never counts as subscribed.
	GetChannelProfile(ctx context.Context, username string, viewerID uint) (*dto.ChannelProfileResponse, error)
}

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

const channelProfileSelect = `users.id, users.full_name, users.username, users.email, users.avatar, users.cover_image,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = users.id) AS subscribers_count,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = users.id) AS channels_subscribed_to_count,
	EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = users.id AND s.subscriber_id = ?) AS is_subscribed`

func (c *channelRepository) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*dto.ChannelProfileResponse, error) {
	var row dto.ChannelProfileResponse
	res := c.db.WithContext(ctx).
		Table("users").
		Select(channelProfileSelect, viewerID).
		Where("users.username = ? AND users.deleted_at IS NULL", username).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("channel profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}
