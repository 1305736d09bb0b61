package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Subscribe(ctx context.Context, subscriberID, channelID uint) error
	Unsubscribe(ctx context.Context, subscriberID, channelID uint) (bool, error)
	CountSubscribers(ctx context.Context, channelID uint) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (s *subscriptionRepository) Subscribe(ctx context.Context, subscriberID, channelID uint) error {
	if subscriberID == 0 || channelID == 0 {
		return errors.New("invalid subscription")
	}

	edge := &domain.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	err := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		FirstOrCreate(edge).Error
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (s *subscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&domain.Subscription{})
	if res.Error != nil {
		return false, fmt.Errorf("unsubscribe: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *subscriptionRepository) CountSubscribers(ctx context.Context, channelID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}
