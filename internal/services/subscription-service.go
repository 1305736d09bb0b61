package services

import (
	"context"
	"log/slog"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/repository"
)

type SubscriptionService interface {
	ToggleSubscription(ctx context.Context, subscriberID, channelID uint) (*dto.SubscriptionStatus, error)
}

type subscriptionService struct {
	repo     repository.SubscriptionRepository
	userRepo repository.UserRepository
	log      *slog.Logger
}

func NewSubscriptionService(repo repository.SubscriptionRepository, userRepo repository.UserRepository, logger *slog.Logger) SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &subscriptionService{repo: repo, userRepo: userRepo, log: logger.With("service", "subscription")}
}

// ToggleSubscription unsubscribes when a subscription exists, otherwise subscribes.
func (s *subscriptionService) ToggleSubscription(ctx context.Context, subscriberID, channelID uint) (*dto.SubscriptionStatus, error) {
	if channelID == 0 {
		return nil, domain.InvalidArgument("invalid channel id")
	}
	if subscriberID == channelID {
		return nil, domain.InvalidArgument("cannot subscribe to your own channel")
	}

	channel, err := s.userRepo.FindUserById(ctx, channelID)
	if err != nil {
		return nil, domain.Internal("failed to look up channel", err)
	}
	if channel == nil {
		return nil, domain.NotFound("channel does not exist")
	}

	removed, err := s.repo.Unsubscribe(ctx, subscriberID, channelID)
	if err != nil {
		return nil, domain.Internal("failed to update subscription", err)
	}
	if !removed {
		if err := s.repo.Subscribe(ctx, subscriberID, channelID); err != nil {
			return nil, domain.Internal("failed to update subscription", err)
		}
		s.log.Info("subscribed", "subscriber_id", subscriberID, "channel_id", channelID)
	}

	count, err := s.repo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, domain.Internal("failed to count subscribers", err)
	}
	return &dto.SubscriptionStatus{ChannelID: channelID, Subscribed: !removed, SubscribersCount: count}, nil
}
