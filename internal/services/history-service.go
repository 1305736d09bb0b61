package services

import (
	"context"
	"log/slog"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/repository"
)

// HistoryService records views reported by the video pipeline.
type HistoryService interface {
	RecordWatch(ctx context.Context, userID, videoID uint) error
}

type historyService struct {
	repo     repository.WatchHistoryRepository
	userRepo repository.UserRepository
	log      *slog.Logger
}

func NewHistoryService(repo repository.WatchHistoryRepository, userRepo repository.UserRepository, logger *slog.Logger) HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &historyService{repo: repo, userRepo: userRepo, log: logger.With("service", "history")}
}

func (h *historyService) RecordWatch(ctx context.Context, userID, videoID uint) error {
	if userID == 0 || videoID == 0 {
		return domain.InvalidArgument("userId and videoId are required")
	}

	user, err := h.userRepo.FindUserById(ctx, userID)
	if err != nil {
		return domain.Internal("failed to look up user", err)
	}
	if user == nil {
		return domain.NotFound("user not found")
	}

	exists, err := h.repo.VideoExists(ctx, videoID)
	if err != nil {
		return domain.Internal("failed to look up video", err)
	}
	if !exists {
		return domain.NotFound("video not found")
	}

	if err := h.repo.Append(ctx, userID, videoID); err != nil {
		return domain.Internal("failed to record watch", err)
	}
	return nil
}
