package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/services"
)

// WatchEventHandler consumes video.watched events from Kafka.
type WatchEventHandler struct {
	history services.HistoryService
	log     *slog.Logger
}

func NewWatchEventHandler(history services.HistoryService, logger *slog.Logger) *WatchEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchEventHandler{history: history, log: logger}
}

func (h *WatchEventHandler) HandleMessage(ctx context.Context, message []byte) error {
	var event dto.VideoWatchedEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return fmt.Errorf("invalid watch event payload: %w", err)
	}

	err := h.history.RecordWatch(ctx, event.UserID, event.VideoID)
	switch domain.KindOf(err) {
	case domain.KindInvalidArgument, domain.KindNotFound:
		// stale or malformed event; nothing to retry
		h.log.Warn("dropping watch event", "user_id", event.UserID, "video_id", event.VideoID, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	h.log.Debug("watch recorded", "user_id", event.UserID, "video_id", event.VideoID)
	return nil
}
