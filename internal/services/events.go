package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/interfaces"
)

// publishAccountEvent is best effort: a broker outage never fails the
// request that triggered the event.
func publishAccountEvent(producer interfaces.ProducerHandler, logger *slog.Logger, eventType string, user *domain.User) {
	if producer == nil || user == nil {
		return
	}

	payload, err := json.Marshal(dto.AccountEvent{
		Type:       eventType,
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("marshal account event", "type", eventType, "error", err)
		return
	}

	if err := producer.PublishMessage([]byte(eventType), payload); err != nil {
		logger.Warn("publish account event", "type", eventType, "user_id", user.ID, "error", err)
	}
}
