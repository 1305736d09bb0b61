package dto

const (
	EventUserRegistered      = "user.registered"
	EventUserPasswordChanged = "user.password_changed"
)

type AccountEvent struct {
	Type       string `json:"type"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	OccurredAt string `json:"occurred_at"`
}

// VideoWatchedEvent is consumed from the player service.
type VideoWatchedEvent struct {
	UserID  uint `json:"user_id"`
	VideoID uint `json:"video_id"`
}
