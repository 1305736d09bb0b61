package domain

import "time"

// Subscription is a directed edge: SubscriberID follows ChannelID.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:uidx_subscriptions_pair;index" json:"subscriber"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:uidx_subscriptions_pair;index" json:"channel"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
