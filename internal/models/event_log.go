package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event-log tables are append-only audit rows, one per accepted raw event.
// They are never read back to derive current state.

// ProfileEvent records a profile-facing event (creation, update, blocks,
// platform join/leave cross-references).
type ProfileEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   string         `gorm:"size:100;index" json:"event_id"`
	ProfileID string         `gorm:"size:66;not null;index" json:"profile_id"`
	EventType string         `gorm:"size:100;not null;index" json:"event_type"`
	Payload   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ProfileEvent) TableName() string {
	return "profile_events"
}

// PlatformEvent records a platform-facing event.
type PlatformEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EventID    string         `gorm:"size:100;index" json:"event_id"`
	PlatformID string         `gorm:"size:66;not null;index" json:"platform_id"`
	EventType  string         `gorm:"size:100;not null;index" json:"event_type"`
	Payload    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (PlatformEvent) TableName() string {
	return "platform_events"
}

// SocialGraphEvent records every follow/unfollow, written before any
// relationship mutation so the audit trail survives skipped events.
type SocialGraphEvent struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EventID          string         `gorm:"size:100;index" json:"event_id"`
	FollowerAddress  string         `gorm:"size:66;not null;index" json:"follower_address"`
	FollowingAddress string         `gorm:"size:66;not null;index" json:"following_address"`
	EventType        string         `gorm:"size:100;not null;index" json:"event_type"`
	Payload          datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (SocialGraphEvent) TableName() string {
	return "social_graph_events"
}
