package models

import (
	"time"
)

// ProfileBlock is a user-level block between two profiles. Unblocking flips
// is_blocked and stamps unblocked_at instead of deleting the row, matching
// the platform-level block table.
type ProfileBlock struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	BlockerProfileID string     `gorm:"size:66;not null;uniqueIndex:idx_blocker_blocked" json:"blocker_profile_id"`
	BlockedProfileID string     `gorm:"size:66;not null;uniqueIndex:idx_blocker_blocked" json:"blocked_profile_id"`
	IsBlocked        bool       `gorm:"not null;default:true;index" json:"is_blocked"`
	CreatedAt        time.Time  `json:"created_at"`
	UnblockedAt      *time.Time `json:"unblocked_at,omitempty"`
}

func (ProfileBlock) TableName() string {
	return "profile_blocks"
}
