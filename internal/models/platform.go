package models

import (
	"time"

	"gorm.io/datatypes"
)

// Platform status values mirror the on-chain enum.
const (
	PlatformStatusDevelopment = 0
	PlatformStatusAlpha       = 1
	PlatformStatusBeta        = 2
	PlatformStatusLive        = 3
	PlatformStatusMaintenance = 4
	PlatformStatusSunset      = 5
	PlatformStatusShutdown    = 6
)

// Platform is the current-state projection of a registered platform.
// Platforms start unapproved; only an approval-changed event writes the
// approval triple. Unknown platforms referenced by child events are
// synthesized as placeholders instead of dropping the child event.
type Platform struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PlatformID       string         `gorm:"size:66;not null;uniqueIndex" json:"platform_id"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	Tagline          string         `gorm:"size:255" json:"tagline"`
	Description      *string        `gorm:"type:text" json:"description,omitempty"`
	Logo             *string        `gorm:"type:text" json:"logo,omitempty"`
	DeveloperAddress string         `gorm:"size:66;not null;index" json:"developer_address"`
	TermsOfService   *string        `gorm:"type:text" json:"terms_of_service,omitempty"`
	PrivacyPolicy    *string        `gorm:"type:text" json:"privacy_policy,omitempty"`
	PlatformNames    datatypes.JSON `gorm:"type:jsonb" json:"platform_names,omitempty"`
	Links            datatypes.JSON `gorm:"type:jsonb" json:"links,omitempty"`
	Status           int            `gorm:"not null;default:0" json:"status"`

	IsApproved        bool       `gorm:"not null;default:false;index" json:"is_approved"`
	ApprovalChangedAt *time.Time `json:"approval_changed_at,omitempty"`
	ApprovedBy        *string    `gorm:"size:66" json:"approved_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Platform) TableName() string {
	return "platforms"
}

// PlatformModerator links a moderator address to a platform. Insertion is
// conflict-tolerant; removal is a hard delete.
type PlatformModerator struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PlatformID       string    `gorm:"size:66;not null;uniqueIndex:idx_platform_moderator" json:"platform_id"`
	ModeratorAddress string    `gorm:"size:66;not null;uniqueIndex:idx_platform_moderator" json:"moderator_address"`
	AddedBy          string    `gorm:"size:66" json:"added_by"`
	CreatedAt        time.Time `json:"created_at"`
}

func (PlatformModerator) TableName() string {
	return "platform_moderators"
}

// PlatformBlockedProfile records a platform-level block. Unblocking keeps
// the row and flips is_blocked (soft delete) so the audit trail survives.
type PlatformBlockedProfile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PlatformID  string     `gorm:"size:66;not null;uniqueIndex:idx_platform_blocked" json:"platform_id"`
	ProfileID   string     `gorm:"size:66;not null;uniqueIndex:idx_platform_blocked" json:"profile_id"`
	BlockedBy   string     `gorm:"size:66" json:"blocked_by"`
	IsBlocked   bool       `gorm:"not null;default:true;index" json:"is_blocked"`
	CreatedAt   time.Time  `json:"created_at"`
	UnblockedAt *time.Time `json:"unblocked_at,omitempty"`
}

func (PlatformBlockedProfile) TableName() string {
	return "platform_blocked_profiles"
}

// PlatformMembership records an accepted join. Writes are gated on platform
// approval and the absence of an active block.
type PlatformMembership struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlatformID string    `gorm:"size:66;not null;uniqueIndex:idx_platform_member" json:"platform_id"`
	ProfileID  string    `gorm:"size:66;not null;uniqueIndex:idx_platform_member" json:"profile_id"`
	JoinedAt   time.Time `gorm:"not null" json:"joined_at"`
}

func (PlatformMembership) TableName() string {
	return "platform_memberships"
}
