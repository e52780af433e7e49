package models

import (
	"time"
)

// Profile is the current-state projection of an on-chain profile. The
// profile_id is assigned by the chain at creation and never changes;
// follower/following counts are recomputed from the relationship table
// rather than incremented, so duplicate or missed events cannot drift them.
type Profile struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ProfileID    string `gorm:"size:66;not null;uniqueIndex" json:"profile_id"`
	OwnerAddress string `gorm:"size:66;not null;index" json:"owner_address"`
	Username     string `gorm:"size:100;index" json:"username"`
	DisplayName  string `gorm:"size:255" json:"display_name"`
	Bio          string `gorm:"type:text" json:"bio"`
	ProfilePhoto string `gorm:"type:text" json:"profile_photo"`
	Website      string `gorm:"type:text" json:"website"`
	CoverPhoto   string `gorm:"type:text" json:"cover_photo"`

	FollowersCount int `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int `gorm:"not null;default:0" json:"following_count"`

	// Self-reported sensitive fields, all optional.
	Birthdate          *string `gorm:"size:50" json:"birthdate,omitempty"`
	CurrentLocation    *string `gorm:"size:255" json:"current_location,omitempty"`
	RaisedLocation     *string `gorm:"size:255" json:"raised_location,omitempty"`
	Phone              *string `gorm:"size:50" json:"phone,omitempty"`
	Email              *string `gorm:"size:255" json:"email,omitempty"`
	Gender             *string `gorm:"size:50" json:"gender,omitempty"`
	PoliticalView      *string `gorm:"size:100" json:"political_view,omitempty"`
	Religion           *string `gorm:"size:100" json:"religion,omitempty"`
	Education          *string `gorm:"size:255" json:"education,omitempty"`
	PrimaryLanguage    *string `gorm:"size:50" json:"primary_language,omitempty"`
	RelationshipStatus *string `gorm:"size:50" json:"relationship_status,omitempty"`
	XUsername          *string `gorm:"size:100" json:"x_username,omitempty"`
	MastodonUsername   *string `gorm:"size:100" json:"mastodon_username,omitempty"`
	FacebookUsername   *string `gorm:"size:100" json:"facebook_username,omitempty"`
	RedditUsername     *string `gorm:"size:100" json:"reddit_username,omitempty"`
	GithubUsername     *string `gorm:"size:100" json:"github_username,omitempty"`

	SensitiveDataUpdatedAt *time.Time `json:"sensitive_data_updated_at,omitempty"`

	// Back-reference to the owner's on-chain block list object.
	BlockListAddress *string `gorm:"size:66" json:"block_list_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileUsername is the append-ish username history for a profile. A
// repeated registration of the same (profile_id, username) pair is a no-op.
type ProfileUsername struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    string    `gorm:"size:66;not null;uniqueIndex:idx_profile_username" json:"profile_id"`
	Username     string    `gorm:"size:100;not null;uniqueIndex:idx_profile_username" json:"username"`
	RegisteredAt time.Time `gorm:"not null" json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ProfileUsername) TableName() string {
	return "profile_usernames"
}
