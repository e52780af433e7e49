package models

import (
	"time"
)

// SocialGraphRelationship is a follow edge, unique per ordered pair.
// Endpoint columns hold profile ids (the chain emits profile ids in
// follow/unfollow events).
type SocialGraphRelationship struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FollowerAddress  string    `gorm:"size:66;not null;uniqueIndex:idx_follower_following;index" json:"follower_address"`
	FollowingAddress string    `gorm:"size:66;not null;uniqueIndex:idx_follower_following;index" json:"following_address"`
	CreatedAt        time.Time `json:"created_at"`
}

func (SocialGraphRelationship) TableName() string {
	return "social_graph_relationships"
}
