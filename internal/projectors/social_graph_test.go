package projectors

import (
	"fmt"
	"testing"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func counts(t *testing.T, db *gorm.DB, profileID string) (followers, following int) {
	t.Helper()
	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", profileID).First(&profile).Error)
	return profile.FollowersCount, profile.FollowingCount
}

func TestFollowCreatesEdgeAndCounts(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileProjector(db)
	p := NewSocialGraphProjector(db)

	createProfile(t, profiles, "0xa", "0xoa", "alice")
	createProfile(t, profiles, "0xb", "0xob", "bob")

	ev := makeEvent(t, "0x1::social_graph::FollowEvent",
		`{"follower": "0xa", "following": "0xb"}`)
	require.NoError(t, p.Apply(events.KindFollow, ev))

	assert.Equal(t, int64(1), countRows(t, db, &models.SocialGraphRelationship{},
		"follower_address = ? AND following_address = ?", "0xa", "0xb"))

	followersA, followingA := counts(t, db, "0xa")
	assert.Equal(t, 0, followersA)
	assert.Equal(t, 1, followingA)

	followersB, followingB := counts(t, db, "0xb")
	assert.Equal(t, 1, followersB)
	assert.Equal(t, 0, followingB)
}

func TestDuplicateFollowDoesNotDriftCounts(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileProjector(db)
	p := NewSocialGraphProjector(db)

	createProfile(t, profiles, "0xa", "0xoa", "alice")
	createProfile(t, profiles, "0xb", "0xob", "bob")

	for i := 0; i < 3; i++ {
		ev := makeEvent(t, "0x1::social_graph::FollowEvent",
			`{"follower": "0xa", "following": "0xb"}`)
		require.NoError(t, p.Apply(events.KindFollow, ev))
	}

	assert.Equal(t, int64(1), countRows(t, db, &models.SocialGraphRelationship{}, ""))
	followersB, _ := counts(t, db, "0xb")
	assert.Equal(t, 1, followersB)
	_, followingA := counts(t, db, "0xa")
	assert.Equal(t, 1, followingA)

	// Every delivery is still logged.
	assert.Equal(t, int64(3), countRows(t, db, &models.SocialGraphEvent{}, ""))
}

func TestFollowBeforeProfilesExist(t *testing.T) {
	db := setupDB(t)
	p := NewSocialGraphProjector(db)

	ev := makeEvent(t, "0x1::social_graph::FollowEvent",
		`{"follower": "0xa", "following": "0xb"}`)
	require.NoError(t, p.Apply(events.KindFollow, ev))

	// No edge was written, but the audit row is there.
	assert.Equal(t, int64(0), countRows(t, db, &models.SocialGraphRelationship{}, ""))
	assert.Equal(t, int64(1), countRows(t, db, &models.SocialGraphEvent{}, ""))
}

func TestFollowWithOneMissingEndpoint(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileProjector(db)
	p := NewSocialGraphProjector(db)

	createProfile(t, profiles, "0xa", "0xoa", "alice")

	ev := makeEvent(t, "0x1::social_graph::FollowEvent",
		`{"follower": "0xa", "following": "0xmissing"}`)
	require.NoError(t, p.Apply(events.KindFollow, ev))

	assert.Equal(t, int64(0), countRows(t, db, &models.SocialGraphRelationship{}, ""))
	_, followingA := counts(t, db, "0xa")
	assert.Equal(t, 0, followingA)
}

func TestUnfollowRemovesEdgeAndRecounts(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileProjector(db)
	p := NewSocialGraphProjector(db)

	createProfile(t, profiles, "0xa", "0xoa", "alice")
	createProfile(t, profiles, "0xb", "0xob", "bob")

	follow := makeEvent(t, "0x1::social_graph::FollowEvent",
		`{"follower": "0xa", "following": "0xb"}`)
	require.NoError(t, p.Apply(events.KindFollow, follow))

	unfollow := makeEvent(t, "0x1::social_graph::UnfollowEvent",
		`{"follower": "0xa", "unfollowed": "0xb"}`)
	require.NoError(t, p.Apply(events.KindUnfollow, unfollow))

	assert.Equal(t, int64(0), countRows(t, db, &models.SocialGraphRelationship{}, ""))
	followersB, _ := counts(t, db, "0xb")
	assert.Equal(t, 0, followersB)
	_, followingA := counts(t, db, "0xa")
	assert.Equal(t, 0, followingA)
}

func TestUnfollowMissingEdgeIsNoop(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileProjector(db)
	p := NewSocialGraphProjector(db)

	createProfile(t, profiles, "0xa", "0xoa", "alice")
	createProfile(t, profiles, "0xb", "0xob", "bob")

	unfollow := makeEvent(t, "0x1::social_graph::UnfollowEvent",
		`{"follower": "0xa", "unfollowed": "0xb"}`)
	require.NoError(t, p.Apply(events.KindUnfollow, unfollow))
	require.NoError(t, p.Apply(events.KindUnfollow, unfollow))

	followersB, _ := counts(t, db, "0xb")
	assert.Equal(t, 0, followersB)
	assert.Equal(t, int64(2), countRows(t, db, &models.SocialGraphEvent{}, ""))
}

func TestCountsConvergeAcrossManyEdges(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileProjector(db)
	p := NewSocialGraphProjector(db)

	createProfile(t, profiles, "0xhub", "0xoh", "hub")
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("0xf%d", i)
		createProfile(t, profiles, id, "0xo"+id, "u"+id)
		ev := makeEvent(t, "0x1::social_graph::FollowEvent",
			fmt.Sprintf(`{"follower": %q, "following": "0xhub"}`, id))
		require.NoError(t, p.Apply(events.KindFollow, ev))
	}

	followers, _ := counts(t, db, "0xhub")
	assert.Equal(t, 5, followers)

	unfollow := makeEvent(t, "0x1::social_graph::UnfollowEvent",
		`{"follower": "0xf2", "unfollowed": "0xhub"}`)
	require.NoError(t, p.Apply(events.KindUnfollow, unfollow))

	followers, _ = counts(t, db, "0xhub")
	assert.Equal(t, 4, followers)
}
