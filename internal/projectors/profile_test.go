package projectors

import (
	"testing"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCreatedIdempotent(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)

	ev := makeEvent(t, "0x1::profile::ProfileCreatedEvent",
		`{"profile_id": "0xp1", "owner_address": "0xo1", "username": "alice", "bio": "hi"}`)

	require.NoError(t, p.Apply(events.KindProfileCreated, ev))
	require.NoError(t, p.Apply(events.KindProfileCreated, ev))

	assert.Equal(t, int64(1), countRows(t, db, &models.Profile{}, "profile_id = ?", "0xp1"))

	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", "0xp1").First(&profile).Error)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "hi", profile.Bio)
	assert.Equal(t, 0, profile.FollowersCount)
	assert.Equal(t, 0, profile.FollowingCount)
}

func TestProfileCreatedPlaceholderUsername(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)

	ev := makeEvent(t, "0x1::profile::ProfileCreatedEvent",
		`{"profile_id": "0xp1", "owner_address": "0xdeadbeefcafe"}`)
	require.NoError(t, p.Apply(events.KindProfileCreated, ev))

	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", "0xp1").First(&profile).Error)
	assert.Equal(t, "user_0xdeadbe", profile.Username)

	// Derived usernames do not enter the history table.
	assert.Equal(t, int64(0), countRows(t, db, &models.ProfileUsername{}, ""))
}

func TestProfileUpdatedPartial(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)
	createProfile(t, p, "0xp1", "0xo1", "alice")

	ev := makeEvent(t, "0x1::profile::ProfileUpdatedEvent",
		`{"profile_id": "0xp1", "bio": "new bio"}`)
	require.NoError(t, p.Apply(events.KindProfileUpdated, ev))

	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", "0xp1").First(&profile).Error)
	assert.Equal(t, "new bio", profile.Bio)
	// Absent fields keep their stored values.
	assert.Equal(t, "alice", profile.Username)
	assert.Nil(t, profile.SensitiveDataUpdatedAt)
}

func TestProfileUpdatedSensitiveBumpsTimestamp(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)
	createProfile(t, p, "0xp1", "0xo1", "alice")

	ev := makeEvent(t, "0x1::profile::ProfileUpdatedEvent",
		`{"profile_id": "0xp1", "email": "a@b.c", "timestamp": 1700000500}`)
	require.NoError(t, p.Apply(events.KindProfileUpdated, ev))

	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", "0xp1").First(&profile).Error)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "a@b.c", *profile.Email)
	require.NotNil(t, profile.SensitiveDataUpdatedAt)
	assert.Equal(t, int64(1700000500), profile.SensitiveDataUpdatedAt.Unix())
}

func TestProfileUpdatedUnknownProfileSkips(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)

	ev := makeEvent(t, "0x1::profile::ProfileUpdatedEvent",
		`{"profile_id": "0xmissing", "bio": "x"}`)
	require.NoError(t, p.Apply(events.KindProfileUpdated, ev))

	assert.Equal(t, int64(0), countRows(t, db, &models.Profile{}, ""))
	// A skipped update leaves no event-log row either.
	assert.Equal(t, int64(0), countRows(t, db, &models.ProfileEvent{},
		"event_type = ?", "ProfileUpdatedEvent"))
}

func TestUsernameChanged(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)
	createProfile(t, p, "0xp1", "0xo1", "alice")

	ev := makeEvent(t, "0x1::username::UsernameUpdatedEvent",
		`{"profile_id": "0xp1", "username": "alice2"}`)
	require.NoError(t, p.Apply(events.KindUsernameUpdated, ev))

	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", "0xp1").First(&profile).Error)
	assert.Equal(t, "alice2", profile.Username)

	// History keeps both usernames.
	assert.Equal(t, int64(2), countRows(t, db, &models.ProfileUsername{},
		"profile_id = ?", "0xp1"))

	// Re-applying the same username is a no-op on history.
	require.NoError(t, p.Apply(events.KindUsernameUpdated, ev))
	assert.Equal(t, int64(2), countRows(t, db, &models.ProfileUsername{},
		"profile_id = ?", "0xp1"))
}

func TestUsernameChangedUnknownProfileSkips(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)

	ev := makeEvent(t, "0x1::username::UsernameRegisteredEvent",
		`{"profile_id": "0xmissing", "username": "ghost"}`)
	require.NoError(t, p.Apply(events.KindUsernameRegistered, ev))

	assert.Equal(t, int64(0), countRows(t, db, &models.ProfileUsername{}, ""))
}

func TestUsernameChangedAttachesByLegacyUsername(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)
	createProfile(t, p, "0xp1", "0xo1", "alice")

	// Event references an unknown profile id but an existing username.
	ev := makeEvent(t, "0x1::username::UsernameUpdatedEvent",
		`{"profile_id": "0xother", "username": "alice"}`)
	require.NoError(t, p.Apply(events.KindUsernameUpdated, ev))

	assert.Equal(t, int64(1), countRows(t, db, &models.ProfileUsername{},
		"profile_id = ? AND username = ?", "0xp1", "alice"))
}

func TestBlockListCreated(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)
	createProfile(t, p, "0xp1", "0xo1", "alice")

	ev := makeEvent(t, "0x1::block_list::BlockListCreatedEvent",
		`{"block_list_id": "0xbl1", "owner": "0xo1"}`)
	require.NoError(t, p.Apply(events.KindBlockListCreated, ev))

	var profile models.Profile
	require.NoError(t, db.Where("profile_id = ?", "0xp1").First(&profile).Error)
	require.NotNil(t, profile.BlockListAddress)
	assert.Equal(t, "0xbl1", *profile.BlockListAddress)
}

func TestBlockListCreatedUnknownOwnerSkips(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)

	ev := makeEvent(t, "0x1::block_list::BlockListCreatedEvent",
		`{"block_list_id": "0xbl1", "owner": "0xnobody"}`)
	require.NoError(t, p.Apply(events.KindBlockListCreated, ev))

	assert.Equal(t, int64(0), countRows(t, db, &models.ProfileEvent{}, ""))
}

func TestProfileUndecodablePayloadReturnsSkipSentinel(t *testing.T) {
	db := setupDB(t)
	p := NewProfileProjector(db)

	ev := makeEvent(t, "0x1::profile::ProfileCreatedEvent", `{"unrelated": 1}`)
	err := p.Apply(events.KindProfileCreated, ev)
	assert.ErrorIs(t, err, events.ErrSkipEvent)
	assert.Equal(t, int64(0), countRows(t, db, &models.Profile{}, ""))
}
