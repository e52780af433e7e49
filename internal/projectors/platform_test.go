package projectors

import (
	"testing"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformCreated(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	ev := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "0xplat1", "name": "Testnet", "tagline": "hello", "developer": "0xdev", "status": {"status": 1}}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, ev))

	var platform models.Platform
	require.NoError(t, db.Where("platform_id = ?", "0xplat1").First(&platform).Error)
	assert.Equal(t, "Testnet", platform.Name)
	assert.Equal(t, models.PlatformStatusAlpha, platform.Status)
	assert.False(t, platform.IsApproved)

	// The developer becomes the first moderator.
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformModerator{},
		"platform_id = ? AND moderator_address = ?", "0xplat1", "0xdev"))

	// Replaying the creation does not duplicate anything.
	require.NoError(t, p.Apply(events.KindPlatformCreated, ev))
	assert.Equal(t, int64(1), countRows(t, db, &models.Platform{}, "platform_id = ?", "0xplat1"))
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformModerator{}, "platform_id = ?", "0xplat1"))
}

func TestPlatformCreatedDoesNotResetApproval(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "0xplat1", "name": "Testnet", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))

	approve := makeEvent(t, "0x1::platform::PlatformApprovalChangedEvent",
		`{"platform_id": "0xplat1", "approved": true, "approved_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindPlatformApprovalChanged, approve))

	// A redelivered creation event must not clear the approval triple.
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))

	var platform models.Platform
	require.NoError(t, db.Where("platform_id = ?", "0xplat1").First(&platform).Error)
	assert.True(t, platform.IsApproved)
	require.NotNil(t, platform.ApprovedBy)
	assert.Equal(t, "0xadmin", *platform.ApprovedBy)
}

func TestPlatformUpdatedPartial(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "0xplat1", "name": "Testnet", "tagline": "hello", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))

	update := makeEvent(t, "0x1::platform::PlatformUpdatedEvent",
		`{"platform_id": "0xplat1", "tagline": "updated"}`)
	require.NoError(t, p.Apply(events.KindPlatformUpdated, update))

	var platform models.Platform
	require.NoError(t, db.Where("platform_id = ?", "0xplat1").First(&platform).Error)
	assert.Equal(t, "updated", platform.Tagline)
	assert.Equal(t, "Testnet", platform.Name)
}

func TestModeratorAddedSynthesizesPlaceholderPlatform(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	ev := makeEvent(t, "0x1::platform::ModeratorAddedEvent",
		`{"platform_id": "0xghost", "moderator_address": "0xmod", "added_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindModeratorAdded, ev))

	var platform models.Platform
	require.NoError(t, db.Where("platform_id = ?", "0xghost").First(&platform).Error)
	assert.Equal(t, "Unknown Platform (0xghost)", platform.Name)
	assert.False(t, platform.IsApproved)

	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformModerator{},
		"platform_id = ? AND moderator_address = ?", "0xghost", "0xmod"))

	// A later real creation overwrites the stub.
	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "0xghost", "name": "Real Name", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))
	require.NoError(t, db.Where("platform_id = ?", "0xghost").First(&platform).Error)
	assert.Equal(t, "Real Name", platform.Name)
}

func TestModeratorAddRemove(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	add := makeEvent(t, "0x1::platform::ModeratorAddedEvent",
		`{"platform_id": "0xplat1", "moderator_address": "0xmod", "added_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindModeratorAdded, add))
	require.NoError(t, p.Apply(events.KindModeratorAdded, add))
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformModerator{},
		"moderator_address = ?", "0xmod"))

	remove := makeEvent(t, "0x1::platform::ModeratorRemovedEvent",
		`{"platform_id": "0xplat1", "moderator_address": "0xmod"}`)
	require.NoError(t, p.Apply(events.KindModeratorRemoved, remove))
	assert.Equal(t, int64(0), countRows(t, db, &models.PlatformModerator{},
		"moderator_address = ?", "0xmod"))
}

func TestJoinGating(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	join := makeEvent(t, "0x1::platform::UserJoinedPlatformEvent",
		`{"profile_id": "0xu1", "platform_id": "0xplat1"}`)

	// Join before the platform exists: no membership, no crash.
	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(0), countRows(t, db, &models.PlatformMembership{}, ""))

	// Platform appears but is unapproved: still refused.
	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "0xplat1", "name": "Testnet", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))
	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(0), countRows(t, db, &models.PlatformMembership{}, ""))

	// Every refused join is still in the event log.
	assert.Equal(t, int64(2), countRows(t, db, &models.PlatformEvent{},
		"event_type = ?", "UserJoinedPlatformEvent"))
}

func TestPlatformScenario(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "p1", "name": "P1", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))

	var platform models.Platform
	require.NoError(t, db.Where("platform_id = ?", "p1").First(&platform).Error)
	assert.False(t, platform.IsApproved)
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformModerator{},
		"platform_id = ? AND moderator_address = ?", "p1", "0xdev"))

	approve := makeEvent(t, "0x1::platform::PlatformApprovalChangedEvent",
		`{"platform_id": "p1", "approved": true, "approved_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindPlatformApprovalChanged, approve))
	require.NoError(t, db.Where("platform_id = ?", "p1").First(&platform).Error)
	assert.True(t, platform.IsApproved)

	join := makeEvent(t, "0x1::platform::UserJoinedPlatformEvent",
		`{"profile_id": "u1", "platform_id": "p1"}`)
	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformMembership{},
		"platform_id = ? AND profile_id = ?", "p1", "u1"))

	// Membership insert is idempotent.
	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformMembership{},
		"platform_id = ? AND profile_id = ?", "p1", "u1"))

	// Block the user, leave, then re-join: membership must stay absent.
	block := makeEvent(t, "0x1::platform::PlatformBlockedProfileEvent",
		`{"platform_id": "p1", "profile_id": "u1", "blocked_by": "0xmod"}`)
	require.NoError(t, p.Apply(events.KindProfileBlockedByPlatform, block))

	leave := makeEvent(t, "0x1::platform::UserLeftPlatformEvent",
		`{"profile_id": "u1", "platform_id": "p1"}`)
	require.NoError(t, p.Apply(events.KindUserLeftPlatform, leave))
	assert.Equal(t, int64(0), countRows(t, db, &models.PlatformMembership{}, ""))

	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(0), countRows(t, db, &models.PlatformMembership{}, ""))
}

func TestPlatformBlockUnblockSoftDelete(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	block := makeEvent(t, "0x1::platform::PlatformBlockedProfileEvent",
		`{"platform_id": "p1", "profile_id": "u1", "blocked_by": "0xmod"}`)
	require.NoError(t, p.Apply(events.KindProfileBlockedByPlatform, block))

	var row models.PlatformBlockedProfile
	require.NoError(t, db.Where("platform_id = ? AND profile_id = ?", "p1", "u1").First(&row).Error)
	assert.True(t, row.IsBlocked)
	assert.Nil(t, row.UnblockedAt)

	unblock := makeEvent(t, "0x1::platform::PlatformUnblockedProfileEvent",
		`{"platform_id": "p1", "profile_id": "u1"}`)
	require.NoError(t, p.Apply(events.KindProfileUnblockedByPlatform, unblock))

	// The row survives with the flag cleared.
	require.NoError(t, db.Where("platform_id = ? AND profile_id = ?", "p1", "u1").First(&row).Error)
	assert.False(t, row.IsBlocked)
	assert.NotNil(t, row.UnblockedAt)

	// Re-blocking flips it back and clears unblocked_at.
	require.NoError(t, p.Apply(events.KindProfileBlockedByPlatform, block))
	row = models.PlatformBlockedProfile{}
	require.NoError(t, db.Where("platform_id = ? AND profile_id = ?", "p1", "u1").First(&row).Error)
	assert.True(t, row.IsBlocked)
	assert.Nil(t, row.UnblockedAt)
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformBlockedProfile{}, ""))
}

func TestUnblockAfterUnblockedJoinSucceeds(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "p1", "name": "P1", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))
	approve := makeEvent(t, "0x1::platform::PlatformApprovalChangedEvent",
		`{"platform_id": "p1", "approved": true, "approved_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindPlatformApprovalChanged, approve))

	block := makeEvent(t, "0x1::platform::PlatformBlockedProfileEvent",
		`{"platform_id": "p1", "profile_id": "u1", "blocked_by": "0xmod"}`)
	require.NoError(t, p.Apply(events.KindProfileBlockedByPlatform, block))
	unblock := makeEvent(t, "0x1::platform::PlatformUnblockedProfileEvent",
		`{"platform_id": "p1", "profile_id": "u1"}`)
	require.NoError(t, p.Apply(events.KindProfileUnblockedByPlatform, unblock))

	join := makeEvent(t, "0x1::platform::UserJoinedPlatformEvent",
		`{"profile_id": "u1", "platform_id": "p1"}`)
	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(1), countRows(t, db, &models.PlatformMembership{},
		"platform_id = ? AND profile_id = ?", "p1", "u1"))
}

func TestApprovalRevocation(t *testing.T) {
	db := setupDB(t)
	p := NewPlatformProjector(db)

	create := makeEvent(t, "0x1::platform::PlatformCreatedEvent",
		`{"platform_id": "p1", "name": "P1", "developer": "0xdev"}`)
	require.NoError(t, p.Apply(events.KindPlatformCreated, create))

	approve := makeEvent(t, "0x1::platform::PlatformApprovalChangedEvent",
		`{"platform_id": "p1", "approved": true, "approved_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindPlatformApprovalChanged, approve))

	revoke := makeEvent(t, "0x1::platform::PlatformApprovalChangedEvent",
		`{"platform_id": "p1", "approved": false, "approved_by": "0xadmin"}`)
	require.NoError(t, p.Apply(events.KindPlatformApprovalChanged, revoke))

	var platform models.Platform
	require.NoError(t, db.Where("platform_id = ?", "p1").First(&platform).Error)
	assert.False(t, platform.IsApproved)

	// Joins are refused again after revocation.
	join := makeEvent(t, "0x1::platform::UserJoinedPlatformEvent",
		`{"profile_id": "u1", "platform_id": "p1"}`)
	require.NoError(t, p.Apply(events.KindUserJoinedPlatform, join))
	assert.Equal(t, int64(0), countRows(t, db, &models.PlatformMembership{}, ""))
}
