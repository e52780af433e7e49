package projectors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var eventSeq int

// setupDB opens a fresh in-memory database with the projection schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.ProfileUsername{},
		&models.Platform{},
		&models.PlatformModerator{},
		&models.PlatformBlockedProfile{},
		&models.PlatformMembership{},
		&models.SocialGraphRelationship{},
		&models.ProfileBlock{},
		&models.ProfileEvent{},
		&models.PlatformEvent{},
		&models.SocialGraphEvent{},
		&models.IndexerProgress{},
	))
	return db
}

// makeEvent wraps a payload as a raw chain event with a unique event id.
func makeEvent(t *testing.T, eventType, payload string) chain.Event {
	t.Helper()
	require.True(t, json.Valid([]byte(payload)), "test payload must be valid JSON")

	eventSeq++
	return chain.Event{
		TxDigest:    fmt.Sprintf("digest%d", eventSeq),
		EventID:     fmt.Sprintf("digest%d:0", eventSeq),
		EventType:   eventType,
		Data:        json.RawMessage(payload),
		TimestampMs: 1700000000000 + int64(eventSeq),
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func createProfile(t *testing.T, p *ProfileProjector, profileID, owner, username string) {
	t.Helper()
	ev := makeEvent(t, "0x1::profile::ProfileCreatedEvent", fmt.Sprintf(
		`{"profile_id": %q, "owner_address": %q, "username": %q}`, profileID, owner, username))
	require.NoError(t, p.Apply(events.KindProfileCreated, ev))
}
