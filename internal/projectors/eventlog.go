package projectors

import (
	"encoding/json"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event-log append helpers. Log rows are written inside the same
// transaction as the entity mutation so an event is either fully applied
// and logged, or neither.

func eventPayload(ev chain.Event) datatypes.JSON {
	if len(ev.Data) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(ev.Data)
}

func appendProfileEvent(tx *gorm.DB, ev chain.Event, profileID, eventType string) error {
	return tx.Create(&models.ProfileEvent{
		ID:        uuid.New(),
		EventID:   ev.EventID,
		ProfileID: profileID,
		EventType: eventType,
		Payload:   eventPayload(ev),
		CreatedAt: time.Now().UTC(),
	}).Error
}

// appendProfileEventPayload writes a profile event-log entry with a
// synthesized payload (used for cross-references such as platform joins and
// platform-level blocks, which carry extra markers).
func appendProfileEventPayload(tx *gorm.DB, ev chain.Event, profileID, eventType string, payload map[string]any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&models.ProfileEvent{
		ID:        uuid.New(),
		EventID:   ev.EventID,
		ProfileID: profileID,
		EventType: eventType,
		Payload:   datatypes.JSON(b),
		CreatedAt: time.Now().UTC(),
	}).Error
}

func appendPlatformEvent(tx *gorm.DB, ev chain.Event, platformID, eventType string) error {
	return tx.Create(&models.PlatformEvent{
		ID:         uuid.New(),
		EventID:    ev.EventID,
		PlatformID: platformID,
		EventType:  eventType,
		Payload:    eventPayload(ev),
		CreatedAt:  time.Now().UTC(),
	}).Error
}

func appendSocialGraphEvent(tx *gorm.DB, ev chain.Event, follower, following, eventType string) error {
	return tx.Create(&models.SocialGraphEvent{
		ID:               uuid.New(),
		EventID:          ev.EventID,
		FollowerAddress:  follower,
		FollowingAddress: following,
		EventType:        eventType,
		Payload:          eventPayload(ev),
		CreatedAt:        time.Now().UTC(),
	}).Error
}
