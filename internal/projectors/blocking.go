package projectors

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockingProjector applies user-level block/unblock events. Unblocking
// flips is_blocked rather than deleting the row, keeping the audit trail
// symmetrical with the platform-level block table.
type BlockingProjector struct {
	db *gorm.DB
}

func NewBlockingProjector(db *gorm.DB) *BlockingProjector {
	return &BlockingProjector{db: db}
}

func (p *BlockingProjector) Domain() events.Domain {
	return events.DomainBlocking
}

func (p *BlockingProjector) Apply(kind events.Kind, ev chain.Event) error {
	dec, err := events.DecodeBlockChange(ev.Data)
	if err != nil {
		return err
	}
	switch kind {
	case events.KindBlockAdded:
		return p.applyBlockAdded(ev, dec)
	case events.KindBlockRemoved:
		return p.applyBlockRemoved(ev, dec)
	default:
		return fmt.Errorf("blocking projector: unexpected kind %s", kind)
	}
}

func (p *BlockingProjector) applyBlockAdded(ev chain.Event, dec *events.BlockChange) error {
	now := time.Now().UTC()
	return p.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "blocker_profile_id"}, {Name: "blocked_profile_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"is_blocked":   true,
				"unblocked_at": nil,
			}),
		}).Create(&models.ProfileBlock{
			BlockerProfileID: dec.BlockerProfileID,
			BlockedProfileID: dec.BlockedProfileID,
			IsBlocked:        true,
			CreatedAt:        now,
		}).Error
		if err != nil {
			return err
		}

		return appendProfileEvent(tx, ev, dec.BlockerProfileID, events.KindBlockAdded.String())
	})
}

func (p *BlockingProjector) applyBlockRemoved(ev chain.Event, dec *events.BlockChange) error {
	now := time.Now().UTC()
	return p.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProfileBlock{}).
			Where("blocker_profile_id = ? AND blocked_profile_id = ?",
				dec.BlockerProfileID, dec.BlockedProfileID).
			Updates(map[string]any{"is_blocked": false, "unblocked_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			slog.Warn("unblock for unknown block, continuing",
				"blocker", dec.BlockerProfileID, "blocked", dec.BlockedProfileID,
				"event_id", ev.EventID)
		}

		return appendProfileEvent(tx, ev, dec.BlockerProfileID, events.KindBlockRemoved.String())
	})
}
