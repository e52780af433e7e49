package projectors

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlatformProjector applies platform-domain events. Platforms move
// NonExistent -> Unapproved -> Approved (revocable); the status enum is
// tracked independently of approval. Every handler writes its event-log
// row inside the same transaction as the entity mutation.
type PlatformProjector struct {
	db *gorm.DB
}

func NewPlatformProjector(db *gorm.DB) *PlatformProjector {
	return &PlatformProjector{db: db}
}

func (p *PlatformProjector) Domain() events.Domain {
	return events.DomainPlatform
}

func (p *PlatformProjector) Apply(kind events.Kind, ev chain.Event) error {
	switch kind {
	case events.KindPlatformCreated:
		dec, err := events.DecodePlatformCreated(ev.Data)
		if err != nil {
			return err
		}
		return p.applyCreated(ev, dec)
	case events.KindPlatformUpdated:
		dec, err := events.DecodePlatformUpdated(ev.Data)
		if err != nil {
			return err
		}
		return p.applyUpdated(ev, dec)
	case events.KindModeratorAdded, events.KindModeratorRemoved:
		dec, err := events.DecodeModeratorChange(ev.Data)
		if err != nil {
			return err
		}
		if kind == events.KindModeratorAdded {
			return p.applyModeratorAdded(ev, dec)
		}
		return p.applyModeratorRemoved(ev, dec)
	case events.KindProfileBlockedByPlatform:
		dec, err := events.DecodePlatformBlockChange(ev.Data)
		if err != nil {
			return err
		}
		return p.applyProfileBlocked(ev, dec)
	case events.KindProfileUnblockedByPlatform:
		dec, err := events.DecodePlatformBlockChange(ev.Data)
		if err != nil {
			return err
		}
		return p.applyProfileUnblocked(ev, dec)
	case events.KindPlatformApprovalChanged:
		dec, err := events.DecodeApprovalChanged(ev.Data)
		if err != nil {
			return err
		}
		return p.applyApprovalChanged(ev, dec)
	case events.KindUserJoinedPlatform:
		dec, err := events.DecodeMembershipChange(ev.Data)
		if err != nil {
			return err
		}
		return p.applyJoined(ev, dec)
	case events.KindUserLeftPlatform:
		dec, err := events.DecodeMembershipChange(ev.Data)
		if err != nil {
			return err
		}
		return p.applyLeft(ev, dec)
	default:
		return fmt.Errorf("platform projector: unexpected kind %s", kind)
	}
}

func (p *PlatformProjector) applyCreated(ev chain.Event, dec *events.PlatformCreated) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindPlatformCreated.String()); err != nil {
			return err
		}

		platform := models.Platform{
			PlatformID:       dec.PlatformID,
			Name:             dec.Name,
			Tagline:          dec.Tagline,
			Description:      dec.Description,
			Logo:             dec.Logo,
			DeveloperAddress: dec.DeveloperAddress,
			TermsOfService:   dec.TermsOfService,
			PrivacyPolicy:    dec.PrivacyPolicy,
			Status:           dec.Status.Value,
			CreatedAt:        dec.CreatedAt.Time,
		}
		if dec.PlatformNames != nil {
			platform.PlatformNames = datatypes.JSON(dec.PlatformNames)
		}
		if dec.Links != nil {
			platform.Links = datatypes.JSON(dec.Links)
		}

		// Approval fields are deliberately absent from the update list:
		// only the approval-changed handler writes them.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "platform_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "tagline", "description", "logo", "developer_address",
				"terms_of_service", "privacy_policy", "platform_names",
				"links", "status", "updated_at",
			}),
		}).Create(&platform).Error
		if err != nil {
			return err
		}

		// The developer is the platform's first moderator.
		if dec.DeveloperAddress != "" {
			if err := insertModerator(tx, dec.PlatformID, dec.DeveloperAddress, dec.DeveloperAddress); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PlatformProjector) applyUpdated(ev chain.Event, dec *events.PlatformUpdated) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindPlatformUpdated.String()); err != nil {
			return err
		}

		var platform models.Platform
		err := tx.Where("platform_id = ?", dec.PlatformID).First(&platform).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("platform update for unknown platform, skipping",
				"platform_id", dec.PlatformID, "event_id", ev.EventID)
			return nil
		}
		if err != nil {
			return err
		}

		updates := map[string]any{}
		setIf(updates, "name", dec.Name)
		setIf(updates, "tagline", dec.Tagline)
		setIf(updates, "description", dec.Description)
		setIf(updates, "logo", dec.Logo)
		setIf(updates, "terms_of_service", dec.TermsOfService)
		setIf(updates, "privacy_policy", dec.PrivacyPolicy)
		if dec.PlatformNames != nil {
			updates["platform_names"] = datatypes.JSON(dec.PlatformNames)
		}
		if dec.Links != nil {
			updates["links"] = datatypes.JSON(dec.Links)
		}
		if dec.Status != nil {
			updates["status"] = dec.Status.Value
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&platform).Updates(updates).Error
	})
}

// ensurePlatform upserts a minimal placeholder when a child event references
// a platform that has not been indexed yet, so the child row never loses
// its parent. A real PlatformCreated event later overwrites the stub.
func ensurePlatform(tx *gorm.DB, platformID, actor string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_id"}},
		DoNothing: true,
	}).Create(&models.Platform{
		PlatformID:       platformID,
		Name:             "Unknown Platform (" + platformID + ")",
		Tagline:          "Platform metadata not available",
		DeveloperAddress: actor,
		Status:           models.PlatformStatusDevelopment,
		IsApproved:       false,
		CreatedAt:        time.Now().UTC(),
	}).Error
}

func insertModerator(tx *gorm.DB, platformID, moderator, addedBy string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_id"}, {Name: "moderator_address"}},
		DoNothing: true,
	}).Create(&models.PlatformModerator{
		PlatformID:       platformID,
		ModeratorAddress: moderator,
		AddedBy:          addedBy,
		CreatedAt:        time.Now().UTC(),
	}).Error
}

func (p *PlatformProjector) applyModeratorAdded(ev chain.Event, dec *events.ModeratorChange) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindModeratorAdded.String()); err != nil {
			return err
		}
		if err := ensurePlatform(tx, dec.PlatformID, dec.ActorAddress); err != nil {
			return err
		}
		return insertModerator(tx, dec.PlatformID, dec.ModeratorAddress, dec.ActorAddress)
	})
}

func (p *PlatformProjector) applyModeratorRemoved(ev chain.Event, dec *events.ModeratorChange) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindModeratorRemoved.String()); err != nil {
			return err
		}
		return tx.Where("platform_id = ? AND moderator_address = ?",
			dec.PlatformID, dec.ModeratorAddress).
			Delete(&models.PlatformModerator{}).Error
	})
}

func (p *PlatformProjector) applyProfileBlocked(ev chain.Event, dec *events.PlatformBlockChange) error {
	now := time.Now().UTC()
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindProfileBlockedByPlatform.String()); err != nil {
			return err
		}
		if err := ensurePlatform(tx, dec.PlatformID, dec.ActorAddress); err != nil {
			return err
		}

		// Re-blocking refreshes the block timestamp and clears any earlier
		// unblock.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "platform_id"}, {Name: "profile_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"is_blocked":   true,
				"blocked_by":   dec.ActorAddress,
				"created_at":   now,
				"unblocked_at": nil,
			}),
		}).Create(&models.PlatformBlockedProfile{
			PlatformID: dec.PlatformID,
			ProfileID:  dec.ProfileID,
			BlockedBy:  dec.ActorAddress,
			IsBlocked:  true,
			CreatedAt:  now,
		}).Error
		if err != nil {
			return err
		}

		// Cross-reference in the blocked profile's own event log.
		return appendProfileEventPayload(tx, ev, dec.ProfileID, events.KindProfileBlockedByPlatform.String(), map[string]any{
			"platform_id":       dec.PlatformID,
			"blocked_by":        dec.ActorAddress,
			"timestamp":         dec.ChangedAt.UnixMilli(),
			"is_platform_block": true,
		})
	})
}

func (p *PlatformProjector) applyProfileUnblocked(ev chain.Event, dec *events.PlatformBlockChange) error {
	now := time.Now().UTC()
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindProfileUnblockedByPlatform.String()); err != nil {
			return err
		}

		result := tx.Model(&models.PlatformBlockedProfile{}).
			Where("platform_id = ? AND profile_id = ?", dec.PlatformID, dec.ProfileID).
			Updates(map[string]any{"is_blocked": false, "unblocked_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			slog.Warn("unblock for unknown platform block, skipping",
				"platform_id", dec.PlatformID, "profile_id", dec.ProfileID,
				"event_id", ev.EventID)
		}

		return appendProfileEventPayload(tx, ev, dec.ProfileID, events.KindProfileUnblockedByPlatform.String(), map[string]any{
			"platform_id":       dec.PlatformID,
			"unblocked_by":      dec.ActorAddress,
			"timestamp":         dec.ChangedAt.UnixMilli(),
			"is_platform_block": true,
		})
	})
}

func (p *PlatformProjector) applyApprovalChanged(ev chain.Event, dec *events.PlatformApprovalChanged) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindPlatformApprovalChanged.String()); err != nil {
			return err
		}
		if err := ensurePlatform(tx, dec.PlatformID, dec.ApprovedBy); err != nil {
			return err
		}

		// Sole writer of the approval triple.
		changedAt := dec.ChangedAt.Time
		return tx.Model(&models.Platform{}).
			Where("platform_id = ?", dec.PlatformID).
			Updates(map[string]any{
				"is_approved":         dec.Approved,
				"approval_changed_at": changedAt,
				"approved_by":         dec.ApprovedBy,
			}).Error
	})
}

func (p *PlatformProjector) applyJoined(ev chain.Event, dec *events.MembershipChange) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		// The raw event is always recorded, even when the join is refused.
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindUserJoinedPlatform.String()); err != nil {
			return err
		}

		var platform models.Platform
		err := tx.Where("platform_id = ?", dec.PlatformID).First(&platform).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("join for unknown platform, ignoring",
				"platform_id", dec.PlatformID, "profile_id", dec.ProfileID,
				"event_id", ev.EventID)
			return nil
		}
		if err != nil {
			return err
		}
		if !platform.IsApproved {
			slog.Info("join refused: platform not approved",
				"platform_id", dec.PlatformID, "profile_id", dec.ProfileID)
			return nil
		}

		var blocked int64
		err = tx.Model(&models.PlatformBlockedProfile{}).
			Where("platform_id = ? AND profile_id = ? AND is_blocked = ?",
				dec.PlatformID, dec.ProfileID, true).
			Count(&blocked).Error
		if err != nil {
			return err
		}
		if blocked > 0 {
			slog.Info("join refused: profile blocked by platform",
				"platform_id", dec.PlatformID, "profile_id", dec.ProfileID)
			return nil
		}

		joinedAt := dec.ChangedAt.Time
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_id"}, {Name: "profile_id"}},
			DoNothing: true,
		}).Create(&models.PlatformMembership{
			PlatformID: dec.PlatformID,
			ProfileID:  dec.ProfileID,
			JoinedAt:   joinedAt,
		}).Error
		if err != nil {
			return err
		}

		return appendProfileEventPayload(tx, ev, dec.ProfileID, "PlatformJoinedEvent", map[string]any{
			"platform_id": dec.PlatformID,
			"timestamp":   dec.ChangedAt.UnixMilli(),
		})
	})
}

func (p *PlatformProjector) applyLeft(ev chain.Event, dec *events.MembershipChange) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendPlatformEvent(tx, ev, dec.PlatformID, events.KindUserLeftPlatform.String()); err != nil {
			return err
		}

		err := tx.Where("platform_id = ? AND profile_id = ?", dec.PlatformID, dec.ProfileID).
			Delete(&models.PlatformMembership{}).Error
		if err != nil {
			return err
		}

		return appendProfileEventPayload(tx, ev, dec.ProfileID, "PlatformLeftEvent", map[string]any{
			"platform_id": dec.PlatformID,
			"timestamp":   dec.ChangedAt.UnixMilli(),
		})
	})
}
