package projectors

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileProjector applies profile-domain events. Profiles move from
// NonExistent to Active and are never hard-deleted.
type ProfileProjector struct {
	db *gorm.DB
}

func NewProfileProjector(db *gorm.DB) *ProfileProjector {
	return &ProfileProjector{db: db}
}

func (p *ProfileProjector) Domain() events.Domain {
	return events.DomainProfile
}

func (p *ProfileProjector) Apply(kind events.Kind, ev chain.Event) error {
	switch kind {
	case events.KindProfileCreated:
		dec, err := events.DecodeProfileCreated(ev.Data)
		if err != nil {
			return err
		}
		return p.applyCreated(ev, dec)
	case events.KindProfileUpdated:
		dec, err := events.DecodeProfileUpdated(ev.Data)
		if err != nil {
			return err
		}
		return p.applyUpdated(ev, dec)
	case events.KindUsernameRegistered, events.KindUsernameUpdated:
		dec, err := events.DecodeUsernameChanged(ev.Data)
		if err != nil {
			return err
		}
		return p.applyUsernameChanged(ev, kind, dec)
	case events.KindBlockListCreated:
		dec, err := events.DecodeBlockListCreated(ev.Data)
		if err != nil {
			return err
		}
		return p.applyBlockListCreated(ev, dec)
	default:
		return fmt.Errorf("profile projector: unexpected kind %s", kind)
	}
}

// placeholderUsername derives a stable default username from the owner
// address when the creation event carries none.
func placeholderUsername(owner string) string {
	suffix := owner
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "user_" + suffix
}

func (p *ProfileProjector) applyCreated(ev chain.Event, dec *events.ProfileCreated) error {
	username := dec.Username
	if username == "" {
		username = placeholderUsername(dec.OwnerAddress)
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		profile := models.Profile{
			ProfileID:    dec.ProfileID,
			OwnerAddress: dec.OwnerAddress,
			Username:     username,
			DisplayName:  dec.DisplayName,
			Bio:          dec.Bio,
			ProfilePhoto: dec.ProfilePhoto,
			CoverPhoto:   dec.CoverPhoto,
			Website:      dec.Website,
			CreatedAt:    dec.CreatedAt.Time,
		}
		// Re-creation of an existing profile_id updates the mutable fields
		// instead of duplicating; counts are left alone.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"owner_address", "username", "display_name", "bio",
				"profile_photo", "cover_photo", "website", "updated_at",
			}),
		}).Create(&profile).Error
		if err != nil {
			return err
		}

		if dec.Username != "" {
			if err := upsertUsername(tx, dec.ProfileID, dec.Username, dec.CreatedAt.Time); err != nil {
				return err
			}
		}

		return appendProfileEvent(tx, ev, dec.ProfileID, events.KindProfileCreated.String())
	})
}

func (p *ProfileProjector) applyUpdated(ev chain.Event, dec *events.ProfileUpdated) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Where("profile_id = ?", dec.ProfileID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("profile update for unknown profile, skipping",
				"profile_id", dec.ProfileID, "event_id", ev.EventID)
			return nil
		}
		if err != nil {
			return err
		}

		// Only fields present in the event overwrite stored values.
		updates := map[string]any{}
		setIf(updates, "display_name", dec.DisplayName)
		setIf(updates, "bio", dec.Bio)
		setIf(updates, "profile_photo", dec.ProfilePhoto)
		setIf(updates, "cover_photo", dec.CoverPhoto)
		setIf(updates, "website", dec.Website)
		setIf(updates, "birthdate", dec.Birthdate)
		setIf(updates, "current_location", dec.CurrentLocation)
		setIf(updates, "raised_location", dec.RaisedLocation)
		setIf(updates, "phone", dec.Phone)
		setIf(updates, "email", dec.Email)
		setIf(updates, "gender", dec.Gender)
		setIf(updates, "political_view", dec.PoliticalView)
		setIf(updates, "religion", dec.Religion)
		setIf(updates, "education", dec.Education)
		setIf(updates, "primary_language", dec.PrimaryLanguage)
		setIf(updates, "relationship_status", dec.RelationshipStatus)
		setIf(updates, "x_username", dec.XUsername)
		setIf(updates, "mastodon_username", dec.MastodonUsername)
		setIf(updates, "facebook_username", dec.FacebookUsername)
		setIf(updates, "reddit_username", dec.RedditUsername)
		setIf(updates, "github_username", dec.GithubUsername)

		if dec.HasSensitiveFields() {
			updates["sensitive_data_updated_at"] = dec.UpdatedAt.Time
		}

		if len(updates) > 0 {
			if err := tx.Model(&profile).Updates(updates).Error; err != nil {
				return err
			}
		}

		return appendProfileEvent(tx, ev, dec.ProfileID, events.KindProfileUpdated.String())
	})
}

func setIf(updates map[string]any, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}

func (p *ProfileProjector) applyUsernameChanged(ev chain.Event, kind events.Kind, dec *events.UsernameChanged) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Where("profile_id = ?", dec.ProfileID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Out-of-order delivery: the username module can emit before
			// profile creation is indexed. A profile that already carries
			// the username under a legacy row gets attached instead.
			err = tx.Where("username = ?", dec.Username).First(&profile).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				slog.Warn("username change for unknown profile, skipping",
					"profile_id", dec.ProfileID, "username", dec.Username,
					"event_id", ev.EventID)
				return nil
			}
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&profile).Update("username", dec.Username).Error; err != nil {
			return err
		}
		if err := upsertUsername(tx, profile.ProfileID, dec.Username, dec.UpdatedAt.Time); err != nil {
			return err
		}

		return appendProfileEvent(tx, ev, profile.ProfileID, kind.String())
	})
}

func upsertUsername(tx *gorm.DB, profileID, username string, at time.Time) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(&models.ProfileUsername{
		ProfileID:    profileID,
		Username:     username,
		RegisteredAt: at,
		UpdatedAt:    at,
	}).Error
}

func (p *ProfileProjector) applyBlockListCreated(ev chain.Event, dec *events.BlockListCreated) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Where("owner_address = ?", dec.OwnerAddress).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("block list created for unknown owner, skipping",
				"owner_address", dec.OwnerAddress, "event_id", ev.EventID)
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&profile).Update("block_list_address", dec.BlockListID).Error; err != nil {
			return err
		}

		return appendProfileEvent(tx, ev, profile.ProfileID, events.KindBlockListCreated.String())
	})
}
