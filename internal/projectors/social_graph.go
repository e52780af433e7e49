package projectors

import (
	"fmt"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialGraphProjector applies follow/unfollow events. Every event is
// appended to the social_graph_events log before any relationship check, so
// the audit trail records follows that were skipped for missing profiles.
// Counters are recomputed by aggregate after every mutation; duplicates and
// missed events therefore cannot drift them.
type SocialGraphProjector struct {
	db *gorm.DB
}

func NewSocialGraphProjector(db *gorm.DB) *SocialGraphProjector {
	return &SocialGraphProjector{db: db}
}

func (p *SocialGraphProjector) Domain() events.Domain {
	return events.DomainSocialGraph
}

func (p *SocialGraphProjector) Apply(kind events.Kind, ev chain.Event) error {
	switch kind {
	case events.KindFollow:
		dec, err := events.DecodeFollow(ev.Data)
		if err != nil {
			return err
		}
		return p.applyFollow(ev, dec)
	case events.KindUnfollow:
		dec, err := events.DecodeUnfollow(ev.Data)
		if err != nil {
			return err
		}
		return p.applyUnfollow(ev, dec)
	default:
		return fmt.Errorf("social graph projector: unexpected kind %s", kind)
	}
}

func profileExists(tx *gorm.DB, profileID string) (bool, error) {
	var n int64
	err := tx.Model(&models.Profile{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n > 0, err
}

func recomputeCounts(tx *gorm.DB, profileID string) error {
	err := tx.Exec(`UPDATE profiles SET following_count = (
			SELECT COUNT(*) FROM social_graph_relationships WHERE follower_address = ?
		) WHERE profile_id = ?`, profileID, profileID).Error
	if err != nil {
		return err
	}
	return tx.Exec(`UPDATE profiles SET followers_count = (
			SELECT COUNT(*) FROM social_graph_relationships WHERE following_address = ?
		) WHERE profile_id = ?`, profileID, profileID).Error
}

func (p *SocialGraphProjector) applyFollow(ev chain.Event, dec *events.Follow) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendSocialGraphEvent(tx, ev, dec.Follower, dec.Following, events.KindFollow.String()); err != nil {
			return err
		}

		for _, id := range []string{dec.Follower, dec.Following} {
			ok, err := profileExists(tx, id)
			if err != nil {
				return err
			}
			if !ok {
				// Logged above; the edge waits for a redelivery after the
				// profile is indexed.
				return nil
			}
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_address"}, {Name: "following_address"}},
			DoNothing: true,
		}).Create(&models.SocialGraphRelationship{
			FollowerAddress:  dec.Follower,
			FollowingAddress: dec.Following,
			CreatedAt:        dec.CreatedAt.Time,
		}).Error
		if err != nil {
			return err
		}

		if err := recomputeCounts(tx, dec.Follower); err != nil {
			return err
		}
		return recomputeCounts(tx, dec.Following)
	})
}

func (p *SocialGraphProjector) applyUnfollow(ev chain.Event, dec *events.Unfollow) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := appendSocialGraphEvent(tx, ev, dec.Follower, dec.Unfollowed, events.KindUnfollow.String()); err != nil {
			return err
		}

		result := tx.Where("follower_address = ? AND following_address = ?",
			dec.Follower, dec.Unfollowed).
			Delete(&models.SocialGraphRelationship{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := recomputeCounts(tx, dec.Follower); err != nil {
			return err
		}
		return recomputeCounts(tx, dec.Unfollowed)
	})
}
