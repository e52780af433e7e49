package services

import (
	"errors"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService serves read-only profile queries over the projected tables.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) ListProfiles(limit, offset int) ([]models.Profile, int64, error) {
	var total int64
	if err := s.db.Model(&models.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	err := s.db.Order("id DESC").Limit(limit).Offset(offset).Find(&profiles).Error
	return profiles, total, err
}

func (s *ProfileService) GetByProfileID(profileID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("profile_id = ?", profileID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) GetByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) ListEvents(profileID string, limit, offset int) ([]models.ProfileEvent, int64, error) {
	q := s.db.Model(&models.ProfileEvent{}).Where("profile_id = ?", profileID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.ProfileEvent
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// ListFollowers returns the profiles following the given profile.
func (s *ProfileService) ListFollowers(profileID string, limit, offset int) ([]models.Profile, int64, error) {
	base := s.db.Model(&models.SocialGraphRelationship{}).
		Where("following_address = ?", profileID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	err := s.db.Model(&models.Profile{}).
		Joins("JOIN social_graph_relationships r ON r.follower_address = profiles.profile_id").
		Where("r.following_address = ?", profileID).
		Order("r.created_at DESC").Limit(limit).Offset(offset).
		Find(&profiles).Error
	return profiles, total, err
}

// ListFollowing returns the profiles the given profile follows.
func (s *ProfileService) ListFollowing(profileID string, limit, offset int) ([]models.Profile, int64, error) {
	base := s.db.Model(&models.SocialGraphRelationship{}).
		Where("follower_address = ?", profileID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	err := s.db.Model(&models.Profile{}).
		Joins("JOIN social_graph_relationships r ON r.following_address = profiles.profile_id").
		Where("r.follower_address = ?", profileID).
		Order("r.created_at DESC").Limit(limit).Offset(offset).
		Find(&profiles).Error
	return profiles, total, err
}

// ListBlocks returns the active user-level blocks created by the profile.
func (s *ProfileService) ListBlocks(blockerProfileID string, limit, offset int) ([]models.ProfileBlock, int64, error) {
	q := s.db.Model(&models.ProfileBlock{}).
		Where("blocker_profile_id = ? AND is_blocked = ?", blockerProfileID, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blocks []models.ProfileBlock
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&blocks).Error
	return blocks, total, err
}
