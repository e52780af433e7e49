package services

import (
	"errors"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
)

var ErrPlatformNotFound = errors.New("platform not found")

// PlatformService serves read-only platform queries over the projected tables.
type PlatformService struct {
	db *gorm.DB
}

func NewPlatformService(db *gorm.DB) *PlatformService {
	return &PlatformService{db: db}
}

func (s *PlatformService) ListPlatforms(approvedOnly bool, limit, offset int) ([]models.Platform, int64, error) {
	q := s.db.Model(&models.Platform{})
	if approvedOnly {
		q = q.Where("is_approved = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var platforms []models.Platform
	err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&platforms).Error
	return platforms, total, err
}

func (s *PlatformService) GetByPlatformID(platformID string) (*models.Platform, error) {
	var platform models.Platform
	err := s.db.Where("platform_id = ?", platformID).First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlatformNotFound
	}
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

func (s *PlatformService) ListModerators(platformID string) ([]models.PlatformModerator, error) {
	var moderators []models.PlatformModerator
	err := s.db.Where("platform_id = ?", platformID).
		Order("created_at ASC").Find(&moderators).Error
	return moderators, err
}

func (s *PlatformService) ListMembers(platformID string, limit, offset int) ([]models.PlatformMembership, int64, error) {
	q := s.db.Model(&models.PlatformMembership{}).Where("platform_id = ?", platformID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.PlatformMembership
	err := q.Order("joined_at DESC").Limit(limit).Offset(offset).Find(&members).Error
	return members, total, err
}

func (s *PlatformService) ListEvents(platformID string, limit, offset int) ([]models.PlatformEvent, int64, error) {
	q := s.db.Model(&models.PlatformEvent{}).Where("platform_id = ?", platformID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.PlatformEvent
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}
