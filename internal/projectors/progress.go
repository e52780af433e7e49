package projectors

import (
	"errors"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressTracker persists the last applied chain position per logical
// worker so a restart resumes instead of replaying from genesis.
type ProgressTracker struct {
	db *gorm.DB
}

func NewProgressTracker(db *gorm.DB) *ProgressTracker {
	return &ProgressTracker{db: db}
}

// Update upserts the worker's position. Failures are the caller's to log;
// they never block event processing since the next checkpoint overwrites.
func (t *ProgressTracker) Update(workerID string, tsMs int64) error {
	return t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "worker_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_timestamp_ms": tsMs,
			"last_processed_at": time.Now().UTC(),
		}),
	}).Create(&models.IndexerProgress{
		WorkerID:        workerID,
		LastTimestampMs: tsMs,
		LastProcessedAt: time.Now().UTC(),
	}).Error
}

// Resume returns the worker's last applied position, zero when unknown.
func (t *ProgressTracker) Resume(workerID string) (int64, error) {
	var rec models.IndexerProgress
	err := t.db.Where("worker_id = ?", workerID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.LastTimestampMs, nil
}

// ResumePoint returns the oldest position across workers; the listener
// resumes from there so no domain misses events, relying on idempotent
// projection to absorb the overlap.
func (t *ProgressTracker) ResumePoint(workerIDs ...string) int64 {
	var min int64 = -1
	for _, id := range workerIDs {
		ts, err := t.Resume(id)
		if err != nil {
			return 0
		}
		if min < 0 || ts < min {
			min = ts
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
