package models

import (
	"time"
)

// IndexerProgress tracks the last applied position per logical worker so a
// restart resumes instead of replaying from genesis.
type IndexerProgress struct {
	WorkerID        string    `gorm:"size:100;primaryKey" json:"worker_id"`
	LastTimestampMs int64     `gorm:"not null;default:0" json:"last_timestamp_ms"`
	LastProcessedAt time.Time `gorm:"not null" json:"last_processed_at"`
}

func (IndexerProgress) TableName() string {
	return "indexer_progress"
}
