package projectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressUpdateAndResume(t *testing.T) {
	db := setupDB(t)
	tracker := NewProgressTracker(db)

	ts, err := tracker.Resume("profile")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, tracker.Update("profile", 1000))
	require.NoError(t, tracker.Update("profile", 2000))

	ts, err = tracker.Resume("profile")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), ts)
}

func TestProgressIsPerWorker(t *testing.T) {
	db := setupDB(t)
	tracker := NewProgressTracker(db)

	require.NoError(t, tracker.Update("profile", 500))
	require.NoError(t, tracker.Update("platform", 900))

	ts, err := tracker.Resume("platform")
	require.NoError(t, err)
	assert.Equal(t, int64(900), ts)

	ts, err = tracker.Resume("profile")
	require.NoError(t, err)
	assert.Equal(t, int64(500), ts)
}

func TestResumePointTakesOldestWorker(t *testing.T) {
	db := setupDB(t)
	tracker := NewProgressTracker(db)

	require.NoError(t, tracker.Update("profile", 5000))
	require.NoError(t, tracker.Update("platform", 3000))
	require.NoError(t, tracker.Update("social_graph", 4000))

	// "blocking" has never checkpointed, so the fleet resumes from zero.
	assert.Equal(t, int64(0),
		tracker.ResumePoint("profile", "platform", "social_graph", "blocking"))

	require.NoError(t, tracker.Update("blocking", 4500))
	assert.Equal(t, int64(3000),
		tracker.ResumePoint("profile", "platform", "social_graph", "blocking"))
}
