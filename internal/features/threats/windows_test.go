package threats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Record_MultipleKinds_CountersTrackedIndependently(t *testing.T) {
	store := NewTrackingStore()
	now := time.Now().UTC()

	store.Record("key", "auth_failure", now)
	store.Record("key", "auth_failure", now)
	store.Record("key", "request", now)

	assert.Equal(t, 2, store.Cumulative("key", "auth_failure"))
	assert.Equal(t, 1, store.Cumulative("key", "request"))
	assert.Equal(t, 2, store.DistinctKinds("key"))
}

func Test_CountSince_OldEvents_NotCounted(t *testing.T) {
	store := NewTrackingStore()
	now := time.Now().UTC()

	store.Record("key", "request", now.Add(-10*time.Minute))
	store.Record("key", "request", now)

	assert.Equal(t, 1, store.CountSince("key", "request", now.Add(-5*time.Minute)))
	assert.Equal(t, 2, store.CountSince("key", "request", now.Add(-time.Hour)))
}

func Test_Record_EventsOlderThan24Hours_PrunedButCountersSurvive(t *testing.T) {
	store := NewTrackingStore()
	now := time.Now().UTC()

	store.Record("key", "attempt", now.Add(-25*time.Hour))
	store.Record("key", "attempt", now)

	assert.Equal(t, 1, store.CountSince("key", "attempt", now.Add(-maxEventAge)))
	assert.Equal(t, 2, store.Cumulative("key", "attempt"))
}

func Test_PruneIdle_StaleWindows_Removed(t *testing.T) {
	store := NewTrackingStore()
	now := time.Now().UTC()

	store.Record("stale", "request", now.Add(-25*time.Hour))
	store.Record("fresh", "request", now)

	removed := store.PruneIdle(now.Add(-24 * time.Hour))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.WindowCount())
	assert.Equal(t, 0, store.Cumulative("stale", "request"))
	assert.Equal(t, 1, store.Cumulative("fresh", "request"))
}

func Test_CountSince_UnknownKey_ReturnsZero(t *testing.T) {
	store := NewTrackingStore()

	assert.Equal(t, 0, store.CountSince("missing", "request", time.Now()))
	assert.Equal(t, 0, store.Cumulative("missing", "request"))
	assert.Equal(t, 0, store.DistinctKinds("missing"))
}
