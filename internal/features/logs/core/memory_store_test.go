package logs_core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_Store_ThenQuery_PreservesEntryFields(t *testing.T) {
	store := NewMemoryLogStore()

	timestamp := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	entry := &LogEntry{
		ID:            uuid.New(),
		Timestamp:     timestamp,
		Level:         LogLevelInfo,
		Message:       "user signed in",
		Source:        LogSourceBackend,
		TenantID:      "acme",
		UserID:        "u1",
		CorrelationID: "req_abc123_deadbeef",
	}

	location, err := store.Store(entry, &StoreOptions{StorageType: StorageTypeGeneral})
	assert.NoError(t, err)
	assert.NotEmpty(t, location)

	result, err := store.Query(&QueryParams{TenantID: "acme"})
	assert.NoError(t, err)
	assert.Len(t, result.Logs, 1)

	retrieved := result.Logs[0]
	assert.Equal(t, "acme", retrieved.TenantID)
	assert.Equal(t, "req_abc123_deadbeef", retrieved.CorrelationID)
	assert.Equal(t, timestamp, retrieved.Timestamp)
	assert.Equal(t, "user signed in", retrieved.Message)
}

func Test_Query_WithEssentialOnly_FiltersDetailedEntries(t *testing.T) {
	store := NewMemoryLogStore()

	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme",
		Level: LogLevelError, Message: "boom", Essential: true,
	}, nil)
	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme",
		Level: LogLevelDebug, Message: "trace", Essential: false,
	}, nil)

	result, err := store.Query(&QueryParams{TenantID: "acme", EssentialOnly: true})

	assert.NoError(t, err)
	assert.Len(t, result.Logs, 1)
	assert.Equal(t, "boom", result.Logs[0].Message)
}

func Test_Query_IncludeEssential_ExemptsEssentialFromStorageTypeFilter(t *testing.T) {
	store := NewMemoryLogStore()

	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme",
		Level: LogLevelError, Message: "breach", Essential: true,
	}, &StoreOptions{StorageType: StorageTypeSecurity, Essential: true})
	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme",
		Level: LogLevelInfo, Message: "finding",
	}, &StoreOptions{StorageType: StorageTypeSecurity})

	params := &QueryParams{
		TenantID:         "acme",
		StorageTypes:     []StorageType{StorageTypeGeneral},
		IncludeEssential: true,
	}

	result, err := store.Query(params)

	assert.NoError(t, err)
	assert.Len(t, result.Logs, 1)
	assert.Equal(t, "breach", result.Logs[0].Message)
}

func Test_StoreBatch_ReturnsOneLocationPerEntry(t *testing.T) {
	store := NewMemoryLogStore()

	entries := []*LogEntry{
		{ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme", Level: LogLevelInfo, Message: "a"},
		{ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme", Level: LogLevelInfo, Message: "b"},
	}

	locations, err := store.StoreBatch(entries)

	assert.NoError(t, err)
	assert.Len(t, locations, 2)
	assert.Equal(t, 2, store.Count())
}

func Test_Query_ForOtherTenant_ReturnsNothing(t *testing.T) {
	store := NewMemoryLogStore()

	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: time.Now().UTC(), TenantID: "acme",
		Level: LogLevelInfo, Message: "hello",
	}, nil)

	result, err := store.Query(&QueryParams{TenantID: "beta"})

	assert.NoError(t, err)
	assert.Empty(t, result.Logs)
	assert.Equal(t, int64(0), result.Total)
}

func Test_DeleteOld_RemovesOnlyExpiredTenantEntries(t *testing.T) {
	store := NewMemoryLogStore()
	now := time.Now().UTC()

	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: now.AddDate(0, 0, -100), TenantID: "acme",
		Level: LogLevelInfo, Message: "old",
	}, nil)
	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: now, TenantID: "acme",
		Level: LogLevelInfo, Message: "fresh",
	}, nil)
	store.Store(&LogEntry{
		ID: uuid.New(), Timestamp: now.AddDate(0, 0, -100), TenantID: "beta",
		Level: LogLevelInfo, Message: "other tenant, old",
	}, nil)

	err := store.DeleteOld("acme", now.AddDate(0, 0, -90))

	assert.NoError(t, err)
	assert.Equal(t, 2, store.Count())
}

func Test_Query_WithFailingTenant_ReturnsError(t *testing.T) {
	store := NewMemoryLogStore()
	store.FailTenant("acme")

	_, err := store.Query(&QueryParams{TenantID: "acme"})

	assert.Error(t, err)
}
