package logs_core

import "time"

// LogStore is the append-only sink behind the pipeline and the gateway.
// Persistence is at-least-once, best-effort; callers treat errors as
// StorageUnavailable and never retry inline.
type LogStore interface {
	Store(entry *LogEntry, opts *StoreOptions) (string, error)
	StoreBatch(entries []*LogEntry) ([]string, error)
	Query(params *QueryParams) (*QueryResult, error)
	DeleteOld(tenantID string, olderThan time.Time) error
	Ping() error
}

type StoreOptions struct {
	StorageType   StorageType `json:"storageType"`
	Essential     bool        `json:"essential"`
	ModuleEnabled bool        `json:"moduleEnabled"`
}

type QueryParams struct {
	TenantID        string
	Levels          []LogLevel
	StorageTypes    []StorageType
	MessageContains string
	UserID          string
	CorrelationID   string
	EssentialOnly   bool
	// IncludeEssential exempts essential entries from the StorageTypes
	// filter, so a policy-narrowed query cannot hide them.
	IncludeEssential bool
	From             *time.Time
	To               *time.Time
	Limit            int
	Offset           int
	SortDescending   bool
}

type QueryResult struct {
	Logs  []*LogEntry
	Total int64
}
