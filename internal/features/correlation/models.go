package correlation

import "time"

// RequestContext is the snapshot stored against a correlation id on first
// reference.
type RequestContext struct {
	Method    string    `json:"method,omitempty"`
	Path      string    `json:"path,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	TenantID  string    `json:"tenantId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	StartTime time.Time `json:"startTime"`
}

type CorrelationRecord struct {
	CorrelationID string
	Context       RequestContext
	LinkedIDs     map[string]string // linked id -> relationship label
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
