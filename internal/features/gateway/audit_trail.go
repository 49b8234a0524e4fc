package gateway

import (
	"sync"
	"time"
)

const auditTrailCapacity = 10000

type AccessAuditEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	ActorID      string    `json:"actorId"`
	ActorRole    string    `json:"actorRole"`
	TargetTenant string    `json:"targetTenant"`
	Operation    string    `json:"operation"`
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty"`
	ResultCount  int64     `json:"resultCount,omitempty"`
}

// AccessAuditTrail is a fixed-capacity ring buffer of gateway decisions and
// fetches. When full, the oldest entries are overwritten.
type AccessAuditTrail struct {
	mu      sync.Mutex
	entries []*AccessAuditEntry
	next    int
	size    int
}

func NewAccessAuditTrail() *AccessAuditTrail {
	return &AccessAuditTrail{
		entries: make([]*AccessAuditEntry, auditTrailCapacity),
	}
}

func (t *AccessAuditTrail) Append(entry *AccessAuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[t.next] = entry
	t.next = (t.next + 1) % len(t.entries)
	if t.size < len(t.entries) {
		t.size++
	}
}

// Recent returns up to limit entries, newest first.
func (t *AccessAuditTrail) Recent(limit int) []*AccessAuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > t.size {
		limit = t.size
	}

	result := make([]*AccessAuditEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		index := (t.next - i + len(t.entries)) % len(t.entries)
		result = append(result, t.entries[index])
	}

	return result
}

func (t *AccessAuditTrail) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}
