package gateway

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Append_NewestFirstOnRead(t *testing.T) {
	trail := NewAccessAuditTrail()

	trail.Append(&AccessAuditEntry{Operation: "first"})
	trail.Append(&AccessAuditEntry{Operation: "second"})
	trail.Append(&AccessAuditEntry{Operation: "third"})

	recent := trail.Recent(2)

	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Operation)
	assert.Equal(t, "second", recent[1].Operation)
}

func Test_Append_BeyondCapacity_OldestOverwritten(t *testing.T) {
	trail := NewAccessAuditTrail()

	for i := 0; i < auditTrailCapacity+5; i++ {
		trail.Append(&AccessAuditEntry{Operation: fmt.Sprintf("op-%d", i)})
	}

	assert.Equal(t, auditTrailCapacity, trail.Size())

	recent := trail.Recent(0)
	require.Len(t, recent, auditTrailCapacity)
	assert.Equal(t, fmt.Sprintf("op-%d", auditTrailCapacity+4), recent[0].Operation)

	oldest := recent[len(recent)-1]
	assert.Equal(t, "op-5", oldest.Operation)
}

func Test_Recent_EmptyTrail_NoEntries(t *testing.T) {
	trail := NewAccessAuditTrail()

	assert.Empty(t, trail.Recent(10))
	assert.Equal(t, 0, trail.Size())
}

func Test_Append_SetsTimestampWhenMissing(t *testing.T) {
	trail := NewAccessAuditTrail()

	trail.Append(&AccessAuditEntry{Operation: "probe"})

	recent := trail.Recent(1)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Timestamp.IsZero())
}
