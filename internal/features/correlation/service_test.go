package correlation

import (
	"strings"
	"testing"
	"time"

	"logwarden/internal/util/logger"

	"github.com/stretchr/testify/assert"
)

func newTestService() *CorrelationService {
	return NewCorrelationService(logger.GetLogger())
}

func Test_Generate_WithPrefix_ProducesThreeSegments(t *testing.T) {
	service := newTestService()

	id := service.Generate("req")

	segments := strings.Split(id, "_")
	assert.Len(t, segments, 3)
	assert.Equal(t, "req", segments[0])
	assert.Len(t, segments[2], 8)
	assert.True(t, service.IsValid(id))
}

func Test_Generate_Twice_ProducesDistinctIDs(t *testing.T) {
	service := newTestService()

	first := service.Generate("req")
	second := service.Generate("req")

	assert.NotEqual(t, first, second)
}

func Test_IsValid_WithFewerThanThreeSegments_ReturnsFalse(t *testing.T) {
	service := newTestService()

	assert.False(t, service.IsValid("plain"))
	assert.False(t, service.IsValid("two_segments"))
}

func Test_IsValid_WithEmptyPrefix_ReturnsFalse(t *testing.T) {
	service := newTestService()

	assert.False(t, service.IsValid("_abc_def"))
}

func Test_IsValid_WithThreeOrMoreSegments_ReturnsTrue(t *testing.T) {
	service := newTestService()

	assert.True(t, service.IsValid("req_abc_def"))
	assert.True(t, service.IsValid("req_a_b_c_d"))
}

func Test_Store_ThenGet_ReturnsContext(t *testing.T) {
	service := newTestService()

	service.Store("req_abc_def", RequestContext{
		TenantID: "acme",
		UserID:   "u1",
	})

	retrieved := service.Get("req_abc_def")

	assert.NotNil(t, retrieved)
	assert.Equal(t, "acme", retrieved.TenantID)
	assert.Equal(t, "u1", retrieved.UserID)
}

func Test_Get_ForUnknownID_ReturnsNil(t *testing.T) {
	service := newTestService()

	assert.Nil(t, service.Get("req_missing_id"))
}

func Test_Get_ForExpiredRecord_DeletesAndReturnsNil(t *testing.T) {
	service := newTestService()

	service.Store("req_old_record", RequestContext{TenantID: "acme"})

	// Backdate the record past the 24h TTL
	service.mu.Lock()
	service.records["req_old_record"].UpdatedAt = time.Now().Add(-25 * time.Hour)
	service.mu.Unlock()

	assert.Nil(t, service.Get("req_old_record"))
	assert.Equal(t, 0, service.RecordCount())
}

func Test_Link_ThenGetLinked_IsSymmetric(t *testing.T) {
	service := newTestService()

	service.Store("req_a_1", RequestContext{TenantID: "acme"})
	service.Store("req_b_2", RequestContext{TenantID: "acme"})

	service.Link("req_a_1", "req_b_2", "parent")

	linkedFromA := service.GetLinked("req_a_1")
	linkedFromB := service.GetLinked("req_b_2")

	assert.Contains(t, linkedFromA, "req_b_2")
	assert.Contains(t, linkedFromB, "req_a_1")
}

func Test_Link_WithUnknownIDs_CreatesPlaceholderRecords(t *testing.T) {
	service := newTestService()

	service.Link("req_x_1", "req_y_2", "sibling")

	assert.Equal(t, 2, service.RecordCount())
	assert.Contains(t, service.GetLinked("req_x_1"), "req_y_2")
}

func Test_GetLinked_DoesNotFollowTransitiveLinks(t *testing.T) {
	service := newTestService()

	service.Link("req_a_1", "req_b_2", "next")
	service.Link("req_b_2", "req_c_3", "next")

	linkedFromA := service.GetLinked("req_a_1")

	assert.Contains(t, linkedFromA, "req_b_2")
	assert.NotContains(t, linkedFromA, "req_c_3")
}

func Test_SweepExpired_RemovesOnlyIdleRecords(t *testing.T) {
	service := newTestService()

	service.Store("req_fresh_1", RequestContext{})
	service.Store("req_stale_2", RequestContext{})

	service.mu.Lock()
	service.records["req_stale_2"].UpdatedAt = time.Now().Add(-25 * time.Hour)
	service.mu.Unlock()

	removed := service.SweepExpired()

	assert.Equal(t, 1, removed)
	assert.NotNil(t, service.Get("req_fresh_1"))
	assert.Nil(t, service.Get("req_stale_2"))
}
