package rate_limit

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testTenantID() string {
	return fmt.Sprintf("tenant-%s", uuid.New().String()[:8])
}

func Test_CheckRateLimit_WithinLimits_AllowsRequest(t *testing.T) {
	rateLimiter := NewRateLimiter()
	tenantID := testTenantID()
	rpsLimit := 10
	burstLimit := 20

	rateLimiter.ResetRateLimit(tenantID)

	result, err := rateLimiter.CheckRateLimit(tenantID, rpsLimit, burstLimit)

	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, burstLimit-1, result.Remaining)
	assert.Equal(t, 0, result.RetryAfterSec)
	assert.True(t, result.ResetTime.After(time.Now().Add(-time.Second)))
}

func Test_CheckRateLimit_ExceedsBurstLimit_DeniesRequest(t *testing.T) {
	rateLimiter := NewRateLimiter()
	tenantID := testTenantID()
	rpsLimit := 1
	burstLimit := 2

	rateLimiter.ResetRateLimit(tenantID)

	for i := 0; i < burstLimit; i++ {
		result, err := rateLimiter.CheckRateLimit(tenantID, rpsLimit, burstLimit)
		assert.NoError(t, err)
		assert.True(t, result.Allowed, "Request %d should be allowed", i+1)
	}

	result, err := rateLimiter.CheckRateLimit(tenantID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.True(t, result.RetryAfterSec > 0)
}

func Test_CheckRateLimit_TokensRefillOverTime_AllowsRequestsAfterWait(t *testing.T) {
	rateLimiter := NewRateLimiter()
	tenantID := testTenantID()
	rpsLimit := 10 // 1 token every 100ms
	burstLimit := 1

	rateLimiter.ResetRateLimit(tenantID)

	result, err := rateLimiter.CheckRateLimit(tenantID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = rateLimiter.CheckRateLimit(tenantID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)

	time.Sleep(150 * time.Millisecond)

	result, err = rateLimiter.CheckRateLimit(tenantID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func Test_CheckRateLimit_DifferentTenants_IsolatedLimits(t *testing.T) {
	rateLimiter := NewRateLimiter()
	tenantID1 := testTenantID()
	tenantID2 := testTenantID()
	rpsLimit := 1
	burstLimit := 1

	rateLimiter.ResetRateLimit(tenantID1)
	rateLimiter.ResetRateLimit(tenantID2)

	result1, err := rateLimiter.CheckRateLimit(tenantID1, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result1.Allowed)

	result1, err = rateLimiter.CheckRateLimit(tenantID1, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.False(t, result1.Allowed)

	result2, err := rateLimiter.CheckRateLimit(tenantID2, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result2.Allowed)
}

func Test_CheckRateLimit_WithDefaultValues_HandlesInvalidParameters(t *testing.T) {
	rateLimiter := NewRateLimiter()
	tenantID := testTenantID()

	rateLimiter.ResetRateLimit(tenantID)

	result, err := rateLimiter.CheckRateLimit(tenantID, 0, 10)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	rateLimiter.ResetRateLimit(tenantID)
	result, err = rateLimiter.CheckRateLimit(tenantID, 10, 0)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.True(t, result.Remaining >= 49)
}
