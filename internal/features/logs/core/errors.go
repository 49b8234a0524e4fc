package logs_core

import "fmt"

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	ErrorMissingField       = "MISSING_FIELD"
	ErrorInvalidTimestamp   = "INVALID_TIMESTAMP"
	ErrorInvalidLogLevel    = "INVALID_LOG_LEVEL"
	ErrorInvalidSource      = "INVALID_SOURCE"
	ErrorInvalidMeta        = "INVALID_META"
	ErrorIsolationViolation = "ISOLATION_VIOLATION"
	ErrorRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrorBatchTooLarge      = "BATCH_TOO_LARGE"
	ErrorTenantNotFound     = "TENANT_NOT_FOUND"
	ErrorStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrorProcessingFault    = "PROCESSING_FAULT"
)

// AccessError carries the denial reason for gateway decisions. It is always
// surfaced explicitly, never downgraded to an empty result.
type AccessError struct {
	Reason  AccessDenialReason `json:"reason"`
	Message string             `json:"message"`
}

type AccessDenialReason string

const (
	AccessDeniedCrossTenant           AccessDenialReason = "cross_tenant"
	AccessDeniedModuleDisabled        AccessDenialReason = "module_disabled"
	AccessDeniedInsufficientPrivilege AccessDenialReason = "insufficient_privilege"
)

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied (%s): %s", e.Reason, e.Message)
}
