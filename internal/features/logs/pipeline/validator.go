package logs_pipeline

import (
	"fmt"
	"regexp"

	logs_core "logwarden/internal/features/logs/core"
)

const messageLengthWarningThreshold = 10000

// Flagged as warnings, never rejections: producers legitimately log
// snippets of user input.
var suspiciousContentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+=`),
	regexp.MustCompile(`(?i)eval\(`),
	regexp.MustCompile(`(?i)document\.cookie`),
	regexp.MustCompile(`(?i)window\.location`),
}

type EntryValidator struct{}

// ValidateEssential is the minimal check on the essential fast path: only
// tenant and message are required.
func (v *EntryValidator) ValidateEssential(entry *logs_core.LogEntry) *logs_core.ValidationError {
	if entry.TenantID == "" {
		return missingField("tenantId")
	}

	if entry.Message == "" {
		return missingField("message")
	}

	return nil
}

// ValidateDetailed enforces the full schema and collects non-fatal warnings.
func (v *EntryValidator) ValidateDetailed(entry *logs_core.LogEntry) (*logs_core.ValidationError, []string) {
	if entry.TenantID == "" {
		return missingField("tenantId"), nil
	}

	if entry.Message == "" {
		return missingField("message"), nil
	}

	if entry.UserID == "" {
		return missingField("userId"), nil
	}

	if entry.Timestamp.IsZero() {
		return &logs_core.ValidationError{
			Code:    logs_core.ErrorInvalidTimestamp,
			Message: "timestamp must parse to a valid instant",
			Field:   "timestamp",
		}, nil
	}

	if !entry.Level.IsValid() {
		return &logs_core.ValidationError{
			Code:    logs_core.ErrorInvalidLogLevel,
			Message: fmt.Sprintf("unknown log level %q", entry.Level),
			Field:   "level",
		}, nil
	}

	if !entry.Source.IsValid() {
		return &logs_core.ValidationError{
			Code:    logs_core.ErrorInvalidSource,
			Message: fmt.Sprintf("unknown log source %q", entry.Source),
			Field:   "source",
		}, nil
	}

	var warnings []string

	if len(entry.Message) > messageLengthWarningThreshold {
		warnings = append(warnings,
			fmt.Sprintf("message length %d exceeds %d characters", len(entry.Message), messageLengthWarningThreshold))
	}

	for _, pattern := range suspiciousContentPatterns {
		if pattern.MatchString(entry.Message) {
			warnings = append(warnings,
				fmt.Sprintf("suspicious content matched pattern %s", pattern.String()))
		}
	}

	return nil, warnings
}

func missingField(field string) *logs_core.ValidationError {
	return &logs_core.ValidationError{
		Code:    logs_core.ErrorMissingField,
		Message: fmt.Sprintf("required field %q is missing", field),
		Field:   field,
	}
}
