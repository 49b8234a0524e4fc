package logs_pipeline

// ProcessingState tracks an entry through the pipeline. Failed states are
// terminal; the entry is counted and never retried.
type ProcessingState string

const (
	StateReceived        ProcessingState = "RECEIVED"
	StateCorrelated      ProcessingState = "CORRELATED"
	StateSecurityScanned ProcessingState = "SECURITY_SCANNED"
	StateStored          ProcessingState = "STORED"

	StateFailedValidation ProcessingState = "FAILED_VALIDATION"
	StateFailedIsolation  ProcessingState = "FAILED_ISOLATION"
	StateFailedStorage    ProcessingState = "FAILED_STORAGE"
	StateFailedInternal   ProcessingState = "FAILED_INTERNAL"
)

func (s ProcessingState) IsTerminalFailure() bool {
	switch s {
	case StateFailedValidation, StateFailedIsolation, StateFailedStorage, StateFailedInternal:
		return true
	default:
		return false
	}
}
