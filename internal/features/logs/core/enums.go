package logs_core

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

type LogSource string

const (
	LogSourceFrontend LogSource = "frontend"
	LogSourceBackend  LogSource = "backend"
)

func (s LogSource) IsValid() bool {
	switch s {
	case LogSourceFrontend, LogSourceBackend:
		return true
	default:
		return false
	}
}

// StorageType classifies where an entry is routed, in priority order:
// security > error > performance > audit > general.
type StorageType string

const (
	StorageTypeSecurity    StorageType = "security"
	StorageTypeError       StorageType = "error"
	StorageTypePerformance StorageType = "performance"
	StorageTypeAudit       StorageType = "audit"
	StorageTypeGeneral     StorageType = "general"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

func (s Severity) AtLeast(other Severity) bool {
	return severityRank(s) >= severityRank(other)
}

func severityRank(s Severity) int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}
