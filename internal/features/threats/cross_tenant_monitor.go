package threats

import (
	"fmt"
	"time"

	logs_core "logwarden/internal/features/logs/core"
)

const (
	systematicPatternThreshold = 10
	dataHarvestingThreshold    = 5
)

// CrossTenantMonitor detects attempts by a user to reach data outside
// their home tenant. Per-pair counters are cumulative so slow scans do
// not reset between sliding windows.
type CrossTenantMonitor struct {
	tracking *TrackingStore
}

func (m *CrossTenantMonitor) Detect(operation *CrossTenantOperationDTO) []*Violation {
	if operation.HomeTenantID == operation.TargetTenantID {
		return nil
	}

	now := time.Now().UTC()

	var violations []*Violation

	breach := newViolation(
		ViolationTenantBoundaryBreach,
		logs_core.SeverityCritical,
		fmt.Sprintf("user %s from tenant %s attempted %q against tenant %s",
			operation.UserID, operation.HomeTenantID, operation.Operation, operation.TargetTenantID),
	)
	m.attachOperationContext(breach, operation)
	violations = append(violations, breach)

	pairKey := operation.UserID + "|" + operation.HomeTenantID + "|" + operation.TargetTenantID
	pairCount := m.tracking.Record(pairKey, "attempt", now)

	// Fires exactly once, when the cumulative pair count reaches the
	// threshold. Repeats against the same target raise the counter past
	// it without re-alerting.
	if pairCount == systematicPatternThreshold {
		systematic := newViolation(
			ViolationSystematicPattern,
			logs_core.SeverityCritical,
			fmt.Sprintf("systematic cross-tenant pattern: user %s hit tenant %s %d times",
				operation.UserID, operation.TargetTenantID, pairCount),
		)
		m.attachOperationContext(systematic, operation)
		systematic.Forensics["attemptCount"] = pairCount
		violations = append(violations, systematic)
	}

	userKey := operation.UserID + "|" + operation.HomeTenantID
	m.tracking.Record(userKey, operation.TargetTenantID, now)

	distinctTargets := m.tracking.DistinctKinds(userKey)
	if distinctTargets == dataHarvestingThreshold {
		harvesting := newViolation(
			ViolationDataHarvesting,
			logs_core.SeverityCritical,
			fmt.Sprintf("data harvesting: user %s probed %d distinct tenants",
				operation.UserID, distinctTargets),
		)
		m.attachOperationContext(harvesting, operation)
		harvesting.Forensics["distinctTargets"] = distinctTargets
		violations = append(violations, harvesting)
	}

	return violations
}

func (m *CrossTenantMonitor) attachOperationContext(violation *Violation, operation *CrossTenantOperationDTO) {
	violation.TenantID = operation.HomeTenantID
	violation.UserID = operation.UserID
	violation.ClientIP = operation.ClientIP
	violation.SourceKey = operation.UserID + "|" + operation.HomeTenantID + "|" + operation.TargetTenantID
	violation.Forensics["homeTenantId"] = operation.HomeTenantID
	violation.Forensics["targetTenantId"] = operation.TargetTenantID
	violation.Forensics["operation"] = operation.Operation
	if operation.CorrelationID != "" {
		violation.Forensics["correlationId"] = operation.CorrelationID
	}
}
