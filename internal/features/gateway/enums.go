package gateway

// AccessType distinguishes the two fetch paths: platform admins read
// everything with policy bypassed, company admins get the policy-gated view
// of their own tenant.
type AccessType string

const (
	AccessTypeUniversal  AccessType = "universal"
	AccessTypeRestricted AccessType = "restricted"
)

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatJSON, ExportFormatCSV:
		return true
	default:
		return false
	}
}
