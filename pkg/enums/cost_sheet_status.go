package enums

import "fmt"

// CostSheetStatus tracks the approval lifecycle of a cost sheet.
type CostSheetStatus string

const (
	CostSheetStatusDraft           CostSheetStatus = "draft"
	CostSheetStatusPendingApproval CostSheetStatus = "pending_approval"
	CostSheetStatusApproved        CostSheetStatus = "approved"
	CostSheetStatusRejected        CostSheetStatus = "rejected"
	CostSheetStatusObsolete        CostSheetStatus = "obsolete"
)

var validCostSheetStatuses = []CostSheetStatus{
	CostSheetStatusDraft,
	CostSheetStatusPendingApproval,
	CostSheetStatusApproved,
	CostSheetStatusRejected,
	CostSheetStatusObsolete,
}

// String implements fmt.Stringer.
func (c CostSheetStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CostSheetStatus.
func (c CostSheetStatus) IsValid() bool {
	for _, candidate := range validCostSheetStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// CanObsolete reports whether line changes on the parent quote invalidate a
// cost sheet in this status. Rejected and already-obsolete sheets stay put.
func (c CostSheetStatus) CanObsolete() bool {
	switch c {
	case CostSheetStatusRejected, CostSheetStatusObsolete:
		return false
	default:
		return true
	}
}

// ParseCostSheetStatus converts raw input into a CostSheetStatus.
func ParseCostSheetStatus(value string) (CostSheetStatus, error) {
	for _, candidate := range validCostSheetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cost sheet status %q", value)
}
