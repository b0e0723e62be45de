package costsheets

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
)

// AssumptionOverrides lets callers replace individual system-default
// assumption rates when calculating a sheet. Nil fields keep the default.
type AssumptionOverrides struct {
	FinancingRatePercent *decimal.Decimal `json:"financing_rate_percent"`
	OverheadPercent      *decimal.Decimal `json:"overhead_percent"`
	TargetMarginPercent  *decimal.Decimal `json:"target_margin_percent"`
	ResidualValuePercent *decimal.Decimal `json:"residual_value_percent"`
	LeaseTermMonths      *int             `json:"lease_term_months"`
}

// CalculateInput creates a new cost sheet version for a quote.
type CalculateInput struct {
	QuoteID     uuid.UUID
	Assumptions AssumptionOverrides
	Lines       []LineCostInput
}

// RecalculateInput reworks the current draft sheet in place.
type RecalculateInput struct {
	QuoteID     uuid.UUID
	Assumptions AssumptionOverrides
	Lines       []LineCostInput
}

// SubmitInput sends the current draft sheet for approval.
type SubmitInput struct {
	QuoteID     uuid.UUID
	SubmittedBy uuid.UUID
}

// ApproveInput approves the pending sheet.
type ApproveInput struct {
	QuoteID    uuid.UUID
	ApprovedBy uuid.UUID
	Notes      *string
}

// RejectInput rejects the pending sheet with a reason.
type RejectInput struct {
	QuoteID    uuid.UUID
	RejectedBy uuid.UUID
	Reason     string
}

// CostSheetDetail bundles the persisted sheet with its recomputed summary.
type CostSheetDetail struct {
	Sheet   models.CostSheet `json:"sheet"`
	Summary Summary          `json:"summary"`
}
