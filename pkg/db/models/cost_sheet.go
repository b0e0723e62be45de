package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// CostSheet is a versioned cost/margin snapshot for one quote. At most one
// non-obsolete sheet is current per quote; line changes on the quote flip the
// current sheet to obsolete instead of mutating it.
type CostSheet struct {
	ID      uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID uuid.UUID             `gorm:"column:quote_id;type:uuid;not null;index"`
	Version int                   `gorm:"column:version;not null"`
	Status  enums.CostSheetStatus `gorm:"column:status;type:text;not null;default:'draft'"`

	FinancingRatePercent decimal.Decimal `gorm:"column:financing_rate_percent;type:numeric(6,3);not null"`
	OverheadPercent      decimal.Decimal `gorm:"column:overhead_percent;type:numeric(6,3);not null"`
	TargetMarginPercent  decimal.Decimal `gorm:"column:target_margin_percent;type:numeric(6,3);not null"`
	ResidualValuePercent decimal.Decimal `gorm:"column:residual_value_percent;type:numeric(6,3);not null"`
	LeaseTermMonths      int             `gorm:"column:lease_term_months;not null"`

	// Fingerprint of the vehicle lines the sheet was computed from; compared
	// against the quote's current lines to detect staleness.
	LineFingerprint string `gorm:"column:line_fingerprint;not null"`

	SubmittedBy     *uuid.UUID `gorm:"column:submitted_by;type:uuid"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	ApprovalNotes   *string    `gorm:"column:approval_notes"`
	RejectedBy      *uuid.UUID `gorm:"column:rejected_by;type:uuid"`
	RejectedAt      *time.Time `gorm:"column:rejected_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	ObsoleteAt      *time.Time `gorm:"column:obsolete_at"`

	Lines []CostSheetLine `gorm:"foreignKey:CostSheetID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
