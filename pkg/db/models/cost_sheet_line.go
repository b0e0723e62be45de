package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostSheetLine carries the cost components and derived figures for one
// vehicle line, matched to the quote by line_no. ActualMarginPercent is NULL
// when the quoted rate is not positive; such lines always fail the margin
// gate.
type CostSheetLine struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CostSheetID uuid.UUID `gorm:"column:cost_sheet_id;type:uuid;not null;index"`
	LineNo      int       `gorm:"column:line_no;not null"`

	AcquisitionCost          decimal.Decimal `gorm:"column:acquisition_cost;type:numeric(14,2);not null"`
	MaintenanceMonthly       decimal.Decimal `gorm:"column:maintenance_monthly;type:numeric(12,2);not null"`
	InsuranceMonthly         decimal.Decimal `gorm:"column:insurance_monthly;type:numeric(12,2);not null"`
	RegistrationAdminMonthly decimal.Decimal `gorm:"column:registration_admin_monthly;type:numeric(12,2);not null"`
	OtherMonthly             decimal.Decimal `gorm:"column:other_monthly;type:numeric(12,2);not null"`

	TotalCostPerMonth     decimal.Decimal  `gorm:"column:total_cost_per_month;type:numeric(14,4);not null"`
	SuggestedRatePerMonth decimal.Decimal  `gorm:"column:suggested_rate_per_month;type:numeric(14,4);not null"`
	QuotedRatePerMonth    decimal.Decimal  `gorm:"column:quoted_rate_per_month;type:numeric(12,2);not null"`
	ActualMarginPercent   *decimal.Decimal `gorm:"column:actual_margin_percent;type:numeric(8,4)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
