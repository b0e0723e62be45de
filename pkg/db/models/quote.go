package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// Quote is the header record for a multi-vehicle leasing quote. Once the
// status is locked (approved/won/lost) the row is only superseded through a
// new revision, never edited in place.
type Quote struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteNumber   int64              `gorm:"column:quote_number;not null"`
	Version       int                `gorm:"column:version;not null;default:1"`
	SupersedesID  *uuid.UUID         `gorm:"column:supersedes_id;type:uuid"`
	Type          enums.QuoteType    `gorm:"column:type;type:text;not null;default:'standard_rental'"`
	Status        enums.QuoteStatus  `gorm:"column:status;type:text;not null;default:'draft'"`
	CustomerName  string             `gorm:"column:customer_name;not null"`
	CustomerEmail *string            `gorm:"column:customer_email"`
	CustomerPhone *string            `gorm:"column:customer_phone"`
	Currency      enums.Currency     `gorm:"column:currency;type:text;not null;default:'AED'"`
	VATPercent    decimal.Decimal    `gorm:"column:vat_percent;type:numeric(6,3);not null"`
	BillingPlan   enums.BillingPlan  `gorm:"column:billing_plan;type:text;not null;default:'monthly'"`
	ProrationRule enums.ProrationRule `gorm:"column:proration_rule;type:text;not null;default:'none'"`
	DepositPolicy enums.DepositType  `gorm:"column:deposit_policy;type:text;not null;default:'refundable'"`

	PaymentTermsDays int  `gorm:"column:payment_terms_days;not null;default:30"`
	DurationMonths   int  `gorm:"column:duration_months;not null;default:0"`
	MileagePooling   bool `gorm:"column:mileage_pooling;not null;default:false"`

	// Header defaults for line-overridable fields. NULL falls through to the
	// system default at resolution time.
	InsuranceMonthly   *decimal.Decimal `gorm:"column:insurance_monthly;type:numeric(12,2)"`
	MaintenanceMonthly *decimal.Decimal `gorm:"column:maintenance_monthly;type:numeric(12,2)"`
	DeliveryFee        *decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2)"`
	CollectionFee      *decimal.Decimal `gorm:"column:collection_fee;type:numeric(12,2)"`

	WinLossReason *string    `gorm:"column:win_loss_reason"`
	Notes         *string    `gorm:"column:notes"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at"`
	ClosedAt      *time.Time `gorm:"column:closed_at"`

	Lines       []VehicleLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	InitialFees []InitialFee  `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	AddOns      []AddOnLine   `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HeaderAddOns returns only the add-ons attached to the quote header.
func (q *Quote) HeaderAddOns() []AddOnLine {
	var out []AddOnLine
	for _, addon := range q.AddOns {
		if addon.VehicleLineID == nil {
			out = append(out, addon)
		}
	}
	return out
}
