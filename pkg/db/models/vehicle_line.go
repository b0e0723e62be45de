package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// VehicleLine is one quoted vehicle on a quote. Line numbers are 1-based and
// contiguous; removals renumber the remainder.
type VehicleLine struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID     uuid.UUID  `gorm:"column:quote_id;type:uuid;not null;index"`
	LineNo      int        `gorm:"column:line_no;not null"`
	VehicleRef  string     `gorm:"column:vehicle_ref;not null"`
	CategoryRef *string    `gorm:"column:category_ref"`
	VIN         *string    `gorm:"column:vin"`
	PickupAt    *time.Time `gorm:"column:pickup_at"`
	ReturnAt    *time.Time `gorm:"column:return_at"`

	Rate     decimal.Decimal `gorm:"column:rate;type:numeric(12,2);not null"`
	RateType enums.RateType  `gorm:"column:rate_type;type:text;not null;default:'monthly'"`

	MileageKMPerMonth *int             `gorm:"column:mileage_km_per_month"`
	ExcessKMRate      *decimal.Decimal `gorm:"column:excess_km_rate;type:numeric(12,4)"`

	DepositAmount     decimal.Decimal   `gorm:"column:deposit_amount;type:numeric(12,2);not null"`
	DepositType       enums.DepositType `gorm:"column:deposit_type;type:text;not null;default:'refundable'"`
	AdvanceRentMonths int               `gorm:"column:advance_rent_months;not null;default:0"`

	// Per-line overrides. NULL inherits from the quote header; an explicit
	// zero is a real override and must survive resolution.
	InsuranceMonthly   *decimal.Decimal `gorm:"column:insurance_monthly;type:numeric(12,2)"`
	MaintenanceMonthly *decimal.Decimal `gorm:"column:maintenance_monthly;type:numeric(12,2)"`
	DeliveryFee        *decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2)"`
	CollectionFee      *decimal.Decimal `gorm:"column:collection_fee;type:numeric(12,2)"`

	AddOns []AddOnLine `gorm:"foreignKey:VehicleLineID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
