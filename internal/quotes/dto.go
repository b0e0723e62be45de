package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// CreateDraftInput seeds a new quote draft. Everything beyond the customer
// name can be filled in later through the wizard.
type CreateDraftInput struct {
	Type          enums.QuoteType
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	Currency      *enums.Currency
	VATPercent    *decimal.Decimal
	Notes         *string
}

// CustomerStepInput carries the editable fields of the customer step.
type CustomerStepInput struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
	CustomerPhone *string `json:"customer_phone"`
	Notes         *string `json:"notes"`
}

// VehicleLineInput is one vehicle line as edited in the vehicles step. A nil
// ID means a new line; omitted existing lines are removed and the remainder
// renumbered.
type VehicleLineInput struct {
	ID                 *uuid.UUID        `json:"id"`
	VehicleRef         string            `json:"vehicle_ref"`
	CategoryRef        *string           `json:"category_ref"`
	VIN                *string           `json:"vin"`
	PickupAt           *time.Time        `json:"pickup_at"`
	ReturnAt           *time.Time        `json:"return_at"`
	Rate               decimal.Decimal   `json:"rate"`
	RateType           enums.RateType    `json:"rate_type"`
	MileageKMPerMonth  *int              `json:"mileage_km_per_month"`
	ExcessKMRate       *decimal.Decimal  `json:"excess_km_rate"`
	DepositAmount      decimal.Decimal   `json:"deposit_amount"`
	DepositType        enums.DepositType `json:"deposit_type"`
	AdvanceRentMonths  int               `json:"advance_rent_months"`
	InsuranceMonthly   *decimal.Decimal  `json:"insurance_monthly"`
	MaintenanceMonthly *decimal.Decimal  `json:"maintenance_monthly"`
	DeliveryFee        *decimal.Decimal  `json:"delivery_fee"`
	CollectionFee      *decimal.Decimal  `json:"collection_fee"`
	AddOns             []AddOnInput      `json:"add_ons"`
}

// AddOnInput is an add-on as edited in the wizard; totals are always
// recomputed server-side.
type AddOnInput struct {
	PricingModel enums.PricingModel `json:"pricing_model"`
	Description  string             `json:"description"`
	Quantity     int                `json:"quantity"`
	UnitPrice    decimal.Decimal    `json:"unit_price"`
}

// InitialFeeInput is one header-level one-time fee.
type InitialFeeInput struct {
	Type        enums.InitialFeeType `json:"type"`
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
}

// PricingStepInput carries the editable fields of the pricing step.
type PricingStepInput struct {
	VATPercent         *decimal.Decimal     `json:"vat_percent"`
	BillingPlan        *enums.BillingPlan   `json:"billing_plan"`
	ProrationRule      *enums.ProrationRule `json:"proration_rule"`
	DepositPolicy      *enums.DepositType   `json:"deposit_policy"`
	PaymentTermsDays   *int                 `json:"payment_terms_days"`
	DurationMonths     *int                 `json:"duration_months"`
	MileagePooling     *bool                `json:"mileage_pooling"`
	InsuranceMonthly   *decimal.Decimal     `json:"insurance_monthly"`
	MaintenanceMonthly *decimal.Decimal     `json:"maintenance_monthly"`
	DeliveryFee        *decimal.Decimal     `json:"delivery_fee"`
	CollectionFee      *decimal.Decimal     `json:"collection_fee"`
	InitialFees        []InitialFeeInput    `json:"initial_fees"`
	HeaderAddOns       []AddOnInput         `json:"header_add_ons"`
}

// SaveStepInput applies one wizard step to a draft. Only the section
// matching Step is consulted.
type SaveStepInput struct {
	QuoteID  uuid.UUID
	Step     enums.WizardStep
	Customer *CustomerStepInput
	Vehicles []VehicleLineInput
	Pricing  *PricingStepInput
}

// DecideInput closes a submitted or approved quote as won or lost.
type DecideInput struct {
	QuoteID uuid.UUID
	Status  enums.QuoteStatus
	Reason  string
}

// QuoteFilters describe the inputs supported by the quote list.
type QuoteFilters struct {
	Status *enums.QuoteStatus
	Type   *enums.QuoteType
	Query  string
}

// QuoteSummary is the condensed row returned by the list endpoint.
type QuoteSummary struct {
	ID           uuid.UUID         `json:"id"`
	QuoteNumber  int64             `json:"quote_number"`
	Version      int               `json:"version"`
	Type         enums.QuoteType   `json:"type"`
	Status       enums.QuoteStatus `json:"status"`
	CustomerName string            `json:"customer_name"`
	Currency     enums.Currency    `json:"currency"`
	LineCount    int               `json:"line_count"`
	CreatedAt    time.Time         `json:"created_at"`
}

// QuoteList wraps the paginated quotes plus the next page cursor.
type QuoteList struct {
	Quotes     []QuoteSummary `json:"quotes"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// QuoteDetail bundles the quote with its derived pricing breakdown and the
// per-step completeness map used by the wizard.
type QuoteDetail struct {
	Quote          models.Quote                           `json:"quote"`
	Pricing        Pricing                                `json:"pricing"`
	StepValidation map[enums.WizardStep]map[string]string `json:"step_validation"`
}
