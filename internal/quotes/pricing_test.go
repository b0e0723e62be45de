package quotes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

func zeroDefaults() config.DefaultsConfig {
	return config.DefaultsConfig{
		VATPercent:         decimal.RequireFromString("5"),
		InsuranceMonthly:   decimal.Zero,
		MaintenanceMonthly: decimal.Zero,
		DeliveryFee:        decimal.Zero,
		CollectionFee:      decimal.Zero,
		MileageKMPerMonth:  3000,
	}
}

func TestCalculatePricingSingleLine(t *testing.T) {
	// 3000/month rate, 1 advance month, 2500 deposit, 5% VAT, no fees:
	// taxable 3000, VAT 150, grand total 2500 + 3000 + 150 = 5650.
	quote := models.Quote{
		VATPercent:  decimal.RequireFromString("5"),
		BillingPlan: enums.BillingPlanMonthly,
		Lines: []models.VehicleLine{
			{
				ID:                uuid.New(),
				LineNo:            1,
				Rate:              decimal.RequireFromString("3000"),
				DepositAmount:     decimal.RequireFromString("2500"),
				AdvanceRentMonths: 1,
			},
		},
	}

	pricing := CalculatePricing(quote, zeroDefaults())

	require.Len(t, pricing.Lines, 1)
	assert.True(t, pricing.Lines[0].UpfrontTotal.Equal(decimal.RequireFromString("5500")))
	assert.True(t, pricing.Deposits.Equal(decimal.RequireFromString("2500")))
	assert.True(t, pricing.TaxableSubtotal.Equal(decimal.RequireFromString("3000")))
	assert.True(t, pricing.VATAmount.Equal(decimal.RequireFromString("150")))
	assert.True(t, pricing.GrandTotal.Equal(decimal.RequireFromString("5650")))
	assert.True(t, pricing.MonthlyRecurring.Equal(decimal.RequireFromString("3000")))
}

func TestCalculatePricingDepositsNeverTaxed(t *testing.T) {
	quote := models.Quote{
		VATPercent:  decimal.RequireFromString("5"),
		BillingPlan: enums.BillingPlanMonthly,
		Lines: []models.VehicleLine{
			{ID: uuid.New(), LineNo: 1, Rate: decimal.RequireFromString("3000"), DepositAmount: decimal.RequireFromString("2500"), AdvanceRentMonths: 1},
			{ID: uuid.New(), LineNo: 2, Rate: decimal.RequireFromString("4500"), DepositAmount: decimal.RequireFromString("9000"), AdvanceRentMonths: 2},
		},
	}

	base := CalculatePricing(quote, zeroDefaults())

	// Inflating a deposit moves the grand total by exactly the delta and
	// leaves the VAT untouched.
	quote.Lines[1].DepositAmount = decimal.RequireFromString("15000")
	inflated := CalculatePricing(quote, zeroDefaults())

	assert.True(t, inflated.VATAmount.Equal(base.VATAmount))
	assert.True(t, inflated.TaxableSubtotal.Equal(base.TaxableSubtotal))
	assert.True(t, inflated.GrandTotal.Sub(base.GrandTotal).Equal(decimal.RequireFromString("6000")))
}

func TestCalculatePricingFeesAndAddOns(t *testing.T) {
	lineID := uuid.New()
	quote := models.Quote{
		VATPercent:     decimal.RequireFromString("5"),
		BillingPlan:    enums.BillingPlanQuarterly,
		DurationMonths: 10,
		DeliveryFee:    decPtr("200"),
		CollectionFee:  decPtr("150"),
		Lines: []models.VehicleLine{
			{
				ID:                lineID,
				LineNo:            1,
				Rate:              decimal.RequireFromString("3000"),
				DepositAmount:     decimal.RequireFromString("2500"),
				AdvanceRentMonths: 1,
			},
		},
		InitialFees: []models.InitialFee{
			{Type: enums.InitialFeeTypeRegistration, Description: "registration", Amount: decimal.RequireFromString("500")},
		},
		AddOns: []models.AddOnLine{
			{VehicleLineID: &lineID, PricingModel: enums.PricingModelMonthly, Quantity: 1, UnitPrice: decimal.RequireFromString("250"), Total: decimal.RequireFromString("250")},
			{VehicleLineID: &lineID, PricingModel: enums.PricingModelOneTime, Quantity: 2, UnitPrice: decimal.RequireFromString("100"), Total: decimal.RequireFromString("200")},
			{PricingModel: enums.PricingModelOneTime, Quantity: 1, UnitPrice: decimal.RequireFromString("300"), Total: decimal.RequireFromString("300")},
		},
	}

	pricing := CalculatePricing(quote, zeroDefaults())

	// taxable = advance 3000 + delivery 200 + collection 150 + fee 500 +
	// one-time add-ons 200 + 300 = 4350
	assert.True(t, pricing.TaxableSubtotal.Equal(decimal.RequireFromString("4350")), pricing.TaxableSubtotal.String())
	assert.True(t, pricing.VATAmount.Equal(decimal.RequireFromString("217.5")))
	assert.True(t, pricing.GrandTotal.Equal(pricing.Deposits.Add(pricing.TaxableSubtotal).Add(pricing.VATAmount)))

	// recurring = rate 3000 + monthly add-on 250
	assert.True(t, pricing.MonthlyRecurring.Equal(decimal.RequireFromString("3250")))

	// quarterly plan over 10 months bills 4 periods
	assert.Equal(t, 4, pricing.ContractPeriods)
	assert.True(t, pricing.ContractValue.Equal(decimal.RequireFromString("39000")))
}

func TestCalculatePricingIsIdempotent(t *testing.T) {
	quote := models.Quote{
		VATPercent:  decimal.RequireFromString("5"),
		BillingPlan: enums.BillingPlanMonthly,
		Lines: []models.VehicleLine{
			{ID: uuid.New(), LineNo: 1, Rate: decimal.RequireFromString("3333.33"), DepositAmount: decimal.RequireFromString("1000"), AdvanceRentMonths: 3},
		},
	}

	first := CalculatePricing(quote, zeroDefaults())
	second := CalculatePricing(quote, zeroDefaults())

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.VATAmount.Equal(second.VATAmount))
	assert.True(t, first.MonthlyRecurring.Equal(second.MonthlyRecurring))
}

func TestCalculatePricingEmptyQuote(t *testing.T) {
	quote := models.Quote{VATPercent: decimal.RequireFromString("5"), BillingPlan: enums.BillingPlanMonthly}

	pricing := CalculatePricing(quote, zeroDefaults())

	assert.True(t, pricing.GrandTotal.IsZero())
	assert.True(t, pricing.MonthlyRecurring.IsZero())
	assert.Empty(t, pricing.Lines)
}
