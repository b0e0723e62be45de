package quotes

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

func completeQuote() models.Quote {
	vin := strings.Repeat("A", 17)
	pickup := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	ret := pickup.AddDate(1, 0, 0)
	return models.Quote{
		Status:         enums.QuoteStatusDraft,
		CustomerName:   "Al Futtaim Logistics",
		VATPercent:     decimal.RequireFromString("5"),
		DurationMonths: 12,
		Lines: []models.VehicleLine{
			{
				LineNo:        1,
				VehicleRef:    "toyota-hilux-2025",
				VIN:           &vin,
				PickupAt:      &pickup,
				ReturnAt:      &ret,
				Rate:              decimal.RequireFromString("3000"),
				DepositAmount:     decimal.RequireFromString("2500"),
				AdvanceRentMonths: 1,
			},
		},
	}
}

func TestValidateStepCustomer(t *testing.T) {
	quote := completeQuote()
	assert.Empty(t, ValidateStep(enums.WizardStepCustomer, quote))

	quote.CustomerName = "   "
	problems := ValidateStep(enums.WizardStepCustomer, quote)
	assert.Contains(t, problems, "customer_name")

	bad := "not-an-email"
	quote = completeQuote()
	quote.CustomerEmail = &bad
	assert.Contains(t, ValidateStep(enums.WizardStepCustomer, quote), "customer_email")
}

func TestValidateStepVehicles(t *testing.T) {
	quote := completeQuote()
	assert.Empty(t, ValidateStep(enums.WizardStepVehicles, quote))

	t.Run("no lines", func(t *testing.T) {
		empty := completeQuote()
		empty.Lines = nil
		assert.Contains(t, ValidateStep(enums.WizardStepVehicles, empty), "lines")
	})

	t.Run("short vin", func(t *testing.T) {
		q := completeQuote()
		vin := "SHORT"
		q.Lines[0].VIN = &vin
		assert.Contains(t, ValidateStep(enums.WizardStepVehicles, q), "lines[1].vin")
	})

	t.Run("return before pickup", func(t *testing.T) {
		q := completeQuote()
		earlier := q.Lines[0].PickupAt.AddDate(0, -1, 0)
		q.Lines[0].ReturnAt = &earlier
		assert.Contains(t, ValidateStep(enums.WizardStepVehicles, q), "lines[1].return_at")
	})

	t.Run("negative deposit", func(t *testing.T) {
		q := completeQuote()
		q.Lines[0].DepositAmount = decimal.RequireFromString("-1")
		assert.Contains(t, ValidateStep(enums.WizardStepVehicles, q), "lines[1].deposit_amount")
	})

	t.Run("negative advance months", func(t *testing.T) {
		q := completeQuote()
		q.Lines[0].AdvanceRentMonths = -2
		assert.Contains(t, ValidateStep(enums.WizardStepVehicles, q), "lines[1].advance_rent_months")
	})
}

func TestValidateStepPricing(t *testing.T) {
	quote := completeQuote()
	assert.Empty(t, ValidateStep(enums.WizardStepPricing, quote))

	quote.Lines[0].Rate = decimal.Zero
	assert.Contains(t, ValidateStep(enums.WizardStepPricing, quote), "lines[1].rate")

	quote = completeQuote()
	quote.DurationMonths = 0
	assert.Contains(t, ValidateStep(enums.WizardStepPricing, quote), "duration_months")
}

func TestValidateStepReviewRequiresReasonWhenClosed(t *testing.T) {
	quote := completeQuote()
	assert.Empty(t, ValidateStep(enums.WizardStepReview, quote))

	quote.Status = enums.QuoteStatusLost
	assert.Contains(t, ValidateStep(enums.WizardStepReview, quote), "win_loss_reason")

	reason := "competitor undercut the monthly rate"
	quote.WinLossReason = &reason
	assert.Empty(t, ValidateStep(enums.WizardStepReview, quote))
}

func TestValidateStepIsIdempotent(t *testing.T) {
	quote := completeQuote()
	quote.CustomerName = ""
	quote.Lines[0].Rate = decimal.Zero

	for _, step := range enums.OrderedWizardSteps {
		first := ValidateStep(step, quote)
		second := ValidateStep(step, quote)
		assert.Equal(t, first, second)
	}
}

func TestValidateForSubmissionAggregatesSteps(t *testing.T) {
	quote := completeQuote()
	assert.Empty(t, ValidateForSubmission(quote))

	quote.CustomerName = ""
	quote.DurationMonths = 0
	problems := ValidateForSubmission(quote)
	assert.Contains(t, problems, "customer_name")
	assert.Contains(t, problems, "duration_months")
}
