package quotes

import (
	"fmt"
	"strings"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

const vinLength = 17

// ValidateStep checks one wizard step against the current draft and returns
// field-keyed messages. An empty map means the step is complete. The result
// depends only on the draft, so re-running a step is free and order never
// matters.
func ValidateStep(step enums.WizardStep, quote models.Quote) map[string]string {
	problems := map[string]string{}

	switch step {
	case enums.WizardStepCustomer:
		validateCustomer(quote, problems)
	case enums.WizardStepVehicles:
		validateVehicles(quote, problems)
	case enums.WizardStepPricing:
		validatePricing(quote, problems)
	case enums.WizardStepReview:
		validateReview(quote, problems)
	default:
		problems["step"] = "unknown wizard step"
	}

	return problems
}

// ValidateForSubmission runs every wizard step. Callers layer the
// corporate-lease cost-sheet gate on top; that check needs persisted state
// and lives in the service.
func ValidateForSubmission(quote models.Quote) map[string]string {
	problems := map[string]string{}
	for _, step := range enums.OrderedWizardSteps {
		for field, msg := range ValidateStep(step, quote) {
			if _, exists := problems[field]; !exists {
				problems[field] = msg
			}
		}
	}
	return problems
}

func validateCustomer(quote models.Quote, problems map[string]string) {
	if strings.TrimSpace(quote.CustomerName) == "" {
		problems["customer_name"] = "customer name is required"
	}
	if quote.CustomerEmail != nil && !strings.Contains(*quote.CustomerEmail, "@") {
		problems["customer_email"] = "customer email is not valid"
	}
}

func validateVehicles(quote models.Quote, problems map[string]string) {
	if len(quote.Lines) == 0 {
		problems["lines"] = "at least one vehicle line is required"
		return
	}

	for _, line := range quote.Lines {
		key := func(field string) string {
			return fmt.Sprintf("lines[%d].%s", line.LineNo, field)
		}

		if strings.TrimSpace(line.VehicleRef) == "" {
			problems[key("vehicle_ref")] = "vehicle reference is required"
		}
		if line.VIN != nil && len(*line.VIN) != vinLength {
			problems[key("vin")] = "vin must be exactly 17 characters"
		}
		if line.PickupAt != nil && line.ReturnAt != nil && !line.ReturnAt.After(*line.PickupAt) {
			problems[key("return_at")] = "return date must be after pickup date"
		}
		if line.DepositAmount.IsNegative() {
			problems[key("deposit_amount")] = "deposit cannot be negative"
		}
		if line.AdvanceRentMonths < 0 {
			problems[key("advance_rent_months")] = "advance rent months cannot be negative"
		}
	}
}

func validatePricing(quote models.Quote, problems map[string]string) {
	if quote.VATPercent.IsNegative() {
		problems["vat_percent"] = "vat percent cannot be negative"
	}
	if quote.DurationMonths <= 0 {
		problems["duration_months"] = "contract duration is required"
	}
	for _, line := range quote.Lines {
		if !line.Rate.IsPositive() {
			problems[fmt.Sprintf("lines[%d].rate", line.LineNo)] = "monthly rate must be greater than zero"
		}
	}
}

func validateReview(quote models.Quote, problems map[string]string) {
	if quote.Status.RequiresReason() && (quote.WinLossReason == nil || strings.TrimSpace(*quote.WinLossReason) == "") {
		problems["win_loss_reason"] = "a reason is required when closing a quote"
	}
}
