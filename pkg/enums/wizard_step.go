package enums

import "fmt"

// WizardStep names the quote wizard pages in their forward order.
type WizardStep string

const (
	WizardStepCustomer WizardStep = "customer"
	WizardStepVehicles WizardStep = "vehicles"
	WizardStepPricing  WizardStep = "pricing"
	WizardStepReview   WizardStep = "review"
)

// OrderedWizardSteps lists the steps in navigation order. Backward moves are
// always allowed; a step must validate clean before advancing past it.
var OrderedWizardSteps = []WizardStep{
	WizardStepCustomer,
	WizardStepVehicles,
	WizardStepPricing,
	WizardStepReview,
}

// String implements fmt.Stringer.
func (w WizardStep) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WizardStep.
func (w WizardStep) IsValid() bool {
	for _, candidate := range OrderedWizardSteps {
		if candidate == w {
			return true
		}
	}
	return false
}

// Index returns the zero-based position of the step, or -1 when unknown.
func (w WizardStep) Index() int {
	for i, candidate := range OrderedWizardSteps {
		if candidate == w {
			return i
		}
	}
	return -1
}

// ParseWizardStep converts raw input into a WizardStep.
func ParseWizardStep(value string) (WizardStep, error) {
	for _, candidate := range OrderedWizardSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wizard step %q", value)
}
