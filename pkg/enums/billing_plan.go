package enums

import "fmt"

// BillingPlan defines the invoicing cadence applied to recurring rent.
type BillingPlan string

const (
	BillingPlanMonthly    BillingPlan = "monthly"
	BillingPlanQuarterly  BillingPlan = "quarterly"
	BillingPlanSemiAnnual BillingPlan = "semi_annual"
	BillingPlanAnnual     BillingPlan = "annual"
)

var validBillingPlans = []BillingPlan{
	BillingPlanMonthly,
	BillingPlanQuarterly,
	BillingPlanSemiAnnual,
	BillingPlanAnnual,
}

// String implements fmt.Stringer.
func (b BillingPlan) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BillingPlan.
func (b BillingPlan) IsValid() bool {
	for _, candidate := range validBillingPlans {
		if candidate == b {
			return true
		}
	}
	return false
}

// PeriodMonths returns the billing period length in months. Unknown plans
// fall back to monthly so period math never divides by zero.
func (b BillingPlan) PeriodMonths() int {
	switch b {
	case BillingPlanQuarterly:
		return 3
	case BillingPlanSemiAnnual:
		return 6
	case BillingPlanAnnual:
		return 12
	default:
		return 1
	}
}

// ParseBillingPlan converts raw input into a BillingPlan.
func ParseBillingPlan(value string) (BillingPlan, error) {
	for _, candidate := range validBillingPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing plan %q", value)
}
