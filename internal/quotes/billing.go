package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// BillingPeriods returns how many billing periods a contract of the given
// duration spans under the plan. Partial trailing periods count as a full
// period; a zero duration yields zero periods.
func BillingPeriods(plan enums.BillingPlan, durationMonths int) int {
	if durationMonths <= 0 {
		return 0
	}
	period := plan.PeriodMonths()
	if period <= 0 {
		return 0
	}
	return (durationMonths + period - 1) / period
}

// ContractValue multiplies the per-period rate by the number of periods.
func ContractValue(perPeriodRate decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return decimal.Zero
	}
	return perPeriodRate.Mul(decimal.NewFromInt(int64(periods)))
}

// PerPeriodRate converts a monthly rate into the amount invoiced per billing
// period under the plan.
func PerPeriodRate(monthlyRate decimal.Decimal, plan enums.BillingPlan) decimal.Decimal {
	return monthlyRate.Mul(decimal.NewFromInt(int64(plan.PeriodMonths())))
}
