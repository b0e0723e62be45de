package costsheets

import (
	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
	warnThreshold  = decimal.NewFromInt(10)
	blockThreshold = decimal.NewFromInt(5)
)

// Assumptions are the sheet-level rates every line is computed under.
type Assumptions struct {
	FinancingRatePercent decimal.Decimal `json:"financing_rate_percent"`
	OverheadPercent      decimal.Decimal `json:"overhead_percent"`
	TargetMarginPercent  decimal.Decimal `json:"target_margin_percent"`
	ResidualValuePercent decimal.Decimal `json:"residual_value_percent"`
	LeaseTermMonths      int             `json:"lease_term_months"`
}

// LineCostInput carries the operator-entered cost components for one quote
// line, matched by line number.
type LineCostInput struct {
	LineNo                   int             `json:"line_no"`
	AcquisitionCost          decimal.Decimal `json:"acquisition_cost"`
	MaintenanceMonthly       decimal.Decimal `json:"maintenance_monthly"`
	InsuranceMonthly         decimal.Decimal `json:"insurance_monthly"`
	RegistrationAdminMonthly decimal.Decimal `json:"registration_admin_monthly"`
	OtherMonthly             decimal.Decimal `json:"other_monthly"`
	QuotedRatePerMonth       decimal.Decimal `json:"quoted_rate_per_month"`
}

// LineResult is the derived cost and margin picture for one line. Margin is
// nil when the quoted rate is not positive; such lines always block
// submission.
type LineResult struct {
	LineNo                int              `json:"line_no"`
	FinancingMonthly      decimal.Decimal  `json:"financing_monthly"`
	TotalCostPerMonth     decimal.Decimal  `json:"total_cost_per_month"`
	SuggestedRatePerMonth decimal.Decimal  `json:"suggested_rate_per_month"`
	QuotedRatePerMonth    decimal.Decimal  `json:"quoted_rate_per_month"`
	ActualMarginPercent   *decimal.Decimal `json:"actual_margin_percent"`
}

// Summary aggregates the per-line results for review screens and the
// submission gate.
type Summary struct {
	Lines                []LineResult     `json:"lines"`
	AverageMarginPercent *decimal.Decimal `json:"average_margin_percent"`
	LowestMarginLineNo   int              `json:"lowest_margin_line_no"`
	WarningLineNos       []int            `json:"warning_line_nos"`
	BlockingLineNos      []int            `json:"blocking_line_nos"`
}

// ComputeLine derives the monthly cost, suggested rate and actual margin for
// one line under the given assumptions. Pure; divisions by zero are guarded
// by returning the undivided value.
func ComputeLine(input LineCostInput, assumptions Assumptions) LineResult {
	financing := input.AcquisitionCost.
		Mul(assumptions.FinancingRatePercent).
		Div(hundred).
		Div(monthsPerYear)

	totalCost := financing.
		Add(input.MaintenanceMonthly).
		Add(input.InsuranceMonthly).
		Add(input.RegistrationAdminMonthly).
		Add(input.OtherMonthly)

	suggested := totalCost
	if divisor := decimal.NewFromInt(1).Sub(assumptions.TargetMarginPercent.Div(hundred)); divisor.IsPositive() {
		suggested = suggested.Div(divisor)
	}
	if divisor := decimal.NewFromInt(1).Sub(assumptions.OverheadPercent.Div(hundred)); divisor.IsPositive() {
		suggested = suggested.Div(divisor)
	}
	suggested = suggested.Mul(decimal.NewFromInt(1).Sub(assumptions.ResidualValuePercent.Div(hundred)))

	result := LineResult{
		LineNo:                input.LineNo,
		FinancingMonthly:      financing,
		TotalCostPerMonth:     totalCost,
		SuggestedRatePerMonth: suggested,
		QuotedRatePerMonth:    input.QuotedRatePerMonth,
	}

	if input.QuotedRatePerMonth.IsPositive() {
		margin := input.QuotedRatePerMonth.
			Sub(totalCost).
			Div(input.QuotedRatePerMonth).
			Mul(hundred)
		result.ActualMarginPercent = &margin
	}

	return result
}

// Compute runs every line through the engine and builds the summary.
func Compute(inputs []LineCostInput, assumptions Assumptions) Summary {
	summary := Summary{}

	totalRate := decimal.Zero
	totalCost := decimal.Zero
	var lowest *decimal.Decimal

	for _, input := range inputs {
		line := ComputeLine(input, assumptions)
		summary.Lines = append(summary.Lines, line)

		totalRate = totalRate.Add(line.QuotedRatePerMonth)
		totalCost = totalCost.Add(line.TotalCostPerMonth)

		if line.ActualMarginPercent == nil {
			summary.BlockingLineNos = append(summary.BlockingLineNos, line.LineNo)
			continue
		}

		margin := *line.ActualMarginPercent
		if lowest == nil || margin.LessThan(*lowest) {
			lowest = line.ActualMarginPercent
			summary.LowestMarginLineNo = line.LineNo
		}
		if margin.LessThan(blockThreshold) {
			summary.BlockingLineNos = append(summary.BlockingLineNos, line.LineNo)
		} else if margin.LessThan(warnThreshold) {
			summary.WarningLineNos = append(summary.WarningLineNos, line.LineNo)
		}
	}

	if totalRate.IsPositive() {
		average := totalRate.Sub(totalCost).Div(totalRate).Mul(hundred)
		summary.AverageMarginPercent = &average
	}

	return summary
}

// GateBlocked reports whether the summary fails the hard submission gate,
// with the offending line numbers.
func GateBlocked(summary Summary) (bool, []int) {
	return len(summary.BlockingLineNos) > 0, summary.BlockingLineNos
}
