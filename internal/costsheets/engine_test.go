package costsheets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func standardAssumptions() Assumptions {
	return Assumptions{
		FinancingRatePercent: dec("6"),
		OverheadPercent:      dec("10"),
		TargetMarginPercent:  dec("15"),
		ResidualValuePercent: dec("0"),
		LeaseTermMonths:      36,
	}
}

func TestComputeLineCostBreakdown(t *testing.T) {
	// 80,000 acquisition at 6% financing is 400/month; with 650 of running
	// costs the total lands at 1,050/month.
	input := LineCostInput{
		LineNo:                   1,
		AcquisitionCost:          dec("80000"),
		MaintenanceMonthly:       dec("300"),
		InsuranceMonthly:         dec("250"),
		RegistrationAdminMonthly: dec("50"),
		OtherMonthly:             dec("50"),
		QuotedRatePerMonth:       dec("1400"),
	}

	result := ComputeLine(input, standardAssumptions())

	assert.True(t, result.FinancingMonthly.Equal(dec("400")), result.FinancingMonthly.String())
	assert.True(t, result.TotalCostPerMonth.Equal(dec("1050")), result.TotalCostPerMonth.String())

	// suggested = 1050 / 0.85 / 0.90
	expected := dec("1050").Div(dec("0.85")).Div(dec("0.90"))
	assert.True(t, result.SuggestedRatePerMonth.Equal(expected))

	require.NotNil(t, result.ActualMarginPercent)
	assert.True(t, result.ActualMarginPercent.Equal(dec("25")))
}

func TestComputeLineResidualValueLowersSuggestedRate(t *testing.T) {
	input := LineCostInput{LineNo: 1, AcquisitionCost: dec("80000"), MaintenanceMonthly: dec("650"), QuotedRatePerMonth: dec("1400")}

	assumptions := standardAssumptions()
	base := ComputeLine(input, assumptions)

	assumptions.ResidualValuePercent = dec("20")
	reduced := ComputeLine(input, assumptions)

	assert.True(t, reduced.SuggestedRatePerMonth.Equal(base.SuggestedRatePerMonth.Mul(dec("0.8"))))
}

func TestComputeLineNonPositiveRateHasNoMargin(t *testing.T) {
	input := LineCostInput{LineNo: 1, AcquisitionCost: dec("80000"), QuotedRatePerMonth: decimal.Zero}

	result := ComputeLine(input, standardAssumptions())
	assert.Nil(t, result.ActualMarginPercent)

	input.QuotedRatePerMonth = dec("-100")
	result = ComputeLine(input, standardAssumptions())
	assert.Nil(t, result.ActualMarginPercent)
}

func TestComputeLineMarginMonotonicInRate(t *testing.T) {
	input := LineCostInput{
		LineNo:             1,
		AcquisitionCost:    dec("80000"),
		MaintenanceMonthly: dec("650"),
	}

	var previous *decimal.Decimal
	for _, rate := range []string{"1100", "1200", "1400", "2000", "5000"} {
		input.QuotedRatePerMonth = dec(rate)
		result := ComputeLine(input, standardAssumptions())
		require.NotNil(t, result.ActualMarginPercent)
		if previous != nil {
			assert.True(t, result.ActualMarginPercent.GreaterThan(*previous),
				"margin must grow with the quoted rate")
		}
		previous = result.ActualMarginPercent
	}
}

func TestComputeSummaryThresholds(t *testing.T) {
	// cost 1050 per line; 1105 quoted is ~4.98% (blocks), 1150 is ~8.7%
	// (warns), 1400 is 25% (clean).
	costed := func(lineNo int, rate string) LineCostInput {
		return LineCostInput{
			LineNo:             lineNo,
			AcquisitionCost:    dec("80000"),
			MaintenanceMonthly: dec("650"),
			QuotedRatePerMonth: dec(rate),
		}
	}

	summary := Compute([]LineCostInput{
		costed(1, "1400"),
		costed(2, "1150"),
		costed(3, "1105"),
	}, standardAssumptions())

	assert.Equal(t, []int{3}, summary.BlockingLineNos)
	assert.Equal(t, []int{2}, summary.WarningLineNos)
	assert.Equal(t, 3, summary.LowestMarginLineNo)

	blocked, lineNos := GateBlocked(summary)
	assert.True(t, blocked)
	assert.Equal(t, []int{3}, lineNos)
}

func TestComputeSummaryGateIgnoresHealthyAverage(t *testing.T) {
	// One very profitable line cannot mask a blocking one.
	summary := Compute([]LineCostInput{
		{LineNo: 1, MaintenanceMonthly: dec("100"), QuotedRatePerMonth: dec("10000")},
		{LineNo: 2, MaintenanceMonthly: dec("1000"), QuotedRatePerMonth: dec("1010")},
	}, standardAssumptions())

	require.NotNil(t, summary.AverageMarginPercent)
	assert.True(t, summary.AverageMarginPercent.GreaterThan(dec("10")))

	blocked, lineNos := GateBlocked(summary)
	assert.True(t, blocked)
	assert.Equal(t, []int{2}, lineNos)
}

func TestComputeSummaryZeroRateLineAlwaysBlocks(t *testing.T) {
	summary := Compute([]LineCostInput{
		{LineNo: 1, MaintenanceMonthly: dec("100"), QuotedRatePerMonth: decimal.Zero},
	}, standardAssumptions())

	assert.Nil(t, summary.AverageMarginPercent)
	blocked, lineNos := GateBlocked(summary)
	assert.True(t, blocked)
	assert.Equal(t, []int{1}, lineNos)
}
