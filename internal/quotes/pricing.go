package quotes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// LinePricing is the upfront breakdown for a single vehicle line.
type LinePricing struct {
	LineNo        int             `json:"line_no"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Deposit       decimal.Decimal `json:"deposit"`
	AdvanceRent   decimal.Decimal `json:"advance_rent"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	CollectionFee decimal.Decimal `json:"collection_fee"`
	UpfrontTotal  decimal.Decimal `json:"upfront_total"`
}

// Pricing is the full quote-level money breakdown. Deposits are carried
// outside the taxable subtotal: grand total = deposits + taxable + VAT,
// exactly.
type Pricing struct {
	Lines            []LinePricing   `json:"lines"`
	Deposits         decimal.Decimal `json:"deposits"`
	TaxableSubtotal  decimal.Decimal `json:"taxable_subtotal"`
	VATPercent       decimal.Decimal `json:"vat_percent"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	MonthlyRecurring decimal.Decimal `json:"monthly_recurring"`
	ContractPeriods  int             `json:"contract_periods"`
	ContractValue    decimal.Decimal `json:"contract_value"`
}

var hundred = decimal.NewFromInt(100)

// CalculatePricing derives the full upfront and recurring breakdown for a
// quote. It is pure: same quote and defaults in, same Pricing out, no
// rounding applied at any step.
func CalculatePricing(quote models.Quote, defaults config.DefaultsConfig) Pricing {
	p := Pricing{
		VATPercent:       quote.VATPercent,
		Deposits:         decimal.Zero,
		TaxableSubtotal:  decimal.Zero,
		MonthlyRecurring: decimal.Zero,
	}

	lineAddOns := groupLineAddOns(quote.AddOns)

	for _, line := range quote.Lines {
		resolved := ResolveLine(line, quote, defaults)
		advance := line.Rate.Mul(decimal.NewFromInt(int64(line.AdvanceRentMonths)))

		lp := LinePricing{
			LineNo:        line.LineNo,
			EffectiveRate: line.Rate,
			Deposit:       line.DepositAmount,
			AdvanceRent:   advance,
			DeliveryFee:   resolved.DeliveryFee,
			CollectionFee: resolved.CollectionFee,
		}
		lp.UpfrontTotal = lp.Deposit.Add(lp.AdvanceRent).Add(lp.DeliveryFee).Add(lp.CollectionFee)
		p.Lines = append(p.Lines, lp)

		p.Deposits = p.Deposits.Add(lp.Deposit)
		p.TaxableSubtotal = p.TaxableSubtotal.Add(lp.AdvanceRent).Add(lp.DeliveryFee).Add(lp.CollectionFee)
		p.MonthlyRecurring = p.MonthlyRecurring.Add(line.Rate)

		for _, addon := range lineAddOns[line.ID] {
			switch addon.PricingModel {
			case enums.PricingModelOneTime:
				p.TaxableSubtotal = p.TaxableSubtotal.Add(addon.Total)
			case enums.PricingModelMonthly:
				p.MonthlyRecurring = p.MonthlyRecurring.Add(addon.Total)
			}
		}
	}

	for _, fee := range quote.InitialFees {
		p.TaxableSubtotal = p.TaxableSubtotal.Add(fee.Amount)
	}

	for _, addon := range quote.HeaderAddOns() {
		switch addon.PricingModel {
		case enums.PricingModelOneTime:
			p.TaxableSubtotal = p.TaxableSubtotal.Add(addon.Total)
		case enums.PricingModelMonthly:
			p.MonthlyRecurring = p.MonthlyRecurring.Add(addon.Total)
		}
	}

	p.VATAmount = p.TaxableSubtotal.Mul(p.VATPercent).Div(hundred)
	p.GrandTotal = p.Deposits.Add(p.TaxableSubtotal).Add(p.VATAmount)

	p.ContractPeriods = BillingPeriods(quote.BillingPlan, quote.DurationMonths)
	p.ContractValue = ContractValue(PerPeriodRate(p.MonthlyRecurring, quote.BillingPlan), p.ContractPeriods)

	return p
}

func groupLineAddOns(addons []models.AddOnLine) map[uuid.UUID][]models.AddOnLine {
	grouped := make(map[uuid.UUID][]models.AddOnLine)
	for _, addon := range addons {
		if addon.VehicleLineID == nil {
			continue
		}
		grouped[*addon.VehicleLineID] = append(grouped[*addon.VehicleLineID], addon)
	}
	return grouped
}
