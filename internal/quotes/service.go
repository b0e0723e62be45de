package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
	pkgerrors "github.com/rashidkhoury/fleetquote-backend/pkg/errors"
	"github.com/rashidkhoury/fleetquote-backend/pkg/metrics"
	"github.com/rashidkhoury/fleetquote-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LineChangeNotifier is informed inside the same transaction whenever a
// quote's vehicle lines change, so dependent artifacts can react.
type LineChangeNotifier interface {
	OnLinesChanged(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) error
}

// CostSheetGate answers whether a quote has an approved cost sheet, which
// corporate leases require before submission.
type CostSheetGate interface {
	HasApprovedCostSheet(ctx context.Context, quoteID uuid.UUID) (bool, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier LineChangeNotifier
	gate     CostSheetGate
	defaults config.DefaultsConfig
	workflow *metrics.WorkflowMetrics
}

// NewService builds the quote service with the required dependencies. The
// workflow metrics may be nil.
func NewService(repo Repository, tx txRunner, notifier LineChangeNotifier, gate CostSheetGate, defaults config.DefaultsConfig, workflow *metrics.WorkflowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("line change notifier required")
	}
	if gate == nil {
		return nil, fmt.Errorf("cost sheet gate required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		gate:     gate,
		defaults: defaults,
		workflow: workflow,
	}, nil
}

func (s *service) CreateDraft(ctx context.Context, input CreateDraftInput) (*models.Quote, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required").
			WithDetails(map[string]string{"customer_name": "customer name is required"})
	}

	quoteType := input.Type
	if quoteType == "" {
		quoteType = enums.QuoteTypeStandardRental
	}
	if !quoteType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote type")
	}

	currency := enums.CurrencyAED
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
		}
		currency = *input.Currency
	}

	vat := s.defaults.VATPercent
	if input.VATPercent != nil {
		if input.VATPercent.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vat percent cannot be negative")
		}
		vat = *input.VATPercent
	}

	var created *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextQuoteNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate quote number")
		}

		quote := &models.Quote{
			QuoteNumber:      number,
			Version:          1,
			Type:             quoteType,
			Status:           enums.QuoteStatusDraft,
			CustomerName:     strings.TrimSpace(input.CustomerName),
			CustomerEmail:    input.CustomerEmail,
			CustomerPhone:    input.CustomerPhone,
			Currency:         currency,
			VATPercent:       vat,
			BillingPlan:      enums.BillingPlanMonthly,
			ProrationRule:    enums.ProrationRuleNone,
			DepositPolicy:    enums.DepositTypeRefundable,
			PaymentTermsDays: s.defaults.PaymentTermsDays,
			Notes:            input.Notes,
		}

		created, err = repo.Create(ctx, quote)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*QuoteDetail, error) {
	quote, err := s.loadQuote(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pricing := CalculatePricing(*quote, s.defaults)
	s.workflow.ObservePricingDuration("quote_pricing", time.Since(start))

	stepValidation := make(map[enums.WizardStep]map[string]string, len(enums.OrderedWizardSteps))
	for _, step := range enums.OrderedWizardSteps {
		stepValidation[step] = ValidateStep(step, *quote)
	}

	return &QuoteDetail{
		Quote:          *quote,
		Pricing:        pricing,
		StepValidation: stepValidation,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters QuoteFilters) (*QuoteList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote status filter")
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote type filter")
	}

	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return list, nil
}

func (s *service) SaveStep(ctx context.Context, input SaveStepInput) (*models.Quote, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if !input.Step.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown wizard step")
	}

	var saved *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := s.loadQuote(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		if quote.Status != enums.QuoteStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft quotes can be edited")
		}

		draft := *quote
		updates, lines, linesChanged, err := applyStep(&draft, input)
		if err != nil {
			return err
		}

		if problems := ValidateStep(input.Step, draft); len(problems) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "step validation failed").WithDetails(problems)
		}

		if len(updates) > 0 {
			if err := repo.Update(ctx, quote.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote")
			}
		}

		if linesChanged {
			if err := repo.ReplaceLines(ctx, quote.ID, lines); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace vehicle lines")
			}
			if err := s.notifier.OnLinesChanged(ctx, tx, quote.ID); err != nil {
				return err
			}
		}

		if input.Step == enums.WizardStepPricing && input.Pricing != nil {
			if input.Pricing.InitialFees != nil {
				fees := buildInitialFees(quote.ID, input.Pricing.InitialFees)
				if err := repo.ReplaceInitialFees(ctx, quote.ID, fees); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace initial fees")
				}
			}
			if input.Pricing.HeaderAddOns != nil {
				addons, err := buildAddOns(quote.ID, nil, input.Pricing.HeaderAddOns)
				if err != nil {
					return err
				}
				if err := repo.ReplaceHeaderAddOns(ctx, quote.ID, addons); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace header add-ons")
				}
			}
		}

		saved, err = s.loadQuote(ctx, repo, quote.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) PreviewPricing(ctx context.Context, id uuid.UUID) (*Pricing, error) {
	quote, err := s.loadQuote(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pricing := CalculatePricing(*quote, s.defaults)
	s.workflow.ObservePricingDuration("quote_pricing", time.Since(start))

	return &pricing, nil
}

func (s *service) Submit(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := s.loadQuote(ctx, repo, id)
		if err != nil {
			return err
		}
		if quote.Status != enums.QuoteStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft quotes can be submitted")
		}

		if problems := ValidateForSubmission(*quote); len(problems) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quote is not complete").WithDetails(problems)
		}

		if quote.Type == enums.QuoteTypeCorporateLease {
			approved, err := s.gate.HasApprovedCostSheet(ctx, quote.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check cost sheet approval")
			}
			if !approved {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "corporate lease requires an approved cost sheet")
			}
		}

		now := time.Now().UTC()
		changed, err := repo.UpdateStatusIf(ctx, quote.ID, enums.QuoteStatusDraft, enums.QuoteStatusSubmitted, map[string]any{
			"submitted_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit quote")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote changed state during submission")
		}
		return nil
	})
}

func (s *service) Decide(ctx context.Context, input DecideInput) error {
	if input.QuoteID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if input.Status != enums.QuoteStatusWon && input.Status != enums.QuoteStatusLost {
		return pkgerrors.New(pkgerrors.CodeValidation, "decision must be won or lost")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a reason is required when closing a quote").
			WithDetails(map[string]string{"reason": "reason is required"})
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := s.loadQuote(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		switch quote.Status {
		case enums.QuoteStatusSubmitted, enums.QuoteStatusPendingApproval, enums.QuoteStatusApproved:
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote cannot be decided in current state")
		}

		now := time.Now().UTC()
		changed, err := repo.UpdateStatusIf(ctx, quote.ID, quote.Status, input.Status, map[string]any{
			"win_loss_reason": strings.TrimSpace(input.Reason),
			"closed_at":       now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close quote")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote changed state during decision")
		}
		return nil
	})
}

func (s *service) NewRevision(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}

	var revision *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := s.loadQuote(ctx, repo, id)
		if err != nil {
			return err
		}
		if !quote.Status.IsLocked() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only locked quotes can be revised")
		}

		clone := cloneForRevision(quote)
		revision, err = repo.Create(ctx, clone)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote revision")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revision, nil
}

func (s *service) loadQuote(ctx context.Context, repo Repository, id uuid.UUID) (*models.Quote, error) {
	quote, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

// applyStep mutates the draft copy with the step payload and reports the
// header column updates plus, for the vehicles step, the rebuilt line set.
func applyStep(draft *models.Quote, input SaveStepInput) (map[string]any, []models.VehicleLine, bool, error) {
	updates := map[string]any{}

	switch input.Step {
	case enums.WizardStepCustomer:
		if input.Customer == nil {
			return nil, nil, false, pkgerrors.New(pkgerrors.CodeValidation, "customer payload required")
		}
		draft.CustomerName = strings.TrimSpace(input.Customer.CustomerName)
		draft.CustomerEmail = input.Customer.CustomerEmail
		draft.CustomerPhone = input.Customer.CustomerPhone
		draft.Notes = input.Customer.Notes
		updates["customer_name"] = draft.CustomerName
		updates["customer_email"] = draft.CustomerEmail
		updates["customer_phone"] = draft.CustomerPhone
		updates["notes"] = draft.Notes
		return updates, nil, false, nil

	case enums.WizardStepVehicles:
		lines, err := buildVehicleLines(draft.ID, input.Vehicles)
		if err != nil {
			return nil, nil, false, err
		}
		draft.Lines = lines
		return updates, lines, true, nil

	case enums.WizardStepPricing:
		if input.Pricing == nil {
			return nil, nil, false, pkgerrors.New(pkgerrors.CodeValidation, "pricing payload required")
		}
		applyPricingStep(draft, *input.Pricing, updates)
		return updates, nil, false, nil

	case enums.WizardStepReview:
		// Review has no editable fields; saving it just re-runs validation.
		return updates, nil, false, nil
	}

	return nil, nil, false, pkgerrors.New(pkgerrors.CodeValidation, "unknown wizard step")
}

func applyPricingStep(draft *models.Quote, input PricingStepInput, updates map[string]any) {
	if input.VATPercent != nil {
		draft.VATPercent = *input.VATPercent
		updates["vat_percent"] = *input.VATPercent
	}
	if input.BillingPlan != nil {
		draft.BillingPlan = *input.BillingPlan
		updates["billing_plan"] = *input.BillingPlan
	}
	if input.ProrationRule != nil {
		draft.ProrationRule = *input.ProrationRule
		updates["proration_rule"] = *input.ProrationRule
	}
	if input.DepositPolicy != nil {
		draft.DepositPolicy = *input.DepositPolicy
		updates["deposit_policy"] = *input.DepositPolicy
	}
	if input.PaymentTermsDays != nil {
		draft.PaymentTermsDays = *input.PaymentTermsDays
		updates["payment_terms_days"] = *input.PaymentTermsDays
	}
	if input.DurationMonths != nil {
		draft.DurationMonths = *input.DurationMonths
		updates["duration_months"] = *input.DurationMonths
	}
	if input.MileagePooling != nil {
		draft.MileagePooling = *input.MileagePooling
		updates["mileage_pooling"] = *input.MileagePooling
	}
	if input.InsuranceMonthly != nil {
		draft.InsuranceMonthly = input.InsuranceMonthly
		updates["insurance_monthly"] = *input.InsuranceMonthly
	}
	if input.MaintenanceMonthly != nil {
		draft.MaintenanceMonthly = input.MaintenanceMonthly
		updates["maintenance_monthly"] = *input.MaintenanceMonthly
	}
	if input.DeliveryFee != nil {
		draft.DeliveryFee = input.DeliveryFee
		updates["delivery_fee"] = *input.DeliveryFee
	}
	if input.CollectionFee != nil {
		draft.CollectionFee = input.CollectionFee
		updates["collection_fee"] = *input.CollectionFee
	}
}

// buildVehicleLines converts inputs to models with contiguous 1-based line
// numbers and recomputed add-on totals.
func buildVehicleLines(quoteID uuid.UUID, inputs []VehicleLineInput) ([]models.VehicleLine, error) {
	lines := make([]models.VehicleLine, 0, len(inputs))
	for i, in := range inputs {
		rateType := in.RateType
		if rateType == "" {
			rateType = enums.RateTypeMonthly
		}
		if !rateType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown rate type")
		}
		depositType := in.DepositType
		if depositType == "" {
			depositType = enums.DepositTypeRefundable
		}
		if !depositType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown deposit type")
		}

		line := models.VehicleLine{
			QuoteID:            quoteID,
			LineNo:             i + 1,
			VehicleRef:         strings.TrimSpace(in.VehicleRef),
			CategoryRef:        in.CategoryRef,
			VIN:                in.VIN,
			PickupAt:           in.PickupAt,
			ReturnAt:           in.ReturnAt,
			Rate:               in.Rate,
			RateType:           rateType,
			MileageKMPerMonth:  in.MileageKMPerMonth,
			ExcessKMRate:       in.ExcessKMRate,
			DepositAmount:      in.DepositAmount,
			DepositType:        depositType,
			AdvanceRentMonths:  in.AdvanceRentMonths,
			InsuranceMonthly:   in.InsuranceMonthly,
			MaintenanceMonthly: in.MaintenanceMonthly,
			DeliveryFee:        in.DeliveryFee,
			CollectionFee:      in.CollectionFee,
		}
		if in.ID != nil {
			line.ID = *in.ID
		}
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}

		addons, err := buildAddOns(quoteID, &line.ID, in.AddOns)
		if err != nil {
			return nil, err
		}
		line.AddOns = addons

		lines = append(lines, line)
	}
	return lines, nil
}

func buildAddOns(quoteID uuid.UUID, vehicleLineID *uuid.UUID, inputs []AddOnInput) ([]models.AddOnLine, error) {
	addons := make([]models.AddOnLine, 0, len(inputs))
	for _, in := range inputs {
		if !in.PricingModel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown add-on pricing model")
		}
		if in.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "add-on quantity must be positive")
		}
		addon := models.AddOnLine{
			QuoteID:       quoteID,
			VehicleLineID: vehicleLineID,
			PricingModel:  in.PricingModel,
			Description:   strings.TrimSpace(in.Description),
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
		}
		addon.RecomputeTotal()
		addons = append(addons, addon)
	}
	return addons, nil
}

func buildInitialFees(quoteID uuid.UUID, inputs []InitialFeeInput) []models.InitialFee {
	fees := make([]models.InitialFee, 0, len(inputs))
	for _, in := range inputs {
		fees = append(fees, models.InitialFee{
			QuoteID:     quoteID,
			Type:        in.Type,
			Description: strings.TrimSpace(in.Description),
			Amount:      in.Amount,
		})
	}
	return fees
}

func cloneForRevision(quote *models.Quote) *models.Quote {
	clone := &models.Quote{
		ID:                 uuid.New(),
		QuoteNumber:        quote.QuoteNumber,
		Version:            quote.Version + 1,
		SupersedesID:       &quote.ID,
		Type:               quote.Type,
		Status:             enums.QuoteStatusDraft,
		CustomerName:       quote.CustomerName,
		CustomerEmail:      quote.CustomerEmail,
		CustomerPhone:      quote.CustomerPhone,
		Currency:           quote.Currency,
		VATPercent:         quote.VATPercent,
		BillingPlan:        quote.BillingPlan,
		ProrationRule:      quote.ProrationRule,
		DepositPolicy:      quote.DepositPolicy,
		PaymentTermsDays:   quote.PaymentTermsDays,
		DurationMonths:     quote.DurationMonths,
		MileagePooling:     quote.MileagePooling,
		InsuranceMonthly:   quote.InsuranceMonthly,
		MaintenanceMonthly: quote.MaintenanceMonthly,
		DeliveryFee:        quote.DeliveryFee,
		CollectionFee:      quote.CollectionFee,
		Notes:              quote.Notes,
	}

	lineIDMap := make(map[uuid.UUID]uuid.UUID, len(quote.Lines))
	for _, line := range quote.Lines {
		copied := line
		copied.ID = uuid.New()
		copied.QuoteID = clone.ID
		copied.CreatedAt = time.Time{}
		copied.UpdatedAt = time.Time{}
		copied.AddOns = nil
		lineIDMap[line.ID] = copied.ID
		clone.Lines = append(clone.Lines, copied)
	}
	for _, fee := range quote.InitialFees {
		feeCopy := fee
		feeCopy.ID = uuid.New()
		feeCopy.QuoteID = clone.ID
		feeCopy.CreatedAt = time.Time{}
		feeCopy.UpdatedAt = time.Time{}
		clone.InitialFees = append(clone.InitialFees, feeCopy)
	}
	for _, addon := range quote.AddOns {
		addonCopy := addon
		addonCopy.ID = uuid.New()
		addonCopy.QuoteID = clone.ID
		addonCopy.VehicleLineID = nil
		if addon.VehicleLineID != nil {
			newLineID, ok := lineIDMap[*addon.VehicleLineID]
			if !ok {
				continue
			}
			addonCopy.VehicleLineID = &newLineID
		}
		addonCopy.CreatedAt = time.Time{}
		addonCopy.UpdatedAt = time.Time{}
		clone.AddOns = append(clone.AddOns, addonCopy)
	}

	return clone
}
