package costsheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/internal/quotes"
	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
	pkgerrors "github.com/rashidkhoury/fleetquote-backend/pkg/errors"
	"github.com/rashidkhoury/fleetquote-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	quotes   quotes.Repository
	tx       txRunner
	defaults config.DefaultsConfig
	workflow *metrics.WorkflowMetrics
}

// NewService builds the cost sheet service. The workflow metrics may be nil.
func NewService(repo Repository, quoteRepo quotes.Repository, tx txRunner, defaults config.DefaultsConfig, workflow *metrics.WorkflowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cost sheets repository required")
	}
	if quoteRepo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		quotes:   quoteRepo,
		tx:       tx,
		defaults: defaults,
		workflow: workflow,
	}, nil
}

func (s *service) Calculate(ctx context.Context, input CalculateInput) (*CostSheetDetail, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cost line is required")
	}

	var detail *CostSheetDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quoteRepo := s.quotes.WithTx(tx)

		quote, err := quoteRepo.FindByID(ctx, input.QuoteID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
		}
		if len(quote.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote has no vehicle lines to cost")
		}
		if err := validateLineInputs(input.Lines, quote.Lines); err != nil {
			return err
		}

		// A still-live previous sheet is superseded, not mutated.
		if current, err := repo.FindCurrentByQuote(ctx, input.QuoteID); err == nil {
			obsoleted, err := repo.UpdateStatusIf(ctx, current.ID, current.Status, enums.CostSheetStatusObsolete, map[string]any{
				"obsolete_at": time.Now().UTC(),
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede cost sheet")
			}
			if !obsoleted {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cost sheet changed state during calculation")
			}
			s.workflow.IncObsoleted()
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current cost sheet")
		}

		version, err := repo.NextVersion(ctx, input.QuoteID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate cost sheet version")
		}

		assumptions := s.resolveAssumptions(input.Assumptions, quote.DurationMonths)

		start := time.Now()
		summary := Compute(input.Lines, assumptions)
		s.workflow.ObservePricingDuration("cost_sheet_compute", time.Since(start))

		sheet := &models.CostSheet{
			ID:                   uuid.New(),
			QuoteID:              quote.ID,
			Version:              version,
			Status:               enums.CostSheetStatusDraft,
			FinancingRatePercent: assumptions.FinancingRatePercent,
			OverheadPercent:      assumptions.OverheadPercent,
			TargetMarginPercent:  assumptions.TargetMarginPercent,
			ResidualValuePercent: assumptions.ResidualValuePercent,
			LeaseTermMonths:      assumptions.LeaseTermMonths,
			LineFingerprint:      LineFingerprint(quote.Lines),
			Lines:                buildSheetLines(uuid.Nil, input.Lines, summary),
		}
		for i := range sheet.Lines {
			sheet.Lines[i].CostSheetID = sheet.ID
		}

		if _, err := repo.Create(ctx, sheet); err != nil {
			if db.IsUniqueViolation(err, "idx_cost_sheets_current") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "another cost sheet is already live for this quote")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cost sheet")
		}

		detail = &CostSheetDetail{Sheet: *sheet, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) Recalculate(ctx context.Context, input RecalculateInput) (*CostSheetDetail, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cost line is required")
	}

	var detail *CostSheetDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quoteRepo := s.quotes.WithTx(tx)

		quote, err := quoteRepo.FindByID(ctx, input.QuoteID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
		}
		if err := validateLineInputs(input.Lines, quote.Lines); err != nil {
			return err
		}

		sheet, err := s.loadCurrent(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		if sheet.Status != enums.CostSheetStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft cost sheets can be recalculated")
		}

		assumptions := s.resolveAssumptions(input.Assumptions, quote.DurationMonths)

		start := time.Now()
		summary := Compute(input.Lines, assumptions)
		s.workflow.ObservePricingDuration("cost_sheet_compute", time.Since(start))

		updates := map[string]any{
			"financing_rate_percent": assumptions.FinancingRatePercent,
			"overhead_percent":       assumptions.OverheadPercent,
			"target_margin_percent":  assumptions.TargetMarginPercent,
			"residual_value_percent": assumptions.ResidualValuePercent,
			"lease_term_months":      assumptions.LeaseTermMonths,
			"line_fingerprint":       LineFingerprint(quote.Lines),
		}
		if err := repo.Update(ctx, sheet.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cost sheet")
		}
		if err := repo.ReplaceLines(ctx, sheet.ID, buildSheetLines(sheet.ID, input.Lines, summary)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace cost sheet lines")
		}

		refreshed, err := s.loadCurrent(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		detail = &CostSheetDetail{Sheet: *refreshed, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) GetCurrent(ctx context.Context, quoteID uuid.UUID) (*CostSheetDetail, error) {
	if quoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}

	sheet, err := s.loadCurrent(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	return &CostSheetDetail{Sheet: *sheet, Summary: summaryFromSheet(sheet)}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) error {
	if input.QuoteID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sheet, err := s.loadCurrent(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		if sheet.Status != enums.CostSheetStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft cost sheets can be submitted")
		}

		if err := s.ensureFresh(ctx, tx, repo, sheet); err != nil {
			return err
		}

		summary := summaryFromSheet(sheet)
		if blocked, lineNos := GateBlocked(summary); blocked {
			s.workflow.IncMarginBlock()
			return pkgerrors.New(pkgerrors.CodeMarginGate, "one or more lines fall below the minimum margin").
				WithDetails(map[string]any{"line_nos": lineNos})
		}

		now := time.Now().UTC()
		changed, err := repo.UpdateStatusIf(ctx, sheet.ID, enums.CostSheetStatusDraft, enums.CostSheetStatusPendingApproval, map[string]any{
			"submitted_by": input.SubmittedBy,
			"submitted_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit cost sheet")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost sheet changed state during submission")
		}

		s.workflow.IncTransition("draft_to_pending_approval")
		return nil
	})
}

func (s *service) Approve(ctx context.Context, input ApproveInput) error {
	if input.QuoteID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if input.ApprovedBy == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "approver id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sheet, err := s.loadCurrent(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		if sheet.Status != enums.CostSheetStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost sheet is not pending approval")
		}

		if err := s.ensureFresh(ctx, tx, repo, sheet); err != nil {
			return err
		}

		now := time.Now().UTC()
		changed, err := repo.UpdateStatusIf(ctx, sheet.ID, enums.CostSheetStatusPendingApproval, enums.CostSheetStatusApproved, map[string]any{
			"approved_by":    input.ApprovedBy,
			"approved_at":    now,
			"approval_notes": input.Notes,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve cost sheet")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost sheet changed state during approval")
		}

		s.workflow.IncTransition("pending_approval_to_approved")
		return nil
	})
}

func (s *service) Reject(ctx context.Context, input RejectInput) error {
	if input.QuoteID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a rejection reason is required").
			WithDetails(map[string]string{"reason": "reason is required"})
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sheet, err := s.loadCurrent(ctx, repo, input.QuoteID)
		if err != nil {
			return err
		}
		if sheet.Status != enums.CostSheetStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost sheet is not pending approval")
		}

		now := time.Now().UTC()
		changed, err := repo.UpdateStatusIf(ctx, sheet.ID, enums.CostSheetStatusPendingApproval, enums.CostSheetStatusRejected, map[string]any{
			"rejected_by":      input.RejectedBy,
			"rejected_at":      now,
			"rejection_reason": strings.TrimSpace(input.Reason),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject cost sheet")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost sheet changed state during rejection")
		}

		s.workflow.IncTransition("pending_approval_to_rejected")
		return nil
	})
}

// OnLinesChanged is called by the quote write path, inside its transaction,
// after any vehicle line change. A live sheet whose fingerprint no longer
// matches the quote's lines flips to obsolete.
func (s *service) OnLinesChanged(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	quoteRepo := s.quotes.WithTx(tx)

	sheet, err := repo.FindCurrentByQuote(ctx, quoteID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current cost sheet")
	}
	if !sheet.Status.CanObsolete() {
		return nil
	}

	quote, err := quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	if LineFingerprint(quote.Lines) == sheet.LineFingerprint {
		return nil
	}

	changed, err := repo.UpdateStatusIf(ctx, sheet.ID, sheet.Status, enums.CostSheetStatusObsolete, map[string]any{
		"obsolete_at": time.Now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "obsolete cost sheet")
	}
	if changed {
		s.workflow.IncObsoleted()
	}
	return nil
}

func (s *service) HasApprovedCostSheet(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	return s.repo.HasApprovedForQuote(ctx, quoteID)
}

// ensureFresh re-checks the sheet's fingerprint against the quote's persisted
// lines; a stale sheet is flipped to obsolete and the caller gets a state
// conflict.
func (s *service) ensureFresh(ctx context.Context, tx *gorm.DB, repo Repository, sheet *models.CostSheet) error {
	quote, err := s.quotes.WithTx(tx).FindByID(ctx, sheet.QuoteID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	if LineFingerprint(quote.Lines) == sheet.LineFingerprint {
		return nil
	}

	changed, err := repo.UpdateStatusIf(ctx, sheet.ID, sheet.Status, enums.CostSheetStatusObsolete, map[string]any{
		"obsolete_at": time.Now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "obsolete cost sheet")
	}
	if changed {
		s.workflow.IncObsoleted()
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "quote lines changed since the cost sheet was calculated")
}

func (s *service) loadCurrent(ctx context.Context, repo Repository, quoteID uuid.UUID) (*models.CostSheet, error) {
	sheet, err := repo.FindCurrentByQuote(ctx, quoteID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no current cost sheet for quote")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current cost sheet")
	}
	return sheet, nil
}

func (s *service) resolveAssumptions(overrides AssumptionOverrides, quoteDurationMonths int) Assumptions {
	assumptions := Assumptions{
		FinancingRatePercent: s.defaults.FinancingRatePercent,
		OverheadPercent:      s.defaults.OverheadPercent,
		TargetMarginPercent:  s.defaults.TargetMarginPercent,
		ResidualValuePercent: s.defaults.ResidualValuePercent,
		LeaseTermMonths:      quoteDurationMonths,
	}
	if overrides.FinancingRatePercent != nil {
		assumptions.FinancingRatePercent = *overrides.FinancingRatePercent
	}
	if overrides.OverheadPercent != nil {
		assumptions.OverheadPercent = *overrides.OverheadPercent
	}
	if overrides.TargetMarginPercent != nil {
		assumptions.TargetMarginPercent = *overrides.TargetMarginPercent
	}
	if overrides.ResidualValuePercent != nil {
		assumptions.ResidualValuePercent = *overrides.ResidualValuePercent
	}
	if overrides.LeaseTermMonths != nil {
		assumptions.LeaseTermMonths = *overrides.LeaseTermMonths
	}
	return assumptions
}

func validateLineInputs(inputs []LineCostInput, lines []models.VehicleLine) error {
	known := make(map[int]bool, len(lines))
	for _, line := range lines {
		known[line.LineNo] = true
	}

	problems := map[string]string{}
	seen := make(map[int]bool, len(inputs))
	for _, input := range inputs {
		key := fmt.Sprintf("lines[%d]", input.LineNo)
		if !known[input.LineNo] {
			problems[key] = "no matching vehicle line on the quote"
		}
		if seen[input.LineNo] {
			problems[key] = "duplicate cost line"
		}
		seen[input.LineNo] = true
		if input.AcquisitionCost.IsNegative() {
			problems[key+".acquisition_cost"] = "acquisition cost cannot be negative"
		}
	}

	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost line validation failed").WithDetails(problems)
	}
	return nil
}

func buildSheetLines(sheetID uuid.UUID, inputs []LineCostInput, summary Summary) []models.CostSheetLine {
	byLineNo := make(map[int]LineResult, len(summary.Lines))
	for _, line := range summary.Lines {
		byLineNo[line.LineNo] = line
	}

	lines := make([]models.CostSheetLine, 0, len(inputs))
	for _, input := range inputs {
		result := byLineNo[input.LineNo]
		lines = append(lines, models.CostSheetLine{
			ID:                       uuid.New(),
			CostSheetID:              sheetID,
			LineNo:                   input.LineNo,
			AcquisitionCost:          input.AcquisitionCost,
			MaintenanceMonthly:       input.MaintenanceMonthly,
			InsuranceMonthly:         input.InsuranceMonthly,
			RegistrationAdminMonthly: input.RegistrationAdminMonthly,
			OtherMonthly:             input.OtherMonthly,
			TotalCostPerMonth:        result.TotalCostPerMonth,
			SuggestedRatePerMonth:    result.SuggestedRatePerMonth,
			QuotedRatePerMonth:       result.QuotedRatePerMonth,
			ActualMarginPercent:      result.ActualMarginPercent,
		})
	}
	return lines
}

// summaryFromSheet re-derives the engine summary from a persisted sheet so
// reads never trust stale derived numbers.
func summaryFromSheet(sheet *models.CostSheet) Summary {
	inputs := make([]LineCostInput, 0, len(sheet.Lines))
	for _, line := range sheet.Lines {
		inputs = append(inputs, LineCostInput{
			LineNo:                   line.LineNo,
			AcquisitionCost:          line.AcquisitionCost,
			MaintenanceMonthly:       line.MaintenanceMonthly,
			InsuranceMonthly:         line.InsuranceMonthly,
			RegistrationAdminMonthly: line.RegistrationAdminMonthly,
			OtherMonthly:             line.OtherMonthly,
			QuotedRatePerMonth:       line.QuotedRatePerMonth,
		})
	}
	return Compute(inputs, Assumptions{
		FinancingRatePercent: sheet.FinancingRatePercent,
		OverheadPercent:      sheet.OverheadPercent,
		TargetMarginPercent:  sheet.TargetMarginPercent,
		ResidualValuePercent: sheet.ResidualValuePercent,
		LeaseTermMonths:      sheet.LeaseTermMonths,
	})
}
