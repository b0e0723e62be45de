package costsheets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/internal/quotes"
	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
	pkgerrors "github.com/rashidkhoury/fleetquote-backend/pkg/errors"
	"github.com/rashidkhoury/fleetquote-backend/pkg/pagination"
)

type stubSheetRepo struct {
	sheet          *models.CostSheet
	created        *models.CostSheet
	nextVersion    int
	updates        map[string]any
	transitions    []enums.CostSheetStatus
	updateStatusOK bool
	approvedExists bool
	replacedLines  []models.CostSheetLine
}

func (s *stubSheetRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSheetRepo) Create(ctx context.Context, sheet *models.CostSheet) (*models.CostSheet, error) {
	s.created = sheet
	return sheet, nil
}

func (s *stubSheetRepo) FindCurrentByQuote(ctx context.Context, quoteID uuid.UUID) (*models.CostSheet, error) {
	if s.sheet == nil || s.sheet.QuoteID != quoteID || !s.sheet.Status.CanObsolete() {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.sheet
	return &copied, nil
}

func (s *stubSheetRepo) NextVersion(ctx context.Context, quoteID uuid.UUID) (int, error) {
	if s.nextVersion == 0 {
		s.nextVersion = 1
	}
	return s.nextVersion, nil
}

func (s *stubSheetRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubSheetRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next enums.CostSheetStatus, updates map[string]any) (bool, error) {
	s.transitions = append(s.transitions, next)
	if s.updateStatusOK && s.sheet != nil && s.sheet.Status == expected {
		s.sheet.Status = next
		return true, nil
	}
	return false, nil
}

func (s *stubSheetRepo) ReplaceLines(ctx context.Context, sheetID uuid.UUID, lines []models.CostSheetLine) error {
	s.replacedLines = lines
	if s.sheet != nil {
		s.sheet.Lines = lines
	}
	return nil
}

func (s *stubSheetRepo) HasApprovedForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	return s.approvedExists, nil
}

type stubQuoteRepo struct {
	quote *models.Quote
}

func (s *stubQuoteRepo) WithTx(tx *gorm.DB) quotes.Repository { return s }

func (s *stubQuoteRepo) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	return quote, nil
}

func (s *stubQuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	if s.quote == nil || s.quote.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.quote
	return &copied, nil
}

func (s *stubQuoteRepo) List(ctx context.Context, params pagination.Params, filters quotes.QuoteFilters) (*quotes.QuoteList, error) {
	return &quotes.QuoteList{}, nil
}

func (s *stubQuoteRepo) NextQuoteNumber(ctx context.Context) (int64, error) { return 1, nil }

func (s *stubQuoteRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubQuoteRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next enums.QuoteStatus, updates map[string]any) (bool, error) {
	return true, nil
}

func (s *stubQuoteRepo) ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []models.VehicleLine) error {
	return nil
}

func (s *stubQuoteRepo) ReplaceInitialFees(ctx context.Context, quoteID uuid.UUID, fees []models.InitialFee) error {
	return nil
}

func (s *stubQuoteRepo) ReplaceHeaderAddOns(ctx context.Context, quoteID uuid.UUID, addons []models.AddOnLine) error {
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testDefaults() config.DefaultsConfig {
	return config.DefaultsConfig{
		FinancingRatePercent: dec("6"),
		OverheadPercent:      dec("10"),
		TargetMarginPercent:  dec("15"),
		ResidualValuePercent: dec("0"),
	}
}

func newTestService(t *testing.T, repo *stubSheetRepo, quoteRepo *stubQuoteRepo) Service {
	t.Helper()
	svc, err := NewService(repo, quoteRepo, stubTxRunner{}, testDefaults(), nil)
	require.NoError(t, err)
	return svc
}

func costedQuote() *models.Quote {
	return &models.Quote{
		ID:             uuid.New(),
		QuoteNumber:    1,
		Status:         enums.QuoteStatusDraft,
		Type:           enums.QuoteTypeCorporateLease,
		DurationMonths: 36,
		Lines: []models.VehicleLine{
			{ID: uuid.New(), LineNo: 1, VehicleRef: "toyota-hilux-2025", Rate: dec("1400"), RateType: enums.RateTypeMonthly},
		},
	}
}

func healthyInputs() []LineCostInput {
	return []LineCostInput{
		{
			LineNo:             1,
			AcquisitionCost:    dec("80000"),
			MaintenanceMonthly: dec("650"),
			QuotedRatePerMonth: dec("1400"),
		},
	}
}

func sheetFor(quote *models.Quote, status enums.CostSheetStatus, inputs []LineCostInput) *models.CostSheet {
	assumptions := Assumptions{
		FinancingRatePercent: dec("6"),
		OverheadPercent:      dec("10"),
		TargetMarginPercent:  dec("15"),
		ResidualValuePercent: dec("0"),
		LeaseTermMonths:      quote.DurationMonths,
	}
	summary := Compute(inputs, assumptions)
	sheet := &models.CostSheet{
		ID:                   uuid.New(),
		QuoteID:              quote.ID,
		Version:              1,
		Status:               status,
		FinancingRatePercent: assumptions.FinancingRatePercent,
		OverheadPercent:      assumptions.OverheadPercent,
		TargetMarginPercent:  assumptions.TargetMarginPercent,
		ResidualValuePercent: assumptions.ResidualValuePercent,
		LeaseTermMonths:      assumptions.LeaseTermMonths,
		LineFingerprint:      LineFingerprint(quote.Lines),
	}
	sheet.Lines = buildSheetLines(sheet.ID, inputs, summary)
	return sheet
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr, "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code())
}

func TestCalculateCreatesFirstVersion(t *testing.T) {
	quote := costedQuote()
	repo := &stubSheetRepo{nextVersion: 1}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	detail, err := svc.Calculate(context.Background(), CalculateInput{QuoteID: quote.ID, Lines: healthyInputs()})
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	assert.Equal(t, 1, repo.created.Version)
	assert.Equal(t, enums.CostSheetStatusDraft, repo.created.Status)
	assert.Equal(t, LineFingerprint(quote.Lines), repo.created.LineFingerprint)
	require.Len(t, detail.Summary.Lines, 1)
	assert.True(t, detail.Summary.Lines[0].TotalCostPerMonth.Equal(dec("1050")))
}

func TestCalculateSupersedesCurrentSheet(t *testing.T) {
	quote := costedQuote()
	existing := sheetFor(quote, enums.CostSheetStatusApproved, healthyInputs())
	repo := &stubSheetRepo{sheet: existing, nextVersion: 2, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	detail, err := svc.Calculate(context.Background(), CalculateInput{QuoteID: quote.ID, Lines: healthyInputs()})
	require.NoError(t, err)

	require.NotEmpty(t, repo.transitions)
	assert.Equal(t, enums.CostSheetStatusObsolete, repo.transitions[0])
	assert.Equal(t, 2, detail.Sheet.Version)
}

func TestCalculateAssumptionOverrides(t *testing.T) {
	quote := costedQuote()
	repo := &stubSheetRepo{nextVersion: 1}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	override := dec("8")
	termOverride := 24
	detail, err := svc.Calculate(context.Background(), CalculateInput{
		QuoteID:     quote.ID,
		Assumptions: AssumptionOverrides{FinancingRatePercent: &override, LeaseTermMonths: &termOverride},
		Lines:       healthyInputs(),
	})
	require.NoError(t, err)

	assert.True(t, detail.Sheet.FinancingRatePercent.Equal(dec("8")))
	assert.True(t, detail.Sheet.OverheadPercent.Equal(dec("10")))
	assert.Equal(t, 24, detail.Sheet.LeaseTermMonths)
}

func TestCalculateRejectsUnknownLineNumbers(t *testing.T) {
	quote := costedQuote()
	repo := &stubSheetRepo{}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	inputs := healthyInputs()
	inputs[0].LineNo = 9
	_, err := svc.Calculate(context.Background(), CalculateInput{QuoteID: quote.ID, Lines: inputs})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRecalculateOnlyDraft(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusPendingApproval, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	_, err := svc.Recalculate(context.Background(), RecalculateInput{QuoteID: quote.ID, Lines: healthyInputs()})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRecalculateKeepsVersion(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusDraft, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	inputs := healthyInputs()
	inputs[0].MaintenanceMonthly = dec("700")
	detail, err := svc.Recalculate(context.Background(), RecalculateInput{QuoteID: quote.ID, Lines: inputs})
	require.NoError(t, err)

	assert.Equal(t, 1, detail.Sheet.Version)
	require.Len(t, repo.replacedLines, 1)
	assert.True(t, repo.replacedLines[0].TotalCostPerMonth.Equal(dec("1100")))
}

func TestSubmitMarginGateBlocks(t *testing.T) {
	quote := costedQuote()
	thin := []LineCostInput{{
		LineNo:             1,
		AcquisitionCost:    dec("80000"),
		MaintenanceMonthly: dec("650"),
		QuotedRatePerMonth: dec("1080"), // ~2.8% margin
	}}
	sheet := sheetFor(quote, enums.CostSheetStatusDraft, thin)
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	err := svc.Submit(context.Background(), SubmitInput{QuoteID: quote.ID, SubmittedBy: uuid.New()})
	assertCode(t, err, pkgerrors.CodeMarginGate)

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []int{1}, details["line_nos"])
}

func TestSubmitHappyPath(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusDraft, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	err := svc.Submit(context.Background(), SubmitInput{QuoteID: quote.ID, SubmittedBy: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, enums.CostSheetStatusPendingApproval, repo.sheet.Status)
}

func TestSubmitStaleSheetGoesObsolete(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusDraft, healthyInputs())
	sheet.LineFingerprint = "outdated"
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	err := svc.Submit(context.Background(), SubmitInput{QuoteID: quote.ID, SubmittedBy: uuid.New()})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	assert.Equal(t, enums.CostSheetStatusObsolete, repo.sheet.Status)
}

func TestApproveHappyPath(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusPendingApproval, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	notes := "approved at reviewed assumptions"
	err := svc.Approve(context.Background(), ApproveInput{QuoteID: quote.ID, ApprovedBy: uuid.New(), Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.CostSheetStatusApproved, repo.sheet.Status)
}

func TestApproveTwiceIsStale(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusPendingApproval, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	approver := uuid.New()
	require.NoError(t, svc.Approve(context.Background(), ApproveInput{QuoteID: quote.ID, ApprovedBy: approver}))

	err := svc.Approve(context.Background(), ApproveInput{QuoteID: quote.ID, ApprovedBy: approver})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRejectRequiresReason(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusPendingApproval, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	err := svc.Reject(context.Background(), RejectInput{QuoteID: quote.ID, RejectedBy: uuid.New(), Reason: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)

	err = svc.Reject(context.Background(), RejectInput{QuoteID: quote.ID, RejectedBy: uuid.New(), Reason: "costs look understated"})
	require.NoError(t, err)
	assert.Equal(t, enums.CostSheetStatusRejected, repo.sheet.Status)
}

func TestOnLinesChangedObsoletesStaleSheet(t *testing.T) {
	quote := costedQuote()
	sheet := sheetFor(quote, enums.CostSheetStatusApproved, healthyInputs())
	repo := &stubSheetRepo{sheet: sheet, updateStatusOK: true}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	// header-only drift: fingerprint still matches, nothing happens
	require.NoError(t, svc.OnLinesChanged(context.Background(), nil, quote.ID))
	assert.Equal(t, enums.CostSheetStatusApproved, repo.sheet.Status)

	// a line edit changes the fingerprint and flips the sheet
	quote.Lines[0].Rate = dec("1500")
	require.NoError(t, svc.OnLinesChanged(context.Background(), nil, quote.ID))
	assert.Equal(t, enums.CostSheetStatusObsolete, repo.sheet.Status)
}

func TestOnLinesChangedNoCurrentSheet(t *testing.T) {
	quote := costedQuote()
	repo := &stubSheetRepo{}
	svc := newTestService(t, repo, &stubQuoteRepo{quote: quote})

	require.NoError(t, svc.OnLinesChanged(context.Background(), nil, quote.ID))
	assert.Empty(t, repo.transitions)
}

func TestHasApprovedCostSheet(t *testing.T) {
	repo := &stubSheetRepo{approvedExists: true}
	svc := newTestService(t, repo, &stubQuoteRepo{})

	approved, err := svc.HasApprovedCostSheet(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, approved)
}
