package costsheets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// Repository defines persistence operations for cost sheet tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sheet *models.CostSheet) (*models.CostSheet, error)
	FindCurrentByQuote(ctx context.Context, quoteID uuid.UUID) (*models.CostSheet, error)
	NextVersion(ctx context.Context, quoteID uuid.UUID) (int, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next enums.CostSheetStatus, updates map[string]any) (bool, error)
	ReplaceLines(ctx context.Context, sheetID uuid.UUID, lines []models.CostSheetLine) error
	HasApprovedForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error)
}

// Service defines the cost sheet lifecycle, including the hooks the quote
// service calls into.
type Service interface {
	Calculate(ctx context.Context, input CalculateInput) (*CostSheetDetail, error)
	Recalculate(ctx context.Context, input RecalculateInput) (*CostSheetDetail, error)
	GetCurrent(ctx context.Context, quoteID uuid.UUID) (*CostSheetDetail, error)
	Submit(ctx context.Context, input SubmitInput) error
	Approve(ctx context.Context, input ApproveInput) error
	Reject(ctx context.Context, input RejectInput) error

	OnLinesChanged(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) error
	HasApprovedCostSheet(ctx context.Context, quoteID uuid.UUID) (bool, error)
}
