package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
	"github.com/rashidkhoury/fleetquote-backend/pkg/pagination"
)

// Repository defines persistence operations for quote tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, params pagination.Params, filters QuoteFilters) (*QuoteList, error)
	NextQuoteNumber(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next enums.QuoteStatus, updates map[string]any) (bool, error)
	ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []models.VehicleLine) error
	ReplaceInitialFees(ctx context.Context, quoteID uuid.UUID, fees []models.InitialFee) error
	ReplaceHeaderAddOns(ctx context.Context, quoteID uuid.UUID, addons []models.AddOnLine) error
}

// Service defines the quote wizard and lifecycle operations.
type Service interface {
	CreateDraft(ctx context.Context, input CreateDraftInput) (*models.Quote, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*QuoteDetail, error)
	List(ctx context.Context, params pagination.Params, filters QuoteFilters) (*QuoteList, error)
	SaveStep(ctx context.Context, input SaveStepInput) (*models.Quote, error)
	PreviewPricing(ctx context.Context, id uuid.UUID) (*Pricing, error)
	Submit(ctx context.Context, id uuid.UUID) error
	Decide(ctx context.Context, input DecideInput) error
	NewRevision(ctx context.Context, id uuid.UUID) (*models.Quote, error)
}
