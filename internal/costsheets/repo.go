package costsheets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cost sheets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sheet *models.CostSheet) (*models.CostSheet, error) {
	if err := r.db.WithContext(ctx).Create(sheet).Error; err != nil {
		return nil, err
	}
	return sheet, nil
}

// FindCurrentByQuote returns the quote's live sheet, i.e. the one that is
// neither rejected nor obsolete. The partial unique index guarantees at most
// one such row.
func (r *repository) FindCurrentByQuote(ctx context.Context, quoteID uuid.UUID) (*models.CostSheet, error) {
	var sheet models.CostSheet
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("quote_id = ? AND status NOT IN ?", quoteID, []enums.CostSheetStatus{
			enums.CostSheetStatusRejected,
			enums.CostSheetStatusObsolete,
		}).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *repository) NextVersion(ctx context.Context, quoteID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.CostSheet{}).
		Where("quote_id = ?", quoteID).
		Select("MAX(version)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CostSheet{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateStatusIf applies the transition only when the row is still in the
// expected status; false means another writer acted first.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next enums.CostSheetStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = next

	result := r.db.WithContext(ctx).
		Model(&models.CostSheet{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReplaceLines(ctx context.Context, sheetID uuid.UUID, lines []models.CostSheetLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cost_sheet_id = ?", sheetID).Delete(&models.CostSheetLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return db.Create(&lines).Error
}

func (r *repository) HasApprovedForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CostSheet{}).
		Where("quote_id = ? AND status = ?", quoteID, enums.CostSheetStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
