package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
	"github.com/rashidkhoury/fleetquote-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Preload("InitialFees").
		Preload("AddOns").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) NextQuoteNumber(ctx context.Context) (int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Select("MAX(quote_number)").
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
		Model(&models.Quote{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateStatusIf applies the transition only when the row is still in the
// expected status. The boolean reports whether a row was changed; false means
// another writer got there first.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next enums.QuoteStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = next

	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []models.VehicleLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quote_id = ? AND vehicle_line_id IS NOT NULL", quoteID).Delete(&models.AddOnLine{}).Error; err != nil {
		return err
	}
	if err := db.Where("quote_id = ?", quoteID).Delete(&models.VehicleLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return db.Create(&lines).Error
}

func (r *repository) ReplaceInitialFees(ctx context.Context, quoteID uuid.UUID, fees []models.InitialFee) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quote_id = ?", quoteID).Delete(&models.InitialFee{}).Error; err != nil {
		return err
	}
	if len(fees) == 0 {
		return nil
	}
	return db.Create(&fees).Error
}

func (r *repository) ReplaceHeaderAddOns(ctx context.Context, quoteID uuid.UUID, addons []models.AddOnLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quote_id = ? AND vehicle_line_id IS NULL", quoteID).Delete(&models.AddOnLine{}).Error; err != nil {
		return err
	}
	if len(addons) == 0 {
		return nil
	}
	return db.Create(&addons).Error
}

type quoteSummaryRecord struct {
	ID           uuid.UUID
	QuoteNumber  int64
	Version      int
	Type         enums.QuoteType
	Status       enums.QuoteStatus
	CustomerName string
	Currency     enums.Currency
	LineCount    int
	CreatedAt    time.Time
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters QuoteFilters) (*QuoteList, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("quotes q").
		Select(strings.Join([]string{
			"q.id",
			"q.quote_number",
			"q.version",
			"q.type",
			"q.status",
			"q.customer_name",
			"q.currency",
			"q.created_at",
			"(SELECT COUNT(1) FROM vehicle_lines l WHERE l.quote_id = q.id) AS line_count",
		}, ", "))

	if filters.Status != nil {
		qb = qb.Where("q.status = ?", *filters.Status)
	}
	if filters.Type != nil {
		qb = qb.Where("q.type = ?", *filters.Type)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("LOWER(q.customer_name) LIKE ?", pattern)
	}

	if cursor != nil {
		qb = qb.Where("(q.created_at < ?) OR (q.created_at = ? AND q.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("q.created_at DESC").Order("q.id DESC").Limit(limitWithBuffer)

	var records []quoteSummaryRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]QuoteSummary, 0, len(resultRows))
	for _, record := range resultRows {
		summaries = append(summaries, QuoteSummary{
			ID:           record.ID,
			QuoteNumber:  record.QuoteNumber,
			Version:      record.Version,
			Type:         record.Type,
			Status:       record.Status,
			CustomerName: record.CustomerName,
			Currency:     record.Currency,
			LineCount:    record.LineCount,
			CreatedAt:    record.CreatedAt,
		})
	}

	return &QuoteList{
		Quotes:     summaries,
		NextCursor: nextCursor,
	}, nil
}
