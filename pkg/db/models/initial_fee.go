package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// InitialFee is a one-time header-level fee due before contract start.
type InitialFee struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID     uuid.UUID            `gorm:"column:quote_id;type:uuid;not null;index"`
	Type        enums.InitialFeeType `gorm:"column:type;type:text;not null"`
	Description string               `gorm:"column:description;not null"`
	Amount      decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
