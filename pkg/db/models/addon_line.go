package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
)

// AddOnLine is an optional extra attached either to the quote header or to a
// single vehicle line. Total is always quantity x unit price, recomputed on
// every write; it is never accepted from callers.
type AddOnLine struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID       uuid.UUID          `gorm:"column:quote_id;type:uuid;not null;index"`
	VehicleLineID *uuid.UUID         `gorm:"column:vehicle_line_id;type:uuid;index"`
	PricingModel  enums.PricingModel `gorm:"column:pricing_model;type:text;not null"`
	Description   string             `gorm:"column:description;not null"`
	Quantity      int                `gorm:"column:quantity;not null;default:1"`
	UnitPrice     decimal.Decimal    `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total         decimal.Decimal    `gorm:"column:total;type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputeTotal overwrites Total from quantity and unit price.
func (a *AddOnLine) RecomputeTotal() {
	a.Total = a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity)))
}
