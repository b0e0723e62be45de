package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
)

// Resolve picks the effective value for a line-overridable field: a non-nil
// line value wins, then a non-nil header value, then the system default. An
// explicit zero (or false) at either level is a real value, not "unset".
func Resolve[T any](line *T, header *T, system T) T {
	if line != nil {
		return *line
	}
	if header != nil {
		return *header
	}
	return system
}

// Customized reports whether a line carries its own value that differs from
// the header. A nil line value is never customized; a line value equal to the
// header's is not customized either.
func Customized[T comparable](line *T, header *T) bool {
	if line == nil {
		return false
	}
	if header == nil {
		return true
	}
	return *line != *header
}

// ResolvedLine holds the effective per-line values after falling through
// line -> header -> system default. It is recomputed on every read and never
// stored.
type ResolvedLine struct {
	InsuranceMonthly   decimal.Decimal
	MaintenanceMonthly decimal.Decimal
	DeliveryFee        decimal.Decimal
	CollectionFee      decimal.Decimal
	MileageKMPerMonth  int
}

// ResolveLine materializes the effective values for one vehicle line against
// its quote header and the configured system defaults.
func ResolveLine(line models.VehicleLine, quote models.Quote, defaults config.DefaultsConfig) ResolvedLine {
	return ResolvedLine{
		InsuranceMonthly:   Resolve(line.InsuranceMonthly, quote.InsuranceMonthly, defaults.InsuranceMonthly),
		MaintenanceMonthly: Resolve(line.MaintenanceMonthly, quote.MaintenanceMonthly, defaults.MaintenanceMonthly),
		DeliveryFee:        Resolve(line.DeliveryFee, quote.DeliveryFee, defaults.DeliveryFee),
		CollectionFee:      Resolve(line.CollectionFee, quote.CollectionFee, defaults.CollectionFee),
		MileageKMPerMonth:  Resolve(line.MileageKMPerMonth, nil, defaults.MileageKMPerMonth),
	}
}
