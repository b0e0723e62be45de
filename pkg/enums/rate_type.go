package enums

import "fmt"

// RateType identifies the cadence a vehicle line's rate is quoted in.
type RateType string

const (
	RateTypeMonthly RateType = "monthly"
	RateTypeWeekly  RateType = "weekly"
	RateTypeDaily   RateType = "daily"
)

var validRateTypes = []RateType{
	RateTypeMonthly,
	RateTypeWeekly,
	RateTypeDaily,
}

// String implements fmt.Stringer.
func (r RateType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RateType.
func (r RateType) IsValid() bool {
	for _, candidate := range validRateTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRateType converts raw input into a RateType.
func ParseRateType(value string) (RateType, error) {
	for _, candidate := range validRateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rate type %q", value)
}
