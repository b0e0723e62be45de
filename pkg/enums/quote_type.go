package enums

import "fmt"

// QuoteType distinguishes short-term rentals from corporate lease contracts.
type QuoteType string

const (
	QuoteTypeStandardRental QuoteType = "standard_rental"
	QuoteTypeCorporateLease QuoteType = "corporate_lease"
)

var validQuoteTypes = []QuoteType{
	QuoteTypeStandardRental,
	QuoteTypeCorporateLease,
}

// String implements fmt.Stringer.
func (q QuoteType) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteType.
func (q QuoteType) IsValid() bool {
	for _, candidate := range validQuoteTypes {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteType converts raw input into a QuoteType.
func ParseQuoteType(value string) (QuoteType, error) {
	for _, candidate := range validQuoteTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote type %q", value)
}
