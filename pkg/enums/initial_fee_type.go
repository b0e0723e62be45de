package enums

import "fmt"

// InitialFeeType classifies one-time fees charged at contract start.
type InitialFeeType string

const (
	InitialFeeTypeRegistration  InitialFeeType = "registration"
	InitialFeeTypeDocumentation InitialFeeType = "documentation"
	InitialFeeTypeProcessing    InitialFeeType = "processing"
	InitialFeeTypeOther         InitialFeeType = "other"
)

var validInitialFeeTypes = []InitialFeeType{
	InitialFeeTypeRegistration,
	InitialFeeTypeDocumentation,
	InitialFeeTypeProcessing,
	InitialFeeTypeOther,
}

// String implements fmt.Stringer.
func (i InitialFeeType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InitialFeeType.
func (i InitialFeeType) IsValid() bool {
	for _, candidate := range validInitialFeeTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInitialFeeType converts raw input into an InitialFeeType.
func ParseInitialFeeType(value string) (InitialFeeType, error) {
	for _, candidate := range validInitialFeeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid initial fee type %q", value)
}
