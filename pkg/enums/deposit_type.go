package enums

import "fmt"

// DepositType classifies how a line's security deposit is held.
type DepositType string

const (
	DepositTypeRefundable    DepositType = "refundable"
	DepositTypeNonRefundable DepositType = "non_refundable"
	DepositTypeBankGuarantee DepositType = "bank_guarantee"
)

var validDepositTypes = []DepositType{
	DepositTypeRefundable,
	DepositTypeNonRefundable,
	DepositTypeBankGuarantee,
}

// String implements fmt.Stringer.
func (d DepositType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DepositType.
func (d DepositType) IsValid() bool {
	for _, candidate := range validDepositTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDepositType converts raw input into a DepositType.
func ParseDepositType(value string) (DepositType, error) {
	for _, candidate := range validDepositTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit type %q", value)
}
