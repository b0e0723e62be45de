package enums

import "fmt"

// ProrationRule is the partial-period billing policy carried on the quote
// header. Downstream billing consumes it; quoting only stores and validates.
type ProrationRule string

const (
	ProrationRuleNone       ProrationRule = "none"
	ProrationRuleFirstOnly  ProrationRule = "first_only"
	ProrationRuleLastOnly   ProrationRule = "last_only"
	ProrationRuleFirstLast  ProrationRule = "first_last"
	ProrationRuleAllPeriods ProrationRule = "all_periods"
)

var validProrationRules = []ProrationRule{
	ProrationRuleNone,
	ProrationRuleFirstOnly,
	ProrationRuleLastOnly,
	ProrationRuleFirstLast,
	ProrationRuleAllPeriods,
}

// String implements fmt.Stringer.
func (p ProrationRule) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProrationRule.
func (p ProrationRule) IsValid() bool {
	for _, candidate := range validProrationRules {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProrationRule converts raw input into a ProrationRule.
func ParseProrationRule(value string) (ProrationRule, error) {
	for _, candidate := range validProrationRules {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid proration rule %q", value)
}
