package enums

import "fmt"

// QuoteStatus tracks the lifecycle of a leasing quote.
type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "draft"
	QuoteStatusSubmitted       QuoteStatus = "submitted"
	QuoteStatusPendingApproval QuoteStatus = "pending_approval"
	QuoteStatusApproved        QuoteStatus = "approved"
	QuoteStatusWon             QuoteStatus = "won"
	QuoteStatusLost            QuoteStatus = "lost"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSubmitted,
	QuoteStatusPendingApproval,
	QuoteStatusApproved,
	QuoteStatusWon,
	QuoteStatusLost,
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteStatus.
func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsLocked reports whether the quote can no longer be edited in place.
// Locked quotes are superseded through a new revision instead.
func (q QuoteStatus) IsLocked() bool {
	switch q {
	case QuoteStatusApproved, QuoteStatusWon, QuoteStatusLost:
		return true
	default:
		return false
	}
}

// RequiresReason reports whether closing a quote in this status needs a
// win/loss reason.
func (q QuoteStatus) RequiresReason() bool {
	return q == QuoteStatusWon || q == QuoteStatusLost
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
