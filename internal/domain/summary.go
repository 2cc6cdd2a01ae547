package domain

import (
	"fmt"
	"strings"
	"time"
)

// Totals is the aggregation over one member or all members. Degraded names the
// tables whose reads failed and were counted as zero.
type Totals struct {
	MemberID           *int32   `json:"member_id,omitempty"`
	TotalContributions int64    `json:"total_contributions"`
	FoundationPaid     int64    `json:"foundation_paid"`
	FoundationPending  int64    `json:"foundation_pending"`
	TotalRepaid        int64    `json:"total_repaid"`
	UnpaidFines        int64    `json:"unpaid_fines"`
	ActiveLoanCount    int      `json:"active_loan_count"`
	LoanTotal          int64    `json:"loan_total"`
	Degraded           []string `json:"degraded,omitempty"`
}

// FoundationPaidPlusRepaid is the dashboard figure that folds loan repayments back
// into the foundation column.
func (t Totals) FoundationPaidPlusRepaid() int64 {
	return t.FoundationPaid + t.TotalRepaid
}

func (t Totals) IsDegraded() bool {
	return len(t.Degraded) > 0
}

// Time range names accepted by SinceForRange.
const (
	RangeAll      = "all"
	Range30Days   = "30d"
	Range90Days   = "90d"
	RangeThisYear = "year"
)

// SinceForRange turns a dashboard time range into a lower bound. RangeAll and the
// empty string return nil.
func SinceForRange(rangeName string, now time.Time) (*time.Time, error) {
	var since time.Time
	switch strings.ToLower(strings.TrimSpace(rangeName)) {
	case "", RangeAll:
		return nil, nil
	case Range30Days:
		since = now.Add(-30 * 24 * time.Hour)
	case Range90Days:
		since = now.Add(-90 * 24 * time.Hour)
	case RangeThisYear:
		since = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, NewValidationError(RuleInvalidInput, fmt.Sprintf("unknown time range %q", rangeName))
	}
	return &since, nil
}
