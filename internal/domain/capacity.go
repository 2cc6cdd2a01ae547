package domain

import "github.com/shopspring/decimal"

// DefaultFoundationCreditRate is the share of foundation capital that backs a loan.
const DefaultFoundationCreditRate = 0.70

// Capacity carries the inputs it was computed from so eligibility can be decided
// exactly. Value is for display.
type Capacity struct {
	MemberID           int32    `json:"member_id"`
	TotalContributions int64    `json:"total_contributions"`
	FoundationPaid     int64    `json:"foundation_paid"`
	FoundationPending  int64    `json:"foundation_pending"`
	CreditRate         float64  `json:"credit_rate"`
	Value              float64  `json:"capacity"`
	Degraded           []string `json:"degraded,omitempty"`
}

// ExactCapacity is contributions plus the credited share of foundation paid and pending.
// The result is unrounded; eligibility compares against it directly.
func ExactCapacity(contributions, foundationPaid, foundationPending int64, creditRate float64) decimal.Decimal {
	return decimal.NewFromInt(contributions).
		Add(decimal.NewFromFloat(creditRate).Mul(decimal.NewFromInt(foundationPaid + foundationPending)))
}

func BorrowCapacity(contributions, foundationPaid, foundationPending int64, creditRate float64) float64 {
	return ExactCapacity(contributions, foundationPaid, foundationPending, creditRate).InexactFloat64()
}

func CapacityFromTotals(memberID int32, t Totals, creditRate float64) Capacity {
	return Capacity{
		MemberID:           memberID,
		TotalContributions: t.TotalContributions,
		FoundationPaid:     t.FoundationPaid,
		FoundationPending:  t.FoundationPending,
		CreditRate:         creditRate,
		Value:              BorrowCapacity(t.TotalContributions, t.FoundationPaid, t.FoundationPending, creditRate),
		Degraded:           t.Degraded,
	}
}

// Covers reports whether the capacity reaches amount.
func (c Capacity) Covers(amount int64) bool {
	return ExactCapacity(c.TotalContributions, c.FoundationPaid, c.FoundationPending, c.CreditRate).
		GreaterThanOrEqual(decimal.NewFromInt(amount))
}
