package domain

import (
	"strconv"
	"time"
)

type Contribution struct {
	ID        int64     `json:"id"`
	MemberID  int32     `json:"member_id"`
	Amount    int64     `json:"amount"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FoundationStatus string

const (
	FoundationStatusPaid    FoundationStatus = "paid"
	FoundationStatusPending FoundationStatus = "pending"
	FoundationStatusPartial FoundationStatus = "partial"
)

func (s FoundationStatus) Valid() bool {
	switch s {
	case FoundationStatusPaid, FoundationStatusPending, FoundationStatusPartial:
		return true
	}
	return false
}

type FoundationPayment struct {
	ID            int64            `json:"id"`
	MemberID      int32            `json:"member_id"`
	AmountPaid    int64            `json:"amount_paid"`
	AmountPending int64            `json:"amount_pending"`
	Status        FoundationStatus `json:"status"`
	DatePaid      time.Time        `json:"date_paid"`
	Notes         string           `json:"notes,omitempty"`
}

type FineStatus string

const (
	FineStatusUnpaid FineStatus = "unpaid"
	FineStatusPaid   FineStatus = "paid"
)

type Fine struct {
	ID        int64      `json:"id"`
	MemberID  int32      `json:"member_id"`
	Amount    int64      `json:"amount"`
	Reason    string     `json:"reason"`
	Status    FineStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type Repayment struct {
	ID         int64     `json:"id"`
	LoanID     int64     `json:"loan_id"`
	MemberID   int32     `json:"member_id"`
	AmountPaid int64     `json:"amount_paid"`
	PaidAt     time.Time `json:"paid_at"`
	Notes      string    `json:"notes,omitempty"`
}

// Scope selects the rows an aggregation or listing runs over.
// A nil MemberID means every member; a nil Since means all time.
type Scope struct {
	MemberID *int32
	Since    *time.Time
}

func AllMembers() Scope {
	return Scope{}
}

func ForMember(memberID int32) Scope {
	return Scope{MemberID: &memberID}
}

func (s Scope) WithSince(t time.Time) Scope {
	s.Since = &t
	return s
}

func (s Scope) IsAll() bool {
	return s.MemberID == nil
}

func fmtMemberID(id int32) string {
	return "Member " + strconv.FormatInt(int64(id), 10)
}
