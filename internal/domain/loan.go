package domain

import (
	"fmt"
	"time"
)

type LoanStatus string

const (
	LoanStatusRequested LoanStatus = "requested"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusPaid      LoanStatus = "paid"
	LoanStatusClosed    LoanStatus = "closed"
	LoanStatusRejected  LoanStatus = "rejected"
)

// OpenLoanStatuses are the statuses in which a loan still binds its borrower.
var OpenLoanStatuses = []LoanStatus{LoanStatusRequested, LoanStatusApproved, LoanStatusActive}

type LoanAction string

const (
	LoanActionApprove LoanAction = "approve"
	LoanActionReject  LoanAction = "reject"
	LoanActionIssue   LoanAction = "issue"
	LoanActionClose   LoanAction = "close"
	LoanActionSettle  LoanAction = "settle"
	LoanActionRepay   LoanAction = "repay"
)

var loanTransitions = map[LoanAction]struct {
	from LoanStatus
	to   LoanStatus
}{
	LoanActionApprove: {LoanStatusRequested, LoanStatusApproved},
	LoanActionReject:  {LoanStatusRequested, LoanStatusRejected},
	LoanActionIssue:   {LoanStatusApproved, LoanStatusActive},
	LoanActionClose:   {LoanStatusActive, LoanStatusClosed},
	LoanActionSettle:  {LoanStatusActive, LoanStatusPaid},
}

// Transition returns the (from, to) pair for an action, or a StateError when the
// loan is not in the state the action starts from.
func (l *Loan) Transition(action LoanAction) (LoanStatus, LoanStatus, error) {
	t, ok := loanTransitions[action]
	if !ok {
		return "", "", fmt.Errorf("unknown loan action %q", action)
	}
	if l.Status != t.from {
		return "", "", &StateError{Entity: "loan", ID: l.ID, Current: string(l.Status), Action: string(action)}
	}
	return t.from, t.to, nil
}

type Loan struct {
	ID               int64      `json:"id"`
	BorrowerMemberID int32      `json:"borrower_member_id"`
	SuretyMemberID   int32      `json:"surety_member_id"`
	Principal        int64      `json:"principal"`
	Interest         int64      `json:"interest"`
	TotalDue         int64      `json:"total_due"`
	Status           LoanStatus `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	IssuedAt         *time.Time `json:"issued_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	LastInterestAt   *time.Time `json:"last_interest_at,omitempty"`
}

// LoanBalance is a loan together with its repayment position. RemainingBalance is
// never clamped; an overpaid loan carries a negative balance and Overpaid is set.
type LoanBalance struct {
	Loan             Loan  `json:"loan"`
	TotalRepaid      int64 `json:"total_repaid"`
	RemainingBalance int64 `json:"remaining_balance"`
	Overpaid         bool  `json:"overpaid"`
}

func NewLoanBalance(loan Loan, totalRepaid int64) LoanBalance {
	remaining := RemainingBalance(loan.TotalDue, totalRepaid)
	return LoanBalance{
		Loan:             loan,
		TotalRepaid:      totalRepaid,
		RemainingBalance: remaining,
		Overpaid:         remaining < 0,
	}
}

func RemainingBalance(totalDue, totalRepaid int64) int64 {
	return totalDue - totalRepaid
}

// Settled reports whether repayments have covered what is due.
func (b LoanBalance) Settled() bool {
	return b.RemainingBalance <= 0
}

// LoanRequest is a validated borrower request. Build it with NewLoanRequest.
type LoanRequest struct {
	BorrowerID int32
	SuretyID   int32
	Amount     int64
	Notes      string
	Status     LoanStatus
}

type LoanRequestBuilder struct {
	req       LoanRequest
	hasSurety bool
}

func NewLoanRequest(borrowerID int32) *LoanRequestBuilder {
	return &LoanRequestBuilder{req: LoanRequest{BorrowerID: borrowerID, Status: LoanStatusRequested}}
}

func (b *LoanRequestBuilder) WithSurety(suretyID int32) *LoanRequestBuilder {
	b.req.SuretyID = suretyID
	b.hasSurety = true
	return b
}

func (b *LoanRequestBuilder) WithAmount(amount int64) *LoanRequestBuilder {
	b.req.Amount = amount
	return b
}

func (b *LoanRequestBuilder) WithNotes(notes string) *LoanRequestBuilder {
	b.req.Notes = notes
	return b
}

// WithStatus is only honoured for requested and approved; admins may record a loan
// that skips the request step.
func (b *LoanRequestBuilder) WithStatus(status LoanStatus) *LoanRequestBuilder {
	b.req.Status = status
	return b
}

func (b *LoanRequestBuilder) Build() (LoanRequest, error) {
	var reasons []string
	if b.req.BorrowerID <= 0 {
		reasons = append(reasons, "borrower is required")
	}
	if !b.hasSurety || b.req.SuretyID <= 0 {
		reasons = append(reasons, "a surety must be selected")
	}
	if b.req.Amount <= 0 {
		reasons = append(reasons, "requested amount must be greater than zero")
	}
	if b.req.Status != LoanStatusRequested && b.req.Status != LoanStatusApproved {
		reasons = append(reasons, fmt.Sprintf("a new loan cannot start as %q", b.req.Status))
	}
	if len(reasons) > 0 {
		return LoanRequest{}, NewValidationError(RuleInvalidInput, reasons...)
	}
	if b.req.SuretyID == b.req.BorrowerID {
		return LoanRequest{}, NewValidationError(RuleSuretyIsBorrower, "surety must be a different member than the borrower")
	}
	return b.req, nil
}

func (r LoanRequest) ToLoan(now time.Time) *Loan {
	loan := &Loan{
		BorrowerMemberID: r.BorrowerID,
		SuretyMemberID:   r.SuretyID,
		Principal:        r.Amount,
		TotalDue:         r.Amount,
		Status:           r.Status,
		Notes:            r.Notes,
		CreatedAt:        now,
	}
	if r.Status == LoanStatusApproved {
		loan.ApprovedAt = &now
	}
	return loan
}

// EligibilityDecision records both sides of the dual qualification rule.
type EligibilityDecision struct {
	Requested  int64    `json:"requested"`
	Borrower   Capacity `json:"borrower"`
	Surety     Capacity `json:"surety"`
	BorrowerOK bool     `json:"borrower_ok"`
	SuretyOK   bool     `json:"surety_ok"`
}

func Decide(requested int64, borrower, surety Capacity) EligibilityDecision {
	return EligibilityDecision{
		Requested:  requested,
		Borrower:   borrower,
		Surety:     surety,
		BorrowerOK: borrower.Covers(requested),
		SuretyOK:   surety.Covers(requested),
	}
}

func (d EligibilityDecision) Eligible() bool {
	return d.BorrowerOK && d.SuretyOK
}

func (d EligibilityDecision) Reasons() []string {
	var reasons []string
	if !d.BorrowerOK {
		reasons = append(reasons, fmt.Sprintf("borrower not eligible: capacity %.2f is less than requested %d", d.Borrower.Value, d.Requested))
	}
	if !d.SuretyOK {
		reasons = append(reasons, fmt.Sprintf("surety not eligible: capacity %.2f is less than requested %d", d.Surety.Value, d.Requested))
	}
	return reasons
}

// Err is nil for an eligible decision. The rule names the failing party when only
// one side fails.
func (d EligibilityDecision) Err() error {
	switch {
	case d.Eligible():
		return nil
	case !d.BorrowerOK && !d.SuretyOK:
		return NewValidationError(RuleLoanEligibility, d.Reasons()...)
	case !d.BorrowerOK:
		return NewValidationError(RuleBorrowerCapacity, d.Reasons()...)
	default:
		return NewValidationError(RuleSuretyCapacity, d.Reasons()...)
	}
}

type InterestRun struct {
	ID            int64     `json:"id"`
	RunMonth      string    `json:"run_month"`
	LoansAffected int       `json:"loans_affected"`
	InterestTotal int64     `json:"interest_total"`
	CreatedAt     time.Time `json:"created_at"`
}

// WholeMonthsBetween counts calendar months from since to now, only counting a month
// once its day-of-month (and time) has been reached.
func WholeMonthsBetween(since, now time.Time) int {
	if !now.After(since) {
		return 0
	}
	months := (now.Year()-since.Year())*12 + int(now.Month()-since.Month())
	if since.AddDate(0, months, 0).After(now) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
