package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrRotationConflict = errors.New("rotation state was modified by a concurrent payout")
)

// Rule names reported in ValidationError.Rule.
const (
	RuleBorrowerCapacity = "borrower_capacity"
	RuleSuretyCapacity   = "surety_capacity"
	RuleLoanEligibility  = "loan_eligibility"
	RuleSuretyIsBorrower = "surety_is_borrower"
	RuleOpenLoanExists   = "open_loan_exists"
	RuleZeroPot          = "zero_pot"
	RuleInvalidAmount    = "invalid_amount"
	RuleInvalidInput     = "invalid_input"
	RuleInactiveMember   = "inactive_member"
	RuleUnknownMember    = "unknown_member"
	RuleNoBeneficiary    = "no_beneficiary"
	RuleInterestModel    = "interest_model"
)

// ValidationError is a recoverable rejection of a caller request. Reasons carries
// every failing condition so that, for example, borrower and surety shortfalls are
// reported together.
type ValidationError struct {
	Rule    string
	Reasons []string
}

func NewValidationError(rule string, reasons ...string) *ValidationError {
	return &ValidationError{Rule: rule, Reasons: reasons}
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return "validation failed: " + e.Rule
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, strings.Join(e.Reasons, "; "))
}

// StateError reports an action attempted on an entity in the wrong lifecycle state.
// Nothing is written when it is returned.
type StateError struct {
	Entity  string
	ID      int64
	Current string
	Action  string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d: current status is %q", e.Action, e.Entity, e.ID, e.Current)
}

// StoreError wraps a failed Ledger Store call.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRotationConflict) {
		return err
	}
	return &StoreError{Op: op, Table: table, Err: err}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsState(err error) bool {
	var s *StateError
	return errors.As(err, &s)
}
