package http

import (
	"fmt"
	"net/http"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
)

type eligibilityRequest struct {
	BorrowerID int32  `json:"borrower_id"`
	SuretyID   int32  `json:"surety_id"`
	Amount     Amount `json:"amount"`
}

type createLoanRequest struct {
	BorrowerID int32  `json:"borrower_id,omitempty"`
	SuretyID   int32  `json:"surety_id"`
	Amount     Amount `json:"amount"`
	Notes      string `json:"notes,omitempty"`
	Status     string `json:"status,omitempty"`
}

type rejectLoanRequest struct {
	Reason string `json:"reason"`
}

type repaymentRequest struct {
	Amount Amount `json:"amount"`
	Notes  string `json:"notes,omitempty"`
}

func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req eligibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := principal(r)
	if req.BorrowerID == 0 {
		req.BorrowerID = p.MemberID
	}
	if !p.CanActFor(req.BorrowerID) {
		writeError(w, r, fmt.Errorf("%w: members may only check their own eligibility", domain.ErrForbidden))
		return
	}

	decision, err := h.svc.Loans.CheckEligibility(r.Context(), req.BorrowerID, req.SuretyID, int64(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*domain.EligibilityDecision
		Eligible bool     `json:"eligible"`
		Reasons  []string `json:"reasons,omitempty"`
	}{decision, decision.Eligible(), decision.Reasons()})
}

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	scope, err := h.listScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	loans, err := h.svc.Loans.ListLoans(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if loans == nil {
		loans = []domain.LoanBalance{}
	}
	writeJSON(w, http.StatusOK, loans)
}

// CreateLoan files a request for the calling member. Admins may create a loan for any
// borrower and may record it directly as approved.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := principal(r)

	if !p.Admin {
		if req.BorrowerID != 0 && req.BorrowerID != p.MemberID {
			writeError(w, r, fmt.Errorf("%w: members may only request loans for themselves", domain.ErrForbidden))
			return
		}
		if req.Status != "" && domain.LoanStatus(req.Status) != domain.LoanStatusRequested {
			writeError(w, r, fmt.Errorf("%w: only admins may set the loan status", domain.ErrForbidden))
			return
		}
		req.BorrowerID = p.MemberID
	}

	b := domain.NewLoanRequest(req.BorrowerID).
		WithSurety(req.SuretyID).
		WithAmount(int64(req.Amount)).
		WithNotes(req.Notes)
	if req.Status != "" {
		b = b.WithStatus(domain.LoanStatus(req.Status))
	}
	built, err := b.Build()
	if err != nil {
		writeError(w, r, err)
		return
	}

	var loan *domain.Loan
	if p.Admin {
		loan, err = h.svc.Loans.CreateLoanAsAdmin(r.Context(), built)
	} else {
		loan, err = h.svc.Loans.RequestLoan(r.Context(), built)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// GetLoan is visible to admins and to the borrower or surety of the loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := h.svc.Loans.Balance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := principal(r)
	if !p.CanActFor(balance.Loan.BorrowerMemberID) && !p.CanActFor(balance.Loan.SuretyMemberID) {
		writeError(w, r, fmt.Errorf("%w: loan belongs to another member", domain.ErrForbidden))
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *Handler) loanAction(w http.ResponseWriter, r *http.Request, act func(id int64) (*domain.Loan, error)) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := act(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	h.loanAction(w, r, func(id int64) (*domain.Loan, error) {
		return h.svc.Loans.Approve(r.Context(), id)
	})
}

func (h *Handler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	var req rejectLoanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.loanAction(w, r, func(id int64) (*domain.Loan, error) {
		return h.svc.Loans.Reject(r.Context(), id, req.Reason)
	})
}

func (h *Handler) IssueLoan(w http.ResponseWriter, r *http.Request) {
	h.loanAction(w, r, func(id int64) (*domain.Loan, error) {
		return h.svc.Loans.Issue(r.Context(), id)
	})
}

func (h *Handler) CloseLoan(w http.ResponseWriter, r *http.Request) {
	h.loanAction(w, r, func(id int64) (*domain.Loan, error) {
		return h.svc.Loans.Close(r.Context(), id)
	})
}

func (h *Handler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req repaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	balance, err := h.svc.Loans.RecordRepayment(r.Context(), id, int64(req.Amount), req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, balance)
}

// ListRepayments is visible to the borrower and the surety.
func (h *Handler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := h.svc.Loans.Balance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := principal(r)
	if !p.CanActFor(balance.Loan.BorrowerMemberID) && !p.CanActFor(balance.Loan.SuretyMemberID) {
		writeError(w, r, fmt.Errorf("%w: loan belongs to another member", domain.ErrForbidden))
		return
	}
	rows, err := h.svc.Loans.ListRepayments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) ListInterestRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.Loans.ListInterestRuns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) AccrueInterest(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Loans.AccrueMonthlyInterest(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
