package http

import (
	"net/http"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
)

type createContributionRequest struct {
	MemberID int32  `json:"member_id"`
	Amount   Amount `json:"amount"`
	Kind     string `json:"kind,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type createFoundationPaymentRequest struct {
	MemberID      int32      `json:"member_id"`
	AmountPaid    Amount     `json:"amount_paid"`
	AmountPending Amount     `json:"amount_pending"`
	Status        string     `json:"status,omitempty"`
	DatePaid      *time.Time `json:"date_paid,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

type createFineRequest struct {
	MemberID int32  `json:"member_id"`
	Amount   Amount `json:"amount"`
	Reason   string `json:"reason"`
	Status   string `json:"status,omitempty"`
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	scope, err := h.listScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.Ledger.ListContributions(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.Contribution{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	var req createContributionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := &domain.Contribution{MemberID: req.MemberID, Amount: int64(req.Amount), Kind: req.Kind, Notes: req.Notes}
	if err := h.svc.Ledger.AddContribution(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListFoundationPayments(w http.ResponseWriter, r *http.Request) {
	scope, err := h.listScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.Ledger.ListFoundationPayments(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.FoundationPayment{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateFoundationPayment(w http.ResponseWriter, r *http.Request) {
	var req createFoundationPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := &domain.FoundationPayment{
		MemberID:      req.MemberID,
		AmountPaid:    int64(req.AmountPaid),
		AmountPending: int64(req.AmountPending),
		Status:        domain.FoundationStatus(req.Status),
		Notes:         req.Notes,
	}
	if req.DatePaid != nil {
		p.DatePaid = req.DatePaid.UTC()
	}
	if err := h.svc.Ledger.AddFoundationPayment(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListFines(w http.ResponseWriter, r *http.Request) {
	scope, err := h.listScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.Ledger.ListFines(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.Fine{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateFine(w http.ResponseWriter, r *http.Request) {
	var req createFineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	f := &domain.Fine{MemberID: req.MemberID, Amount: int64(req.Amount), Reason: req.Reason, Status: domain.FineStatus(req.Status)}
	if err := h.svc.Ledger.AddFine(r.Context(), f); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}
