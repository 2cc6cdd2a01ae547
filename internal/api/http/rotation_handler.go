package http

import (
	"net/http"
	"strconv"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
)

func (h *Handler) RotationStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Rotation.RotationStatus(r.Context()))
}

func (h *Handler) ExecutePayout(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Rotation.ExecutePayout(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListPayouts returns the group's payout history, optionally for one member.
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	scope := domain.AllMembers()
	if raw := r.URL.Query().Get("member_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			writeError(w, r, domain.NewValidationError(domain.RuleInvalidInput, "invalid member_id"))
			return
		}
		scope = domain.ForMember(int32(id))
	}

	payouts, err := h.svc.Ledger.ListPayouts(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}
	writeJSON(w, http.StatusOK, payouts)
}
