package http

import (
	"fmt"
	"net/http"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
)

type createMemberRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	RotationPosition *int32 `json:"rotation_position,omitempty"`
}

type summaryResponse struct {
	domain.Totals
	FoundationPaidPlusRepaid int64 `json:"foundation_paid_plus_repaid"`
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.Members.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if members == nil {
		members = []domain.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m := &domain.Member{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		RotationPosition: req.RotationPosition,
	}
	if err := h.svc.Members.AddMember(r.Context(), m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Members.Deactivate(r.Context(), int32(id)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": false})
}

// memberForCaller loads the member in the path after checking the caller may see it.
func (h *Handler) memberForCaller(r *http.Request) (*domain.Member, error) {
	id, err := pathInt(r, "id")
	if err != nil {
		return nil, err
	}
	if !principal(r).CanActFor(int32(id)) {
		return nil, fmt.Errorf("%w: members may only read their own records", domain.ErrForbidden)
	}
	return h.svc.Members.Get(r.Context(), int32(id))
}

func (h *Handler) MemberSummary(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberForCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	scope := domain.ForMember(m.ID)
	since, err := domain.SinceForRange(r.URL.Query().Get("range"), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if since != nil {
		scope = scope.WithSince(*since)
	}

	totals := h.svc.Aggregation.MemberTotals(r.Context(), scope)
	writeJSON(w, http.StatusOK, summaryResponse{Totals: totals, FoundationPaidPlusRepaid: totals.FoundationPaidPlusRepaid()})
}

func (h *Handler) GroupSummary(w http.ResponseWriter, r *http.Request) {
	scope := domain.AllMembers()
	since, err := domain.SinceForRange(r.URL.Query().Get("range"), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if since != nil {
		scope = scope.WithSince(*since)
	}

	totals := h.svc.Aggregation.MemberTotals(r.Context(), scope)
	writeJSON(w, http.StatusOK, summaryResponse{Totals: totals, FoundationPaidPlusRepaid: totals.FoundationPaidPlusRepaid()})
}

func (h *Handler) MemberCapacity(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberForCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Capacity.Capacity(r.Context(), m.ID))
}
