package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
)

// Rule names for failures that do not come from a ValidationError.
const (
	ruleInvalidRequest   = "invalid_request"
	ruleUnauthenticated  = "unauthenticated"
	ruleForbidden        = "forbidden"
	ruleNotFound         = "not_found"
	ruleInvalidState     = "invalid_state"
	ruleRotationConflict = "rotation_conflict"
	ruleStoreUnavailable = "store_unavailable"
	ruleInternal         = "internal"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Rule    string   `json:"rule"`
	Reasons []string `json:"reasons,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeFailure(w http.ResponseWriter, status int, rule, msg string, reasons ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Rule: rule, Reasons: reasons})
}

// statusFor maps the error taxonomy onto HTTP status codes and a rule name.
func statusFor(err error) (int, errorResponse) {
	var validation *domain.ValidationError
	var state *domain.StateError
	var store *domain.StoreError

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Rule: validation.Rule, Reasons: validation.Reasons}
	case errors.As(err, &state):
		return http.StatusConflict, errorResponse{Error: err.Error(), Rule: ruleInvalidState}
	case errors.Is(err, domain.ErrRotationConflict):
		return http.StatusConflict, errorResponse{Error: err.Error(), Rule: ruleRotationConflict}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Rule: ruleNotFound}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Rule: ruleForbidden}
	case errors.As(err, &store):
		return http.StatusBadGateway, errorResponse{Error: "ledger store unavailable", Rule: ruleStoreUnavailable}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error", Rule: ruleInternal}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	switch {
	case status == http.StatusBadGateway:
		logger.WarnContext(r.Context(), "Ledger store unavailable", "path", r.URL.Path, "status", status, "error", err)
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "status", status, "error", err)
	default:
		logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "rule", body.Rule)
	}
	writeJSON(w, status, body)
}
