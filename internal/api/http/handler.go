package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/service"
	"github.com/Marceldinga/TheYoungShallGrow/internal/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the operations exposed over HTTP
type Services struct {
	Aggregation service.AggregationService
	Capacity    service.CapacityService
	Rotation    service.RotationService
	Loans       service.LoanService
	Members     service.MemberService
	Ledger      service.LedgerService
}

// Handler serves the JSON API
type Handler struct {
	svc Services
	now func() time.Time
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// NewRouter wires every named route behind the request logger and auth middleware.
// gatherer may be nil, in which case /metrics is not served.
func NewRouter(h *Handler, auth *AuthMiddleware, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger)
	router.Use(auth.Middleware)

	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet).Name("healthz")
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("metrics")
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rotation", h.RotationStatus).Methods(http.MethodGet).Name("rotation.status")
	api.HandleFunc("/rotation/payout", h.ExecutePayout).Methods(http.MethodPost).Name("rotation.payout")
	api.HandleFunc("/payouts", h.ListPayouts).Methods(http.MethodGet).Name("payouts.list")

	api.HandleFunc("/members", h.ListMembers).Methods(http.MethodGet).Name("members.list")
	api.HandleFunc("/members", h.CreateMember).Methods(http.MethodPost).Name("members.create")
	api.HandleFunc("/members/{id:[0-9]+}/deactivate", h.DeactivateMember).Methods(http.MethodPost).Name("members.deactivate")
	api.HandleFunc("/members/{id:[0-9]+}/summary", h.MemberSummary).Methods(http.MethodGet).Name("members.summary")
	api.HandleFunc("/members/{id:[0-9]+}/capacity", h.MemberCapacity).Methods(http.MethodGet).Name("members.capacity")
	api.HandleFunc("/summary", h.GroupSummary).Methods(http.MethodGet).Name("summary.all")

	api.HandleFunc("/contributions", h.ListContributions).Methods(http.MethodGet).Name("contributions.list")
	api.HandleFunc("/contributions", h.CreateContribution).Methods(http.MethodPost).Name("contributions.create")
	api.HandleFunc("/foundation-payments", h.ListFoundationPayments).Methods(http.MethodGet).Name("foundation_payments.list")
	api.HandleFunc("/foundation-payments", h.CreateFoundationPayment).Methods(http.MethodPost).Name("foundation_payments.create")
	api.HandleFunc("/fines", h.ListFines).Methods(http.MethodGet).Name("fines.list")
	api.HandleFunc("/fines", h.CreateFine).Methods(http.MethodPost).Name("fines.create")

	api.HandleFunc("/loans/eligibility", h.CheckEligibility).Methods(http.MethodPost).Name("loans.eligibility")
	api.HandleFunc("/loans/accrue-interest", h.AccrueInterest).Methods(http.MethodPost).Name("loans.accrue_interest")
	api.HandleFunc("/loans/interest-runs", h.ListInterestRuns).Methods(http.MethodGet).Name("loans.interest_runs")
	api.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet).Name("loans.list")
	api.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost).Name("loans.create")
	api.HandleFunc("/loans/{id:[0-9]+}", h.GetLoan).Methods(http.MethodGet).Name("loans.get")
	api.HandleFunc("/loans/{id:[0-9]+}/approve", h.ApproveLoan).Methods(http.MethodPost).Name("loans.approve")
	api.HandleFunc("/loans/{id:[0-9]+}/reject", h.RejectLoan).Methods(http.MethodPost).Name("loans.reject")
	api.HandleFunc("/loans/{id:[0-9]+}/issue", h.IssueLoan).Methods(http.MethodPost).Name("loans.issue")
	api.HandleFunc("/loans/{id:[0-9]+}/close", h.CloseLoan).Methods(http.MethodPost).Name("loans.close")
	api.HandleFunc("/loans/{id:[0-9]+}/repayments", h.RecordRepayment).Methods(http.MethodPost).Name("loans.repayments")
	api.HandleFunc("/loans/{id:[0-9]+}/repayments", h.ListRepayments).Methods(http.MethodGet).Name("loans.repayments.list")

	return router
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Amount accepts either a JSON number or a string such as "1,500".
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*a = Amount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("amount must be a number or a string")
	}
	v, err := utils.ParseAmount(s)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, ruleInvalidRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathInt(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(domain.RuleInvalidInput, fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

func principal(r *http.Request) Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}

// listScope resolves the member filter of a listing: members only see their own rows,
// admins see everything unless member_id is given.
func (h *Handler) listScope(r *http.Request) (domain.Scope, error) {
	p := principal(r)
	scope := domain.AllMembers()

	if raw := r.URL.Query().Get("member_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return scope, domain.NewValidationError(domain.RuleInvalidInput, "invalid member_id")
		}
		scope = domain.ForMember(int32(id))
	}
	if !p.Admin {
		if scope.MemberID != nil && *scope.MemberID != p.MemberID {
			return scope, fmt.Errorf("%w: members may only read their own records", domain.ErrForbidden)
		}
		scope = domain.ForMember(p.MemberID)
	}

	since, err := domain.SinceForRange(r.URL.Query().Get("range"), h.now())
	if err != nil {
		return scope, err
	}
	if since != nil {
		scope = scope.WithSince(*since)
	}
	return scope, nil
}
