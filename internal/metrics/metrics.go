package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger collectors. A nil *Metrics records nothing.
type Metrics struct {
	payoutsTotal    *prometheus.CounterVec
	potPaidTotal    prometheus.Counter
	payoutWarnings  prometheus.Counter
	loanRequests    *prometheus.CounterVec
	loanTransitions *prometheus.CounterVec
	readDegraded    *prometheus.CounterVec
	interestAccrued prometheus.Counter
	interestLoans   prometheus.Counter
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.payoutsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "njangi_payouts_total",
			Help: "payouts executed, by execution path",
		},
		[]string{"path"},
	)
	m.potPaidTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "njangi_pot_paid_total",
			Help: "sum of pot amounts paid out",
		},
	)
	m.payoutWarnings = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "njangi_payout_receipt_failures_total",
			Help: "payouts whose receipt insert failed after the rotation advanced",
		},
	)
	m.loanRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "njangi_loan_requests_total",
			Help: "loan requests by outcome",
		},
		[]string{"outcome"},
	)
	m.loanTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "njangi_loan_transitions_total",
			Help: "loan status transitions",
		},
		[]string{"to"},
	)
	m.readDegraded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "njangi_store_read_degraded_total",
			Help: "aggregation reads that failed and contributed zero",
		},
		[]string{"table"},
	)
	m.interestAccrued = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "njangi_interest_accrued_total",
			Help: "interest added to active loans by monthly accrual",
		},
	)
	m.interestLoans = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "njangi_interest_accrued_loans_total",
			Help: "loans touched by monthly accrual",
		},
	)
	m.jobRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "njangi_job_runs_total",
			Help: "batch job runs by job and result",
		},
		[]string{"job", "result"},
	)
	m.jobDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "njangi_job_duration_seconds",
			Help:    "batch job duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	return m
}

func (m *Metrics) PayoutExecuted(amount int64, viaProcedure bool) {
	if m == nil {
		return
	}
	path := "transaction"
	if viaProcedure {
		path = "procedure"
	}
	m.payoutsTotal.WithLabelValues(path).Inc()
	m.potPaidTotal.Add(float64(amount))
}

func (m *Metrics) PayoutReceiptFailed() {
	if m == nil {
		return
	}
	m.payoutWarnings.Inc()
}

// LoanRequest records "accepted" or the rejecting rule name.
func (m *Metrics) LoanRequest(outcome string) {
	if m == nil {
		return
	}
	m.loanRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LoanTransition(to string) {
	if m == nil {
		return
	}
	m.loanTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) ReadDegraded(table string) {
	if m == nil {
		return
	}
	m.readDegraded.WithLabelValues(table).Inc()
}

func (m *Metrics) InterestAccrued(amount int64, loans int) {
	if m == nil {
		return
	}
	m.interestAccrued.Add(float64(amount))
	m.interestLoans.Add(float64(loans))
}

func (m *Metrics) JobRun(job string, seconds float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}
