package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Payments collects settlement and reconciliation metrics.
type Payments struct {
	mProcessed      *prometheus.CounterVec
	mRefunds        *prometheus.CounterVec
	mStaleFailed    prometheus.Counter
	mMismatched     prometheus.Gauge
	mReconcileRuns  prometheus.Counter
	mSettleDuration prometheus.Histogram
}

// NewPayments creates the payment metrics. Register the result with a prometheus.Registerer.
func NewPayments() *Payments {
	return &Payments{
		mProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stayledger_payments_processed_total",
			Help: "Processed payments by method and outcome.",
		}, []string{"method", "outcome"}),
		mRefunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stayledger_refunds_total",
			Help: "Refund attempts by outcome.",
		}, []string{"outcome"}),
		mStaleFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_stale_payments_failed_total",
			Help: "Pending payments failed by the reconciler.",
		}),
		mMismatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stayledger_ledger_mismatched_accounts",
			Help: "Accounts whose balance disagreed with the journal on the last reconciliation.",
		}),
		mReconcileRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_reconcile_runs_total",
			Help: "Completed reconciliation runs.",
		}),
		mSettleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stayledger_settle_duration_seconds",
			Help:    "Duration of a single settlement transaction.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
	}
}

// ObservePayment counts one processed payment.
func (m *Payments) ObservePayment(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.mProcessed.WithLabelValues(method, outcome).Inc()
	m.mSettleDuration.Observe(seconds)
}

// ObserveRefund counts one refund attempt.
func (m *Payments) ObserveRefund(outcome string) {
	if m == nil {
		return
	}
	m.mRefunds.WithLabelValues(outcome).Inc()
}

// ObserveReconcile records the result of a reconciliation run.
func (m *Payments) ObserveReconcile(mismatched, staleFailed int) {
	if m == nil {
		return
	}
	m.mReconcileRuns.Inc()
	m.mMismatched.Set(float64(mismatched))
	m.mStaleFailed.Add(float64(staleFailed))
}

func (m *Payments) Describe(ch chan<- *prometheus.Desc) {
	m.mProcessed.Describe(ch)
	m.mRefunds.Describe(ch)
	m.mStaleFailed.Describe(ch)
	m.mMismatched.Describe(ch)
	m.mReconcileRuns.Describe(ch)
	m.mSettleDuration.Describe(ch)
}

func (m *Payments) Collect(ch chan<- prometheus.Metric) {
	m.mProcessed.Collect(ch)
	m.mRefunds.Collect(ch)
	m.mStaleFailed.Collect(ch)
	m.mMismatched.Collect(ch)
	m.mReconcileRuns.Collect(ch)
	m.mSettleDuration.Collect(ch)
}

// check interfaces
var (
	_ prometheus.Collector = (*Payments)(nil)
)
