package observability

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics tracks stock ledger activity.
type LedgerMetrics struct {
	adjustments    *prometheus.CounterVec
	logFailures    prometheus.Counter
	logRetries     prometheus.Counter
	bulkItemsTotal *prometheus.CounterVec
}

// NewLedgerMetrics registers stock ledger metrics on the given registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_stock_adjustments_total",
			Help: "Applied stock adjustments by change type.",
		}, []string{"change_type"}),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_inventory_log_failures_total",
			Help: "Audit log appends that failed after the stock write committed.",
		}),
		logRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_inventory_log_retries_total",
			Help: "Audit log appends replayed by the retry queue.",
		}),
		bulkItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_stock_bulk_items_total",
			Help: "Bulk adjustment items by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.adjustments, m.logFailures, m.logRetries, m.bulkItemsTotal)
	}
	return m
}

// AdjustmentApplied counts one applied mutation.
func (m *LedgerMetrics) AdjustmentApplied(changeType string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(changeType).Inc()
}

// LogAppendFailed counts a best-effort audit append failure.
func (m *LedgerMetrics) LogAppendFailed() {
	if m == nil {
		return
	}
	m.logFailures.Inc()
}

// LogRetryReplayed counts a successful replay from the retry queue.
func (m *LedgerMetrics) LogRetryReplayed() {
	if m == nil {
		return
	}
	m.logRetries.Inc()
}

// BulkItem counts one bulk item outcome ("ok" or "failed").
func (m *LedgerMetrics) BulkItem(outcome string) {
	if m == nil {
		return
	}
	m.bulkItemsTotal.WithLabelValues(outcome).Inc()
}
