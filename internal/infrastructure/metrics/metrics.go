package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	CreditsPurchased prometheus.Counter
	CreditsUsed      prometheus.Counter
	CreditsExpired   prometheus.Counter
	DebitsRejected   prometheus.Counter
	LedgerErrors     *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter

	// Request metrics
	RequestsSubmitted  prometheus.Counter
	RequestsCancelled  prometheus.Counter
	RequestTransitions *prometheus.CounterVec

	// Sweep metrics
	SweepRuns     prometheus.Counter
	SweepSkipped  prometheus.Counter
	SweepErrors   prometheus.Counter
	SweepDuration prometheus.Histogram

	// Notification metrics
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		CreditsPurchased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_credits_purchased_total",
			Help: "Total credits purchased",
		}),
		CreditsUsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_credits_used_total",
			Help: "Total credits debited for service requests",
		}),
		CreditsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_credits_expired_total",
			Help: "Total credits removed by expiry",
		}),
		DebitsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_debits_rejected_total",
			Help: "Total debits rejected for insufficient balance",
		}),
		LedgerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditdesk_ledger_errors_total",
				Help: "Total ledger errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Request metrics
		RequestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_requests_submitted_total",
			Help: "Total service requests submitted",
		}),
		RequestsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_requests_cancelled_total",
			Help: "Total service requests cancelled",
		}),
		RequestTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditdesk_request_transitions_total",
				Help: "Total request status transitions",
			},
			[]string{"to"},
		),

		// Sweep metrics
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_sweep_runs_total",
			Help: "Total sweep runs",
		}),
		SweepSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_sweep_skipped_total",
			Help: "Total sweeps skipped because one was already running",
		}),
		SweepErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_sweep_errors_total",
			Help: "Total per-item errors during sweeps",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditdesk_sweep_duration_seconds",
			Help:    "Duration of sweep runs",
			Buckets: prometheus.DefBuckets,
		}),

		// Notification metrics
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_notifications_sent_total",
			Help: "Total notifications delivered",
		}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creditdesk_notifications_failed_total",
			Help: "Total notifications that failed delivery",
		}),
	}
}
