// Package metrics exposes the prometheus instruments of the escalation
// runner. Registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersSent counts successful reminder sends per stage.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relance_reminders_sent_total",
		Help: "Reminders successfully sent, by stage.",
	}, []string{"stage"})

	// RemindersFailed counts send attempts that errored, per stage.
	RemindersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relance_reminders_failed_total",
		Help: "Reminder send attempts that failed, by stage.",
	}, []string{"stage"})

	// StatusAdvanced counts disabled-stage skips (status bump, no send).
	StatusAdvanced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relance_status_advanced_total",
		Help: "Status advances past disabled stages without a send.",
	})

	// QuotaRejections counts sends refused by the plan quota.
	QuotaRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relance_quota_rejections_total",
		Help: "Sends refused because the owner's plan quota was reached.",
	})

	// TickDuration observes how long a full runner tick takes.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relance_tick_duration_seconds",
		Help:    "Duration of a full escalation runner tick.",
		Buckets: prometheus.DefBuckets,
	})

	// TickReceivables observes how many receivables a tick evaluated.
	TickReceivables = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relance_tick_receivables",
		Help:    "Receivables evaluated per tick.",
		Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
	})
)
