// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal counts reserve attempts by final outcome:
	// reserved, insufficient_stock, conflict, error.
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gongu",
		Subsystem: "inventory",
		Name:      "reservations_total",
		Help:      "Stock reservation attempts by outcome.",
	}, []string{"outcome"})

	// CASConflictsTotal counts individual lost version races, including the
	// ones a retry later recovered from.
	CASConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gongu",
		Subsystem: "inventory",
		Name:      "cas_conflicts_total",
		Help:      "Optimistic-lock version conflicts on stock writes.",
	})

	// CampaignsClosedTotal counts close transitions by reason.
	CampaignsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gongu",
		Subsystem: "lifecycle",
		Name:      "campaigns_closed_total",
		Help:      "Campaign close transitions by reason.",
	}, []string{"reason"})

	// SignalsConsumedTotal counts lifecycle signals drained from the queue.
	SignalsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gongu",
		Subsystem: "lifecycle",
		Name:      "signals_consumed_total",
		Help:      "Lifecycle signals consumed by kind.",
	}, []string{"kind"})
)
