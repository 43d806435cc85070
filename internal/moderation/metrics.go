package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moderation_reports_submitted_total",
			Help: "Total number of user reports submitted",
		},
	)

	trustDeductions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moderation_trust_deduction_points",
			Help:    "Trust points deducted per report",
			Buckets: []float64{2, 4, 10, 20, 50, 100, 198},
		},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Moderation actions by type and whether they changed state",
		},
		[]string{"action", "changed"},
	)

	conflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_conflicts_total",
			Help: "Mutations rejected because the entity changed or stayed locked",
		},
		[]string{"entity"},
	)

	reportsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moderation_reports",
			Help: "Reports per status, refreshed periodically",
		},
		[]string{"status"},
	)

	dashboardClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moderation_dashboard_clients",
			Help: "Connected moderation event feed clients",
		},
	)
)
