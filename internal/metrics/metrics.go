package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_remediator_polls_total",
			Help: "Total polls against the alert source",
		},
	)

	PollErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_remediator_poll_errors_total",
			Help: "Polls that failed (transport, status or decode errors)",
		},
	)

	MatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_remediator_alerts_matched_total",
			Help: "Alerts that passed the allow-list and active-state filter",
		}, []string{"alertname"},
	)

	RemediationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_remediator_remediations_total",
			Help: "Remediation attempts grouped by action and result",
		}, []string{"action", "result"},
	)

	Leader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_remediator_leader",
			Help: "1 while this replica holds the lease, 0 otherwise",
		},
	)

	RenewalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_remediator_lease_renewals_total",
			Help: "Lease acquire/renew attempts grouped by result",
		}, []string{"result"},
	)
)

func MustRegister() {
	prometheus.MustRegister(PollsTotal, PollErrors, MatchedTotal, RemediationsTotal, Leader, RenewalsTotal)
}

func Handler() http.Handler { return promhttp.Handler() }
