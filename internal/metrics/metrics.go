package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GuardFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotdesk_guard_failures_total",
		Help: "Guard chain stops by action and failed precondition tag.",
	}, []string{"action", "tag"})

	Syncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotdesk_syncs_total",
		Help: "Read-model resynchronizations by scope.",
	}, []string{"scope"})

	SyncSectionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotdesk_sync_section_errors_total",
		Help: "Independently caught failures per sync section.",
	}, []string{"section"})

	TxSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotdesk_tx_submitted_total",
		Help: "Mutating calls submitted to the ledger by action.",
	}, []string{"action"})

	TxFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotdesk_tx_failed_total",
		Help: "Mutating calls rejected by the ledger by action.",
	}, []string{"action"})

	EventsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotdesk_events_received_total",
		Help: "Contract notifications received by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		GuardFailures,
		Syncs,
		SyncSectionErrors,
		TxSubmitted,
		TxFailed,
		EventsReceived,
	)
}

// Handler exposes the default registry for the optional metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
