package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "supportdesk"

// Domain Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of document searches",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TicketsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_created_total",
			Help:      "Total number of support tickets written to the ticket file",
		},
	)

	DocumentsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents_loaded",
			Help:      "Number of documents currently held in memory",
		},
		[]string{"kind"},
	)

	DocumentLoadWarningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_load_warnings_total",
			Help:      "Total number of warnings recorded while loading documents",
		},
	)

	SessionsPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_pruned_total",
			Help:      "Total number of idle chat sessions deleted",
		},
	)
)

func init() {
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(TicketsCreatedTotal)
	prometheus.MustRegister(DocumentsLoaded)
	prometheus.MustRegister(DocumentLoadWarningsTotal)
	prometheus.MustRegister(SessionsPrunedTotal)
}

func ObserveSearch(hits int) {
	if hits > 0 {
		SearchesTotal.WithLabelValues("hit").Inc()
		return
	}
	SearchesTotal.WithLabelValues("miss").Inc()
}
