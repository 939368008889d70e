package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IssuesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_issues_created_total",
		Help: "Total issues created",
	})
	DuplicatesRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_duplicates_rejected_total",
		Help: "Issue creations rejected as spatial duplicates",
	})
	StatusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reportit_status_transitions_total",
		Help: "Applied issue status transitions by target status",
	}, []string{"to"})
	InvalidTransitionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_invalid_transitions_total",
		Help: "Rejected illegal status transitions",
	})
	AssignmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_assignments_total",
		Help: "Issue-to-official assignments recorded",
	})
	PushSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_push_sent_total",
		Help: "Push notifications delivered per token",
	})
	PushFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_push_failed_total",
		Help: "Push notification delivery failures per token",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_cache_hits_total",
		Help: "Cache hits on cached list responses",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportit_cache_misses_total",
		Help: "Cache misses on cached list responses",
	})
)

func init() {
	prometheus.MustRegister(
		IssuesCreatedTotal,
		DuplicatesRejectedTotal,
		StatusTransitionsTotal,
		InvalidTransitionsTotal,
		AssignmentsTotal,
		PushSentTotal,
		PushFailedTotal,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
