// File: internal/platform/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IntroductionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_introduction_events_total",
			Help: "Introduction lifecycle events by outcome",
		},
		[]string{"event"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carmatch_query_duration_seconds",
			Help:    "Duration of search and match queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carmatch_query_result_total",
			Help:    "Total matching rows reported by search and match queries",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
		},
		[]string{"query"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_notifications_sent_total",
			Help: "Outbound notification attempts by channel and result",
		},
		[]string{"channel", "result"},
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_catalog_lookups_total",
			Help: "Reference catalog lookups by source (cache, upstream, stale)",
		},
		[]string{"source"},
	)
)

const (
	EventIntroductionCreated  = "created"
	EventIntroductionAccepted = "accepted"
	EventIntroductionRejected = "rejected"
	EventIntroductionExpired  = "expired"
	EventIntroductionConflict = "conflict"

	QuerySearch = "search"
	QueryMatch  = "match"
)

// ObserveQuery records the duration and total of a search or match query.
func ObserveQuery(query string, started time.Time, total int64) {
	QueryDuration.WithLabelValues(query).Observe(time.Since(started).Seconds())
	QueryResults.WithLabelValues(query).Observe(float64(total))
}

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
