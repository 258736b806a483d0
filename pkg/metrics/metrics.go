package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AlertRulesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_rules_active",
			Help: "Number of active alert rules (count)",
		},
	)

	AlertRuleMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_rule_mutations_total",
			Help: "Total number of alert rule mutations (count)",
		},
		[]string{"action", "status"},
	)

	AlertsCurrent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alerts_current",
			Help: "Number of alerts produced by the latest materialization (count)",
		},
	)

	AlertsUnread = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alerts_unread",
			Help: "Number of unread current alerts (count)",
		},
	)

	AlertsMaterializedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_materialized_total",
			Help: "Total number of alerts produced across materialization passes (count)",
		},
		[]string{"severity"},
	)

	AlertsDismissedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_dismissed_total",
			Help: "Total number of dismissed alerts (count)",
		},
	)

	MaterializeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alerts_materialize_duration_ms",
			Help:    "Duration of one alert materialization pass in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	SummaryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_requests_total",
			Help: "Total number of summary requests by outcome (count)",
		},
		[]string{"status"},
	)

	SummaryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_duration_ms",
			Help:    "Duration of summary generation in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"status"},
	)

	SummaryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_total",
			Help: "Summary cache lookups (count)",
		},
		[]string{"result"},
	)

	NotificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of events published to the broker (count)",
		},
		[]string{"event_type", "status"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)

	SalesRecordsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sales_records_loaded",
			Help: "Number of sale records in the session (count)",
		},
		[]string{"source"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AlertRulesActive,
			AlertRuleMutationsTotal,
			AlertsCurrent,
			AlertsUnread,
			AlertsMaterializedTotal,
			AlertsDismissedTotal,
			MaterializeDuration,
			SummaryRequestsTotal,
			SummaryDuration,
			SummaryCacheTotal,
			NotificationsPublishedTotal,
			KafkaWriteDuration,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RateLimitRequestsTotal,
			RetryAttemptsTotal,
			DatabaseQueriesTotal,
			DatabaseQueryDuration,
			SalesRecordsLoaded,
		)
	})
}

func SetActiveRules(count int) {
	AlertRulesActive.Set(float64(count))
}

func IncRuleMutation(action, status string) {
	AlertRuleMutationsTotal.WithLabelValues(action, status).Inc()
}

func SetCurrentAlerts(total, unread int) {
	AlertsCurrent.Set(float64(total))
	AlertsUnread.Set(float64(unread))
}

func IncAlertMaterialized(severity string) {
	AlertsMaterializedTotal.WithLabelValues(severity).Inc()
}

func AddAlertsDismissed(n int) {
	AlertsDismissedTotal.Add(float64(n))
}

func ObserveMaterializeDuration(duration time.Duration) {
	MaterializeDuration.Observe(float64(duration.Microseconds()) / 1000)
}

func IncSummaryRequest(status string) {
	SummaryRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveSummaryDuration(status string, duration time.Duration) {
	SummaryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncSummaryCache(result string) {
	SummaryCacheTotal.WithLabelValues(result).Inc()
}

func IncNotificationPublished(eventType, status string) {
	NotificationsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

func ObserveKafkaWriteDuration(topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}

func IncRetryAttempt(operation string) {
	RetryAttemptsTotal.WithLabelValues(operation).Inc()
}

func IncDatabaseQuery(database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(duration.Milliseconds()))
}

func SetSalesRecordsLoaded(source string, count int) {
	SalesRecordsLoaded.WithLabelValues(source).Set(float64(count))
}
