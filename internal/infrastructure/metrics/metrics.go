// Package metrics exposes Prometheus collectors for the quote service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "optionquotes"

var _ application.Metrics = (*Registry)(nil)

// Registry owns a private prometheus registry so tests can build as many as they like.
type Registry struct {
	reg *prometheus.Registry

	UpsertRecords   *prometheus.CounterVec
	UpsertBatches   prometheus.Counter
	CleanupRuns     *prometheus.CounterVec
	CleanupDeleted  prometheus.Counter
	CleanupPending  prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	PoolConnections *prometheus.GaugeVec
}

func New(service string) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		UpsertRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "upsert_records_total",
			Help:      "Quote records written, by outcome",
		}, []string{"outcome"}),
		UpsertBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "upsert_batches_total",
			Help:      "Committed upsert batches",
		}),
		CleanupRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "cleanup_runs_total",
			Help:      "Retention cleanup invocations, by mode",
		}, []string{"mode"}),
		CleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "cleanup_deleted_rows_total",
			Help:      "Rows removed by live cleanups",
		}),
		CleanupPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "cleanup_would_delete_rows",
			Help:      "Stale rows reported by the most recent dry run",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PoolConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "db_pool_connections",
			Help:      "Database pool connections, by state",
		}, []string{"state"}),
	}
	r.reg.MustRegister(
		r.UpsertRecords, r.UpsertBatches,
		r.CleanupRuns, r.CleanupDeleted, r.CleanupPending,
		r.HTTPRequests, r.HTTPDuration, r.PoolConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Registry) ObserveUpsert(s domain.UpsertSummary) {
	r.UpsertBatches.Inc()
	r.UpsertRecords.WithLabelValues(string(domain.OutcomeInserted)).Add(float64(s.Inserted))
	r.UpsertRecords.WithLabelValues(string(domain.OutcomeUpdated)).Add(float64(s.Updated))
}

func (r *Registry) ObserveCleanup(res domain.CleanupResult) {
	if res.DryRun {
		r.CleanupRuns.WithLabelValues("dry_run").Inc()
		r.CleanupPending.Set(float64(res.WouldDelete))
		return
	}
	r.CleanupRuns.WithLabelValues("live").Inc()
	r.CleanupDeleted.Add(float64(res.TotalDeleted))
}

func (r *Registry) ObservePool(h domain.HealthStatus) {
	r.PoolConnections.WithLabelValues("total").Set(float64(h.TotalConns))
	r.PoolConnections.WithLabelValues("idle").Set(float64(h.IdleConns))
	r.PoolConnections.WithLabelValues("acquired").Set(float64(h.AcquiredConns))
	r.PoolConnections.WithLabelValues("max").Set(float64(h.MaxConns))
}

func (r *Registry) ObserveHTTP(method, route string, status int, d time.Duration) {
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
