// Package metrics exposes tracker counters through the OpenTelemetry
// Prometheus exporter. Served at /metrics by the HTTP server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TrackerMetrics 跟踪器指标集合
type TrackerMetrics struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry

	JobsSubmitted        metric.Int64Counter
	JobsCompleted        metric.Int64Counter
	JobsFailed           metric.Int64Counter
	TransitionsPublished metric.Int64Counter
	CorpusInserts        metric.Int64Counter
	ActiveSubscribers    metric.Int64UpDownCounter
}

// NewTrackerMetrics 创建指标集合并注册到独立的Prometheus registry
func NewTrackerMetrics() (*TrackerMetrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("synthesis-tracker")

	m := &TrackerMetrics{provider: provider, registry: registry}

	if m.JobsSubmitted, err = meter.Int64Counter("synthesis_jobs_submitted_total",
		metric.WithDescription("Jobs created by Submit")); err != nil {
		return nil, err
	}
	if m.JobsCompleted, err = meter.Int64Counter("synthesis_jobs_completed_total",
		metric.WithDescription("Jobs that reached the complete stage")); err != nil {
		return nil, err
	}
	if m.JobsFailed, err = meter.Int64Counter("synthesis_jobs_failed_total",
		metric.WithDescription("Jobs that reached the error stage")); err != nil {
		return nil, err
	}
	if m.TransitionsPublished, err = meter.Int64Counter("synthesis_transitions_published_total",
		metric.WithDescription("Stage transitions fanned out to subscribers")); err != nil {
		return nil, err
	}
	if m.CorpusInserts, err = meter.Int64Counter("corpus_inserts_total",
		metric.WithDescription("Entries appended to the corpus store")); err != nil {
		return nil, err
	}
	if m.ActiveSubscribers, err = meter.Int64UpDownCounter("push_subscribers_active",
		metric.WithDescription("Currently registered push subscribers")); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler 返回/metrics的HTTP处理器
func (m *TrackerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown 关闭meter provider
func (m *TrackerMetrics) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
