// Package metrics exposes Prometheus collectors for repository operations and
// page render passes.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-crudform/pkg/repository"
)

const namespace = "crudform"

// Metrics owns a private registry so several instances can coexist.
type Metrics struct {
	registry *prometheus.Registry

	repoOps      *prometheus.CounterVec
	repoDuration *prometheus.HistogramVec
	renders      *prometheus.HistogramVec
}

// New registers the collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		repoOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Repository operations by entity, operation and outcome.",
		}, []string{"entity", "op", "outcome"}),
		repoDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Repository operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "op"}),
		renders: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Render pass latency by section and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"section", "outcome"}),
	}
	m.registry.MustRegister(
		m.repoOps,
		m.repoDuration,
		m.renders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRender records one render pass that started at start.
func (m *Metrics) ObserveRender(section string, start time.Time, err error) {
	m.renders.WithLabelValues(section, outcome(err)).Observe(time.Since(start).Seconds())
}

// outcome labels an error by repository failure kind.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := repository.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

// Repository counts and times every call of an inner repository.
type Repository[T any] struct {
	inner   repository.Repository[T]
	entity  string
	metrics *Metrics
}

var _ repository.Repository[struct{}] = (*Repository[struct{}])(nil)

// WrapRepository decorates inner. entity labels the series.
func WrapRepository[T any](m *Metrics, inner repository.Repository[T], entity string) *Repository[T] {
	return &Repository[T]{inner: inner, entity: entity, metrics: m}
}

func (r *Repository[T]) observe(op string, start time.Time, err error) {
	r.metrics.repoOps.WithLabelValues(r.entity, op, outcome(err)).Inc()
	r.metrics.repoDuration.WithLabelValues(r.entity, op).Observe(time.Since(start).Seconds())
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	items, err := r.inner.GetAll(ctx)
	r.observe(repository.OpGetAll, start, err)
	return items, err
}

func (r *Repository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	start := time.Now()
	item, err := r.inner.GetByID(ctx, id)
	r.observe(repository.OpGetByID, start, err)
	return item, err
}

func (r *Repository[T]) Add(ctx context.Context, item *T) (*T, error) {
	start := time.Now()
	out, err := r.inner.Add(ctx, item)
	r.observe(repository.OpAdd, start, err)
	return out, err
}

func (r *Repository[T]) Update(ctx context.Context, item *T) (*T, error) {
	start := time.Now()
	out, err := r.inner.Update(ctx, item)
	r.observe(repository.OpUpdate, start, err)
	return out, err
}

func (r *Repository[T]) Delete(ctx context.Context, item *T) error {
	start := time.Now()
	err := r.inner.Delete(ctx, item)
	r.observe(repository.OpDelete, start, err)
	return err
}
