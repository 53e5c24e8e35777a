// Package metrics exposes engine and keeper counters to Prometheus.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dao_gov/contract"
	"dao_gov/keeper"
)

const namespace = "dao"

// Collector holds every metric the daemon exports.
type Collector struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	keeperTicks  prometheus.Counter
	keeperMoves  *prometheus.CounterVec
	keeperErrors prometheus.Counter
	keeperTook   prometheus.Histogram
	keeperCursor prometheus.Gauge
}

var _ keeper.Observer = (*Collector)(nil)

// New creates a collector on its own registry, with the go and process
// collectors attached.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Governance operations by name and result (ok or error code).",
		}, []string{"op", "result"}),
		keeperTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keeper",
			Name:      "ticks_total",
			Help:      "Keeper passes over the proposal list.",
		}),
		keeperMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keeper",
			Name:      "transitions_total",
			Help:      "Proposals moved by the keeper, by resulting status.",
		}, []string{"status"}),
		keeperErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keeper",
			Name:      "errors_total",
			Help:      "Finalize or execute calls the keeper could not complete.",
		}),
		keeperTook: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "keeper",
			Name:      "tick_seconds",
			Help:      "Duration of a keeper pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		keeperCursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "keeper",
			Name:      "cursor",
			Help:      "Lowest proposal id the keeper still watches.",
		}),
	}
	reg.MustRegister(
		c.operations,
		c.keeperTicks,
		c.keeperMoves,
		c.keeperErrors,
		c.keeperTook,
		c.keeperCursor,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveOp matches contract.WithObserver.
func (c *Collector) ObserveOp(op string, err error) {
	c.operations.WithLabelValues(op, result(err)).Inc()
}

func (c *Collector) ObserveTick(r keeper.Report, took time.Duration) {
	c.keeperTicks.Inc()
	c.keeperMoves.WithLabelValues("passed").Add(float64(r.Passed))
	c.keeperMoves.WithLabelValues("failed").Add(float64(r.Failed))
	c.keeperMoves.WithLabelValues("executed").Add(float64(r.Executed))
	c.keeperErrors.Add(float64(r.Errors))
	c.keeperTook.Observe(took.Seconds())
	c.keeperCursor.Set(float64(r.NextStart))
}

// Registry is exposed for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the text exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := contract.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}
