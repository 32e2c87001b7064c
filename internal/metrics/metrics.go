// Package metrics exposes settlement, sweep and HTTP counters for prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"equb-app-go/internal/domain/apperr"
	attendancedomain "equb-app-go/internal/domain/attendance"
	payoutdomain "equb-app-go/internal/domain/payout"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "equb"

type Metrics struct {
	registry *prometheus.Registry

	payoutsSettled  *prometheus.CounterVec
	payoutsRejected *prometheus.CounterVec
	payoutAmount    *prometheus.CounterVec
	equbsCompleted  prometheus.Counter

	sweepRuns     prometheus.Counter
	sweepPeriods  prometheus.Counter
	sweepMarked   prometheus.Counter
	sweepFailures prometheus.Counter
	sweepDuration prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New builds a registry holding the application collectors plus the go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		payoutsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_settled_total",
			Help:      "Payouts committed, by winner selection method.",
		}, []string{"method"}),
		payoutsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_rejected_total",
			Help:      "Settlement attempts that did not commit, by method and error kind.",
		}, []string{"method", "kind"}),
		payoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_amount_total",
			Help:      "Sum of committed payout amounts in base units.",
		}, []string{"method"}),
		equbsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "equbs_completed_total",
			Help:      "Equbs whose cycle finished with the last settlement.",
		}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Missed-attendance sweep runs.",
		}),
		sweepPeriods: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "periods_total",
			Help:      "Periods closed by the sweep.",
		}),
		sweepMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "marked_total",
			Help:      "Attendance rows inserted as MISSED by the sweep.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "failures_total",
			Help:      "Periods the sweep failed to close.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Wall time of a sweep run.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.payoutsSettled,
		m.payoutsRejected,
		m.payoutAmount,
		m.equbsCompleted,
		m.sweepRuns,
		m.sweepPeriods,
		m.sweepMarked,
		m.sweepFailures,
		m.sweepDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) PayoutSettled(method payoutdomain.Method, amount decimal.Decimal, completed bool) {
	m.payoutsSettled.WithLabelValues(string(method)).Inc()
	m.payoutAmount.WithLabelValues(string(method)).Add(amount.InexactFloat64())
	if completed {
		m.equbsCompleted.Inc()
	}
}

func (m *Metrics) PayoutRejected(method payoutdomain.Method, err error) {
	m.payoutsRejected.WithLabelValues(string(method), string(apperr.KindOf(err))).Inc()
}

func (m *Metrics) ObserveSweep(result attendancedomain.SweepResult, duration time.Duration) {
	m.sweepRuns.Inc()
	m.sweepPeriods.Add(float64(result.Periods))
	m.sweepMarked.Add(float64(result.Marked))
	m.sweepFailures.Add(float64(result.Failed))
	m.sweepDuration.Observe(duration.Seconds())
}

// Middleware counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
