package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
)

const namespace = "securebank"

// Metrics holds the ledger's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Ledger metrics
	TransactionsTotal   *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	TransactionAmount   *prometheus.HistogramVec
	AccountsOpened      *prometheus.CounterVec

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPInFlight     prometheus.Gauge
	RateLimitHits    prometheus.Counter
	IdempotentReplay prometheus.Counter

	// Worker metrics
	AsyncTasks *prometheus.CounterVec
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return NewWithRegisterer(registry, registry)
}

// NewWithRegisterer registers the collectors with reg. registry backs Handler;
// when nil, Handler falls back to the default gatherer.
func NewWithRegisterer(reg prometheus.Registerer, registry *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: registry,

		TransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Ledger operations by type and final status",
			},
			[]string{"type", "status"},
		),
		TransactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_duration_seconds",
				Help:      "Duration of ledger operations including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_amount",
				Help:      "Amounts of ledger operations",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		AccountsOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accounts_opened_total",
				Help:      "Accounts opened by account type",
			},
			[]string{"account_type"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		IdempotentReplay: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency store",
		}),

		AsyncTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "async_tasks_total",
				Help:      "Queued ledger tasks by type and result",
			},
			[]string{"type", "result"},
		),
	}
}

// ObserveTransaction records one finished ledger operation.
func (m *Metrics) ObserveTransaction(txType domain.TransactionType, status domain.TransactionStatus, amount decimal.Decimal, duration time.Duration) {
	m.TransactionsTotal.WithLabelValues(string(txType), string(status)).Inc()
	m.TransactionDuration.WithLabelValues(string(txType)).Observe(duration.Seconds())
	m.TransactionAmount.WithLabelValues(string(txType)).Observe(amount.InexactFloat64())
}

// ObserveAccountOpened records an opened account.
func (m *Metrics) ObserveAccountOpened(accountType domain.AccountType) {
	m.AccountsOpened.WithLabelValues(string(accountType)).Inc()
}

// ObserveAsyncTask records the outcome of a queued ledger task.
func (m *Metrics) ObserveAsyncTask(taskType, result string) {
	m.AsyncTasks.WithLabelValues(taskType, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
