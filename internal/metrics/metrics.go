package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

type Metrics struct {
	notifications   *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	OutboxPending   prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipn_notifications_total",
				Help: "Processed payment notifications by disposition and error code",
			},
			[]string{"disposition", "code"},
		),
		processDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ipn_processing_duration_seconds",
				Help:    "Time spent processing one payment notification",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"disposition"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		OutboxPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ipn_outbox_pending_events",
				Help: "Settlement events waiting to be produced",
			},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.notifications, m.processDuration, m.httpRequests, m.httpDuration, m.OutboxPending} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveNotification(d pkgerrors.Disposition, code int, elapsed time.Duration) {
	label := "0"
	if d != pkgerrors.DispositionAccepted {
		label = strconv.Itoa(code)
	}
	m.notifications.WithLabelValues(d.String(), label).Inc()
	m.processDuration.WithLabelValues(d.String()).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, endpoint string, status int, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}
