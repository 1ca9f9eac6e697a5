package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter
	Logins          *prometheus.CounterVec
	WebhookEvents   *prometheus.CounterVec
	CheckoutUpserts prometheus.Counter
	RequestLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_users_registered_total",
			Help: "Total number of user accounts created",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coursegate_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coursegate_webhook_events_total",
			Help: "Processor webhook deliveries by outcome",
		}, []string{"outcome"}),
		CheckoutUpserts: factory.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_checkout_upserts_total",
			Help: "Reconciled checkout records written",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursegate_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
