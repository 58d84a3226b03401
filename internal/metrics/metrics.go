package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "razorpay_bridge"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	gatewayCalls      *prometheus.CounterVec
	signatureRejected *prometheus.CounterVec
	webhooks          *prometheus.CounterVec
	apiRequests       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Razorpay API calls by operation and result.",
		}, []string{"op", "result"}),
		signatureRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_rejected_total",
			Help:      "Payment and webhook signatures that failed verification.",
		}, []string{"kind"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Webhook deliveries by resulting action.",
		}, []string{"action"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_operations_total",
			Help:      "Session API operations by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gatewayCalls,
		m.signatureRejected,
		m.webhooks,
		m.apiRequests,
	)
	return m
}

// GatewayCall counts one Razorpay API call.
func (m *Metrics) GatewayCall(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gatewayCalls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) SignatureRejected(kind string) {
	m.signatureRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) WebhookHandled(action string) {
	m.webhooks.WithLabelValues(action).Inc()
}

// APIOperation counts one platform API call; outcome is "ok" or an error kind.
func (m *Metrics) APIOperation(op, outcome string) {
	m.apiRequests.WithLabelValues(op, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
