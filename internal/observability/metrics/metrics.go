package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides application metrics instruments.
var Module = fx.Provide(New)

// Metrics exposes application-level instruments.
type Metrics struct {
	resolutions  *prometheus.CounterVec
	quotaResults *prometheus.CounterVec
	publicDenied prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_entitlement_resolutions_total",
			Help: "Entitlement resolutions by provenance tier.",
		}, []string{"source"}),
		quotaResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_quota_consumptions_total",
			Help: "Quota consumption verdicts.",
		}, []string{"result"}),
		publicDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_public_rate_limited_total",
			Help: "Public requests rejected by the token bucket.",
		}),
	}

	prometheus.MustRegister(m.resolutions, m.quotaResults, m.publicDenied)
	return m
}

func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveQuota(result string) {
	if m == nil {
		return
	}
	m.quotaResults.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePublicRateLimited() {
	if m == nil {
		return
	}
	m.publicDenied.Inc()
}
