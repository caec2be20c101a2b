package emailsvc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kepzesmindenkinek/backend/core"
)

// Metrics counts dispatch outcomes. A nil *Metrics records nothing.
type Metrics struct {
	sends    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the email collectors on reg; a nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courses",
			Subsystem: "email",
			Name:      "send_total",
			Help:      "Emails handed to the dispatcher, by provider and outcome.",
		}, []string{"provider", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "courses",
			Subsystem: "email",
			Name:      "send_duration_seconds",
			Help:      "Time spent in provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg != nil {
		reg.MustRegister(m.sends, m.duration)
	}
	return m
}

func (m *Metrics) observe(provider string, status core.DeliveryStatus) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "none"
	}
	m.sends.WithLabelValues(provider, status.String()).Inc()
}

func (m *Metrics) observeDuration(provider string, started time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}
