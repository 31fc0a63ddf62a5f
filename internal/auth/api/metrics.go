package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts auth outcomes. Result labels are a small closed set so the
// series cardinality stays bounded.
type Metrics struct {
	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	logouts   *prometheus.CounterVec
}

// NewMetrics builds and registers auth counters on the given registerer.
// Passing nil registers on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_auth_refreshes_total",
			Help: "Refresh-token rotations by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_auth_logouts_total",
			Help: "Logout requests by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.logins, m.refreshes, m.logouts)
	return m
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) logout(result string) {
	if m == nil {
		return
	}
	m.logouts.WithLabelValues(result).Inc()
}
