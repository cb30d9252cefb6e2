// Package metrics collects Prometheus counters for the admissions pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector records registration, login, guard and review outcomes.
type Collector struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	guardDenials  *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_registrations_total",
			Help: "Registration submissions by result (created, invalid, duplicate, error).",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_logins_total",
			Help: "Login attempts by result (success, invalid, error).",
		}, []string{"result"}),
		guardDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_guard_denials_total",
			Help: "Access guard denials by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_status_transitions_total",
			Help: "Successful application status transitions by target status.",
		}, []string{"status"}),
	}
	reg.MustRegister(c.registrations, c.logins, c.guardDenials, c.transitions)
	return c
}

// RecordRegistration counts a registration outcome.
func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// RecordLogin counts a login outcome.
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordGuardDenial counts a guard denial by reason.
func (c *Collector) RecordGuardDenial(reason string) {
	c.guardDenials.WithLabelValues(reason).Inc()
}

// RecordTransition counts a successful status transition.
func (c *Collector) RecordTransition(status string) {
	c.transitions.WithLabelValues(status).Inc()
}
