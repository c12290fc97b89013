// Package metrics exposes session authority counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waggle_auth"

// Collector records authentication outcomes. Outcome labels are the
// stable error kinds from the service package ("ok" on success), so the
// label set stays bounded.
type Collector struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	logouts       prometheus.Counter
	gate          *prometheus.CounterVec
	sweptRecords  prometheus.Counter
	housekeepings *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh attempts by outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logout_total",
			Help:      "Logouts processed.",
		}),
		gate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_requests_total",
			Help:      "Requests seen by the authentication gate, by result.",
		}, []string{"result"}),
		sweptRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_records_swept_total",
			Help:      "Expired rotation records removed by housekeeping.",
		}),
		housekeepings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_runs_total",
			Help:      "Housekeeping runs by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.logins,
		c.refreshes,
		c.logouts,
		c.gate,
		c.sweptRecords,
		c.housekeepings,
	)
	return c
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (c *Collector) RecordLogin(outcome string)   { c.logins.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordRefresh(outcome string) { c.refreshes.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordLogout()                { c.logouts.Inc() }

// RecordGate counts one gate decision ("authenticated", "anonymous",
// "expired", "malformed", "bad_signature", "wrong_kind").
func (c *Collector) RecordGate(result string) { c.gate.WithLabelValues(result).Inc() }

// RecordSweep counts one housekeeping run and the records it removed.
func (c *Collector) RecordSweep(removed int64, err error) {
	if err != nil {
		c.housekeepings.WithLabelValues("error").Inc()
		return
	}
	c.housekeepings.WithLabelValues("ok").Inc()
	c.sweptRecords.Add(float64(removed))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
