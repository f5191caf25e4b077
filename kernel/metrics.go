package kernel

import "github.com/prometheus/client_golang/prometheus"

// Metrics adapts a Kernel's Counters into a prometheus.Collector, exposing
// STAT_TOTAL_CONNS/STAT_TOTAL_USERS/STAT_LOCAL_USERS/STAT_MAX_USERS/
// STAT_CHANNELS. It reads Counters' atomics directly rather than going
// through the event loop —
// the one kind of concurrent read this package allows, since an atomic
// load is not a table mutation.
type Metrics struct {
	k *Kernel

	totalConns prometheus.Desc
	totalUsers prometheus.Desc
	localUsers prometheus.Desc
	maxUsers   prometheus.Desc
	channels   prometheus.Desc
}

// NewMetrics builds a Collector for k. Register it with a
// prometheus.Registry; nothing in this package wires an HTTP exporter,
// that is left to the binary composing these pieces.
func NewMetrics(k *Kernel) *Metrics {
	ns := "ircd"
	return &Metrics{
		k:          k,
		totalConns: *prometheus.NewDesc(ns+"_total_conns", "Total accepted connections since boot", nil, nil),
		totalUsers: *prometheus.NewDesc(ns+"_total_users", "Total known users, local and remote", nil, nil),
		localUsers: *prometheus.NewDesc(ns+"_local_users", "Users registered on this server", nil, nil),
		maxUsers:   *prometheus.NewDesc(ns+"_max_users", "Peak total users observed since boot", nil, nil),
		channels:   *prometheus.NewDesc(ns+"_channels", "Currently active channels", nil, nil),
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- &m.totalConns
	ch <- &m.totalUsers
	ch <- &m.localUsers
	ch <- &m.maxUsers
	ch <- &m.channels
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	c := m.k.Counters
	ch <- prometheus.MustNewConstMetric(&m.totalConns, prometheus.CounterValue, float64(c.TotalConns()))
	ch <- prometheus.MustNewConstMetric(&m.totalUsers, prometheus.GaugeValue, float64(c.TotalUsers()))
	ch <- prometheus.MustNewConstMetric(&m.localUsers, prometheus.GaugeValue, float64(c.LocalUsers()))
	ch <- prometheus.MustNewConstMetric(&m.maxUsers, prometheus.GaugeValue, float64(c.MaxUsers()))
	ch <- prometheus.MustNewConstMetric(&m.channels, prometheus.GaugeValue, float64(c.Channels()))
}
