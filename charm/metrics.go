// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hpc_charm"

// Collector is a prometheus.Collector that collects metrics about
// event dispatch.
type Collector struct {
	emitted   *prometheus.CounterVec
	deferred  *prometheus.CounterVec
	reemitted *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	stopped   *prometheus.CounterVec
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		emitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_emitted_total",
				Help:      "The number of events emitted, by kind.",
			}, []string{"kind"},
		),
		deferred: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_deferred_total",
				Help:      "The number of events deferred by an observer, by kind.",
			}, []string{"kind"},
		),
		reemitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_reemitted_total",
				Help:      "The number of deferred events delivered again, by kind.",
			}, []string{"kind"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notices_dropped_total",
				Help:      "The number of deferred events that could no longer be delivered, by kind.",
			}, []string{"kind"},
		),
		stopped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "handlers_stopped_total",
				Help:      "The number of handlers stopped by a guard, by resulting status.",
			}, []string{"status"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.emitted.Describe(ch)
	c.deferred.Describe(ch)
	c.reemitted.Describe(ch)
	c.dropped.Describe(ch)
	c.stopped.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.emitted.Collect(ch)
	c.deferred.Collect(ch)
	c.reemitted.Collect(ch)
	c.dropped.Collect(ch)
	c.stopped.Collect(ch)
}

// The helpers below accept a nil Collector so the framework can run
// without metrics.

func (c *Collector) eventEmitted(kind string) {
	if c != nil {
		c.emitted.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) eventDeferred(kind string) {
	if c != nil {
		c.deferred.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) eventReemitted(kind string) {
	if c != nil {
		c.reemitted.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) noticeDropped(kind string) {
	if c != nil {
		c.dropped.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) handlerStopped(st string) {
	if c != nil {
		c.stopped.WithLabelValues(st).Inc()
	}
}
