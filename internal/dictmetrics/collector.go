// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dictmetrics exposes a dictionary's derived queries (capacity,
// fill, rehashing state) as Prometheus gauges, the way goarista's
// exporters wrap an internal resource in a custom prometheus.Collector
// rather than maintaining the gauges by hand at every call site.
package dictmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zyhnesmr/rehashdict/internal/dict"
)

// Source is the subset of *dict.Dict the collector needs. Defined as an
// interface so tests can substitute a fake without constructing a real
// dictionary.
type Source interface {
	Len() int
	Cap() int
	IsRehashing() bool
}

var _ Source = (*dict.Dict)(nil)

// Collector is a prometheus.Collector reporting a single dictionary's
// capacity, fill and rehashing state under the given name.
type Collector struct {
	source Source

	capacity   *prometheus.Desc
	filled     *prometheus.Desc
	rehashing  *prometheus.Desc
	loadFactor *prometheus.Desc
}

// New wraps source, labelling every exposed metric with name (typically
// an instance or pool identifier).
func New(name string, source Source) *Collector {
	constLabels := prometheus.Labels{"dict": name}

	return &Collector{
		source: source,
		capacity: prometheus.NewDesc(
			"rehashdict_capacity_slots",
			"Total bucket slots across both tables.",
			nil, constLabels,
		),
		filled: prometheus.NewDesc(
			"rehashdict_filled_entries",
			"Total live entries across both tables.",
			nil, constLabels,
		),
		rehashing: prometheus.NewDesc(
			"rehashdict_rehashing",
			"1 if an incremental rehash is in progress, else 0.",
			nil, constLabels,
		),
		loadFactor: prometheus.NewDesc(
			"rehashdict_load_factor",
			"Filled entries divided by capacity slots.",
			nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.filled
	ch <- c.rehashing
	ch <- c.loadFactor
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	capacity := c.source.Cap()
	filled := c.source.Len()

	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(capacity))
	ch <- prometheus.MustNewConstMetric(c.filled, prometheus.GaugeValue, float64(filled))

	rehashing := 0.0
	if c.source.IsRehashing() {
		rehashing = 1.0
	}

	ch <- prometheus.MustNewConstMetric(c.rehashing, prometheus.GaugeValue, rehashing)

	loadFactor := 0.0
	if capacity > 0 {
		loadFactor = float64(filled) / float64(capacity)
	}

	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, loadFactor)
}
