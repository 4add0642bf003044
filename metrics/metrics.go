// Copyright 2023 The ModKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"fmt"

	"github.com/modkit/modkit/runtime/metrics"
)

// A Counter is a metric that accumulates upward. Counters suit event
// totals: calls dispatched, failed decodes, fees charged.
//
// Counters with labels are declared with NewCounterMap.
type Counter struct {
	m *metrics.Metric
}

// NewCounter declares a counter. Metric names are claimed process-wide,
// so declare counters in package-level variables; a second registration
// of the same name panics.
func NewCounter(name, help string) *Counter {
	return &Counter{metrics.Register(metrics.TypeCounter, name, help, nil)}
}

// Name returns the counter's registered name.
func (c *Counter) Name() string { return c.m.Name() }

// Inc adds one to the counter.
func (c *Counter) Inc() { c.m.Inc() }

// Add grows the counter by delta. It panics if delta is negative.
func (c *Counter) Add(delta float64) {
	if delta < 0 {
		panic(fmt.Errorf("counter %s: negative delta %v", c.m.Name(), delta))
	}
	c.m.Add(delta)
}

// A Gauge is a metric that tracks a level, moving both up and down.
// In-flight dispatch counts and queue depths are gauges.
//
// Gauges with labels are declared with NewGaugeMap.
type Gauge struct {
	m *metrics.Metric
}

// NewGauge declares a gauge. Metric names are claimed process-wide, so
// declare gauges in package-level variables; a second registration of
// the same name panics.
func NewGauge(name, help string) *Gauge {
	return &Gauge{metrics.Register(metrics.TypeGauge, name, help, nil)}
}

// Name returns the gauge's registered name.
func (g *Gauge) Name() string { return g.m.Name() }

// Set replaces the gauge's value with val.
func (g *Gauge) Set(val float64) { g.m.Set(val) }

// Add grows the gauge by delta.
func (g *Gauge) Add(delta float64) { g.m.Add(delta) }

// Sub shrinks the gauge by delta.
func (g *Gauge) Sub(delta float64) { g.m.Sub(delta) }

// A Histogram is a metric that records how a value distributes across
// fixed buckets, like the latency of dispatched calls.
//
// Histograms with labels are declared with NewHistogramMap.
type Histogram struct {
	m *metrics.Metric
}

// NewHistogram declares a histogram with the given bucket boundaries,
// which must be strictly ascending. n boundaries produce n+1 buckets:
// values below bounds[0] land in bucket 0, values in [bounds[i-1],
// bounds[i]) land in bucket i, and values at or above the last boundary
// land in the final bucket. With bounds [1, 10], for example:
//
//	bucket 0: (-inf, 1)
//	bucket 1: [1, 10)
//	bucket 2: [10, +inf)
//
// Metric names are claimed process-wide, so declare histograms in
// package-level variables; a second registration of the same name
// panics.
func NewHistogram(name, help string, bounds []float64) *Histogram {
	return &Histogram{metrics.Register(metrics.TypeHistogram, name, help, bounds)}
}

// Name returns the histogram's registered name.
func (h *Histogram) Name() string { return h.m.Name() }

// Put records val.
func (h *Histogram) Put(val float64) { h.m.Put(val) }

// A CounterMap declares a family of counters sharing one name and the
// label struct L. See the package documentation for how label structs
// work.
type CounterMap[L comparable] struct {
	mm *metrics.MetricMap[L]
}

// NewCounterMap declares a counter family. Like NewCounter, it panics
// when its name is already taken.
func NewCounterMap[L comparable](name, help string) *CounterMap[L] {
	return &CounterMap[L]{metrics.RegisterMap[L](metrics.TypeCounter, name, help, nil)}
}

// Name returns the family's registered name.
func (c *CounterMap[L]) Name() string { return c.mm.Name() }

// Get returns the counter with the given label values, creating it on
// first use. Equal labels yield the same counter.
func (c *CounterMap[L]) Get(labels L) *Counter {
	return &Counter{c.mm.Get(labels)}
}

// A GaugeMap declares a family of gauges sharing one name and the label
// struct L. See the package documentation for how label structs work.
type GaugeMap[L comparable] struct {
	mm *metrics.MetricMap[L]
}

// NewGaugeMap declares a gauge family. Like NewGauge, it panics when
// its name is already taken.
func NewGaugeMap[L comparable](name, help string) *GaugeMap[L] {
	return &GaugeMap[L]{metrics.RegisterMap[L](metrics.TypeGauge, name, help, nil)}
}

// Name returns the family's registered name.
func (g *GaugeMap[L]) Name() string { return g.mm.Name() }

// Get returns the gauge with the given label values, creating it on
// first use. Equal labels yield the same gauge.
func (g *GaugeMap[L]) Get(labels L) *Gauge {
	return &Gauge{g.mm.Get(labels)}
}

// A HistogramMap declares a family of histograms sharing one name, one
// set of bucket boundaries, and the label struct L. See the package
// documentation for how label structs work.
type HistogramMap[L comparable] struct {
	mm *metrics.MetricMap[L]
}

// NewHistogramMap declares a histogram family. Bounds follow the
// NewHistogram rules. Like NewHistogram, it panics when its name is
// already taken.
func NewHistogramMap[L comparable](name, help string, bounds []float64) *HistogramMap[L] {
	return &HistogramMap[L]{metrics.RegisterMap[L](metrics.TypeHistogram, name, help, bounds)}
}

// Name returns the family's registered name.
func (h *HistogramMap[L]) Name() string { return h.mm.Name() }

// Get returns the histogram with the given label values, creating it on
// first use. Equal labels yield the same histogram.
func (h *HistogramMap[L]) Get(labels L) *Histogram {
	return &Histogram{h.mm.Get(labels)}
}
