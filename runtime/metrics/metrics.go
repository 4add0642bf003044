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

// Package metrics implements the metric registry underlying the user-facing
// metrics package. Generated dispatchers and the runtime host record into
// metrics registered here; Snapshot exposes them to diagnostic tooling.
package metrics

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MetricType distinguishes the kinds of metric the registry supports.
type MetricType int

const (
	TypeInvalid MetricType = iota
	TypeCounter
	TypeGauge
	TypeHistogram
)

// String implements fmt.Stringer.
func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	default:
		return "invalid"
	}
}

// reg is the process-wide metric registry. Names are claimed when a metric
// or metric family is registered; the metrics themselves are created
// lazily, one per distinct label value, and recorded here so that Snapshot
// can traverse them.
var reg = &registry{names: map[string]bool{}}

type registry struct {
	mu    sync.RWMutex
	names map[string]bool
	all   []*Metric
}

// reserve claims a metric name, panicking if it is already taken.
func (r *registry) reserve(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[name] {
		panic(fmt.Errorf("metric %q already exists", name))
	}
	r.names[name] = true
}

func (r *registry) add(m *Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, m)
}

func (r *registry) snapshot() []*MetricSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := make([]*MetricSnapshot, len(r.all))
	for i, m := range r.all {
		snaps[i] = m.Snapshot()
	}
	return snaps
}

// A scalar accumulates the value of a metric. Integer increments, the
// common case for counters, take a fast path that avoids the
// compare-and-swap loop float addition needs.
type scalar struct {
	ints atomic.Uint64 // running total of inc calls
	bits atomic.Uint64 // math.Float64bits of the float total
}

func (s *scalar) inc() { s.ints.Add(1) }

// add adds delta to the float total. Concurrent adds retry until their
// compare-and-swap lands, so no update is lost.
func (s *scalar) add(delta float64) {
	for {
		cur := s.bits.Load()
		next := math.Float64bits(math.Float64frombits(cur) + delta)
		if s.bits.CompareAndSwap(cur, next) {
			return
		}
	}
}

// store replaces the accumulated total with v, discarding prior incs and
// adds.
func (s *scalar) store(v float64) {
	s.bits.Store(math.Float64bits(v))
	s.ints.Store(0)
}

// value returns the accumulated total.
func (s *scalar) value() float64 {
	return math.Float64frombits(s.bits.Load()) + float64(s.ints.Load())
}

// Metric is a thread-safe readable and writeable metric. It is the
// underlying implementation of the user-facing Counter, Gauge, and
// Histogram types.
//
// A metric is identified by its registered name together with its label
// values. The two metrics below share a name and are nonetheless distinct:
//
//	dispatch_latency{module="counter"}
//	dispatch_latency{module="registry"}
type Metric struct {
	typ  MetricType
	name string
	help string

	// The label map and the metric id are only needed when the metric is
	// exported. Rendering labels costs reflection and the id costs a uuid,
	// so both are deferred to the first Snapshot, keeping Get cheap on the
	// caller's hot path.
	labelsFn   func() map[string]string
	exportOnce sync.Once
	id         uint64
	labels     map[string]string

	total   scalar          // counter and gauge value, histogram sum
	bounds  []float64       // histogram bucket boundaries
	buckets []atomic.Uint64 // histogram bucket counts, len(bounds)+1
}

// A MetricSnapshot is a point-in-time copy of a metric's definition and
// value.
type MetricSnapshot struct {
	Id     uint64
	Type   MetricType
	Name   string
	Labels map[string]string
	Help   string

	Value  float64
	Bounds []float64
	Counts []uint64
}

// Name returns the registered metric name.
func (m *Metric) Name() string { return m.name }

// Inc adds one to the metric value.
func (m *Metric) Inc() { m.total.inc() }

// Add adds delta to the metric value.
func (m *Metric) Add(delta float64) { m.total.add(delta) }

// Sub subtracts delta from the metric value.
func (m *Metric) Sub(delta float64) { m.total.add(-delta) }

// Set replaces the metric value with val.
func (m *Metric) Set(val float64) { m.total.store(val) }

// Put records val in the histogram.
func (m *Metric) Put(val float64) {
	idx := 0
	if len(m.bounds) > 0 && val >= m.bounds[0] {
		// Buckets are [lo, hi): a value sitting exactly on a boundary
		// belongs to the bucket above it.
		idx = sort.SearchFloat64s(m.bounds, val)
		if idx < len(m.bounds) && m.bounds[idx] == val {
			idx++
		}
	}
	m.buckets[idx].Add(1)
	if val != 0 {
		// Microsecond latencies round to zero for fast operations. Skip
		// the compare-and-swap for them.
		m.total.add(val)
	}
}

// Snapshot returns a copy of the metric's definition and current value.
func (m *Metric) Snapshot() *MetricSnapshot {
	m.exportOnce.Do(func() {
		u := uuid.New()
		m.id = binary.LittleEndian.Uint64(u[:8])
		if labels := m.labelsFn(); len(labels) > 0 {
			m.labels = labels
		}
	})

	var counts []uint64
	if len(m.buckets) > 0 {
		counts = make([]uint64, len(m.buckets))
		for i := range m.buckets {
			counts[i] = m.buckets[i].Load()
		}
	}
	return &MetricSnapshot{
		Id:     m.id,
		Type:   m.typ,
		Name:   m.name,
		Labels: maps.Clone(m.labels),
		Help:   m.help,
		Value:  m.total.value(),
		Bounds: slices.Clone(m.bounds),
		Counts: counts,
	}
}

// Register registers and returns a new unlabeled metric. It panics if a
// metric with the same name is already registered.
func Register(typ MetricType, name string, help string, bounds []float64) *Metric {
	return RegisterMap[struct{}](typ, name, help, bounds).Get(struct{}{})
}

// RegisterMap registers a new family of metrics sharing a name and the
// label schema L. It panics if a metric with the same name is already
// registered, or if L is not a valid label struct type.
func RegisterMap[L comparable](typ MetricType, name string, help string, bounds []float64) *MetricMap[L] {
	scheme, err := newLabelScheme[L]()
	if err != nil {
		panic(err)
	}
	if name == "" {
		panic(fmt.Errorf("empty metric name"))
	}
	if typ == TypeInvalid {
		panic(fmt.Errorf("metric %q: invalid metric type %v", name, typ))
	}
	checkBounds(name, bounds)
	reg.reserve(name)
	return &MetricMap[L]{
		typ:     typ,
		name:    name,
		help:    help,
		bounds:  bounds,
		scheme:  scheme,
		metrics: map[L]*Metric{},
	}
}

// checkBounds panics unless bounds are strictly ascending and NaN-free.
func checkBounds(name string, bounds []float64) {
	for i, b := range bounds {
		if math.IsNaN(b) {
			panic(fmt.Errorf("metric %q: NaN histogram bound", name))
		}
		if i > 0 && bounds[i-1] >= b {
			panic(fmt.Errorf("metric %q: non-ascending histogram bounds %v", name, bounds))
		}
	}
}

// MetricMap is a collection of metrics with the same name and label schema
// but different label values. See the user-facing metrics package for an
// explanation of labels.
type MetricMap[L comparable] struct {
	typ    MetricType
	name   string
	help   string
	bounds []float64
	scheme *labelScheme[L]

	mu      sync.Mutex
	metrics map[L]*Metric
}

// Name returns the registered name of the metric family.
func (mm *MetricMap[L]) Name() string { return mm.name }

// Get returns the metric with the provided label values, creating it on
// first use. Calls with equal labels return the same metric.
func (mm *MetricMap[L]) Get(labels L) *Metric {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if m, ok := mm.metrics[labels]; ok {
		return m
	}
	m := &Metric{
		typ:      mm.typ,
		name:     mm.name,
		help:     mm.help,
		labelsFn: func() map[string]string { return mm.scheme.labels(labels) },
		bounds:   mm.bounds,
	}
	if mm.typ == TypeHistogram {
		m.buckets = make([]atomic.Uint64, len(mm.bounds)+1)
	}
	mm.metrics[labels] = m
	reg.add(m)
	return m
}

// Snapshot returns a copy of every registered metric. The collection is
// not atomic: a metric updated while Snapshot runs may or may not have the
// update reflected.
func Snapshot() []*MetricSnapshot {
	return reg.snapshot()
}
