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

// Package metrics declares the counters, gauges, and histograms that
// modkit modules and the modkit runtime record.
//
// # Metric Types
//
// Three metric types cover the usual measurements:
//
//   - A [Counter] accumulates upward and never decreases: calls
//     dispatched, decode failures, fees charged.
//   - A [Gauge] tracks a level that moves in both directions: in-flight
//     dispatches, queue depth.
//   - A [Histogram] records how observations distribute across fixed
//     buckets: dispatch latency, payload size.
//
// # Declaring Metrics
//
// Metric names are claimed for the whole process, and redeclaring a name
// panics. Declare metrics once, in package-level variables:
//
//	var (
//		dispatchCount = metrics.NewCounter(
//			"bank_dispatch_count",
//			"Number of calls dispatched to the bank module",
//		)
//		inflight = metrics.NewGauge(
//			"bank_inflight_dispatches",
//			"Number of bank calls currently executing",
//		)
//		latency = metrics.NewHistogram(
//			"bank_dispatch_latency_micros",
//			"Latency of bank calls, in microseconds",
//			metrics.NonNegativeBuckets,
//		)
//	)
//
// [NonNegativeBuckets] suits non-negative measurements spanning several
// orders of magnitude, like latencies and sizes. Custom boundaries must
// be strictly ascending; see [NewHistogram] for how values map onto
// buckets.
//
// # Updating Metrics
//
//	dispatchCount.Inc()
//	inflight.Set(3)
//	latency.Put(250)
//
// Counters only move up: Add panics on a negative delta. Gauges accept
// Set, Add, and Sub.
//
// # Labels
//
// A family of metrics can share one name and differ in label values,
// one latency histogram per call name, say. Label schemas are structs.
// Declare a family with [NewCounterMap], [NewGaugeMap], or
// [NewHistogramMap], passing the label struct as the type argument, and
// fetch members with Get:
//
//	type callLabels struct {
//		Module string
//		Call   string
//	}
//
//	var callCount = metrics.NewCounterMap[callLabels](
//		"call_count",
//		"Number of calls dispatched, by module and call",
//	)
//
//	func dispatched(module, call string) {
//		callCount.Get(callLabels{Module: module, Call: call}).Inc()
//	}
//
// Get creates the member metric on first use and caches it; calls with
// equal label values return the same metric.
//
// A label struct's fields must all be exported, and each field must be
// an unnamed string, bool, or integer type:
//
//	struct{}                 // no labels
//	struct{ Call string }    // one label
//	struct{ Ok bool; N int } // two labels
//
// These are rejected:
//
//	string                 // not a struct
//	struct{ call string }  // unexported field
//	struct{ At time.Time } // unsupported field type
//
// Field order does not matter. Label keys default to the field name with
// its first letter lowercased, so Call exports as "call". A `modkit`
// field tag overrides the key:
//
//	type callLabels struct {
//		Module string                        // exported as "module"
//		Height uint64 `modkit:"block_height"` // exported as "block_height"
//	}
//
// # Reading Metrics
//
// Everything declared here lands in the runtime metric registry. The
// runtime host and the modkit command read recorded values through that
// registry's Snapshot function.
package metrics
