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

package codegen

import (
	"time"

	"github.com/modkit/modkit/metrics"
)

// Names of automatically populated metrics.
const (
	CallCountsName    = "modkit_call_count"
	CallErrorsName    = "modkit_call_error_count"
	CallLatenciesName = "modkit_call_latency_micros"
)

var (
	// The following metrics are automatically populated for the user.
	callCounts = metrics.NewCounterMap[CallLabels](
		CallCountsName,
		"Count of module call dispatches",
	)
	callErrors = metrics.NewCounterMap[CallLabels](
		CallErrorsName,
		"Count of module call dispatches that result in an error",
	)
	callLatencies = metrics.NewHistogramMap[CallLabels](
		CallLatenciesName,
		"Duration, in microseconds, of module call execution",
		metrics.NonNegativeBuckets,
	)
)

type CallLabels struct {
	Module string // full module name
	Call   string // call name
}

// CallMetrics contains metrics for a single module call.
type CallMetrics struct {
	count      *metrics.Counter   // see CallCountsName
	errorCount *metrics.Counter   // see CallErrorsName
	latency    *metrics.Histogram // see CallLatenciesName
}

// CallMetricsFor returns metrics for the specified call.
func CallMetricsFor(labels CallLabels) *CallMetrics {
	return &CallMetrics{
		count:      callCounts.Get(labels),
		errorCount: callErrors.Get(labels),
		latency:    callLatencies.Get(labels),
	}
}

// CallHandle holds information needed to finalize metric updates for a
// dispatched call.
type CallHandle struct {
	start time.Time
}

// Begin starts metric update recording for a dispatch of call m.
func (m *CallMetrics) Begin() CallHandle {
	return CallHandle{time.Now()}
}

// End ends metric update recording for a dispatch of call m.
func (m *CallMetrics) End(h CallHandle, failed bool) {
	latency := time.Since(h.start).Microseconds()
	m.count.Inc()
	if failed {
		m.errorCount.Inc()
	}
	m.latency.Put(float64(latency))
}
