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

// NonNegativeBuckets holds histogram bucket boundaries for non-negative
// measurements with a wide dynamic range, such as latencies in
// microseconds or payload sizes in bytes. Boundaries run 1, 2, 5, 10,
// 20, 50, ... up to 5e19, so adjacent buckets differ by 2x or 2.5x.
var NonNegativeBuckets = func() []float64 {
	bounds := make([]float64, 0, 60)
	for mag := 1.0; mag <= 1e19; mag *= 10 {
		bounds = append(bounds, mag, 2*mag, 5*mag)
	}
	return bounds
}()
