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

package dispatch

import (
	"fmt"

	"github.com/modkit/modkit/runtime/weight"
)

// PostInfo is the post-execution report of a dispatched call. The zero
// value means "the declared weight stands, and the fee applies".
type PostInfo struct {
	// ActualWeight, if non-nil, replaces the weight that was declared
	// before execution. Operations set it when they turn out cheaper than
	// their worst-case estimate.
	ActualWeight *weight.Weight

	// FeeWaived reports that the operation decided, after executing, that
	// the caller should not pay for it.
	FeeWaived bool
}

// WithActualWeight returns a PostInfo reporting that the call consumed w.
func WithActualWeight(w weight.Weight) PostInfo {
	return PostInfo{ActualWeight: &w}
}

// Weight returns the weight to account for the call: the actual weight if
// the operation reported one, and declared otherwise.
func (p PostInfo) Weight(declared weight.Weight) weight.Weight {
	if p.ActualWeight != nil {
		return *p.ActualWeight
	}
	return declared
}

// Error wraps an error returned by a module operation with the module and
// call that produced it. Generated dispatchers return *Error so that every
// failure is attributable.
type Error struct {
	Module string // module name, e.g. "counter"
	Call   string // call name, e.g. "SetValue"
	Err    error  // the underlying error
}

var _ error = &Error{}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("dispatch %s.%s: %v", e.Module, e.Call, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
