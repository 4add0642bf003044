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
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

// A Dispatcher routes call values to a concrete module implementation. The
// generator emits one Dispatcher implementation per module; instances are
// built by the module's registered NewDispatcher function and hold no state
// besides the implementation they are bound to.
type Dispatcher interface {
	// Dispatch invokes the operation the call names, passing origin and the
	// call's bound arguments, and returns the operation's post-execution
	// report. A failing operation surfaces as a *dispatch.Error. Dispatch
	// returns an error, not a panic, if call belongs to a different module.
	Dispatch(ctx context.Context, call Call, origin dispatch.Origin) (dispatch.PostInfo, error)

	// Classify evaluates the weight policy of the operation the call names
	// against the call's bound arguments, without executing the operation.
	// Classification never mutates the call: the same value can be
	// classified and then dispatched.
	Classify(call Call) (weight.Info, error)
}

// DispatcherOptions configures the dispatcher a generated NewDispatcher
// function returns.
type DispatcherOptions struct {
	// Tracer traces dispatched calls. If nil, dispatches are not traced.
	Tracer trace.Tracer
}

// Fill populates unset options with inert defaults.
func (o DispatcherOptions) Fill() DispatcherOptions {
	if o.Tracer == nil {
		o.Tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	return o
}
