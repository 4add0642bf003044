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

// EXPECTED
// package foo
// func init() {
// codegen.Register(codegen.Registration{
// "foo/Clock"
// CallNames: []string{"Tick"},
// type clock_call interface {
// codegen.Call
// clock_call()
// type clock_call_Tick struct{}
// type clock_call_ignore struct {
// _ codegen.Never
// func modkit_dec_clock_call(dec *codec.Decoder) (call codegen.Call, err error) {
// err = codec.CatchPanics(recover())
// type clock_dispatcher struct {
// func (d clock_dispatcher) Dispatch(ctx context.Context, call codegen.Call, origin dispatch.Origin) (dispatch.PostInfo, error) {
// return d.dispatchTick(ctx, c, origin)
// func (d clock_dispatcher) Classify(call codegen.Call) (weight.Info, error) {
// var w clockWeights
// codegen.CallPart[codegen.Declared]
// type clock_call_part = modkit_call_part_

// UNEXPECTED
// codegen.CallPart[codegen.Missing]
// ConfigFn

// A module with a single call and no call arguments.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type clockCalls interface {
	Tick(ctx context.Context, origin dispatch.Origin) error
}

type clockWeights struct{}

func (clockWeights) Tick() weight.Policy { return weight.Fixed(1) }

type Clock struct {
	modkit.Module
	modkit.WithCalls[clockCalls]
	modkit.WithWeights[clockWeights]
}

func (c *Clock) Tick(context.Context, dispatch.Origin) error { return nil }
