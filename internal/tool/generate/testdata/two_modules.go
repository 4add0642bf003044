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
// "foo/Alpha"
// "foo/Bare"
// type alpha_call interface {
// type bare_call interface {
// type alpha_call_Ping struct{}
// type bare_call_ignore struct {
// func modkit_dec_bare_call(dec *codec.Decoder) (call codegen.Call, err error) {
// codegen.CallPart[codegen.Declared]
// codegen.CallPart[codegen.Missing]
// type alpha_call_part = modkit_call_part_
// type bare_call_part = modkit_call_part_

// UNEXPECTED
// type bare_call_Ping

// Two modules in one package: one declares a call block, the other declares
// nothing. Both get a full artifact set, and the probes differ.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type alphaCalls interface {
	Ping(ctx context.Context, origin dispatch.Origin) error
}

type alphaWeights struct{}

func (alphaWeights) Ping() weight.Policy { return weight.Fixed(1) }

type Alpha struct {
	modkit.Module
	modkit.WithCalls[alphaCalls]
	modkit.WithWeights[alphaWeights]
}

func (a *Alpha) Ping(context.Context, dispatch.Origin) error { return nil }

type Bare struct {
	modkit.Module
}
