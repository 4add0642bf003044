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
// codegen.CallPart[codegen.Missing]
// []metadata.Function{},
// []string{},
// type beacon_call interface {
// type beacon_call_ignore struct {
// unknown call tag
// func (d beacon_dispatcher) Classify(call codegen.Call) (weight.Info, error) {

// UNEXPECTED
// codegen.CallPart[codegen.Declared]
// var w
// case 0:
// Metrics

// A module that never declares a call block still gets the full scaffolding,
// but its probe reports the block as missing, so the assertion
//
//	var _ codegen.DeclaredCalls = beacon_call_part("...")
//
// fails to compile downstream.
package foo

import (
	"github.com/modkit/modkit"
)

type Beacon struct {
	modkit.Module
}
