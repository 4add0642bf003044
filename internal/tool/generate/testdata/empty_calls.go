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
// codegen.CallPart[codegen.Declared]
// []metadata.Function{},
// []string{},
// type vault_call interface {
// type vault_call_ignore struct {
// unknown call tag
// func (d vault_dispatcher) Classify(call codegen.Call) (weight.Info, error) {

// UNEXPECTED
// codegen.CallPart[codegen.Missing]
// var w
// case 0:
// Metrics

// A module may declare an empty call block. It still registers, still gets a
// call union and dispatcher, and its probe reports the block as declared.
package foo

import (
	"github.com/modkit/modkit"
)

type vaultCalls interface{}

type Vault struct {
	modkit.Module
	modkit.WithCalls[vaultCalls]
}
