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

// The following types are used to check, at compile time, whether a module
// declared a call block at all. Tooling that assembles modules into a
// runtime must fail fast when a module it depends on never declared calls,
// and the failure has to happen when the assembly is compiled, not when it
// runs.
//
// It is best explained via an example. For every module, the generator
// emits a probe type under a name made unique by the identifier allocator,
// plus a well-known alias next to it:
//
//	type modkit_call_part_7 = codegen.CallPart[codegen.Declared]
//	type counter_call_part = modkit_call_part_7
//
// The probe is CallPart[Declared] if the module embedded modkit.WithCalls
// (even with an empty call set), and CallPart[Missing] if it never did.
// Code that requires module counter to have declared calls writes:
//
//	var _ codegen.DeclaredCalls = counter_call_part("module counter has no call block defined")
//
// If the probe is CallPart[Missing], the two aliases name different types
// and compilation fails with an error that carries the quoted diagnostic.
// If the probe is CallPart[Declared], the line compiles to nothing.

type CallPart[_ any] string

// Declared marks the probe of a module whose call block exists, even if it
// declares no operations.
type Declared struct{}

// Missing marks the probe of a module that never declared a call block.
type Missing struct{}

// DeclaredCalls is the type every probe must have for assembly to compile.
type DeclaredCalls = CallPart[Declared]
