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

// Package codegen contains the types and functions that generated
// modkit_gen.go files depend on. Application code should not use this
// package directly.
package codegen

import (
	"github.com/modkit/modkit/runtime/codec"
)

// Call is a single invocation request for a module operation: one operation
// name plus its bound arguments. The generator synthesizes, per module, a
// closed set of types implementing Call — one per declared operation, plus
// one reserved sentinel that no code path constructs.
//
// A Call value is self-describing on the wire: Encode writes the call's
// variant index followed by its arguments, and the module's registered
// DecodeCall function reverses it. Encoding depends only on the argument
// types of the call itself, never on unrelated state of the enclosing
// module.
type Call interface {
	// CallName returns the name of the operation this value invokes,
	// unique within its module, e.g. "SetValue".
	CallName() string

	// Encode serializes the call into enc.
	Encode(enc *codec.Encoder)
}

// Never is an uninhabited interface: it has an unexported method that no
// type implements. The sentinel variant of every synthesized call union
// carries a Never field, which guarantees the sentinel cannot be
// constructed with a meaningful value. Observing the sentinel during
// dispatch or classification is an unrecoverable defect, not an error.
type Never interface {
	never()
}
