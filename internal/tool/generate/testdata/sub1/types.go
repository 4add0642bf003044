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

// Package sub1 provides types used by the code generation tests.
package sub1

import "github.com/modkit/modkit/runtime/codec"

// Level is a named basic type declared outside the module's package.
type Level uint8

// ID is a type with custom codec methods declared outside the module's
// package.
type ID struct {
	hi, lo uint64
}

// MarshalModkit implements codec.Marshaler.
func (id ID) MarshalModkit(enc *codec.Encoder) {
	enc.Uint64(id.hi)
	enc.Uint64(id.lo)
}

// UnmarshalModkit implements codec.Unmarshaler.
func (id *ID) UnmarshalModkit(dec *codec.Decoder) {
	id.hi = dec.Uint64()
	id.lo = dec.Uint64()
}
