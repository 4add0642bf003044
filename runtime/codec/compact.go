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

package codec

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Marshaler is the interface implemented by types that encode themselves.
// "modkit generate" accepts any argument type implementing both Marshaler
// and Unmarshaler and defers to these methods in the generated call codec.
type Marshaler interface {
	MarshalModkit(*Encoder)
}

// Unmarshaler is the interface implemented by types that decode themselves.
// UnmarshalModkit must use a pointer receiver.
type Unmarshaler interface {
	UnmarshalModkit(*Decoder)
}

// Compact[T] wraps an unsigned integer that travels in space-efficient
// varint form instead of its fixed-width encoding. An argument carrying a
// "//modkit:compact" directive is wrapped in Compact[T] by the generator:
// the wrapping appears both in the generated call variant field and in the
// exported metadata type string, since the two must describe the same wire
// representation.
type Compact[T constraints.Unsigned] struct {
	Value T
}

var (
	_ Marshaler   = Compact[uint64]{}
	_ Unmarshaler = &Compact[uint64]{}
)

// MarshalModkit implements Marshaler.
func (c Compact[T]) MarshalModkit(e *Encoder) {
	e.Uvarint64(uint64(c.Value))
}

// UnmarshalModkit implements Unmarshaler.
func (c *Compact[T]) UnmarshalModkit(d *Decoder) {
	v := d.Uvarint64()
	if back := T(v); uint64(back) != v {
		panic(makeDecodeError("compact value %d overflows %T", v, c.Value))
	}
	c.Value = T(v)
}

// String implements fmt.Stringer.
func (c Compact[T]) String() string {
	return fmt.Sprintf("compact(%d)", c.Value)
}

// Uvarint64 encodes arg as an unsigned varint: between 1 byte for small
// values and 10 bytes for values near the top of the uint64 range.
func (e *Encoder) Uvarint64(arg uint64) {
	e.data = binary.AppendUvarint(e.data, arg)
}

// Varint64 encodes arg as a zig-zag signed varint.
func (e *Encoder) Varint64(arg int64) {
	e.data = binary.AppendVarint(e.data, arg)
}

// Uvarint64 decodes an unsigned varint.
func (d *Decoder) Uvarint64() uint64 {
	v, n := binary.Uvarint(d.data)
	if n <= 0 {
		panic(makeDecodeError("cannot decode uvarint (n=%d)", n))
	}
	d.data = d.data[n:]
	return v
}

// Varint64 decodes a zig-zag signed varint.
func (d *Decoder) Varint64() int64 {
	v, n := binary.Varint(d.data)
	if n <= 0 {
		panic(makeDecodeError("cannot decode varint (n=%d)", n))
	}
	d.data = d.data[n:]
	return v
}
