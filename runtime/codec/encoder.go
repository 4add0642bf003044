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

// Package codec implements the binary encoding used for call arguments.
// Values serialize as fixed-width little-endian integers, length-prefixed
// strings and byte slices, and varint compact integers, so a value always
// produces the same bytes regardless of platform.
//
// Encoding and decoding methods panic on failure rather than returning
// errors, which keeps generated marshaling code free of error plumbing.
// Convert the panic back into an error with CatchPanics at the API boundary.
package codec

import (
	"encoding"
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/proto"
)

// Encoder serializes values into a byte slice.
type Encoder struct {
	data    []byte   // the serialized values
	scratch [64]byte // inline buffer so small payloads do not allocate
}

// NewEncoder returns an Encoder backed by its inline buffer.
func NewEncoder() *Encoder {
	enc := new(Encoder)
	enc.data = enc.scratch[:0]
	return enc
}

// Reset discards all encoded data and ensures the buffer has capacity for at
// least n bytes.
func (e *Encoder) Reset(n int) {
	if n > cap(e.data) {
		e.data = make([]byte, 0, n)
		return
	}
	e.data = e.data[:0]
}

// Data returns the byte slice holding the serialized values.
func (e *Encoder) Data() []byte {
	return e.data
}

// Grow extends the buffer by n bytes and returns the extension. Hand-written
// Marshaler implementations can fill the returned slice directly instead of
// going through the typed methods.
func (e *Encoder) Grow(n int) []byte {
	old := len(e.data)
	if cap(e.data)-old >= n {
		e.data = e.data[:old+n]
	} else {
		e.data = append(e.data, make([]byte, n)...)
	}
	return e.data[old:]
}

// Uint8 encodes a uint8.
func (e *Encoder) Uint8(arg uint8) {
	e.data = append(e.data, arg)
}

// Byte encodes a byte.
func (e *Encoder) Byte(arg byte) {
	e.Uint8(arg)
}

// Int8 encodes an int8.
func (e *Encoder) Int8(arg int8) {
	e.Uint8(uint8(arg))
}

// Uint16 encodes a uint16.
func (e *Encoder) Uint16(arg uint16) {
	e.data = binary.LittleEndian.AppendUint16(e.data, arg)
}

// Int16 encodes an int16.
func (e *Encoder) Int16(arg int16) {
	e.Uint16(uint16(arg))
}

// Uint32 encodes a uint32.
func (e *Encoder) Uint32(arg uint32) {
	e.data = binary.LittleEndian.AppendUint32(e.data, arg)
}

// Int32 encodes an int32.
func (e *Encoder) Int32(arg int32) {
	e.Uint32(uint32(arg))
}

// Rune encodes a rune.
func (e *Encoder) Rune(arg rune) {
	e.Int32(arg)
}

// Uint64 encodes a uint64.
func (e *Encoder) Uint64(arg uint64) {
	e.data = binary.LittleEndian.AppendUint64(e.data, arg)
}

// Int64 encodes an int64.
func (e *Encoder) Int64(arg int64) {
	e.Uint64(uint64(arg))
}

// Uint encodes a uint. The wire format is machine independent, so a uint
// always travels as 64 bits.
func (e *Encoder) Uint(arg uint) {
	e.Uint64(uint64(arg))
}

// Int encodes an int. The wire format is machine independent, so an int
// always travels as 64 bits.
func (e *Encoder) Int(arg int) {
	e.Uint64(uint64(arg))
}

// Bool encodes a bool as a single 0 or 1 byte.
func (e *Encoder) Bool(arg bool) {
	b := byte(0)
	if arg {
		b = 1
	}
	e.Uint8(b)
}

// Float32 encodes a float32.
func (e *Encoder) Float32(arg float32) {
	e.Uint32(math.Float32bits(arg))
}

// Float64 encodes a float64.
func (e *Encoder) Float64(arg float64) {
	e.Uint64(math.Float64bits(arg))
}

// Complex64 encodes a complex64, real part first.
func (e *Encoder) Complex64(arg complex64) {
	e.Float32(real(arg))
	e.Float32(imag(arg))
}

// Complex128 encodes a complex128, real part first.
func (e *Encoder) Complex128(arg complex128) {
	e.Float64(real(arg))
	e.Float64(imag(arg))
}

// putLength encodes a non-negative length as 4 bytes.
func (e *Encoder) putLength(n int) {
	if n > math.MaxInt32 {
		panic(makeEncodeError("length %d does not fit in 4 bytes", n))
	}
	e.Uint32(uint32(n))
}

// String encodes a string as its length followed by its contents.
func (e *Encoder) String(arg string) {
	e.putLength(len(arg))
	e.data = append(e.data, arg...)
}

// Bytes encodes a []byte as its length followed by its contents. A nil slice
// travels as length -1 and decodes back to nil.
func (e *Encoder) Bytes(arg []byte) {
	if arg == nil {
		e.Len(-1)
		return
	}
	e.putLength(len(arg))
	e.data = append(e.data, arg...)
}

// Len encodes the length of a slice or map, where -1 stands for a nil value.
// Generated code calls Len so that container marshaling stays uniform across
// element types.
func (e *Encoder) Len(l int) {
	if l < -1 {
		panic(makeEncodeError("cannot encode negative length %d", l))
	}
	if l == -1 {
		e.Int32(-1)
		return
	}
	e.putLength(l)
}

// EncodeProto encodes a protocol buffer message as a byte slice.
func (e *Encoder) EncodeProto(value proto.Message) {
	data, err := proto.Marshal(value)
	if err != nil {
		panic(makeEncodeError("cannot marshal proto %T: %w", value, err))
	}
	e.Bytes(data)
}

// EncodeBinaryMarshaler encodes a value through its MarshalBinary method.
func (e *Encoder) EncodeBinaryMarshaler(value encoding.BinaryMarshaler) {
	data, err := value.MarshalBinary()
	if err != nil {
		panic(makeEncodeError("cannot marshal %T: %w", value, err))
	}
	e.Bytes(data)
}
