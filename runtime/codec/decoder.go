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
	"encoding"
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/proto"
)

// Decoder deserializes values from a byte slice.
type Decoder struct {
	data []byte
}

// NewDecoder returns a Decoder that consumes the given byte slice.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Empty reports whether all bytes have been consumed.
func (d *Decoder) Empty() bool {
	return len(d.data) == 0
}

// Read consumes and returns the next n bytes. The returned slice aliases the
// decoder's buffer.
func (d *Decoder) Read(n int) []byte {
	if n < 0 || n > len(d.data) {
		panic(makeDecodeError("read %d bytes with %d available", n, len(d.data)))
	}
	b := d.data[:n]
	d.data = d.data[n:]
	return b
}

// Uint8 decodes a uint8.
func (d *Decoder) Uint8() uint8 {
	return d.Read(1)[0]
}

// Byte decodes a byte.
func (d *Decoder) Byte() byte {
	return d.Uint8()
}

// Int8 decodes an int8.
func (d *Decoder) Int8() int8 {
	return int8(d.Uint8())
}

// Uint16 decodes a uint16.
func (d *Decoder) Uint16() uint16 {
	return binary.LittleEndian.Uint16(d.Read(2))
}

// Int16 decodes an int16.
func (d *Decoder) Int16() int16 {
	return int16(d.Uint16())
}

// Uint32 decodes a uint32.
func (d *Decoder) Uint32() uint32 {
	return binary.LittleEndian.Uint32(d.Read(4))
}

// Int32 decodes an int32.
func (d *Decoder) Int32() int32 {
	return int32(d.Uint32())
}

// Rune decodes a rune.
func (d *Decoder) Rune() rune {
	return d.Int32()
}

// Uint64 decodes a uint64.
func (d *Decoder) Uint64() uint64 {
	return binary.LittleEndian.Uint64(d.Read(8))
}

// Int64 decodes an int64.
func (d *Decoder) Int64() int64 {
	return int64(d.Uint64())
}

// Uint decodes a value of type uint, which always travels as 64 bits.
func (d *Decoder) Uint() uint {
	return uint(d.Uint64())
}

// Int decodes a value of type int, which always travels as 64 bits.
func (d *Decoder) Int() int {
	return int(d.Int64())
}

// Bool decodes a bool.
func (d *Decoder) Bool() bool {
	switch b := d.Uint8(); b {
	case 0:
		return false
	case 1:
		return true
	default:
		panic(makeDecodeError("invalid bool byte %d", b))
	}
}

// Float32 decodes a float32.
func (d *Decoder) Float32() float32 {
	return math.Float32frombits(d.Uint32())
}

// Float64 decodes a float64.
func (d *Decoder) Float64() float64 {
	return math.Float64frombits(d.Uint64())
}

// Complex64 decodes a complex64.
func (d *Decoder) Complex64() complex64 {
	return complex(d.Float32(), d.Float32())
}

// Complex128 decodes a complex128.
func (d *Decoder) Complex128() complex128 {
	return complex(d.Float64(), d.Float64())
}

// length decodes a 4-byte length that must be non-negative.
func (d *Decoder) length() int {
	n := d.Int32()
	if n < 0 {
		panic(makeDecodeError("negative length %d", n))
	}
	return int(n)
}

// String decodes a string.
func (d *Decoder) String() string {
	return string(d.Read(d.length()))
}

// Bytes decodes a value of type []byte. Length -1 decodes to a nil slice.
// The returned slice aliases the decoder's buffer.
func (d *Decoder) Bytes() []byte {
	switch n := d.Int32(); {
	case n == -1:
		return nil
	case n < 0:
		panic(makeDecodeError("negative length %d", n))
	default:
		return d.Read(int(n))
	}
}

// Len decodes a length written by Encoder.Len, where -1 stands for a nil
// value. Generated code calls Len so that container unmarshaling stays
// uniform across element types.
func (d *Decoder) Len() int {
	n := d.Int32()
	if n < -1 {
		panic(makeDecodeError("negative length %d", n))
	}
	return int(n)
}

// DecodeProto decodes a protocol buffer message encoded by EncodeProto.
func (d *Decoder) DecodeProto(value proto.Message) {
	if err := proto.Unmarshal(d.Bytes(), value); err != nil {
		panic(makeDecodeError("cannot unmarshal proto %T: %w", value, err))
	}
}

// DecodeBinaryUnmarshaler decodes a value through its UnmarshalBinary method.
func (d *Decoder) DecodeBinaryUnmarshaler(value encoding.BinaryUnmarshaler) {
	if err := value.UnmarshalBinary(d.Bytes()); err != nil {
		panic(makeDecodeError("cannot unmarshal %T: %w", value, err))
	}
}
