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
// // Encoding and decoding helpers.
// func modkit_enc_slice_string_
// func modkit_dec_slice_string_
// func modkit_enc_map_string_uint32_
// func modkit_dec_map_string_uint32_
// func modkit_enc_array_4_int64_
// func modkit_dec_array_4_int64_
// func modkit_enc_ptr_string_
// func modkit_dec_ptr_string_
// enc.Len(-1)
// n := dec.Len()
// res := make([]string, n)
// if !dec.Bool() {
// res := (*string)(new(string))
// enc.Bytes(c.Blob)
// c.Blob = dec.Bytes()
// Type: "map[string]uint32"

// UNEXPECTED
// modkit_enc_slice_uint8

// Composite argument types get shared helper functions; byte slices use the
// codec directly.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type storeCalls interface {
	Put(ctx context.Context, origin dispatch.Origin, keys []string, tags map[string]uint32, window [4]int64, hint *string, blob []byte) error
}

type storeWeights struct{}

func (storeWeights) Put() weight.Policy { return weight.Fixed(7) }

type Store struct {
	modkit.Module
	modkit.WithCalls[storeCalls]
	modkit.WithWeights[storeWeights]
}

func (s *Store) Put(context.Context, dispatch.Origin, []string, map[string]uint32, [4]int64, *string, []byte) error {
	return nil
}
