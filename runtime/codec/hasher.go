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
	"hash"
	"hash/fnv"
	"math"
)

// Hasher computes a non-cryptographic hash of a sequence of strings. Two
// Hashers fed the same sequence produce the same result, even in different
// processes, so the hash can bucket values consistently across restarts.
//
// The zero Hasher is ready to use.
type Hasher struct {
	h hash.Hash64
}

func (h *Hasher) init() hash.Hash64 {
	if h.h == nil {
		h.h = fnv.New64a()
	}
	return h.h
}

// WriteString adds a string to the hasher. Each string is framed by its
// length, so the sequence "ab" hashes differently from "a" then "b".
func (h *Hasher) WriteString(v string) {
	w := h.init()
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(v)))
	w.Write(buf[:n])
	w.Write([]byte(v))
}

// Sum64 returns the 64-bit hash of the strings added so far. The result is
// always in [1, 2^64-2]: 0 is left free to mean "no hash", and 2^64-1 is
// left free so ranges over hash space can keep exclusive upper bounds.
func (h *Hasher) Sum64() uint64 {
	switch v := h.init().Sum64(); v {
	case 0:
		return 1
	case math.MaxUint64:
		return math.MaxUint64 - 1
	default:
		return v
	}
}
