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
// c.Price.MarshalModkit(enc)
// c.Price.UnmarshalModkit(dec)
// enc.EncodeBinaryMarshaler(&c.Tok)
// dec.DecodeBinaryUnmarshaler(&c.Tok)
// Type: "Amount"
// Type: "Token"

// UNEXPECTED
// modkit_enc_Amount
// modkit_enc_Token

// Named struct arguments with their own codec or binary marshaling methods
// are encoded through those methods, not through generated helpers.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/codec"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type Amount struct {
	cents int64
}

func (a Amount) MarshalModkit(enc *codec.Encoder) {
	enc.Int64(a.cents)
}

func (a *Amount) UnmarshalModkit(dec *codec.Decoder) {
	a.cents = dec.Int64()
}

type Token struct {
	raw []byte
}

func (t Token) MarshalBinary() ([]byte, error) {
	return t.raw, nil
}

func (t *Token) UnmarshalBinary(data []byte) error {
	t.raw = append([]byte(nil), data...)
	return nil
}

type payCalls interface {
	Pay(ctx context.Context, origin dispatch.Origin, price Amount, tok Token) error
}

type payWeights struct{}

func (payWeights) Pay() weight.Policy { return weight.Fixed(3) }

type Pay struct {
	modkit.Module
	modkit.WithCalls[payCalls]
	modkit.WithWeights[payWeights]
}

func (p *Pay) Pay(context.Context, dispatch.Origin, Amount, Token) error { return nil }
