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
// "foo/sub1"
// Lvl sub1.Level
// enc.Uint8(uint8(c.Lvl))
// c.Lvl = sub1.Level(dec.Uint8())
// func modkit_enc_slice_ID_
// arg[i].MarshalModkit(enc)
// res[i].UnmarshalModkit(dec)
// Type: "sub1.Level"
// Type: "[]sub1.ID"

// UNEXPECTED
// foo.sub1

// Argument types from another package are qualified and imported in the
// generated code.
package foo

import (
	"context"

	"foo/sub1"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type auditCalls interface {
	Record(ctx context.Context, origin dispatch.Origin, lvl sub1.Level, ids []sub1.ID) error
}

type auditWeights struct{}

func (auditWeights) Record() weight.Policy { return weight.Fixed(2) }

type Audit struct {
	modkit.Module
	modkit.WithCalls[auditCalls]
	modkit.WithWeights[auditWeights]
}

func (a *Audit) Record(context.Context, dispatch.Origin, sub1.Level, []sub1.ID) error {
	return nil
}
