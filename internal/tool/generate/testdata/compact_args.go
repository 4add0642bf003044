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
// Units codec.Compact[uint64]
// Spans codec.Compact[uint32]
// Type: "codec.Compact[uint64]"
// Type: "codec.Compact[uint32]"
// {Name: "note", Type: "string"}
// c.Units.MarshalModkit(enc)
// c.Units.UnmarshalModkit(dec)
// c.Note = dec.String()
// d.impl.Report(ctx, origin, c.Units.Value, c.Spans.Value, c.Note)
// args := []any{c.Units.Value, c.Spans.Value, c.Note}
// Docs: []string{"Report batches usage."}

// UNEXPECTED
// Units uint64
// modkit:compact

// The compact directive changes how flagged arguments travel, not how the
// implementation receives them.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type meterCalls interface {
	// Report batches usage.
	//
	//modkit:compact units spans
	Report(ctx context.Context, origin dispatch.Origin, units uint64, spans uint32, note string) error
}

type meterWeights struct{}

func (meterWeights) Report() weight.Policy {
	return weight.Func{WeighFn: func(args []any) weight.Weight {
		return weight.Weight(args[0].(uint64))
	}}
}

type Meter struct {
	modkit.Module
	modkit.WithCalls[meterCalls]
	modkit.WithWeights[meterWeights]
}

func (m *Meter) Report(context.Context, dispatch.Origin, uint64, uint32, string) error {
	return nil
}
