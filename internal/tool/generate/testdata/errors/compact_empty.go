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

// ERROR: call Meter.Add: //modkit:compact needs at least one argument name
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type meterCalls interface {
	//modkit:compact
	Add(ctx context.Context, origin dispatch.Origin, delta uint64) error
}

type meterWeights struct{}

func (meterWeights) Add() weight.Policy { return weight.Fixed(1) }

type Meter struct {
	modkit.Module
	modkit.WithCalls[meterCalls]
	modkit.WithWeights[meterWeights]
}

func (m *Meter) Add(ctx context.Context, origin dispatch.Origin, delta uint64) error {
	return nil
}
