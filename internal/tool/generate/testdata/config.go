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
// func(i any) any { return i.(*Tuned).Config() },

// UNEXPECTED
// i.(*Plain).Config()

// Only modules that embed modkit.WithConfig get a ConfigFn in their
// registration.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type tunedOptions struct {
	Limit uint64 `toml:"limit"`
}

type tunedCalls interface {
	Bump(ctx context.Context, origin dispatch.Origin) error
}

type tunedWeights struct{}

func (tunedWeights) Bump() weight.Policy { return weight.Fixed(3) }

type Tuned struct {
	modkit.Module
	modkit.WithCalls[tunedCalls]
	modkit.WithWeights[tunedWeights]
	modkit.WithConfig[tunedOptions]
}

func (t *Tuned) Bump(ctx context.Context, origin dispatch.Origin) error {
	return nil
}

type plainCalls interface {
	Poke(ctx context.Context, origin dispatch.Origin) error
}

type plainWeights struct{}

func (plainWeights) Poke() weight.Policy { return weight.Fixed(3) }

type Plain struct {
	modkit.Module
	modkit.WithCalls[plainCalls]
	modkit.WithWeights[plainWeights]
}

func (p *Plain) Poke(ctx context.Context, origin dispatch.Origin) error {
	return nil
}
