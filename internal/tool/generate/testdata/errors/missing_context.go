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

// ERROR: call Clock.Tick: the first argument must have type context.Context
package foo

import (
	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type clockCalls interface {
	Tick(label string, origin dispatch.Origin) error
}

type clockWeights struct{}

func (clockWeights) Tick() weight.Policy { return weight.Fixed(1) }

type Clock struct {
	modkit.Module
	modkit.WithCalls[clockCalls]
	modkit.WithWeights[clockWeights]
}

func (c *Clock) Tick(label string, origin dispatch.Origin) error { return nil }
