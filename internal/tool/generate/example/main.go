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

// See TestExampleVersion in generator_test.go.

package main

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

//go:generate ../../../../cmd/modkit/modkit generate

type counterConfig struct {
	Start uint64
}

type counterCalls interface {
	// SetValue replaces the counter with an exact value.
	SetValue(ctx context.Context, origin dispatch.Origin, newValue uint64) error

	// Add increments the counter.
	//
	//modkit:compact delta
	Add(ctx context.Context, origin dispatch.Origin, delta uint64) (dispatch.PostInfo, error)

	// Reset zeroes the counter.
	Reset(ctx context.Context, origin dispatch.Origin) error
}

type counterWeights struct{}

func (counterWeights) SetValue() weight.Policy { return weight.Fixed(100) }

func (counterWeights) Add() weight.Policy {
	return weight.Func{WeighFn: func(args []any) weight.Weight {
		return weight.Weight(args[0].(uint64))
	}}
}

func (counterWeights) Reset() weight.Policy {
	return weight.Fixed(10).InClass(weight.Operational).NoFee()
}

type Counter struct {
	modkit.Module
	modkit.WithCalls[counterCalls]
	modkit.WithWeights[counterWeights]
	modkit.WithConfig[counterConfig]

	value uint64
}

func (c *Counter) SetValue(_ context.Context, origin dispatch.Origin, newValue uint64) error {
	if err := dispatch.EnsureRoot(origin); err != nil {
		return err
	}
	c.value = newValue
	return nil
}

func (c *Counter) Add(_ context.Context, origin dispatch.Origin, delta uint64) (dispatch.PostInfo, error) {
	if _, err := dispatch.EnsureSigned(origin); err != nil {
		return dispatch.PostInfo{}, err
	}
	c.value += delta
	if delta == 0 {
		return dispatch.WithActualWeight(0), nil
	}
	return dispatch.PostInfo{}, nil
}

func (c *Counter) Reset(_ context.Context, origin dispatch.Origin) error {
	if err := dispatch.EnsureRoot(origin); err != nil {
		return err
	}
	c.value = 0
	return nil
}

func main() {}
