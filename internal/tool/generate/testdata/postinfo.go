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
// info, err = d.impl.Refund(ctx, origin)
// err = d.impl.Burn(ctx, origin)

// UNEXPECTED
// info, err = d.impl.Burn

// A call may return (dispatch.PostInfo, error) to report its actual cost; a
// plain error return leaves the declared weight in force.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type treasuryCalls interface {
	Refund(ctx context.Context, origin dispatch.Origin) (dispatch.PostInfo, error)
	Burn(ctx context.Context, origin dispatch.Origin) error
}

type treasuryWeights struct{}

func (treasuryWeights) Refund() weight.Policy { return weight.Fixed(500) }
func (treasuryWeights) Burn() weight.Policy { return weight.Fixed(50) }

type Treasury struct {
	modkit.Module
	modkit.WithCalls[treasuryCalls]
	modkit.WithWeights[treasuryWeights]
}

func (t *Treasury) Refund(ctx context.Context, origin dispatch.Origin) (dispatch.PostInfo, error) {
	return dispatch.PostInfo{}, nil
}

func (t *Treasury) Burn(ctx context.Context, origin dispatch.Origin) error {
	return nil
}
