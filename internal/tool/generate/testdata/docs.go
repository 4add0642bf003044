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
// Docs: []string{"Mint issues new units.", "", "The origin must be root."}
// Docs: nil}

// UNEXPECTED
// Docs: []string{}

// Call doc comments are carried into the metadata table verbatim, paragraph
// breaks included. Undocumented calls carry no docs.
package foo

import (
	"context"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type ledgerCalls interface {
	// Mint issues new units.
	//
	// The origin must be root.
	Mint(ctx context.Context, origin dispatch.Origin, amount uint64) error

	Retire(ctx context.Context, origin dispatch.Origin) error
}

type ledgerWeights struct{}

func (ledgerWeights) Mint() weight.Policy { return weight.Fixed(40) }

func (ledgerWeights) Retire() weight.Policy { return weight.Fixed(8) }

type Ledger struct {
	modkit.Module
	modkit.WithCalls[ledgerCalls]
	modkit.WithWeights[ledgerWeights]
}

func (l *Ledger) Mint(ctx context.Context, origin dispatch.Origin, amount uint64) error {
	return nil
}

func (l *Ledger) Retire(ctx context.Context, origin dispatch.Origin) error {
	return nil
}
