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

// ERROR: call block storeCalls cannot embed other interfaces
package foo

import (
	"context"
	"io"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

type storeCalls interface {
	io.Closer
	Flush(ctx context.Context, origin dispatch.Origin) error
}

type storeWeights struct{}

func (storeWeights) Flush() weight.Policy { return weight.Fixed(1) }

type Store struct {
	modkit.Module
	modkit.WithCalls[storeCalls]
	modkit.WithWeights[storeWeights]
}

func (s *Store) Close() error { return nil }

func (s *Store) Flush(ctx context.Context, origin dispatch.Origin) error { return nil }
