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

// Package modkit lets you write modules: self-contained units that declare a
// set of externally invocable operations. Run "modkit generate" to synthesize
// the per-module call types, dispatcher, cost classifier, and metadata table
// into a modkit_gen.go file.
//
// A module is a struct that embeds [Module] and declares its operations via
// [WithCalls]:
//
//	type counter struct {
//		modkit.Module
//		modkit.WithCalls[counterCalls]
//		modkit.WithWeights[counterWeights]
//
//		mu    sync.Mutex
//		value uint32
//	}
//
//	// counterCalls lists the operations of the counter module.
//	type counterCalls interface {
//		// SetValue replaces the stored value.
//		SetValue(ctx context.Context, origin dispatch.Origin, newValue uint32) error
//	}
//
//	// counterWeights assigns a cost policy to every operation.
//	type counterWeights struct{}
//
//	func (counterWeights) SetValue() weight.Policy { return weight.Fixed(10) }
//
// The module implementation must implement the call-block interface. Every
// call method takes a context and a [dispatch.Origin] and returns either an
// error or a (dispatch.PostInfo, error) pair.
package modkit

import (
	"log/slog"
)

// Module is embedded in every module implementation struct. It marks the
// struct for "modkit generate" and carries the per-module logger installed by
// the [Runtime].
type Module struct {
	logger *slog.Logger
}

// Logger returns a logger scoped to the module. Before the module is
// installed in a [Runtime], Logger returns the default logger.
func (m *Module) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// setLogger sets the module logger. Called by the Runtime during Install.
func (m *Module) setLogger(logger *slog.Logger) {
	m.logger = logger
}

// WithCalls[C] is embedded in a module implementation struct to declare its
// call block. C is an interface whose methods are the module's operations; it
// may be empty. A module without a WithCalls embed has no call block at all,
// which is a stronger statement than an empty one: downstream assemblies that
// require the module's call probe will fail to compile.
type WithCalls[C any] struct{}

// declaresCalls(C) implements the CallsOf[C] interface.
//
//lint:ignore U1000 declaresCalls is used by CallsOf.
func (WithCalls[C]) declaresCalls(C) {}

// CallsOf[C] is implemented by any module implementation that declares the
// call block C.
type CallsOf[C any] interface {
	declaresCalls(C)
}

// WithWeights[W] is embedded in a module implementation struct to bind its
// weights companion. W must be a struct type declaring, for every call-block
// method, a same-named niladic method returning a weight.Policy. Required
// whenever the call block declares at least one operation.
type WithWeights[W any] struct{}

// weighedBy(W) implements the WeighedBy[W] interface.
//
//lint:ignore U1000 weighedBy is used by WeighedBy.
func (WithWeights[W]) weighedBy(W) {}

// WeighedBy[W] is implemented by any module implementation whose weights
// companion is W.
type WeighedBy[W any] interface {
	weighedBy(W)
}

// WithConfig[T] is embedded in a module implementation struct to give the
// module a configuration of type T, filled in from the module's section of
// the application TOML config when the module is installed.
//
//	type counter struct {
//		modkit.Module
//		modkit.WithCalls[counterCalls]
//		modkit.WithConfig[counterConfig]
//	}
//
//	type counterConfig struct {
//		Initial uint32
//	}
//
// Call wc.Config() to access the filled-in configuration.
type WithConfig[T any] struct {
	config T
}

// Config returns the module configuration.
func (wc *WithConfig[T]) Config() *T {
	return &wc.config
}

// getConfig returns the underlying config.
func (wc *WithConfig[T]) getConfig() any {
	return &wc.config
}
