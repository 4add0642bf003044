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

package modkit

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/modkit/modkit/runtime"
	"github.com/modkit/modkit/runtime/codec"
	"github.com/modkit/modkit/runtime/codegen"
	"github.com/modkit/modkit/runtime/dispatch"
	"github.com/modkit/modkit/runtime/weight"
)

// RuntimeOptions configures a Runtime.
type RuntimeOptions struct {
	// Logger receives the runtime's own log output and, scoped by module
	// name, the loggers handed to installed modules. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// Tracer traces dispatched calls. If nil, dispatches are not traced.
	Tracer trace.Tracer

	// Config is the application configuration in TOML. The section whose
	// key matches an installed module's full name is applied to the
	// module's modkit.WithConfig struct during Install.
	Config string

	// ConfigFile is the name of the file Config was read from. It is used
	// in error messages and as the default application name.
	ConfigFile string
}

// A Runtime hosts module implementations. It installs implementations
// against their generated registrations, applies their TOML config
// sections, and turns serialized call bytes into dispatched operations:
// every inbound call is decoded, classified, recorded in the runtime's
// weight meter, and then dispatched with its origin.
//
// Install every module at startup, then Dispatch from as many goroutines
// as needed.
type Runtime struct {
	logger *slog.Logger
	tracer trace.Tracer
	app    *runtime.AppConfig
	meter  *weight.Meter

	mu      sync.Mutex
	modules map[string]*installedModule
}

// installedModule is one module implementation installed in a Runtime.
type installedModule struct {
	reg        *codegen.Registration
	impl       any
	dispatcher codegen.Dispatcher
}

// NewRuntime returns a Runtime with no modules installed. The config in
// opts, if any, is parsed and validated eagerly; sections for modules that
// are never installed are permitted and ignored.
func NewRuntime(opts RuntimeOptions) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &runtime.AppConfig{Sections: map[string]string{}}
	if opts.Config != "" {
		var err error
		app, err = runtime.ParseConfig(opts.ConfigFile, opts.Config, codegen.ModuleConfigValidator)
		if err != nil {
			return nil, err
		}
	}
	meter, err := weight.NewMeter()
	if err != nil {
		return nil, err
	}
	return &Runtime{
		logger:  logger,
		tracer:  opts.Tracer,
		app:     app,
		meter:   meter,
		modules: map[string]*installedModule{},
	}, nil
}

// Install installs the module implementation impl. impl must be a pointer
// to a module struct processed by "modkit generate". Install parses the
// module's config section, if any, into its WithConfig struct, scopes the
// module's logger by the module name, and binds a dispatcher to impl. If
// impl implements interface{ Init(context.Context) error }, Install calls
// Init once the config and logger are in place.
func (r *Runtime) Install(ctx context.Context, impl any) error {
	t := reflect.TypeOf(impl)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("install: %T is not a pointer to a module struct", impl)
	}
	reg, ok := codegen.FindModule(t.Elem())
	if !ok {
		return fmt.Errorf("install: module %v not found; maybe you forgot to run modkit generate", t.Elem())
	}

	if c, ok := impl.(interface{ getConfig() any }); ok {
		if err := runtime.ParseConfigSection(reg.Name, "", r.app.Sections, c.getConfig()); err != nil {
			return fmt.Errorf("install %s: %w", reg.Name, err)
		}
	}

	x, ok := impl.(interface{ setLogger(*slog.Logger) })
	if !ok {
		return fmt.Errorf("install %s: %T does not embed modkit.Module", reg.Name, impl)
	}
	x.setLogger(r.logger.With("module", reg.Name))

	if i, ok := impl.(interface{ Init(context.Context) error }); ok {
		if err := i.Init(ctx); err != nil {
			return fmt.Errorf("install %s: init: %w", reg.Name, err)
		}
	}

	d := reg.NewDispatcher(impl, codegen.DispatcherOptions{Tracer: r.tracer})

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[reg.Name]; ok {
		return fmt.Errorf("install: module %s already installed", reg.Name)
	}
	r.modules[reg.Name] = &installedModule{reg: reg, impl: impl, dispatcher: d}
	return nil
}

// Dispatch decodes one serialized call addressed to the named module,
// classifies it, and dispatches it with the given origin. module is the
// full registered name of an installed module, e.g.
// "github.com/example/app/Counter". The call's classification is recorded
// in the runtime's meter before the operation runs, so metered weight
// reflects the declared cost, not the outcome.
func (r *Runtime) Dispatch(ctx context.Context, module string, data []byte, origin dispatch.Origin) (dispatch.PostInfo, error) {
	r.mu.Lock()
	inst, ok := r.modules[module]
	r.mu.Unlock()
	if !ok {
		if _, registered := codegen.Find(module); registered {
			return dispatch.PostInfo{}, fmt.Errorf("dispatch: module %s not installed", module)
		}
		return dispatch.PostInfo{}, fmt.Errorf("dispatch: unknown module %s", module)
	}

	dec := codec.NewDecoder(data)
	call, err := inst.reg.DecodeCall(dec)
	if err != nil {
		return dispatch.PostInfo{}, fmt.Errorf("dispatch %s: %w", module, err)
	}
	name := module + "." + call.CallName()
	if !dec.Empty() {
		return dispatch.PostInfo{}, fmt.Errorf("dispatch %s: undecoded bytes after call", name)
	}

	info, err := inst.dispatcher.Classify(call)
	if err != nil {
		return dispatch.PostInfo{}, err
	}
	signer, _ := origin.Signer()
	if err := r.meter.Record(name, signer, info); err != nil {
		r.logger.Warn("cannot meter call", "call", name, "err", err)
	}

	if r.tracer == nil {
		return inst.dispatcher.Dispatch(ctx, call, origin)
	}
	ctx, span := r.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	post, err := inst.dispatcher.Dispatch(ctx, call, origin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return post, err
}

// Modules returns the registrations of the installed modules, sorted by
// name.
func (r *Runtime) Modules() []*codegen.Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := make([]*codegen.Registration, 0, len(r.modules))
	for _, inst := range r.modules {
		regs = append(regs, inst.reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })
	return regs
}

// Load returns the call accounting recorded by the runtime's meter, one
// entry per dispatched call name, ordered by name.
func (r *Runtime) Load() []weight.CallLoad {
	return r.meter.Summary()
}
