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

package codegen

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/modkit/modkit/runtime"
	"github.com/modkit/modkit/runtime/codec"
	"github.com/modkit/modkit/runtime/metadata"
)

// globalRegistry is the registry used by Register and the lookup functions.
var globalRegistry registry

// registry is a repository for registered modules.
type registry struct {
	m      sync.Mutex
	byName map[string]*Registration
	byType map[reflect.Type]*Registration
}

// Registration is the generated description of a module: everything the
// runtime host and diagnostic tooling need to decode, classify, dispatch,
// and introspect the module's calls. One Registration is registered from an
// init function in every modkit_gen.go file.
type Registration struct {
	// Name is the full name of the module implementation type,
	// e.g. "github.com/example/app/counter/Counter".
	Name string

	// Module is the module implementation struct type.
	Module reflect.Type

	// Calls describes the module's callable operations in declaration
	// order.
	Calls []metadata.Function

	// CallNames holds the operation names in declaration order. It is
	// index-aligned with Calls and with the variant indexes DecodeCall
	// accepts.
	CallNames []string

	// NewDispatcher returns a Dispatcher bound to impl, which must be a
	// pointer to a value of the Module type.
	NewDispatcher func(impl any, opts DispatcherOptions) Dispatcher

	// DecodeCall decodes a call value previously serialized with
	// Call.Encode.
	DecodeCall func(dec *codec.Decoder) (Call, error)

	// ConfigFn returns a pointer to the config struct the implementation
	// embeds via modkit.WithConfig, or nil if it embeds none.
	ConfigFn func(impl any) any
}

// Register registers a module. It panics on malformed or duplicate
// registrations, since it is called from init functions where returning an
// error helps nobody.
func Register(reg Registration) {
	if err := globalRegistry.register(reg); err != nil {
		panic(err)
	}
}

func verifyRegistration(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("missing module name")
	}
	if reg.Module == nil {
		return fmt.Errorf("missing module type")
	}
	if reg.NewDispatcher == nil {
		return fmt.Errorf("missing NewDispatcher")
	}
	if reg.DecodeCall == nil {
		return fmt.Errorf("missing DecodeCall")
	}
	return nil
}

func (r *registry) register(reg Registration) error {
	if err := verifyRegistration(reg); err != nil {
		return fmt.Errorf("Register(%q): %w", reg.Name, err)
	}

	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.byName[reg.Name]; ok {
		return fmt.Errorf("module %s already registered", reg.Name)
	}
	if r.byName == nil {
		r.byName = map[string]*Registration{}
		r.byType = map[reflect.Type]*Registration{}
	}
	ptr := &reg
	r.byName[reg.Name] = ptr
	r.byType[reg.Module] = ptr
	return nil
}

func (r *registry) allModules() []*Registration {
	r.m.Lock()
	defer r.m.Unlock()
	regs := make([]*Registration, 0, len(r.byName))
	for _, reg := range r.byName {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })
	return regs
}

func (r *registry) find(name string) (*Registration, bool) {
	r.m.Lock()
	defer r.m.Unlock()
	reg, ok := r.byName[name]
	return reg, ok
}

func (r *registry) findModule(t reflect.Type) (*Registration, bool) {
	r.m.Lock()
	defer r.m.Unlock()
	reg, ok := r.byType[t]
	return reg, ok
}

// Registered returns all registered modules, sorted by name.
func Registered() []*Registration {
	return globalRegistry.allModules()
}

// Find returns the registration of the module with the given full name.
func Find(name string) (*Registration, bool) {
	return globalRegistry.find(name)
}

// FindModule returns the registration whose Module type is t.
func FindModule(t reflect.Type) (*Registration, bool) {
	return globalRegistry.findModule(t)
}

// ModuleConfigValidator checks that cfg is a valid TOML configuration
// section for the module registered under the given full name.
func ModuleConfigValidator(name, cfg string) error {
	reg, ok := globalRegistry.find(name)
	if !ok {
		// Not a known module.
		return nil
	}
	if reg.ConfigFn == nil {
		return fmt.Errorf("unexpected configuration for module %v that has no config", name)
	}
	impl := reflect.New(reg.Module).Interface()
	target := reg.ConfigFn(impl)
	if target == nil {
		return fmt.Errorf("unexpected configuration for module %v", name)
	}
	if err := runtime.ParseConfigSection(name, "", map[string]string{name: cfg}, target); err != nil {
		return fmt.Errorf("module %v: bad config: %w", name, err)
	}
	return nil
}
