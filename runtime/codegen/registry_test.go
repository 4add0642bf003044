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

package codegen_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/modkit/modkit"
	"github.com/modkit/modkit/runtime/codec"
	"github.com/modkit/modkit/runtime/codegen"
)

func TestModuleConfigValidator(t *testing.T) {
	if err := codegen.ModuleConfigValidator(moduleConfigured, `Size = 128`); err != nil {
		t.Fatal(err)
	}
}

func TestModuleConfigValidatorErrors(t *testing.T) {
	for _, test := range []struct {
		module  string
		config  string
		wantErr string
	}{
		{modulePlain, `Size = 128`, "unexpected configuration"},
		{moduleConfigured, `Size = "huge"`, "incompatible types"},
		{moduleConfigured, `Size = -5`, "negative Size"},
	} {
		t.Run(test.wantErr, func(t *testing.T) {
			err := codegen.ModuleConfigValidator(test.module, test.config)
			if err == nil {
				t.Fatalf("config %q accepted", test.config)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("error %v does not mention %q", err, test.wantErr)
			}
		})
	}
}

func TestModuleConfigValidatorIgnoresUnknown(t *testing.T) {
	// Sections for modules that aren't linked into the binary are ignored.
	if err := codegen.ModuleConfigValidator("codegen_test/unknown", `Foo = 1`); err != nil {
		t.Fatal(err)
	}
}

func TestFindModule(t *testing.T) {
	typ := reflect.TypeOf((*configured)(nil)).Elem()
	reg, ok := codegen.FindModule(typ)
	if !ok {
		t.Fatalf("FindModule(%v): not found", typ)
	}
	if reg.Name != moduleConfigured {
		t.Fatalf("FindModule(%v): got %q, want %q", typ, reg.Name, moduleConfigured)
	}
	if _, ok := codegen.FindModule(reflect.TypeOf(cacheConfig{})); ok {
		t.Fatal("FindModule(cacheConfig): unexpected success")
	}
}

func TestRegisteredSorted(t *testing.T) {
	regs := codegen.Registered()
	for i := 1; i < len(regs); i++ {
		if regs[i-1].Name >= regs[i].Name {
			t.Fatalf("Registered() not sorted: %q before %q", regs[i-1].Name, regs[i].Name)
		}
	}
}

const (
	modulePlain      = "codegen_test/plain"
	moduleConfigured = "codegen_test/configured"
)

type plain struct{}

type configured struct {
	modkit.WithConfig[cacheConfig]
}

type cacheConfig struct {
	Size   int
	Policy string
}

func (c cacheConfig) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("negative Size")
	}
	return nil
}

// Register fixture modules for the tests in this file.
func init() {
	dispatcher := func(any, codegen.DispatcherOptions) codegen.Dispatcher { return nil }
	decode := func(*codec.Decoder) (codegen.Call, error) { return nil, nil }

	codegen.Register(codegen.Registration{
		Name:          modulePlain,
		Module:        reflect.TypeOf((*plain)(nil)).Elem(),
		NewDispatcher: dispatcher,
		DecodeCall:    decode,
	})
	codegen.Register(codegen.Registration{
		Name:          moduleConfigured,
		Module:        reflect.TypeOf((*configured)(nil)).Elem(),
		ConfigFn:      func(i any) any { return i.(*configured).Config() },
		NewDispatcher: dispatcher,
		DecodeCall:    decode,
	})
}
