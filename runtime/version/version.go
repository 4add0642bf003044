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

// Package version contains the versions of the modkit module and of the
// code generator API.
package version

import "fmt"

const (
	// The version of the modkit module in semantic version format
	// (Major.Minor.Patch).
	ModuleMajor = 0
	ModuleMinor = 1
	ModulePatch = 0

	// The version of the API between a generated modkit_gen.go file and the
	// modkit runtime linked into the same binary, in semantic version format
	// with the patch number omitted (Major.Minor).
	//
	// Every time we change what 'modkit generate' emits in a way that
	// requires users to re-run it, we assign the codegen API a new version.
	// Rather than numbering these versions v1, v2, v3, and so on, we reuse
	// the version of the modkit module in which the change shipped. For
	// example, if v0.5.0 of modkit changes the codegen API, the codegen API
	// version becomes v0.5. If v0.6.0 doesn't change the codegen API, the
	// codegen API version stays at v0.5. This makes it easy to see which
	// module version a stale modkit_gen.go file was generated with.
	CodegenMajor = 0
	CodegenMinor = 1
)

// ModuleVersion returns the version of the modkit module, e.g. "v0.1.0".
func ModuleVersion() string {
	return fmt.Sprintf("v%d.%d.%d", ModuleMajor, ModuleMinor, ModulePatch)
}

// CodegenVersion returns the version of the code generator API, e.g. "v0.1.0".
func CodegenVersion() string {
	return fmt.Sprintf("v%d.%d.0", CodegenMajor, CodegenMinor)
}
