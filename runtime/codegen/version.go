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

import "github.com/modkit/modkit/runtime/version"

// Version pins the codegen API version a modkit_gen.go file was generated
// against. The generator writes the major and minor versions of its own
// codegen API into the array lengths of the type argument and emits
//
//	var _ codegen.LatestVersion = codegen.Version[[0][1]struct{}]("...")
//
// into every generated file. Compiling that file against a codegen package
// with a different version makes the two sides of the assignment distinct
// types, so the build fails, and the string literal puts the "re-run modkit
// generate" instruction into the compiler output. Patch releases leave the
// array lengths alone and never force regeneration.
type Version[_ any] string

// LatestVersion is the version stamp of the codegen API linked into this
// binary.
type LatestVersion = Version[[version.CodegenMajor][version.CodegenMinor]struct{}]
