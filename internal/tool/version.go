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

// Package tool contains helpers shared by modkit command line tools.
package tool

import (
	"fmt"
	"runtime"

	"github.com/modkit/modkit/runtime/version"
)

// Version returns the one-line version banner of the named tool, e.g.
// "modkit v0.1.0 linux/amd64".
func Version(toolname string) string {
	return fmt.Sprintf("%s %s %s/%s", toolname, version.ModuleVersion(), runtime.GOOS, runtime.GOARCH)
}
