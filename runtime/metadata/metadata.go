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

// Package metadata describes a module's callable operations for schema
// consumers. The generator emits one Function per declared call, in
// declaration order, and registers the table alongside the module.
package metadata

import (
	"fmt"
	"regexp"
	"strings"
)

// Function describes a single callable operation of a module.
type Function struct {
	Name string     // method name, e.g. "SetValue"
	Args []Argument // arguments in declaration order, excluding ctx and origin
	Docs []string   // doc comment lines, stripped of comment markers
}

// Argument describes one argument of a callable operation. Type is the
// effective wire type: an argument requested compact appears here with its
// compact wrapper, not as the bare numeric type.
type Argument struct {
	Name string
	Type string
}

// Signature returns a compact one-line rendering of f, e.g.
// "SetValue(new codec.Compact[uint64])".
func (f Function) Signature() string {
	parts := make([]string, len(f.Args))
	for i, arg := range f.Args {
		parts[i] = fmt.Sprintf("%s %s", arg.Name, arg.Type)
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
}

// pkgPath matches the directory portion of a package-path-qualified
// identifier, e.g. the "example.com/foo/" in "example.com/foo/bar.Baz".
var pkgPath = regexp.MustCompile(`([A-Za-z0-9._~\-]+/)+`)

// CleanTypeString canonicalizes a type string so that two structurally
// identical types render byte-identically regardless of how the original
// declaration was spelled. Package-path qualifiers are reduced to the
// package name, whitespace runs collapse to a single space, and spacing
// around punctuation is normalized. The function is idempotent: cleaning
// an already-clean string returns it unchanged.
func CleanTypeString(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = pkgPath.ReplaceAllString(s, "")
	for _, r := range [...][2]string{
		{"[ ", "["},
		{" ]", "]"},
		{"( ", "("},
		{" )", ")"},
		{"{ ", "{"},
		{" }", "}"},
		{"* ", "*"},
		{" .", "."},
		{". ", "."},
		{" ,", ","},
		{", ", ","},
		{" ;", ";"},
		{"; ", ";"},
	} {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	s = strings.ReplaceAll(s, ",", ", ")
	s = strings.ReplaceAll(s, ";", "; ")
	return s
}
