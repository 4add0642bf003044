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

// Package docs implements the "modkit describe" and "modkit docs"
// subcommands, which render the call metadata of the modules in a set of
// packages as text and as HTML.
package docs

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"

	"github.com/modkit/modkit/internal/tool/generate"
	"github.com/modkit/modkit/runtime/colors"
	"github.com/modkit/modkit/runtime/metadata"
)

const DescribeUsage = `Describe the modkit modules in a set of packages.

Usage:
  modkit describe [--filter=filter] [packages]

Description:
  "modkit describe" prints a table with one row per call declared by the
  modkit modules in the provided packages. You specify packages the same way
  you specify packages for go build (see "go help packages").

  The --filter flag selects which calls to show. A filter is a CEL program
  [1] that evaluates to a bool over the following fields:

    - module: string        full module name, e.g. "example.com/foo/Counter"
    - call: string          call name, e.g. "Increment"
    - args: list of string  argument types, e.g. ["string", "codec.Compact[uint64]"]
    - docs: string          the call's doc comment

  [1]: https://github.com/google/cel-spec

Examples:
  # Describe the modules in the current directory.
  modkit describe

  # Describe the modules in all subdirectories of the current directory.
  modkit describe ./...

  # Show only the calls of the Counter module.
  modkit describe --filter='module.contains("Counter")'

  # Show only calls that take a compact argument.
  modkit describe --filter='args.exists(a, a.contains("Compact"))'`

// DescribeOptions configures Describe.
type DescribeOptions struct {
	// Filter selects which calls to show. The empty filter shows every
	// call. See DescribeUsage for the filter syntax.
	Filter string

	// Warn is called with warnings that do not stop the description. If
	// nil, warnings are printed to stderr.
	Warn func(error)
}

// Describe writes a table describing the modkit modules in the provided
// packages to w, one row per declared call.
func Describe(w io.Writer, dir string, pkgs []string, opts DescribeOptions) error {
	mods, err := generate.Inspect(dir, pkgs, generate.Options{Warn: opts.Warn})
	if err != nil {
		return err
	}
	if opts.Filter != "" {
		if mods, err = filterModules(mods, opts.Filter); err != nil {
			return err
		}
	}
	writeTable(w, mods)
	return nil
}

// writeTable pretty-prints the set of modules.
func writeTable(w io.Writer, mods []generate.ModuleInfo) {
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
	title := []colors.Text{{{S: "MODULES", Bold: true}}}
	t := colors.NewTabularizer(w, title, colors.PrefixDim)
	defer t.Flush()
	t.Row("MODULE", "CALL", "ARGUMENTS")
	for _, mod := range mods {
		name := colors.Atom{S: mod.Name, Color: colors.ColorHash(mod.Name)}
		if len(mod.Calls) == 0 {
			t.Row(name, "-", "-")
			continue
		}
		for _, fn := range mod.Calls {
			args := make([]string, len(fn.Args))
			for i, arg := range fn.Args {
				args[i] = fmt.Sprintf("%s %s", arg.Name, arg.Type)
			}
			t.Row(name, fn.Name, strings.Join(args, ", "))
		}
	}
}

// filterModules returns the modules with at least one call matching the
// filter, with non-matching calls removed.
func filterModules(mods []generate.ModuleInfo, filter string) ([]generate.ModuleInfo, error) {
	prog, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}
	var filtered []generate.ModuleInfo
	for _, mod := range mods {
		keep := mod
		keep.Calls = nil
		for _, fn := range mod.Calls {
			match, err := matchesFilter(prog, mod.Name, fn)
			if err != nil {
				return nil, err
			}
			if match {
				keep.Calls = append(keep.Calls, fn)
			}
		}
		if len(keep.Calls) > 0 {
			filtered = append(filtered, keep)
		}
	}
	return filtered, nil
}

// filterEnv returns the cel.Env needed to compile a filter.
func filterEnv() (*cel.Env, error) {
	return cel.NewEnv(cel.Declarations(
		decls.NewVar("module", decls.String),
		decls.NewVar("call", decls.String),
		decls.NewVar("args", decls.NewListType(decls.String)),
		decls.NewVar("docs", decls.String),
	))
}

// compileFilter parses and type-checks a filter into an executable program.
func compileFilter(filter string) (cel.Program, error) {
	env, err := filterEnv()
	if err != nil {
		return nil, fmt.Errorf("filter %q: environment error: %w", filter, err)
	}
	ast, issues := env.Compile(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter %q: %w", filter, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter %q: got %v, want bool", filter, ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", filter, err)
	}
	return prog, nil
}

// matchesFilter returns whether the compiled filter matches the provided
// call of the named module.
func matchesFilter(prog cel.Program, module string, fn metadata.Function) (bool, error) {
	args := make([]string, len(fn.Args))
	for i, arg := range fn.Args {
		args[i] = arg.Type
	}
	out, _, err := prog.Eval(map[string]interface{}{
		"module": module,
		"call":   fn.Name,
		"args":   args,
		"docs":   strings.Join(fn.Docs, "\n"),
	})
	if err != nil {
		if out != nil {
			// Successful eval to an error result, e.g. an out of range
			// args index. We interpret this as a non-match.
			return false, nil
		}
		return false, err
	}
	b, err := out.ConvertToNative(reflect.TypeOf(true))
	if err != nil {
		return false, err
	}
	return b.(bool), nil
}
