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

package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fsnotify/fsnotify"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/modkit/modkit/internal/files"
	"github.com/modkit/modkit/internal/tool/generate"
)

const DocsUsage = `Render the modkit modules in a set of packages as HTML.

Usage:
  modkit docs [--output=file] [--watch] [packages]

Description:
  "modkit docs" renders the call metadata of the modkit modules in the
  provided packages as a standalone HTML page with syntax-highlighted call
  signatures. You specify packages the same way you specify packages for go
  build (see "go help packages").

  The --output flag names the generated file; it defaults to
  modkit_docs.html. With --watch, the page is re-rendered whenever a Go
  source file under the current directory changes.

Examples:
  # Render the modules in all subdirectories of the current directory.
  modkit docs ./...

  # Re-render docs.html on every source change.
  modkit docs --output=docs.html --watch ./...`

// DocsOptions configures Docs.
type DocsOptions struct {
	// Output is the name of the generated HTML file. If empty, it defaults
	// to modkit_docs.html.
	Output string

	// Watch, if true, re-renders the documentation whenever a Go source
	// file under dir changes.
	Watch bool

	// Warn is called with warnings that do not stop rendering. If nil,
	// warnings are printed to stderr.
	Warn func(error)
}

// Docs renders the call metadata of the modkit modules in the provided
// packages as a standalone HTML page.
func Docs(dir string, pkgs []string, opts DocsOptions) error {
	if opts.Output == "" {
		opts.Output = "modkit_docs.html"
	}
	if opts.Warn == nil {
		opts.Warn = func(err error) { fmt.Fprintln(os.Stderr, err) }
	}
	if err := renderDocs(dir, pkgs, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return watchDocs(dir, pkgs, opts)
}

// renderDocs renders the modules in the provided packages into opts.Output.
func renderDocs(dir string, pkgs []string, opts DocsOptions) error {
	mods, err := generate.Inspect(dir, pkgs, generate.Options{Warn: opts.Warn})
	if err != nil {
		return err
	}
	page, err := renderPage(mods)
	if err != nil {
		return err
	}
	w := files.NewWriter(opts.Output)
	defer w.Cleanup()
	if _, err := w.Write(page); err != nil {
		return err
	}
	return w.Close()
}

// watchDocs re-renders the modules whenever a Go source file under dir
// changes. It runs until the watcher fails or a re-render hits an I/O error.
func watchDocs(dir string, pkgs []string, opts DocsOptions) error {
	// Gather the set of directories to watch. As per the fsnotify
	// documentation [1], we watch directories rather than individual files.
	//
	// [1]: https://pkg.go.dev/github.com/fsnotify/fsnotify#NewWatcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != dir &&
			(strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return err
	}

	for {
		select {
		case event := <-watcher.Events:
			if event.Op != fsnotify.Write || filepath.Ext(event.Name) != ".go" {
				continue
			}
			fmt.Println(event)
			if err := renderDocs(dir, pkgs, opts); err != nil {
				// Sources are often mid-edit when we get here, so a failed
				// load is a warning rather than a reason to stop watching.
				opts.Warn(err)
			}
		case err := <-watcher.Errors:
			return err
		}
	}
}

// renderPage renders the module metadata as a standalone HTML page.
func renderPage(mods []generate.ModuleInfo) ([]byte, error) {
	md, err := markdownRenderer()
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := md.Convert(buildMarkdown(mods), &body); err != nil {
		return nil, err
	}
	var page bytes.Buffer
	err = pageTemplate.Execute(&page, pageData{
		Title:    "ModKit module reference",
		Contents: template.HTML(body.String()),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}

// buildMarkdown renders the module metadata as a markdown document: an index
// table followed by one section per module with a fenced signature block and
// the doc comment of every call.
func buildMarkdown(mods []generate.ModuleInfo) []byte {
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })

	var b bytes.Buffer
	fmt.Fprintf(&b, "# Module reference\n\n")
	fmt.Fprintf(&b, "| Module | Package | Calls |\n")
	fmt.Fprintf(&b, "| --- | --- | --- |\n")
	for _, mod := range mods {
		fmt.Fprintf(&b, "| %s | `%s` | %d |\n", mod.Name, mod.Package, len(mod.Calls))
	}
	fmt.Fprintln(&b)

	for _, mod := range mods {
		fmt.Fprintf(&b, "## %s\n\n", mod.Name)
		switch {
		case !mod.Declared:
			fmt.Fprintf(&b, "Declares no call block.\n\n")
		case len(mod.Calls) == 0:
			fmt.Fprintf(&b, "Declares an empty call block.\n\n")
		}
		for _, fn := range mod.Calls {
			fmt.Fprintf(&b, "### %s\n\n", fn.Name)
			fmt.Fprintf(&b, "```go\nfunc %s\n```\n\n", fn.Signature())
			for _, line := range fn.Docs {
				fmt.Fprintf(&b, "%s\n", line)
			}
			if len(fn.Docs) > 0 {
				fmt.Fprintln(&b)
			}
		}
	}
	return b.Bytes()
}

// markdownRenderer returns a markdown renderer that syntax-highlights fenced
// code blocks.
func markdownRenderer() (goldmark.Markdown, error) {
	// Use the monokai style, but don't color all names and functions green.
	builder := styles.Get("monokai").Builder()
	builder.Add(chroma.NameOther, "#ffffff")
	builder.Add(chroma.NameFunction, "#ffffff")
	style, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return goldmark.New(
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithCustomStyle(style),
			),
			extension.Table,
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	), nil
}

type pageData struct {
	Title    string
	Contents template.HTML
}

var pageTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 50rem; margin: 2rem auto; padding: 0 1rem; }
pre { padding: 0.75rem; border-radius: 4px; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 0.25rem 0.75rem; text-align: left; }
h2 { border-bottom: 1px solid #999; padding-bottom: 0.25rem; }
</style>
</head>
<body>
{{.Contents}}
</body>
</html>
`))
