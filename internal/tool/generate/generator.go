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

package generate

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/modkit/modkit/internal/files"
	"github.com/modkit/modkit/runtime/metadata"
	"github.com/modkit/modkit/runtime/version"
)

const (
	generatedCodeFile = "modkit_gen.go"

	Usage = `Generate dispatch code for modkit modules.

Usage:
  modkit generate [packages]

Description:
  "modkit generate" generates code for the modkit modules in the provided
  packages. For example, "modkit generate . ./foo" will generate code for the
  modules in the current directory and in the ./foo directory. For every
  package, the generated code is placed in a modkit_gen.go file in the
  package's directory. For example, running "modkit generate . ./foo" will
  create ./modkit_gen.go and ./foo/modkit_gen.go.

  You specify packages for "modkit generate" in the same way you specify
  packages for go build, go test, go vet, etc. See "go help packages" for more
  information.

  Rather than invoking "modkit generate" directly, you can place a line of the
  following form in one of the .go files in the package:

      //go:generate modkit generate

  and then use the normal "go generate" command.

Examples:
  # Generate code for the package in the current directory.
  modkit generate

  # Same as "modkit generate".
  modkit generate .

  # Generate code for the package in the ./foo directory.
  modkit generate ./foo

  # Generate code for all packages in all subdirectories of current directory.
  modkit generate ./...`
)

// ErrorList holds a list of errors.
type ErrorList []error

func (list ErrorList) Error() string {
	var b strings.Builder
	for _, err := range list {
		fmt.Fprintln(&b, err.Error())
	}
	return b.String()
}

// Options configures Generate and Inspect.
type Options struct {
	// Warn is called with warnings that do not stop generation. If nil,
	// warnings are printed to stderr.
	Warn func(error)
}

// Generate generates dispatch code for the modkit modules in the provided
// packages. The list of supplied packages is treated similarly to the
// arguments passed to "go build" (see "go help packages" for details).
func Generate(dir string, pkgs []string, opt Options) error {
	if opt.Warn == nil {
		opt.Warn = func(err error) { fmt.Fprintln(os.Stderr, err) }
	}
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Mode:      packages.NeedName | packages.NeedSyntax | packages.NeedImports | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:       dir,
		Fset:      fset,
		ParseFile: parseNonModkitGenFile,
	}
	pkgList, err := packages.Load(cfg, pkgs...)
	if err != nil {
		return fmt.Errorf("packages.Load: %w", err)
	}

	var errs []error
	for _, p := range pkgList {
		g := &generator{
			opt:     opt,
			pkg:     p,
			tset:    newTypeSet(p.Types),
			fileset: fset,
		}
		g.processPackage(p)
		if len(g.errors) == 0 && len(g.modules) > 0 {
			g.generate()
		}
		errs = append(errs, g.errors...)
	}
	if len(errs) != 0 {
		return ErrorList(errs)
	}
	return nil
}

// ModuleInfo describes one module found by Inspect.
type ModuleInfo struct {
	// Name is the full module name, e.g. "github.com/example/counter/Counter".
	Name string

	// Package is the import path of the package declaring the module.
	Package string

	// Declared reports whether the module declares a call block, even an
	// empty one.
	Declared bool

	// Calls holds the metadata of the module's calls, in declaration order.
	Calls []metadata.Function
}

// Inspect loads the provided packages and returns a description of every
// module found, shaped like the metadata tables that generated code
// registers at runtime. Inspect writes no files.
func Inspect(dir string, pkgs []string, opt Options) ([]ModuleInfo, error) {
	if opt.Warn == nil {
		opt.Warn = func(err error) { fmt.Fprintln(os.Stderr, err) }
	}
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Mode:      packages.NeedName | packages.NeedSyntax | packages.NeedImports | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:       dir,
		Fset:      fset,
		ParseFile: parseNonModkitGenFile,
	}
	pkgList, err := packages.Load(cfg, pkgs...)
	if err != nil {
		return nil, fmt.Errorf("packages.Load: %w", err)
	}

	var infos []ModuleInfo
	var errs []error
	for _, p := range pkgList {
		g := &generator{
			opt:     opt,
			pkg:     p,
			tset:    newTypeSet(p.Types),
			fileset: fset,
		}
		g.processPackage(p)
		if len(g.errors) > 0 {
			errs = append(errs, g.errors...)
			continue
		}
		for _, mod := range g.modules {
			infos = append(infos, ModuleInfo{
				Name:     mod.fullName(p.PkgPath),
				Package:  p.PkgPath,
				Declared: mod.declared,
				Calls:    g.callMetadata(mod),
			})
		}
	}
	if len(errs) != 0 {
		return nil, ErrorList(errs)
	}
	return infos, nil
}

// parseNonModkitGenFile parses a Go file, except for modkit_gen.go files
// whose contents are ignored since those contents may reference code that no
// longer exists.
func parseNonModkitGenFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if filepath.Base(filename) == generatedCodeFile {
		return parser.ParseFile(fset, filename, src, parser.PackageClauseOnly)
	}
	return parser.ParseFile(fset, filename, src, parser.ParseComments|parser.DeclarationErrors)
}

type printFn func(format string, args ...interface{})

type generator struct {
	opt     Options
	pkg     *packages.Package
	tset    *typeSet
	fileset *token.FileSet
	errors  []error
	modules []*module

	encDecNeeded typeutil.Map // types that need a modkit_enc_*/modkit_dec_* helper
	encDecQueue  []types.Type // the same types, in the order they were needed
}

// module holds the generator's view of one modkit module: the implementation
// struct and the calls, weights, and config declarations attached to it.
type module struct {
	name       string       // implementation type name, e.g. "Counter"
	impl       *types.Named // implementation struct type
	pos        token.Pos    // implementation type declaration
	declared   bool         // does the module embed modkit.WithCalls?
	calls      []*call      // declared calls, in declaration order
	callsPos   token.Pos    // the embedded modkit.WithCalls field
	weights    *types.Named // weights companion, nil if absent
	weightsPos token.Pos    // the embedded modkit.WithWeights field
	hasConfig  bool         // does the module embed modkit.WithConfig?
}

// fullName returns the full module name, e.g.
// "github.com/example/counter/Counter".
func (m *module) fullName(pkgPath string) string {
	return path.Join(pkgPath, m.name)
}

// call is a single declared operation of a module.
type call struct {
	name        string
	docs        []string // doc comment lines, without comment markers
	args        []*arg   // arguments after ctx and origin
	hasPostInfo bool     // does the call return (dispatch.PostInfo, error)?
	pos         token.Pos
}

// arg returns the argument with the given name, or nil.
func (c *call) arg(name string) *arg {
	for _, a := range c.args {
		if a.name == name {
			return a
		}
	}
	return nil
}

type arg struct {
	name    string
	typ     types.Type
	compact bool // does the argument travel in compact form?
}

func (g *generator) addError(pos token.Pos, err error) {
	position := g.fileset.Position(pos)
	if cwd, e := os.Getwd(); e == nil {
		if rel, e := filepath.Rel(cwd, position.Filename); e == nil {
			position.Filename = rel
		}
	}
	g.errors = append(g.errors, fmt.Errorf("%v: %w", position, err))
}

func (g *generator) errorf(pos token.Pos, format string, args ...interface{}) {
	g.addError(pos, fmt.Errorf(format, args...))
}

func (g *generator) warnf(pos token.Pos, format string, args ...interface{}) {
	g.opt.Warn(fmt.Errorf("%v: %s", g.fileset.Position(pos), fmt.Sprintf(format, args...)))
}

// processPackage finds the modules declared in the package. It does not
// generate anything.
func (g *generator) processPackage(pkg *packages.Package) {
	// Abort if there are any errors loading the package.
	for _, err := range pkg.Errors {
		g.errors = append(g.errors, err)
	}
	if len(g.errors) > 0 {
		return
	}

	for _, f := range pkg.Syntax {
		fname := g.fileset.Position(f.Package).Filename
		if filepath.Base(fname) == generatedCodeFile {
			continue
		}
		g.findModules(f)
	}

	// Process modules in deterministic order.
	sort.Slice(g.modules, func(i, j int) bool {
		return g.modules[i].name < g.modules[j].name
	})
}

// findModules finds the modules declared in the provided file.
func (g *generator) findModules(f *ast.File) {
	for _, d := range f.Decls {
		gendecl, ok := d.(*ast.GenDecl)
		if !ok || gendecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range gendecl.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				g.processModule(ts)
			}
		}
	}
}

// processModule processes a type declaration, recording it as a module if it
// embeds modkit.Module.
func (g *generator) processModule(ts *ast.TypeSpec) {
	def, ok := g.pkg.TypesInfo.Defs[ts.Name]
	if !ok {
		return
	}
	named, ok := def.Type().(*types.Named)
	if !ok {
		return
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return
	}

	mod := &module{name: ts.Name.Name, impl: named, pos: ts.Pos()}
	var callsType, weightsType types.Type
	var isModule, hasMarkers bool
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		switch t := f.Type(); {
		case isModkitModule(t):
			isModule = true
		case isModkitWithCalls(t):
			hasMarkers = true
			if callsType != nil {
				g.errorf(f.Pos(), "module %s embeds modkit.WithCalls more than once", mod.name)
				continue
			}
			callsType = t.(*types.Named).TypeArgs().At(0)
			mod.callsPos = f.Pos()
		case isModkitWithWeights(t):
			hasMarkers = true
			if weightsType != nil {
				g.errorf(f.Pos(), "module %s embeds modkit.WithWeights more than once", mod.name)
				continue
			}
			weightsType = t.(*types.Named).TypeArgs().At(0)
			mod.weightsPos = f.Pos()
		case isModkitWithConfig(t):
			hasMarkers = true
			if mod.hasConfig {
				g.errorf(f.Pos(), "module %s embeds modkit.WithConfig more than once", mod.name)
				continue
			}
			mod.hasConfig = true
		}
	}
	if !isModule {
		if hasMarkers {
			g.errorf(ts.Pos(), "struct %s embeds modkit marker types but does not embed modkit.Module", ts.Name.Name)
		}
		return
	}
	if ts.TypeParams != nil {
		g.errorf(ts.Pos(), "modkit module %s cannot be generic", mod.name)
		return
	}

	if callsType != nil {
		mod.declared = true
		g.processCalls(mod, callsType)
	}
	if weightsType != nil {
		w, ok := weightsType.(*types.Named)
		if !ok {
			g.errorf(mod.weightsPos, "module %s: the modkit.WithWeights argument must be a named type, not %s", mod.name, weightsType)
		} else {
			mod.weights = w
		}
	}
	g.checkWeights(mod)
	g.modules = append(g.modules, mod)
}

// processCalls processes the call block of a module: the interface named as
// the argument of the embedded modkit.WithCalls.
func (g *generator) processCalls(mod *module, callsType types.Type) {
	named, ok := callsType.(*types.Named)
	if !ok {
		g.errorf(mod.callsPos, "module %s: the modkit.WithCalls argument must be a named interface type, not %s", mod.name, callsType)
		return
	}
	obj := named.Obj()
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		g.errorf(mod.callsPos, "module %s: call block %s is not an interface type", mod.name, obj.Name())
		return
	}
	if obj.Pkg() != g.pkg.Types {
		g.errorf(mod.callsPos, "module %s: call block %s must be declared in the module's package", mod.name, obj.Name())
		return
	}
	if !types.Implements(types.NewPointer(mod.impl), iface) {
		g.errorf(mod.pos, "*%s does not implement its call block %s", mod.name, obj.Name())
	}

	spec := g.findTypeSpec(obj)
	if spec == nil {
		g.errorf(mod.callsPos, "module %s: cannot find the declaration of call block %s", mod.name, obj.Name())
		return
	}
	astIface, ok := spec.Type.(*ast.InterfaceType)
	if !ok {
		g.errorf(spec.Pos(), "module %s: the declaration of call block %s must spell out its methods", mod.name, obj.Name())
		return
	}

	for _, field := range astIface.Methods.List {
		if len(field.Names) == 0 {
			g.errorf(field.Pos(), "call block %s cannot embed other interfaces", obj.Name())
			continue
		}
		g.processCall(mod, field)
	}
	if len(mod.calls) > 255 {
		g.errorf(spec.Pos(), "module %s declares %d calls; at most 255 are supported", mod.name, len(mod.calls))
	}
}

// findTypeSpec returns the declaration of the named type obj in the package
// syntax, or nil if there is none.
func (g *generator) findTypeSpec(obj *types.TypeName) *ast.TypeSpec {
	for _, f := range g.pkg.Syntax {
		for _, d := range f.Decls {
			gendecl, ok := d.(*ast.GenDecl)
			if !ok || gendecl.Tok != token.TYPE {
				continue
			}
			for _, s := range gendecl.Specs {
				if ts, ok := s.(*ast.TypeSpec); ok && g.pkg.TypesInfo.Defs[ts.Name] == obj {
					return ts
				}
			}
		}
	}
	return nil
}

// processCall processes a single method of a call block.
func (g *generator) processCall(mod *module, field *ast.Field) {
	name := field.Names[0].Name
	def, ok := g.pkg.TypesInfo.Defs[field.Names[0]].(*types.Func)
	if !ok {
		return
	}
	sig := def.Type().(*types.Signature)
	c := &call{name: name, pos: field.Pos()}

	params := sig.Params()
	if params.Len() < 1 || !isContext(params.At(0).Type()) {
		g.errorf(field.Pos(), "call %s.%s: the first argument must have type context.Context", mod.name, name)
	}
	if params.Len() < 2 || !isDispatchOrigin(params.At(1).Type()) {
		g.errorf(field.Pos(), "call %s.%s: the second argument must have type dispatch.Origin", mod.name, name)
	}
	for i := 2; i < params.Len(); i++ {
		prm := params.At(i)
		if prm.Name() == "" || prm.Name() == "_" {
			g.errorf(field.Pos(), "call %s.%s: argument %d must be named", mod.name, name, i)
			continue
		}
		for _, err := range g.tset.checkSerializable(prm.Type()) {
			g.addError(field.Pos(), fmt.Errorf("call %s.%s: argument %s: %w", mod.name, name, prm.Name(), err))
		}
		c.args = append(c.args, &arg{name: prm.Name(), typ: prm.Type()})
	}

	res := sig.Results()
	switch {
	case res.Len() == 1 && isError(res.At(0).Type()):
	case res.Len() == 2 && isDispatchPostInfo(res.At(0).Type()) && isError(res.At(1).Type()):
		c.hasPostInfo = true
	default:
		g.errorf(c.pos, "call %s.%s: the results must be error or (dispatch.PostInfo, error)", mod.name, name)
	}

	g.processCallDoc(mod, c, field.Doc)
	mod.calls = append(mod.calls, c)
}

// processCallDoc extracts the doc comment and the directives of a call.
func (g *generator) processCallDoc(mod *module, c *call, doc *ast.CommentGroup) {
	if doc == nil {
		return
	}
	for _, com := range doc.List {
		rest, ok := strings.CutPrefix(com.Text, "//modkit:")
		if !ok {
			continue
		}
		verb, list, _ := strings.Cut(rest, " ")
		if verb != "compact" {
			g.errorf(com.Pos(), "call %s.%s: unknown directive //modkit:%s", mod.name, c.name, verb)
			continue
		}
		names := strings.Fields(list)
		if len(names) == 0 {
			g.errorf(com.Pos(), "call %s.%s: //modkit:compact needs at least one argument name", mod.name, c.name)
			continue
		}
		for _, argName := range names {
			a := c.arg(argName)
			if a == nil {
				g.errorf(com.Pos(), "call %s.%s: //modkit:compact names unknown argument %q", mod.name, c.name, argName)
				continue
			}
			if !isUnsignedInteger(a.typ) {
				g.errorf(com.Pos(), "call %s.%s: //modkit:compact argument %q must have an unsigned integer type, not %s", mod.name, c.name, argName, a.typ)
				continue
			}
			a.compact = true
		}
	}
	// Text strips comment markers and directive lines.
	if txt := doc.Text(); txt != "" {
		c.docs = strings.Split(strings.TrimRight(txt, "\n"), "\n")
	}
}

// checkWeights checks the weights companion of a module against its calls.
func (g *generator) checkWeights(mod *module) {
	if len(mod.calls) == 0 {
		if mod.weights != nil {
			g.warnf(mod.weightsPos, "module %s embeds modkit.WithWeights but declares no calls; the weights companion is unused", mod.name)
		}
		return
	}
	if mod.weights == nil {
		g.errorf(mod.pos, "module %s declares calls but does not embed modkit.WithWeights", mod.name)
		return
	}
	wname := mod.weights.Obj().Name()

	// Every call needs a same-named policy method.
	for _, c := range mod.calls {
		obj, _, _ := types.LookupFieldOrMethod(mod.weights, true, g.pkg.Types, c.name)
		fn, ok := obj.(*types.Func)
		if !ok {
			g.errorf(mod.weightsPos, "weights companion %s has no policy for call %s", wname, c.name)
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() != 0 || sig.Results().Len() != 1 || !isWeightPolicy(sig.Results().At(0).Type()) {
			g.errorf(fn.Pos(), "method %s of weights companion %s must have signature func() weight.Policy", c.name, wname)
		}
	}

	// A policy method that matches no call is almost certainly a typo.
	declared := make(map[string]bool, len(mod.calls))
	for _, c := range mod.calls {
		declared[c.name] = true
	}
	mset := types.NewMethodSet(types.NewPointer(mod.weights))
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() || declared[fn.Name()] {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() == 0 && sig.Results().Len() == 1 && isWeightPolicy(sig.Results().At(0).Type()) {
			g.errorf(fn.Pos(), "weights companion %s declares a policy %s, but module %s has no such call", wname, fn.Name(), mod.name)
		}
	}
}

// generate generates the modkit_gen.go file for the package.
func (g *generator) generate() {
	// Generate the file body.
	var body bytes.Buffer
	{
		fn := func(format string, args ...interface{}) {
			fmt.Fprintln(&body, fmt.Sprintf(format, args...))
		}
		g.generateVersionCheck(fn)
		g.generateRegisteredModules(fn)
		g.generateCalls(fn)
		g.generateDecoders(fn)
		g.generateDispatchers(fn)
		g.generateCallProbes(fn)
		g.generateEncDecHelpers(fn)
	}

	// Generate the file header. This should be done at the very end to
	// ensure that all types added to the body have been imported.
	var header bytes.Buffer
	{
		fn := func(format string, args ...interface{}) {
			fmt.Fprintln(&header, fmt.Sprintf(format, args...))
		}
		g.generateImports(fn)
	}

	// Create the generated file.
	filename := filepath.Join(g.pkgDir(), generatedCodeFile)
	dst := files.NewWriter(filename)
	defer dst.Cleanup()

	fmtAndWrite := func(buf bytes.Buffer) {
		// Format the code.
		b := buf.Bytes()
		if formatted, err := format.Source(b); err != nil {
			// If format.Source fails, we write out the unformatted code: the
			// generated file will not compile, but it is the evidence needed
			// to debug the failure.
			g.errors = append(g.errors, err)
		} else {
			b = formatted
		}

		// Write to dst.
		if _, err := io.Copy(dst, bytes.NewReader(b)); err != nil {
			g.errors = append(g.errors, err)
		}
	}

	fmtAndWrite(header)
	fmtAndWrite(body)

	if err := dst.Close(); err != nil {
		g.errors = append(g.errors, err)
	}
}

// pkgDir returns the directory of the package.
func (g *generator) pkgDir() string {
	if len(g.pkg.Syntax) == 0 {
		panic(fmt.Errorf("package %v has no source files", g.pkg))
	}
	f := g.pkg.Syntax[0]
	fname := g.fileset.Position(f.Package).Filename
	return filepath.Dir(fname)
}

// Import helpers for the packages the generated code leans on.

func (g *generator) codec() importPkg {
	return g.tset.importPackage(codecPackagePath, "codec")
}

func (g *generator) codegen() importPkg {
	return g.tset.importPackage(codegenPackagePath, "codegen")
}

func (g *generator) dispatch() importPkg {
	return g.tset.importPackage(dispatchPackagePath, "dispatch")
}

func (g *generator) metadata() importPkg {
	return g.tset.importPackage(metadataPackagePath, "metadata")
}

func (g *generator) weight() importPkg {
	return g.tset.importPackage(weightPackagePath, "weight")
}

func (g *generator) trace() importPkg {
	return g.tset.importPackage("go.opentelemetry.io/otel/trace", "trace")
}

func (g *generator) codes() importPkg {
	return g.tset.importPackage("go.opentelemetry.io/otel/codes", "codes")
}

func (g *generator) context() importPkg {
	return g.tset.importPackage("context", "context")
}

func (g *generator) fmtPkg() importPkg {
	return g.tset.importPackage("fmt", "fmt")
}

// generateImports generates code to import all the dependencies.
func (g *generator) generateImports(p printFn) {
	p("package %s", g.pkg.Name)
	p("")
	p(`// Code generated by "modkit generate". DO NOT EDIT.`)
	p(`import (`)
	for _, imp := range g.tset.imports() {
		if imp.alias == "" {
			p(`	%s`, strconv.Quote(imp.path))
		} else {
			p(`	%s %s`, imp.alias, strconv.Quote(imp.path))
		}
	}
	p(`)`)
}

// generateVersionCheck generates a compile-time check that the version of
// the modkit module linked into the generated code matches the version that
// generated it.
func (g *generator) generateVersionCheck(p printFn) {
	cg := g.codegen().name()
	p(``)
	p(`var _ %s.LatestVersion = %s.Version[[%d][%d]struct{}](%s`, cg, cg, version.CodegenMajor, version.CodegenMinor, "`")
	p(`ERROR: You generated this file with 'modkit generate' %s (codegen`, version.ModuleVersion())
	p(`version %s). The generated code is incompatible with the version of the`, version.CodegenVersion())
	p(`github.com/modkit/modkit module that you're using. The modkit module`)
	p(`version can be found in your go.mod file or by running the following command.`)
	p(``)
	p(`    go list -m github.com/modkit/modkit`)
	p(``)
	p(`We recommend updating the modkit module and the 'modkit generate' command by`)
	p(`running the following.`)
	p(``)
	p(`    go get github.com/modkit/modkit@latest`)
	p(`    go install github.com/modkit/modkit/cmd/modkit@latest`)
	p(``)
	p(`Then, re-run 'modkit generate' and re-build your code. If the problem persists,`)
	p(`please file an issue at https://github.com/modkit/modkit/issues.`)
	p("`)")
}

// generateRegisteredModules generates the init function that registers the
// modules in the package.
func (g *generator) generateRegisteredModules(p printFn) {
	cg := g.codegen().name()
	rf := g.tset.importPackage("reflect", "reflect").name()

	p(``)
	p(`func init() {`)
	for _, mod := range g.modules {
		low := notExported(mod.name)
		fullName := mod.fullName(g.pkg.PkgPath)

		// E.g.,
		//   counter_dispatcher{impl: impl.(*Counter), opts: opts.Fill(),
		//       setValueMetrics: codegen.CallMetricsFor(...), ...}
		var disp strings.Builder
		fmt.Fprintf(&disp, "%s_dispatcher{impl: impl.(*%s), opts: opts.Fill()", low, mod.name)
		for _, c := range mod.calls {
			fmt.Fprintf(&disp, ", %sMetrics: %s.CallMetricsFor(%s.CallLabels{Module: %q, Call: %q})",
				notExported(c.name), cg, cg, fullName, c.name)
		}
		disp.WriteString("}")

		p(`	%s.Register(%s.Registration{`, cg, cg)
		p(`		Name: %s,`, strconv.Quote(fullName))
		p(`		Module: %s.TypeOf((*%s)(nil)).Elem(),`, rf, mod.name)
		p(`		Calls: %s,`, g.functionsLiteral(mod))
		p(`		CallNames: %s,`, callNamesLiteral(mod))
		p(`		NewDispatcher: func(impl any, opts %s.DispatcherOptions) %s.Dispatcher {`, cg, cg)
		p(`			return %s`, disp.String())
		p(`		},`)
		p(`		DecodeCall: modkit_dec_%s_call,`, low)
		if mod.hasConfig {
			p(`		ConfigFn: func(i any) any { return i.(*%s).Config() },`, mod.name)
		}
		p(`	})`)
	}
	p(`}`)
}

// callMetadata returns the metadata table of the module's calls, in
// declaration order.
func (g *generator) callMetadata(mod *module) []metadata.Function {
	fns := make([]metadata.Function, 0, len(mod.calls))
	for _, c := range mod.calls {
		fn := metadata.Function{Name: c.name, Docs: c.docs}
		for _, a := range c.args {
			fn.Args = append(fn.Args, metadata.Argument{Name: a.name, Type: g.metaType(a)})
		}
		fns = append(fns, fn)
	}
	return fns
}

// metaType returns the canonical metadata rendering of an argument type. An
// argument that travels in compact form is rendered with its wrapper, since
// the metadata must describe the wire representation.
func (g *generator) metaType(a *arg) string {
	qualifier := func(pkg *types.Package) string {
		if pkg == g.pkg.Types {
			return ""
		}
		return pkg.Name()
	}
	s := types.TypeString(a.typ, qualifier)
	if a.compact {
		s = fmt.Sprintf("codec.Compact[%s]", s)
	}
	return metadata.CleanTypeString(s)
}

// functionsLiteral renders the module's metadata table as a Go composite
// literal.
func (g *generator) functionsLiteral(mod *module) string {
	meta := g.metadata().name()
	var b strings.Builder
	fmt.Fprintf(&b, "[]%s.Function{", meta)
	for _, fn := range g.callMetadata(mod) {
		fmt.Fprintf(&b, "{Name: %q, Args: []%s.Argument{", fn.Name, meta)
		for _, a := range fn.Args {
			fmt.Fprintf(&b, "{Name: %q, Type: %q}, ", a.Name, a.Type)
		}
		b.WriteString("}, Docs: ")
		if len(fn.Docs) == 0 {
			b.WriteString("nil}, ")
			continue
		}
		b.WriteString("[]string{")
		for _, d := range fn.Docs {
			fmt.Fprintf(&b, "%q, ", d)
		}
		b.WriteString("}}, ")
	}
	b.WriteString("}")
	return b.String()
}

func callNamesLiteral(mod *module) string {
	var b strings.Builder
	b.WriteString("[]string{")
	for _, c := range mod.calls {
		fmt.Fprintf(&b, "%q, ", c.name)
	}
	b.WriteString("}")
	return b.String()
}

// fieldType returns the type of the call variant field holding an argument.
func (g *generator) fieldType(a *arg) string {
	s := g.tset.genTypeString(a.typ)
	if a.compact {
		s = fmt.Sprintf("%s[%s]", g.codec().qualify("Compact"), s)
	}
	return s
}

// generateCalls generates the call union of every module: one variant struct
// per declared call, plus the reserved sentinel variant.
func (g *generator) generateCalls(p printFn) {
	p(``)
	p(`// Call implementations.`)
	for _, mod := range g.modules {
		g.generateModuleCalls(p, mod)
	}
}

func (g *generator) generateModuleCalls(p printFn, mod *module) {
	low := notExported(mod.name)
	cg := g.codegen().name()
	cc := g.codec().name()

	p(``)
	p(`// %s_call is a call bound for the %s module.`, low, mod.name)
	p(`type %s_call interface {`, low)
	p(`	%s.Call`, cg)
	p(`	%s_call()`, low)
	p(`}`)

	for i, c := range mod.calls {
		v := fmt.Sprintf("%s_call_%s", low, c.name)
		p(``)
		p(`// %s is the %s call of the %s module.`, v, c.name, mod.name)
		p(`type %s struct {`, v)
		for _, a := range c.args {
			p(`	%s %s`, exported(a.name), g.fieldType(a))
		}
		p(`}`)
		p(``)
		p(`var _ %s_call = (*%s)(nil)`, low, v)
		p(``)
		p(`func (*%s) %s_call() {}`, v, low)
		p(``)
		p(`// CallName implements codegen.Call.`)
		p(`func (*%s) CallName() string {`, v)
		p(`	return %q`, c.name)
		p(`}`)
		p(``)
		p(`// Encode implements codegen.Call.`)
		p(`func (c *%s) Encode(enc *%s.Encoder) {`, v, cc)
		p(`	enc.Uint8(%d)`, i)
		for _, a := range c.args {
			expr := fmt.Sprintf("c.%s", exported(a.name))
			if a.compact {
				p(`	%s.MarshalModkit(enc)`, expr)
				continue
			}
			for _, line := range g.encodeLines(expr, a.typ) {
				p(`	%s`, line)
			}
		}
		p(`}`)
		p(``)
		p(`// String implements fmt.Stringer.`)
		p(`func (c *%s) String() string {`, v)
		if len(c.args) == 0 {
			p(`	return %q`, fmt.Sprintf("%s.%s()", mod.name, c.name))
		} else {
			var fields, exprs []string
			for _, a := range c.args {
				fields = append(fields, fmt.Sprintf("%s: %%v", a.name))
				exprs = append(exprs, fmt.Sprintf("c.%s", exported(a.name)))
			}
			format := fmt.Sprintf("%s.%s(%s)", mod.name, c.name, strings.Join(fields, ", "))
			p(`	return %s.Sprintf(%q, %s)`, g.fmtPkg().name(), format, strings.Join(exprs, ", "))
		}
		p(`}`)
	}

	p(``)
	p(`// %s_call_ignore is the reserved variant of the %s call union. It`, low, mod.name)
	p(`// cannot be constructed with a meaningful value and is never dispatched.`)
	p(`type %s_call_ignore struct {`, low)
	p(`	_ %s.Never`, cg)
	p(`}`)
	p(``)
	p(`var _ %s_call = (*%s_call_ignore)(nil)`, low, low)
	p(``)
	p(`func (*%s_call_ignore) %s_call() {}`, low, low)
	p(``)
	p(`// CallName implements codegen.Call.`)
	p(`func (*%s_call_ignore) CallName() string {`, low)
	p(`	panic("%s_call_ignore: the reserved call variant has no name")`, low)
	p(`}`)
	p(``)
	p(`// Encode implements codegen.Call.`)
	p(`func (*%s_call_ignore) Encode(*%s.Encoder) {`, low, cc)
	p(`	panic("%s_call_ignore: the reserved call variant cannot be encoded")`, low)
	p(`}`)
}

// generateDecoders generates the call decoder of every module.
func (g *generator) generateDecoders(p printFn) {
	p(``)
	p(`// Call decoders.`)
	for _, mod := range g.modules {
		low := notExported(mod.name)
		cg := g.codegen().name()
		cc := g.codec().name()

		p(``)
		p(`// modkit_dec_%s_call decodes a %s call encoded by Call.Encode.`, low, mod.name)
		p(`func modkit_dec_%s_call(dec *%s.Decoder) (call %s.Call, err error) {`, low, cc, cg)
		p(`	defer func() {`)
		p(`		if err == nil {`)
		p(`			err = %s.CatchPanics(recover())`, cc)
		p(`		}`)
		p(`	}()`)
		p(`	switch tag := dec.Uint8(); tag {`)
		for i, c := range mod.calls {
			p(`	case %d:`, i)
			p(`		c := &%s_call_%s{}`, low, c.name)
			for _, a := range c.args {
				target := fmt.Sprintf("c.%s", exported(a.name))
				if a.compact {
					p(`		%s.UnmarshalModkit(dec)`, target)
					continue
				}
				for _, line := range g.decodeLines(target, a.typ) {
					p(`		%s`, line)
				}
			}
			p(`		return c, nil`)
		}
		p(`	default:`)
		p(`		return nil, %s.Errorf("%s: unknown call tag %%d", tag)`, g.fmtPkg().name(), mod.name)
		p(`	}`)
		p(`}`)
	}
}

// generateDispatchers generates the dispatcher of every module.
func (g *generator) generateDispatchers(p printFn) {
	p(``)
	p(`// Dispatcher implementations.`)
	for _, mod := range g.modules {
		g.generateDispatcher(p, mod)
	}
}

func (g *generator) generateDispatcher(p printFn, mod *module) {
	low := notExported(mod.name)
	cg := g.codegen().name()
	dp := g.dispatch().name()
	wt := g.weight().name()
	ctx := g.context().name()
	fmtp := g.fmtPkg().name()

	p(``)
	p(`// %s_dispatcher routes calls to a %s implementation.`, low, mod.name)
	p(`type %s_dispatcher struct {`, low)
	p(`	impl *%s`, mod.name)
	p(`	opts %s.DispatcherOptions`, cg)
	for _, c := range mod.calls {
		p(`	%sMetrics *%s.CallMetrics`, notExported(c.name), cg)
	}
	p(`}`)
	p(``)
	p(`var _ %s.Dispatcher = %s_dispatcher{}`, cg, low)

	// Dispatch.
	p(``)
	p(`// Dispatch implements codegen.Dispatcher.`)
	p(`func (d %s_dispatcher) Dispatch(ctx %s.Context, call %s.Call, origin %s.Origin) (%s.PostInfo, error) {`, low, ctx, cg, dp, dp)
	if len(mod.calls) > 0 {
		p(`	switch c := call.(type) {`)
		for _, c := range mod.calls {
			p(`	case *%s_call_%s:`, low, c.name)
			p(`		return d.dispatch%s(ctx, c, origin)`, c.name)
		}
	} else {
		p(`	switch call.(type) {`)
	}
	p(`	case *%s_call_ignore:`, low)
	p(`		panic("%s_dispatcher: the reserved call variant cannot be dispatched")`, low)
	p(`	default:`)
	p(`		return %s.PostInfo{}, %s.Errorf("%s_dispatcher: unexpected call %%T", call)`, dp, fmtp, low)
	p(`	}`)
	p(`}`)

	// One method per call, so that the metrics and tracing defers have call
	// scope.
	for _, c := range mod.calls {
		metrics := notExported(c.name) + "Metrics"
		spanName := fmt.Sprintf("%s.%s.%s", g.pkg.Name, mod.name, c.name)
		tr := g.trace().name()
		cd := g.codes().name()

		var args strings.Builder
		for _, a := range c.args {
			fmt.Fprintf(&args, ", c.%s", exported(a.name))
			if a.compact {
				args.WriteString(".Value")
			}
		}

		p(``)
		p(`func (d %s_dispatcher) dispatch%s(ctx %s.Context, c *%s_call_%s, origin %s.Origin) (info %s.PostInfo, err error) {`, low, c.name, ctx, low, c.name, dp, dp)
		p(`	h := d.%s.Begin()`, metrics)
		p(`	defer func() { d.%s.End(h, err != nil) }()`, metrics)
		p(``)
		p(`	span := %s.SpanFromContext(ctx)`, tr)
		p(`	if span.SpanContext().IsValid() {`)
		p(`		// Create a child span for this call.`)
		p(`		ctx, span = d.opts.Tracer.Start(ctx, %s, %s.WithSpanKind(%s.SpanKindInternal))`, strconv.Quote(spanName), tr, tr)
		p(`		defer func() {`)
		p(`			if err != nil {`)
		p(`				span.RecordError(err)`)
		p(`				span.SetStatus(%s.Error, err.Error())`, cd)
		p(`			}`)
		p(`			span.End()`)
		p(`		}()`)
		p(`	}`)
		p(``)
		if c.hasPostInfo {
			p(`	info, err = d.impl.%s(ctx, origin%s)`, c.name, args.String())
		} else {
			p(`	err = d.impl.%s(ctx, origin%s)`, c.name, args.String())
		}
		p(`	if err != nil {`)
		p(`		err = &%s.Error{Module: %q, Call: %q, Err: err}`, dp, mod.name, c.name)
		p(`	}`)
		p(`	return`)
		p(`}`)
	}

	// Classify.
	p(``)
	p(`// Classify implements codegen.Dispatcher.`)
	p(`func (d %s_dispatcher) Classify(call %s.Call) (%s.Info, error) {`, low, cg, wt)
	if len(mod.calls) > 0 {
		p(`	var w %s`, g.tset.genTypeString(mod.weights))
		anyArgs := false
		for _, c := range mod.calls {
			if len(c.args) > 0 {
				anyArgs = true
			}
		}
		if anyArgs {
			p(`	switch c := call.(type) {`)
		} else {
			p(`	switch call.(type) {`)
		}
		for _, c := range mod.calls {
			var args []string
			for _, a := range c.args {
				expr := fmt.Sprintf("c.%s", exported(a.name))
				if a.compact {
					expr += ".Value"
				}
				args = append(args, expr)
			}
			p(`	case *%s_call_%s:`, low, c.name)
			p(`		policy := w.%s()`, c.name)
			p(`		args := []any{%s}`, strings.Join(args, ", "))
			p(`		return %s.Info{Weight: policy.Weigh(args), Class: policy.Classify(args), PaysFee: policy.PaysFee(args)}, nil`, wt)
		}
	} else {
		p(`	switch call.(type) {`)
	}
	p(`	case *%s_call_ignore:`, low)
	p(`		panic("%s_dispatcher: the reserved call variant cannot be classified")`, low)
	p(`	default:`)
	p(`		return %s.Info{}, %s.Errorf("%s_dispatcher: unexpected call %%T", call)`, wt, fmtp, low)
	p(`	}`)
	p(`}`)
}

// probeIDs mints identifiers for generated call probes. The counter is
// process-wide and monotonic, never reset between packages or generator
// runs, so two probes generated by the same process never share a name.
var probeIDs atomic.Uint64

func nextProbeID() uint64 {
	return probeIDs.Add(1)
}

// generateCallProbes generates the compile-time call block probe of every
// module.
func (g *generator) generateCallProbes(p printFn) {
	cg := g.codegen().name()
	p(``)
	p(`// Call block probes.`)
	for _, mod := range g.modules {
		low := notExported(mod.name)
		id := nextProbeID()
		verdict := "Missing"
		if mod.declared {
			verdict = "Declared"
		}
		p(``)
		p(`// modkit_call_part_%d reports at compile time whether the %s module`, id, mod.name)
		p(`// declares a call block.`)
		p(`type modkit_call_part_%d = %s.CallPart[%s.%s]`, id, cg, cg, verdict)
		p(``)
		p(`// %s_call_part is the call probe of the %s module. Code that requires`, low, mod.name)
		p(`// %s to declare calls asserts:`, mod.name)
		p(`//`)
		p(`//	var _ %s.DeclaredCalls = %s_call_part("module %s has no call block defined")`, cg, low, mod.name)
		p(`type %s_call_part = modkit_call_part_%d`, low, id)
	}
}

// helper returns the name of the generated encoding or decoding helper
// function for t, queueing the pair for generation on first use.
func (g *generator) helper(prefix string, t types.Type) string {
	if g.encDecNeeded.At(t) == nil {
		g.encDecNeeded.Set(t, struct{}{})
		g.encDecQueue = append(g.encDecQueue, t)
	}
	return fmt.Sprintf("modkit_%s_%s", prefix, uniqueName(t))
}

// generateEncDecHelpers generates the helper functions queued by encodeLines
// and decodeLines.
func (g *generator) generateEncDecHelpers(p printFn) {
	if len(g.encDecQueue) == 0 {
		return
	}
	p(``)
	p(`// Encoding and decoding helpers.`)
	// Generating a helper may queue helpers for its element types.
	for i := 0; i < len(g.encDecQueue); i++ {
		g.generateEncDecFor(p, g.encDecQueue[i])
	}
}

// generateEncDecFor generates the encoding and decoding helper pair for t,
// which must be a pointer, slice, array, or map type, possibly named.
func (g *generator) generateEncDecFor(p printFn, t types.Type) {
	cc := g.codec().name()
	ts := g.tset.genTypeString(t)
	enc := g.helper("enc", t)
	dec := g.helper("dec", t)

	switch u := t.Underlying().(type) {
	case *types.Pointer:
		elem := u.Elem()
		p(``)
		p(`func %s(enc *%s.Encoder, arg %s) {`, enc, cc, ts)
		p(`	if arg == nil {`)
		p(`		enc.Bool(false)`)
		p(`		return`)
		p(`	}`)
		p(`	enc.Bool(true)`)
		for _, line := range g.encodeLines("(*arg)", elem) {
			p(`	%s`, line)
		}
		p(`}`)
		p(``)
		p(`func %s(dec *%s.Decoder) %s {`, dec, cc, ts)
		p(`	if !dec.Bool() {`)
		p(`		return nil`)
		p(`	}`)
		p(`	res := (%s)(new(%s))`, ts, g.tset.genTypeString(elem))
		for _, line := range g.decodeLines("(*res)", elem) {
			p(`	%s`, line)
		}
		p(`	return res`)
		p(`}`)

	case *types.Slice:
		elem := u.Elem()
		p(``)
		p(`func %s(enc *%s.Encoder, arg %s) {`, enc, cc, ts)
		p(`	if arg == nil {`)
		p(`		enc.Len(-1)`)
		p(`		return`)
		p(`	}`)
		p(`	enc.Len(len(arg))`)
		p(`	for i := 0; i < len(arg); i++ {`)
		for _, line := range g.encodeLines("arg[i]", elem) {
			p(`		%s`, line)
		}
		p(`	}`)
		p(`}`)
		p(``)
		p(`func %s(dec *%s.Decoder) %s {`, dec, cc, ts)
		p(`	n := dec.Len()`)
		p(`	if n == -1 {`)
		p(`		return nil`)
		p(`	}`)
		p(`	res := make(%s, n)`, ts)
		p(`	for i := 0; i < n; i++ {`)
		for _, line := range g.decodeLines("res[i]", elem) {
			p(`		%s`, line)
		}
		p(`	}`)
		p(`	return res`)
		p(`}`)

	case *types.Array:
		elem := u.Elem()
		p(``)
		p(`func %s(enc *%s.Encoder, arg %s) {`, enc, cc, ts)
		p(`	for i := 0; i < len(arg); i++ {`)
		for _, line := range g.encodeLines("arg[i]", elem) {
			p(`		%s`, line)
		}
		p(`	}`)
		p(`}`)
		p(``)
		p(`func %s(dec *%s.Decoder) %s {`, dec, cc, ts)
		p(`	var res %s`, ts)
		p(`	for i := 0; i < len(res); i++ {`)
		for _, line := range g.decodeLines("res[i]", elem) {
			p(`		%s`, line)
		}
		p(`	}`)
		p(`	return res`)
		p(`}`)

	case *types.Map:
		key, elem := u.Key(), u.Elem()
		p(``)
		p(`func %s(enc *%s.Encoder, arg %s) {`, enc, cc, ts)
		p(`	if arg == nil {`)
		p(`		enc.Len(-1)`)
		p(`		return`)
		p(`	}`)
		p(`	enc.Len(len(arg))`)
		p(`	for k, v := range arg {`)
		for _, line := range g.encodeLines("k", key) {
			p(`		%s`, line)
		}
		for _, line := range g.encodeLines("v", elem) {
			p(`		%s`, line)
		}
		p(`	}`)
		p(`}`)
		p(``)
		p(`func %s(dec *%s.Decoder) %s {`, dec, cc, ts)
		p(`	n := dec.Len()`)
		p(`	if n == -1 {`)
		p(`		return nil`)
		p(`	}`)
		p(`	res := make(%s, n)`, ts)
		p(`	for i := 0; i < n; i++ {`)
		p(`		var k %s`, g.tset.genTypeString(key))
		p(`		var v %s`, g.tset.genTypeString(elem))
		for _, line := range g.decodeLines("k", key) {
			p(`		%s`, line)
		}
		for _, line := range g.decodeLines("v", elem) {
			p(`		%s`, line)
		}
		p(`		res[k] = v`)
		p(`	}`)
		p(`	return res`)
		p(`}`)

	default:
		panic(fmt.Errorf("generator bug: unexpected helper type %v", t))
	}
}

// encodeLines returns the statements that encode expr, a value of type t,
// into the encoder named enc. expr must be addressable.
func (g *generator) encodeLines(expr string, t types.Type) []string {
	if g.tset.isProto(t) {
		return []string{fmt.Sprintf("enc.EncodeProto(%s)", expr)}
	}
	switch x := t.(type) {
	case *types.Basic:
		return []string{fmt.Sprintf("enc.%s(%s)", exported(x.Name()), expr)}
	case *types.Named:
		if g.tset.implementsCodec(t) {
			return []string{fmt.Sprintf("%s.MarshalModkit(enc)", expr)}
		}
		if g.tset.hasBinaryCodec(t) {
			return []string{fmt.Sprintf("enc.EncodeBinaryMarshaler(&%s)", expr)}
		}
		switch u := t.Underlying().(type) {
		case *types.Basic:
			return []string{fmt.Sprintf("enc.%s(%s(%s))", exported(u.Name()), u.Name(), expr)}
		case *types.Slice:
			if isByteSlice(t) {
				return []string{fmt.Sprintf("enc.Bytes([]byte(%s))", expr)}
			}
		}
		return []string{fmt.Sprintf("%s(enc, %s)", g.helper("enc", t), expr)}
	case *types.Slice:
		if isByteSlice(t) {
			return []string{fmt.Sprintf("enc.Bytes(%s)", expr)}
		}
		return []string{fmt.Sprintf("%s(enc, %s)", g.helper("enc", t), expr)}
	case *types.Pointer, *types.Array, *types.Map:
		return []string{fmt.Sprintf("%s(enc, %s)", g.helper("enc", t), expr)}
	}
	panic(fmt.Errorf("generator bug: cannot encode type %v", t))
}

// decodeLines returns the statements that decode a value of type t from the
// decoder named dec into target. target must be addressable.
func (g *generator) decodeLines(target string, t types.Type) []string {
	if g.tset.isProto(t) {
		elem := t.(*types.Pointer).Elem()
		return []string{
			fmt.Sprintf("%s = new(%s)", target, g.tset.genTypeString(elem)),
			fmt.Sprintf("dec.DecodeProto(%s)", target),
		}
	}
	switch x := t.(type) {
	case *types.Basic:
		return []string{fmt.Sprintf("%s = dec.%s()", target, exported(x.Name()))}
	case *types.Named:
		if g.tset.implementsCodec(t) {
			return []string{fmt.Sprintf("%s.UnmarshalModkit(dec)", target)}
		}
		if g.tset.hasBinaryCodec(t) {
			return []string{fmt.Sprintf("dec.DecodeBinaryUnmarshaler(&%s)", target)}
		}
		switch u := t.Underlying().(type) {
		case *types.Basic:
			return []string{fmt.Sprintf("%s = %s(dec.%s())", target, g.tset.genTypeString(t), exported(u.Name()))}
		case *types.Slice:
			if isByteSlice(t) {
				return []string{fmt.Sprintf("%s = %s(dec.Bytes())", target, g.tset.genTypeString(t))}
			}
		}
		return []string{fmt.Sprintf("%s = %s(dec)", target, g.helper("dec", t))}
	case *types.Slice:
		if isByteSlice(t) {
			return []string{fmt.Sprintf("%s = dec.Bytes()", target)}
		}
		return []string{fmt.Sprintf("%s = %s(dec)", target, g.helper("dec", t))}
	case *types.Pointer, *types.Array, *types.Map:
		return []string{fmt.Sprintf("%s = %s(dec)", target, g.helper("dec", t))}
	}
	panic(fmt.Errorf("generator bug: cannot decode type %v", t))
}

// notExported sets the first character in the string to lowercase.
func notExported(name string) string {
	if len(name) == 0 {
		return name
	}
	a := []rune(name)
	a[0] = unicode.ToLower(a[0])
	return string(a)
}

// exported sets the first character in the string to uppercase.
func exported(name string) string {
	if len(name) == 0 {
		return name
	}
	a := []rune(name)
	a[0] = unicode.ToUpper(a[0])
	return string(a)
}
