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
	"crypto/sha256"
	"fmt"
	"go/types"
	"sort"

	"golang.org/x/tools/go/types/typeutil"
)

const (
	modkitPackagePath   = "github.com/modkit/modkit"
	codecPackagePath    = modkitPackagePath + "/runtime/codec"
	codegenPackagePath  = modkitPackagePath + "/runtime/codegen"
	dispatchPackagePath = modkitPackagePath + "/runtime/dispatch"
	metadataPackagePath = modkitPackagePath + "/runtime/metadata"
	weightPackagePath   = modkitPackagePath + "/runtime/weight"
)

// typeSet holds type information for a package, along with the set of
// packages the generated code has to import.
type typeSet struct {
	pkg            *types.Package
	imported       []importPkg          // imported packages
	importedByPath map[string]importPkg // imported, by path
	importedByName map[string]importPkg // imported, by name

	checked typeutil.Map // memo of checkSerializable verdicts
}

// importPkg is a package imported by the generated code.
type importPkg struct {
	path  string // e.g. "github.com/modkit/modkit/runtime/codec"
	pkg   string // e.g. "codec"
	alias string // e.g. "codec2" if "codec" is already taken
	local bool   // is this the package we're generating code for?
}

// name returns the name by which the imported package is referenced in the
// generated code. It panics for the local package, which is referenced
// without a qualifier.
func (i importPkg) name() string {
	if i.local {
		panic(fmt.Errorf("half-baked generated code: qualified reference to local package %q", i.path))
	}
	if i.alias != "" {
		return i.alias
	}
	return i.pkg
}

// qualify returns the provided member of the package, qualified with the
// package name. For example, qualifying "Encoder" in the codec package
// returns "codec.Encoder". Members of the local package are not qualified.
func (i importPkg) qualify(member string) string {
	if i.local {
		return member
	}
	return fmt.Sprintf("%s.%s", i.name(), member)
}

func newTypeSet(pkg *types.Package) *typeSet {
	return &typeSet{
		pkg:            pkg,
		importedByPath: map[string]importPkg{},
		importedByName: map[string]importPkg{},
	}
}

// importPackage imports the package with the provided path and name,
// assigning an alias if the name is already taken. Importing the same path
// twice returns the same importPkg.
func (tset *typeSet) importPackage(path, pkg string) importPkg {
	newImportPkg := func(path, pkg, alias string, local bool) importPkg {
		i := importPkg{path: path, pkg: pkg, alias: alias, local: local}
		tset.imported = append(tset.imported, i)
		tset.importedByPath[path] = i
		if !local {
			tset.importedByName[i.name()] = i
		}
		return i
	}

	if imp, ok := tset.importedByPath[path]; ok {
		// This package has already been imported.
		return imp
	}

	local := path == tset.pkg.Path()
	if _, ok := tset.importedByName[pkg]; !ok || local {
		// Import the package under its default name.
		return newImportPkg(path, pkg, "", local)
	}

	// Find an unused alias.
	alias := ""
	counter := 1
	for {
		alias = fmt.Sprintf("%s%d", pkg, counter)
		if _, ok := tset.importedByName[alias]; !ok {
			break
		}
		counter++
	}
	return newImportPkg(path, pkg, alias, local)
}

// imports returns the packages to import in the generated code, sorted by
// path. The local package is excluded.
func (tset *typeSet) imports() []importPkg {
	imps := make([]importPkg, 0, len(tset.imported))
	for _, imp := range tset.imported {
		if imp.local {
			continue
		}
		imps = append(imps, imp)
	}
	sort.Slice(imps, func(i, j int) bool { return imps[i].path < imps[j].path })
	return imps
}

// genTypeString returns the string representation of t as it should appear
// in the generated code, importing the packages the rendering needs. Types
// from the local package are rendered unqualified.
func (tset *typeSet) genTypeString(t types.Type) string {
	qualifier := func(pkg *types.Package) string {
		if pkg == tset.pkg {
			return ""
		}
		return tset.importPackage(pkg.Path(), pkg.Name()).name()
	}
	return types.TypeString(t, qualifier)
}

// checkSerializable checks that values of type t can pass through the call
// codec, returning one error per offending type reached from t.
func (tset *typeSet) checkSerializable(t types.Type) []error {
	var errs []error
	bad := func(format string, args ...interface{}) bool {
		errs = append(errs, fmt.Errorf(format, args...))
		return false
	}

	var check func(t types.Type) bool
	check = func(t types.Type) bool {
		if verdict, ok := tset.checked.At(t).(bool); ok {
			if !verdict {
				return bad("%s is not serializable", t)
			}
			return true
		}
		// Assume t is serializable while checking it, so that recursive
		// types terminate.
		tset.checked.Set(t, true)

		verdict := func() bool {
			switch x := t.(type) {
			case *types.Basic:
				switch x.Kind() {
				case types.Bool,
					types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
					types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
					types.Float32, types.Float64,
					types.Complex64, types.Complex128,
					types.String:
					return true
				default:
					return bad("%s is not a serializable basic type", t)
				}
			case *types.Pointer:
				if tset.isProto(t) {
					return true
				}
				return check(x.Elem())
			case *types.Slice:
				return check(x.Elem())
			case *types.Array:
				return check(x.Elem())
			case *types.Map:
				key := check(x.Key())
				val := check(x.Elem())
				return key && val
			case *types.Named:
				if tset.implementsCodec(t) || tset.hasBinaryCodec(t) {
					return true
				}
				if _, ok := x.Underlying().(*types.Struct); ok {
					return bad("%s: named struct types must implement codec.Marshaler and codec.Unmarshaler, proto.Message, or encoding.BinaryMarshaler and encoding.BinaryUnmarshaler", t)
				}
				return check(x.Underlying())
			case *types.Struct:
				return bad("%s: anonymous structs are not serializable", t)
			case *types.Interface:
				return bad("%s: interfaces are not serializable", t)
			case *types.Chan:
				return bad("%s: channels are not serializable", t)
			case *types.Signature:
				return bad("%s: functions are not serializable", t)
			case *types.TypeParam:
				return bad("%s: type parameters are not serializable", t)
			default:
				return bad("%s is not serializable", t)
			}
		}()
		tset.checked.Set(t, verdict)
		return verdict
	}
	check(t)
	return errs
}

// implementsCodec returns whether t implements both codec.Marshaler and
// codec.Unmarshaler, taking the address of t if needed.
func (tset *typeSet) implementsCodec(t types.Type) bool {
	return tset.hasCodecMethod(t, "MarshalModkit", "Encoder") &&
		tset.hasCodecMethod(t, "UnmarshalModkit", "Decoder")
}

// hasCodecMethod returns whether t has a method with the given name that
// takes a single pointer to the given codec package type and returns
// nothing.
func (tset *typeSet) hasCodecMethod(t types.Type, method, arg string) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, tset.pkg, method)
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 0 {
		return false
	}
	ptr, ok := sig.Params().At(0).Type().(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return false
	}
	o := named.Obj()
	return o.Pkg() != nil && o.Pkg().Path() == codecPackagePath && o.Name() == arg
}

// isProto returns whether t is a pointer type implementing proto.Message.
func (tset *typeSet) isProto(t types.Type) bool {
	if _, ok := t.(*types.Pointer); !ok {
		return false
	}
	obj, _, _ := types.LookupFieldOrMethod(t, false, tset.pkg, "ProtoReflect")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	return sig.Results().At(0).Type().String() == "google.golang.org/protobuf/reflect/protoreflect.Message"
}

// hasBinaryCodec returns whether t implements both encoding.BinaryMarshaler
// and encoding.BinaryUnmarshaler, taking the address of t if needed.
func (tset *typeSet) hasBinaryCodec(t types.Type) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, tset.pkg, "MarshalBinary")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 2 {
		return false
	}
	if sig.Results().At(0).Type().String() != "[]byte" || !isError(sig.Results().At(1).Type()) {
		return false
	}

	obj, _, _ = types.LookupFieldOrMethod(t, true, tset.pkg, "UnmarshalBinary")
	fn, ok = obj.(*types.Func)
	if !ok {
		return false
	}
	sig, ok = fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return false
	}
	return sig.Params().At(0).Type().String() == "[]byte" && isError(sig.Results().At(0).Type())
}

// isModkitType returns whether t is a named type from the given package with
// the given name and number of type arguments.
func isModkitType(t types.Type, pkgPath, name string, n int) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != pkgPath || obj.Name() != name {
		return false
	}
	return named.TypeArgs().Len() == n
}

func isModkitModule(t types.Type) bool {
	return isModkitType(t, modkitPackagePath, "Module", 0)
}

func isModkitWithCalls(t types.Type) bool {
	return isModkitType(t, modkitPackagePath, "WithCalls", 1)
}

func isModkitWithWeights(t types.Type) bool {
	return isModkitType(t, modkitPackagePath, "WithWeights", 1)
}

func isModkitWithConfig(t types.Type) bool {
	return isModkitType(t, modkitPackagePath, "WithConfig", 1)
}

func isDispatchOrigin(t types.Type) bool {
	return isModkitType(t, dispatchPackagePath, "Origin", 0)
}

func isDispatchPostInfo(t types.Type) bool {
	return isModkitType(t, dispatchPackagePath, "PostInfo", 0)
}

func isWeightPolicy(t types.Type) bool {
	return isModkitType(t, weightPackagePath, "Policy", 0)
}

// isContext returns whether t is the standard context.Context type.
func isContext(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// isError returns whether t is the built-in error type.
func isError(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	return named.Obj().Pkg() == nil && named.Obj().Name() == "error"
}

// isUnsignedInteger returns whether t's underlying type is an unsigned
// integer. uintptr does not count.
func isUnsignedInteger(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return false
	}
	return basic.Info()&types.IsUnsigned != 0 && basic.Kind() != types.Uintptr
}

// isByteSlice returns whether t's underlying type is []byte.
func isByteSlice(t types.Type) bool {
	s, ok := t.Underlying().(*types.Slice)
	if !ok {
		return false
	}
	basic, ok := s.Elem().(*types.Basic)
	return ok && basic.Kind() == types.Byte
}

// sanitize generates a (somewhat) human-readable version of the provided
// type that can be embedded in function names.
func sanitize(t types.Type) string {
	switch x := t.(type) {
	case *types.Pointer:
		return "ptr_" + sanitize(x.Elem())
	case *types.Slice:
		return "slice_" + sanitize(x.Elem())
	case *types.Array:
		return fmt.Sprintf("array_%d_%s", x.Len(), sanitize(x.Elem()))
	case *types.Map:
		return fmt.Sprintf("map_%s_%s", sanitize(x.Key()), sanitize(x.Elem()))
	case *types.Named:
		return x.Obj().Name()
	case *types.Basic:
		return x.Name()
	}
	panic(fmt.Errorf("generator bug: unexpected type %v", t))
}

// uniqueName returns a name for the provided type that is unique within a
// generated file: a sanitized rendering of the type plus a hash of its full
// string representation, to disambiguate same-named types from different
// packages.
func uniqueName(t types.Type) string {
	hash := sha256.Sum256([]byte(t.String()))
	return fmt.Sprintf("%s_%x", sanitize(t), hash[:4])
}
