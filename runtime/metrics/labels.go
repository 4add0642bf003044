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

package metrics

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// A labelScheme renders a label struct of type L into the string key-value
// pairs exported with a metric. Keys default to the field name with its
// first letter lowercased; a `modkit:"..."` field tag overrides the key.
type labelScheme[L comparable] struct {
	fields []labelField
}

type labelField struct {
	index []int  // reflect field index
	key   string // exported label key
}

// labelKinds lists the field kinds allowed in a label struct.
var labelKinds = map[reflect.Kind]bool{
	reflect.String: true,
	reflect.Bool:   true,
	reflect.Int:    true,
	reflect.Int8:   true,
	reflect.Int16:  true,
	reflect.Int32:  true,
	reflect.Int64:  true,
	reflect.Uint:   true,
	reflect.Uint8:  true,
	reflect.Uint16: true,
	reflect.Uint32: true,
	reflect.Uint64: true,
}

// newLabelScheme builds the label scheme for L. It returns an error unless
// L is a struct whose fields are all exported and of unnamed string, bool,
// or integer type.
func newLabelScheme[L comparable]() (*labelScheme[L], error) {
	var zero L
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("metric labels: %T is not a struct", zero)
	}
	scheme := &labelScheme[L]{fields: make([]labelField, t.NumField())}
	keys := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			return nil, fmt.Errorf("metric labels: field %s of %s is unexported", f.Name, t)
		}
		// Named field types like `type hostname string` are rejected even
		// when their underlying type is allowed.
		if f.Type.PkgPath() != "" || !labelKinds[f.Type.Kind()] {
			return nil, fmt.Errorf("metric labels: field %s of %s has unsupported type %s", f.Name, t, f.Type)
		}
		key := lowerFirst(f.Name)
		if alias, ok := f.Tag.Lookup("modkit"); ok {
			key = alias
		}
		if keys[key] {
			return nil, fmt.Errorf("metric labels: %s has duplicate field %q", t, key)
		}
		keys[key] = true
		scheme.fields[i] = labelField{index: f.Index, key: key}
	}
	return scheme, nil
}

// labels renders the label values of l, keyed per the scheme.
func (s *labelScheme[L]) labels(l L) map[string]string {
	v := reflect.ValueOf(l)
	out := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		out[f.key] = fmt.Sprint(v.FieldByIndex(f.index).Interface())
	}
	return out
}

// lowerFirst lowercases the first rune of s.
func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
