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

package codec

import "fmt"

// codecError wraps encoding and decoding failures so CatchPanics can tell
// them apart from foreign panics.
type codecError struct {
	err error
}

func (c codecError) Error() string { return c.err.Error() }
func (c codecError) Unwrap() error { return c.err }

func makeEncodeError(format string, args ...any) codecError {
	return codecError{fmt.Errorf("encoder: "+format, args...)}
}

func makeDecodeError(format string, args ...any) codecError {
	return codecError{fmt.Errorf("decoder: "+format, args...)}
}

// CatchPanics converts panics raised by Encoder and Decoder methods into
// errors. Panics raised by anything else are re-raised. Call it at the
// boundary where codec code meets ordinary error handling:
//
//	func decodeCall(data []byte) (c codegen.Call, err error) {
//		defer func() { err = codec.CatchPanics(recover()) }()
//		...
//	}
func CatchPanics(r any) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(codecError); ok {
		return err
	}
	panic(r)
}
