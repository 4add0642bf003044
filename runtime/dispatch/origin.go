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

// Package dispatch defines the authorization context handed to module
// operations and the uniform result and error shapes returned by generated
// dispatchers.
package dispatch

import (
	"errors"
	"fmt"
)

// Origin is the authenticated caller context passed into every dispatch.
// There are three kinds of origin:
//
//   - Root: the privileged system origin.
//   - Signed: a call authorized by a named account.
//   - None: an unsigned call.
//
// Validating an origin against an operation's requirements is the
// operation's own first step, via EnsureRoot, EnsureSigned, or EnsureNone.
type Origin struct {
	kind   originKind
	signer string
}

type originKind uint8

const (
	kindNone originKind = iota
	kindSigned
	kindRoot
)

// Root returns the privileged system origin.
func Root() Origin {
	return Origin{kind: kindRoot}
}

// Signed returns an origin authorized by the named account.
func Signed(signer string) Origin {
	return Origin{kind: kindSigned, signer: signer}
}

// None returns the unsigned origin.
func None() Origin {
	return Origin{kind: kindNone}
}

// IsRoot reports whether o is the root origin.
func (o Origin) IsRoot() bool {
	return o.kind == kindRoot
}

// Signer returns the signing account and true if o is a signed origin.
func (o Origin) Signer() (string, bool) {
	if o.kind != kindSigned {
		return "", false
	}
	return o.signer, true
}

// String implements fmt.Stringer.
func (o Origin) String() string {
	switch o.kind {
	case kindRoot:
		return "root"
	case kindSigned:
		return fmt.Sprintf("signed(%s)", o.signer)
	default:
		return "none"
	}
}

// ErrBadOrigin is returned when an origin does not meet an operation's
// requirement. Operations should return it (or an error wrapping it) from
// their origin check so that callers can test with errors.Is.
var ErrBadOrigin = errors.New("bad origin")

// EnsureSigned returns the signing account if o is a signed origin and
// ErrBadOrigin otherwise.
func EnsureSigned(o Origin) (string, error) {
	signer, ok := o.Signer()
	if !ok {
		return "", fmt.Errorf("%w: expected signed, got %s", ErrBadOrigin, o)
	}
	return signer, nil
}

// EnsureRoot returns ErrBadOrigin unless o is the root origin.
func EnsureRoot(o Origin) error {
	if !o.IsRoot() {
		return fmt.Errorf("%w: expected root, got %s", ErrBadOrigin, o)
	}
	return nil
}

// EnsureNone returns ErrBadOrigin unless o is the unsigned origin.
func EnsureNone(o Origin) error {
	if o.kind != kindNone {
		return fmt.Errorf("%w: expected none, got %s", ErrBadOrigin, o)
	}
	return nil
}
