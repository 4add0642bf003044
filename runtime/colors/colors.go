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

// Package colors renders colorized, tabularized text on terminals that
// support it.
package colors

import (
	"fmt"
	"hash/fnv"
	"os"

	"golang.org/x/term"
)

// Code represents an ANSI escape code for colors and formatting.
type Code string

const (
	Reset     Code = "\x1b[0m" // The ANSI escape code that resets formatting.
	Bold      Code = "\x1b[1m" // The ANSI escape code for bold text.
	Underline Code = "\x1b[4m" // The ANSI escape code for underlining.
)

// visible holds the 8-bit colors [1] that stay readable on both light
// and dark backgrounds, as runs of color indices. Blacks, whites, dark
// blues, pale yellows, and the grayscale ramp are left out.
//
// [1]: https://en.wikipedia.org/wiki/ANSI_escape_code#8-bit
var visible = func() []byte {
	var palette []byte
	for _, run := range [][2]byte{
		{1, 3}, {5, 6}, {9, 14}, {22, 51}, {58, 58}, {62, 82},
		{88, 101}, {103, 107}, {110, 117}, {124, 143}, {148, 148},
		{160, 184}, {196, 219},
	} {
		for c := run[0]; c <= run[1]; c++ {
			palette = append(palette, c)
		}
	}
	return palette
}()

// Enabled returns whether it is ok to write colorized output to stdout
// or stderr, following the conventions most terminal programs share:
// color is off when the NO_COLOR environment variable is set, when TERM
// is "dumb", or when either stdout or stderr is not a terminal.
func Enabled() bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// Color256 returns the ANSI escape code that sets the foreground to the
// given 8-bit color. See [1] for a depiction of the color space.
//
// [1]: https://en.wikipedia.org/wiki/ANSI_escape_code#8-bit
func Color256(i byte) Code {
	return Code(fmt.Sprintf("\x1b[38;5;%dm", i))
}

// ColorHash picks a color from the visible palette by hashing s. Equal
// strings map to the same color, so a name renders consistently across
// rows and invocations.
func ColorHash(s string) Code {
	h := fnv.New32a()
	h.Write([]byte(s))
	return Color256(visible[h.Sum32()%uint32(len(visible))])
}
