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

package colors

import (
	"fmt"
	"io"
	"strings"
)

// dimColor is the gray used for de-emphasized cells.
var dimColor = Color256(245)

// An Atom is a span of text rendered in one style.
type Atom struct {
	S         string // the text
	Underline bool
	Bold      bool
	Color     Code
}

// String renders the atom, wrapping it in ANSI escape sequences when color
// output is enabled.
func (a Atom) String() string {
	if !Enabled() {
		return a.S
	}
	esc := string(a.Color)
	if a.Underline {
		esc += string(Underline)
	}
	if a.Bold {
		esc += string(Bold)
	}
	return esc + a.S + string(Reset)
}

// Text is styled text: a sequence of independently styled atoms.
type Text []Atom

// raw returns the text with all styling stripped.
func (t Text) raw() string {
	var b strings.Builder
	for _, a := range t {
		b.WriteString(a.S)
	}
	return b.String()
}

// len returns the number of printable characters in the text. Escape
// sequences do not count.
func (t Text) len() int {
	return len(t.raw())
}

// String renders the text with its styling.
func (t Text) String() string {
	var b strings.Builder
	for _, a := range t {
		b.WriteString(a.String())
	}
	return b.String()
}

// dimmed returns a copy of the text recolored in a dim gray.
func (t Text) dimmed() Text {
	out := make(Text, len(t))
	for i, a := range t {
		a.Color = dimColor
		out[i] = a
	}
	return out
}

// A DimFunc decides which columns of a row to dim, given the raw text of
// the previous row and of the row itself. Dimming repeated values makes
// the changing columns stand out.
type DimFunc func(prev, row []string) []bool

// NoDim doesn't dim any columns.
func NoDim(prev, row []string) []bool {
	return make([]bool, len(row))
}

// PrefixDim dims the longest prefix of row that is identical to prev.
func PrefixDim(prev, row []string) []bool {
	cols := make([]bool, len(row))
	for i := 0; i < len(prev); i++ {
		if prev[i] != row[i] {
			break
		}
		cols[i] = true
	}
	return cols
}

// A Tabularizer renders rows as a box-drawn table. Unlike text/tabwriter it
// measures cell widths on printable characters only, so ANSI-styled cells
// still line up. "modkit describe" prints tables like this one:
//
//	╭───────────────────────────────────╮
//	│ bank                              │
//	├──────────┬──────────┬─────────────┤
//	│ MODULE   │ CALL     │ CLASS       │
//	├──────────┼──────────┼─────────────┤
//	│ balances │ transfer │ normal      │
//	│ balances │ burn     │ normal      │
//	│ sudo     │ set_key  │ operational │
//	╰──────────┴──────────┴─────────────╯
//
// The box style follows duf's tables (github.com/muesli/duf).
type Tabularizer struct {
	w     io.Writer // where to write
	title []Text    // table title lines
	rows  [][]Text  // buffered rows; rows[0] is the column header
	dim   DimFunc
}

// NewTabularizer returns a new tabularizer writing to w. The title lines,
// if any, are printed above the column header. dim decides which columns
// of a row are dimmed.
func NewTabularizer(w io.Writer, title []Text, dim DimFunc) *Tabularizer {
	return &Tabularizer{w: w, title: title, dim: dim}
}

// Row buffers a new row to be tabularized. The first row is the column
// header. Rows aren't written until Flush is called, and every row must
// have the same number of values.
func (t *Tabularizer) Row(values ...any) {
	row := make([]Text, len(values))
	for i, v := range values {
		row[i] = toText(v)
	}
	if len(t.rows) > 0 && len(row) != len(t.rows[0]) {
		panic(fmt.Errorf("bad row size: got %d, want %d", len(row), len(t.rows[0])))
	}
	t.rows = append(t.rows, row)
}

// toText converts a cell value to Text. Accepted values are Text, Atom,
// string, and fmt.Stringer.
func toText(v any) Text {
	switch v := v.(type) {
	case Text:
		return v
	case Atom:
		return Text{v}
	case string:
		return Text{Atom{S: v}}
	case fmt.Stringer:
		return Text{Atom{S: v.String()}}
	}
	panic(fmt.Errorf("unsupported value type %T", v))
}

// Flush writes the buffered rows. Flush should only be called once, after
// the column header and all rows have been added.
func (t *Tabularizer) Flush() {
	// Compute column widths over all buffered rows.
	widths := make([]int, len(t.rows[0]))
	for _, row := range t.rows {
		for i, text := range row {
			if text.len() > widths[i] {
				widths[i] = text.len()
			}
		}
	}

	// rule draws a horizontal line with (l)eft, (m)iddle, and (r)ight
	// junctions.
	rule := func(l, m, r string) {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		fmt.Fprintf(t.w, "%s%s%s\n", l, strings.Join(parts, m), r)
	}

	// cells draws a row of padded cell contents.
	cells := func(row []Text, dim []bool) {
		fmt.Fprint(t.w, "│")
		for i, text := range row {
			if dim != nil && dim[i] {
				text = text.dimmed()
			}
			fmt.Fprintf(t.w, " %s │", pad(text, widths[i]))
		}
		fmt.Fprintln(t.w)
	}

	if len(t.title) > 0 {
		width := 1
		for _, w := range widths {
			width += w + 3
		}
		fmt.Fprintf(t.w, "╭%s╮\n", strings.Repeat("─", width-2))
		for _, line := range t.title {
			fmt.Fprintf(t.w, "│ %s │\n", pad(line, width-4))
		}
		rule("├", "┬", "┤")
	} else {
		rule("╭", "┬", "╮")
	}

	cells(t.rows[0], nil)
	rule("├", "┼", "┤")
	for i, row := range t.rows[1:] {
		var dim []bool
		if Enabled() && i > 0 {
			dim = t.dim(rawRow(t.rows[i]), rawRow(row))
		}
		cells(row, dim)
	}
	rule("╰", "┴", "╯")
}

// pad left-aligns text in a cell of printable width w, compensating for
// the invisible ANSI escape sequences %-*s would otherwise count.
func pad(text Text, w int) string {
	s := text.String()
	return fmt.Sprintf("%-*s", w+len(s)-text.len(), s)
}

// rawRow strips the styling from a row.
func rawRow(row []Text) []string {
	raw := make([]string, len(row))
	for i, text := range row {
		raw[i] = text.raw()
	}
	return raw
}
