// Package diag holds the cross-pass diagnostics data model: the global,
// append-only source position table and the structured error report type
// every pass returns. Rendering these to a terminal or editor is out of
// scope; this package only preserves the data.
package diag

import "fmt"

// Pos is a single point in source text.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open range of source text.
type Span struct {
	Start Pos
	End   Pos
}

// PosID is a stable index into the global position table. Carrying an
// index instead of a Span in every IR node keeps spans optional and the
// IR itself position-agnostic (§9: "avoids carrying spans in every IR
// node and keeps positions optional").
type PosID int

// NoPos is the sentinel for "position not tracked".
const NoPos PosID = -1

// Table is the append-only global position table. One Table is shared by
// an entire compilation (all passes, all components).
type Table struct {
	spans []Span
}

// NewTable creates an empty position table.
func NewTable() *Table {
	return &Table{}
}

// Intern appends a span and returns its stable PosID. Spans are never
// deduplicated: PosID identity matters for note ordering, not the spans'
// structural equality.
func (t *Table) Intern(sp Span) PosID {
	t.spans = append(t.spans, sp)
	return PosID(len(t.spans) - 1)
}

// Lookup returns the span for a PosID. Panics on an out-of-range id since
// a dangling PosID is an Internal-class invariant violation, never a
// reportable user error.
func (t *Table) Lookup(id PosID) Span {
	if id == NoPos {
		return Span{}
	}
	return t.spans[id]
}

// Len reports how many spans have been interned so far.
func (t *Table) Len() int { return len(t.spans) }
