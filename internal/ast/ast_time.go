package ast

import "github.com/kayagokalp/filament/internal/diag"

// TimeExpr is a raw interval-time expression as written by the programmer:
// a tree of event identifiers, naturals, sums, and maxes (spec §4.1). It is
// untyped until EvChk classifies each subexpression as Event or Nat.
type TimeExpr interface {
	Node
	timeExpr()
}

// TEEvent is a bare identifier naming an event.
type TEEvent struct {
	Name string
	Span diag.Span
}

func (*TEEvent) timeExpr()            {}
func (t *TEEvent) Position() diag.Span { return t.Span }

// TENat wraps a natural-number (parameter) expression used in time-expr
// position.
type TENat struct {
	Value ParamExpr
	Span  diag.Span
}

func (*TENat) timeExpr()            {}
func (t *TENat) Position() diag.Span { return t.Span }

// TESum is `a + b`, written with either operand order; EvChk determines
// which side is the Event and which is the Nat.
type TESum struct {
	A, B TimeExpr
	Span diag.Span
}

func (*TESum) timeExpr()            {}
func (t *TESum) Position() diag.Span { return t.Span }

// TEMax is `max(a, b)`, both operands Event-typed.
type TEMax struct {
	A, B TimeExpr
	Span diag.Span
}

func (*TEMax) timeExpr()            {}
func (t *TEMax) Position() diag.Span { return t.Span }

// EventArg is one positional event argument at an invoke site. A nil
// Value (like a missing trailing argument) binds the callee's event to
// the invoking component's event of the same name at offset 0; it is an
// error if no such event is in scope. Signatures declare no per-event
// default values.
type EventArg struct {
	Value TimeExpr // nil => default
	Span  diag.Span
}
