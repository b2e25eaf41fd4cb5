// Package evchk implements the Event Type-Checker (spec §4.1): it
// classifies every subexpression of a raw interval-time expression as
// either an Event or a Nat, rejects ill-typed combinations, and produces
// a canonical "Event + ΣNat" (optionally maxed) form that later passes
// can compare structurally.
//
// Grounded on the teacher's classify-then-build style (e.g.
// internal/types/typechecker_literals.go's literal-kind dispatch) and on
// original_source/src/event_checker/check.rs's type_check/transform_time.
package evchk

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
)

// Kind is the inferred type of a time subexpression.
type Kind int

const (
	KindEvent Kind = iota
	KindNat
)

func (k Kind) String() string {
	if k == KindEvent {
		return "Event"
	}
	return "Nat"
}

// EventSum is the canonical single-event form: Event + Offset, where
// Offset is a folded natural-number expression. Event == "" marks a pure
// constant with no anchoring event (produced only by folding, e.g. a
// max of two already-bound concrete times).
type EventSum struct {
	Event  string
	Offset ast.ParamExpr
}

// IsConcrete reports whether this sum has no anchoring event.
func (s EventSum) IsConcrete() bool { return s.Event == "" }

// Canon is the Event Type-Checker's output form: either a single
// EventSum or a max of exactly two (spec §4.1: "canonicalized form
// stored as Event + Σ Nat plus an optional max of such forms").
type Canon struct {
	Sum *EventSum    // set iff Max == nil
	Max *[2]EventSum // set iff Sum == nil
}

// Classify infers the Event/Nat type of a raw time expression, per the
// simple type system:
//
//	identifier : Event
//	integer    : Nat
//	+ : Event × Nat -> Event (symmetric)
//	max : Event × Event -> Event
func Classify(e ast.TimeExpr) (Kind, error) {
	switch t := e.(type) {
	case *ast.TEEvent:
		return KindEvent, nil
	case *ast.TENat:
		return KindNat, nil
	case *ast.TESum:
		ka, err := Classify(t.A)
		if err != nil {
			return 0, err
		}
		kb, err := Classify(t.B)
		if err != nil {
			return 0, err
		}
		if (ka == KindEvent && kb == KindNat) || (ka == KindNat && kb == KindEvent) {
			return KindEvent, nil
		}
		return 0, typeErr(fmt.Sprintf("cannot add %s and %s: + requires one Event and one Nat operand", ka, kb))
	case *ast.TEMax:
		ka, err := Classify(t.A)
		if err != nil {
			return 0, err
		}
		kb, err := Classify(t.B)
		if err != nil {
			return 0, err
		}
		if ka != KindEvent || kb != KindEvent {
			return 0, typeErr(fmt.Sprintf("max requires two Event operands, got %s and %s", ka, kb))
		}
		return KindEvent, nil
	default:
		return 0, typeErr(fmt.Sprintf("unrecognized time expression %T", e))
	}
}

// Canonicalize type-checks and canonicalizes a raw time expression. The
// expression must classify as Event at the top level: a bare Nat literal
// is not itself a valid interval-time value.
func Canonicalize(e ast.TimeExpr) (*Canon, error) {
	kind, err := Classify(e)
	if err != nil {
		return nil, err
	}
	if kind != KindEvent {
		return nil, typeErr("time expression must have type Event, not Nat")
	}
	return canon(e)
}

func canon(e ast.TimeExpr) (*Canon, error) {
	switch t := e.(type) {
	case *ast.TEEvent:
		return &Canon{Sum: &EventSum{Event: t.Name, Offset: &ast.PNat{Value: 0}}}, nil

	case *ast.TESum:
		ka, _ := Classify(t.A)
		event, nat := t.A, t.B
		if ka == KindNat {
			event, nat = t.B, t.A
		}
		inner, err := canon(event)
		if err != nil {
			return nil, err
		}
		if inner.Max != nil {
			return nil, typeErr("cannot add a Nat offset to a max(...) expression directly; wrap the max first")
		}
		natLeaf, ok := nat.(*ast.TENat)
		if !ok {
			return nil, typeErr("Nat operand of + must be a natural-number expression")
		}
		folded := AddOffset(inner.Sum.Offset, natLeaf.Value)
		return &Canon{Sum: &EventSum{Event: inner.Sum.Event, Offset: folded}}, nil

	case *ast.TEMax:
		ca, err := canon(t.A)
		if err != nil {
			return nil, err
		}
		cb, err := canon(t.B)
		if err != nil {
			return nil, err
		}
		if ca.Max != nil || cb.Max != nil {
			return nil, typeErr("nested max(...) is not supported: max requires two single Event+Nat operands")
		}
		return MaxSums(*ca.Sum, *cb.Sum), nil

	default:
		return nil, typeErr(fmt.Sprintf("cannot canonicalize %T", e))
	}
}

func typeErr(msg string) error {
	return diag.Wrap(diag.New("EVC001", diag.KindTypeError, "evchk", msg, diag.NoPos))
}
