package ast

import "github.com/kayagokalp/filament/internal/diag"

// PropDecl is a surface boolean proposition: comparisons over param
// expressions or times, and the logical connectives And/Implies/Not
// (spec §3: Prop tagged Cmp/TimeCmp/Implies/And/Not).
type PropDecl interface {
	propDecl()
}

// CmpOp is a comparison operator.
type CmpOp string

const (
	CmpEq CmpOp = "="
	CmpNe CmpOp = "!="
	CmpLt CmpOp = "<"
	CmpLe CmpOp = "<="
	CmpGt CmpOp = ">"
	CmpGe CmpOp = ">="
)

// CmpProp compares two parameter expressions.
type CmpProp struct {
	Op   CmpOp
	L, R ParamExpr
}

func (*CmpProp) propDecl() {}

// TimeCmpProp compares two time expressions; only primitives may declare
// these (§4.3.2 component-level prohibition for user components).
type TimeCmpProp struct {
	Op   CmpOp
	L, R TimeExpr
}

func (*TimeCmpProp) propDecl() {}

// ImpliesProp is `ant => cons`.
type ImpliesProp struct {
	Ant, Cons PropDecl
}

func (*ImpliesProp) propDecl() {}

// AndProp is `a && b`.
type AndProp struct {
	A, B PropDecl
}

func (*AndProp) propDecl() {}

// NotProp is `!p`.
type NotProp struct {
	P PropDecl
}

func (*NotProp) propDecl() {}

// Access is a reference to a port, optionally qualified by an invoke or
// instance name and optionally indexed into a bundle.
type Access struct {
	Invoke string    // "" => a port of the containing component (THIS)
	Port   string
	Index  ParamExpr // nil unless the port is a bundle
	Span   diag.Span
}

func (a *Access) Position() diag.Span { return a.Span }

// Guard is the boolean condition on a guarded connect: the `|` (OR) of
// one or more one-bit port accesses (spec §4.3.2: "guards are built from
// `|` of ports").
type Guard struct {
	Ports []*Access
	Span  diag.Span
}

func (g *Guard) Position() diag.Span { return g.Span }
