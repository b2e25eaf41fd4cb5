package lower

import (
	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// lowerProp lowers a surface proposition into the Prop arena. Callers
// that must enforce the component-level ordering-constraint prohibition
// (spec §4.3.2: only primitives may compare times directly) check
// containsTimeCmp first.
func lowerProp(cc *compCtx, p ast.PropDecl) (ir.PropIdx, error) {
	switch t := p.(type) {
	case *ast.CmpProp:
		l, err := lowerParamExpr(cc, t.L)
		if err != nil {
			return 0, err
		}
		r, err := lowerParamExpr(cc, t.R)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddProp(ir.PCmp{Op: ir.CmpOp(t.Op), L: l, R: r}), nil
	case *ast.TimeCmpProp:
		l, err := lowerTime(cc, t.L)
		if err != nil {
			return 0, err
		}
		r, err := lowerTime(cc, t.R)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddProp(ir.PTimeCmp{Op: ir.CmpOp(t.Op), L: l, R: r}), nil
	case *ast.ImpliesProp:
		a, err := lowerProp(cc, t.Ant)
		if err != nil {
			return 0, err
		}
		b, err := lowerProp(cc, t.Cons)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddProp(ir.PImplies{Ant: a, Cons: b}), nil
	case *ast.AndProp:
		a, err := lowerProp(cc, t.A)
		if err != nil {
			return 0, err
		}
		b, err := lowerProp(cc, t.B)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddProp(ir.PAnd{A: a, B: b}), nil
	case *ast.NotProp:
		a, err := lowerProp(cc, t.P)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddProp(ir.PNot{P: a}), nil
	default:
		return 0, lowErr(diag.LOW001, diag.KindInternal, diag.NoPos, "unrecognized proposition %T", p)
	}
}

// containsTimeCmp reports whether p contains a TimeCmpProp anywhere in
// its tree (spec §4.3.2: user components may not declare ordering
// constraints between times, only primitives may).
func containsTimeCmp(p ast.PropDecl) bool {
	switch t := p.(type) {
	case *ast.TimeCmpProp:
		return true
	case *ast.ImpliesProp:
		return containsTimeCmp(t.Ant) || containsTimeCmp(t.Cons)
	case *ast.AndProp:
		return containsTimeCmp(t.A) || containsTimeCmp(t.B)
	case *ast.NotProp:
		return containsTimeCmp(t.P)
	default:
		return false
	}
}
