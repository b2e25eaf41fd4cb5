package lower

import (
	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/evchk"
	"github.com/kayagokalp/filament/internal/ir"
)

// lowerParamExpr lowers a surface ParamExpr against cc's current
// parameter scope.
func lowerParamExpr(cc *compCtx, e ast.ParamExpr) (ir.ExprIdx, error) {
	return lowerParamExprEnv(cc, nil, e)
}

// lowerParamExprEnv lowers a ParamExpr, preferring env over cc's scope
// when a name appears in both. The only caller, lowerParamExpr, passes a
// nil env; default parameter values at an instantiation site are
// translated by reexpressDefault instead.
func lowerParamExprEnv(cc *compCtx, env map[string]ir.ExprIdx, e ast.ParamExpr) (ir.ExprIdx, error) {
	switch t := e.(type) {
	case *ast.PNat:
		return cc.irc.AddExpr(ir.EConcrete{Value: t.Value}), nil
	case *ast.PParam:
		if env != nil {
			if v, ok := env[t.Name]; ok {
				return v, nil
			}
		}
		if idx, ok := cc.params[t.Name]; ok {
			return cc.irc.AddExpr(ir.EParam{Param: idx}), nil
		}
		return 0, lowErr(diag.LOW001, diag.KindUndefined, cc.pos(t.Span), "undefined parameter %q", t.Name)
	case *ast.PBinOp:
		l, err := lowerParamExprEnv(cc, env, t.L)
		if err != nil {
			return 0, err
		}
		r, err := lowerParamExprEnv(cc, env, t.R)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddExpr(ir.EBinOp{Op: t.Op, L: l, R: r}), nil
	case *ast.PUnFn:
		x, err := lowerParamExprEnv(cc, env, t.Operand)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddExpr(ir.EUnFn{Fn: t.Fn, X: x}), nil
	default:
		return 0, lowErr(diag.LOW001, diag.KindInternal, diag.NoPos, "unrecognized parameter expression %T", e)
	}
}

// lowerTime canonicalizes a raw time expression via evchk and resolves
// its anchoring event against cc's scope, producing a single Time arena
// entry. A max(...) result is rejected here: ordinary liveness ranges
// and event bindings are single Event+offset points (spec §4.1), and the
// IR's Time has no max form.
func lowerTime(cc *compCtx, te ast.TimeExpr) (ir.TimeIdx, error) {
	canon, err := evchk.Canonicalize(te)
	if err != nil {
		return 0, err
	}
	if canon.Max != nil {
		return 0, lowErr(diag.LOW001, diag.KindMalformed, cc.pos(te.Position()),
			"max(...) is not permitted in this position")
	}
	sum := canon.Sum
	if sum.Event == "" {
		return 0, lowErr(diag.LOW001, diag.KindMalformed, cc.pos(te.Position()),
			"time expression must anchor to an event")
	}
	evIdx, ok := cc.events[sum.Event]
	if !ok {
		return 0, lowErr(diag.LOW001, diag.KindUndefined, cc.pos(te.Position()), "undefined event %q", sum.Event)
	}
	offIdx, err := lowerParamExpr(cc, sum.Offset)
	if err != nil {
		return 0, err
	}
	return cc.irc.AddTime(ir.Time{Event: evIdx, Offset: offIdx}), nil
}

// lowerDelay canonicalizes an event's own delay expression, which may
// mention the event's own name (spec §4.2 placeholder-delay note), and
// produces a Unit TimeSub holding its offset magnitude.
func lowerDelay(cc *compCtx, selfEvent string, te ast.TimeExpr) (ir.SubIdx, error) {
	canon, err := evchk.Canonicalize(te)
	if err != nil {
		return 0, err
	}
	if canon.Max != nil {
		return 0, lowErr(diag.LOW001, diag.KindMalformed, cc.pos(te.Position()), "max(...) is not permitted in a delay expression")
	}
	sum := canon.Sum
	if sum.Event != "" && sum.Event != selfEvent {
		return 0, lowErr(diag.LOW001, diag.KindMalformed, cc.pos(te.Position()),
			"delay of event %q may only reference itself, not %q", selfEvent, sum.Event)
	}
	offIdx, err := lowerParamExpr(cc, sum.Offset)
	if err != nil {
		return 0, err
	}
	return cc.irc.AddTimeSub(ir.SubUnit{Value: offIdx}), nil
}

func (cc *compCtx) pos(span diag.Span) diag.PosID {
	return cc.l.table.Intern(span)
}
