package ivchk

import "github.com/kayagokalp/filament/internal/ir"

// resolveLive returns p's liveness expressed in comp's own arena. A
// signature or local port's Live is already in comp's arena and is
// returned unchanged. An invoke-proxy port (ir.OwnerPortInv) defers its
// real shape to its Foreign base — Lower left Width/Live unresolved there
// because IvChk runs before Mono, over still-parametric signatures (spec
// §2 pipeline order) — so this substitutes the callee's declared window
// through the invocation's event bindings to produce a Time comparable
// against every other Time in comp.
func resolveLive(ctx *ir.Context, comp *ir.Component, p ir.PortIdx) (ir.Liveness, bool) {
	port := comp.Ports[p]
	owner, isInv := port.Owner.(ir.OwnerPortInv)
	if !isInv {
		return port.Live, true
	}
	calleeComp := ctx.Comp(owner.Base.Comp)
	calleePort := calleeComp.Ports[owner.Base.Target]
	if !calleePort.Live.Annotated {
		return ir.Liveness{Annotated: false}, true
	}
	inv := comp.Invokes[owner.Inv]
	inst := comp.Instances[inv.Inst]

	startT := calleeComp.Times[calleePort.Live.Range[0]]
	endT := calleeComp.Times[calleePort.Live.Range[1]]
	newStart, ok := substituteCalleeTime(comp, calleeComp, inv, inst, startT)
	if !ok {
		return ir.Liveness{}, false
	}
	newEnd, ok := substituteCalleeTime(comp, calleeComp, inv, inst, endT)
	if !ok {
		return ir.Liveness{}, false
	}
	return ir.Liveness{
		Idx: ir.NoIdx, Len: ir.NoIdx,
		Range: [2]ir.TimeIdx{newStart, newEnd}, Exact: calleePort.Live.Exact, Annotated: true,
	}, true
}

// substituteCalleeTime translates a Time expressed in the callee's own
// arena (calleeEvent + offset, where offset may reference the callee's
// signature parameters) into a Time in the caller's arena, by looking up
// which caller Time the invocation bound to that callee event and adding
// the callee's offset (itself reexpressed over the instance's actual
// parameter arguments) on top of it.
func substituteCalleeTime(callerComp, calleeComp *ir.Component, inv ir.Invoke, inst ir.Instance, t ir.Time) (ir.TimeIdx, bool) {
	var bound *ir.Time
	for _, eb := range inv.Events {
		if eb.CalleeEvent == t.Event {
			bt := callerComp.Times[eb.Time]
			bound = &bt
			break
		}
	}
	if bound == nil {
		return 0, false
	}
	offset, ok := reexpressCalleeExpr(callerComp, calleeComp, inst, t.Offset)
	if !ok {
		return 0, false
	}
	total := ir.AddExprSum(callerComp, bound.Offset, offset)
	return callerComp.AddTime(ir.Time{Event: bound.Event, Offset: total}), true
}

// reexpressCalleeExpr translates an Expr from the callee's arena into the
// caller's, substituting a reference to the callee's Nth signature
// parameter with the instance's Nth actual argument (already a
// caller-arena ExprIdx, set when the instance was declared). This is the
// same tree-walk reexpressDefault in internal/lower performs for default
// parameter values, applied here to a callee's liveness offset instead.
func reexpressCalleeExpr(callerComp, calleeComp *ir.Component, inst ir.Instance, e ir.ExprIdx) (ir.ExprIdx, bool) {
	switch x := calleeComp.Exprs[e].(type) {
	case ir.EConcrete:
		return callerComp.AddExpr(ir.EConcrete{Value: x.Value}), true
	case ir.EParam:
		pos := sigParamPos(calleeComp, x.Param)
		if pos < 0 || pos >= len(inst.Params) {
			return 0, false
		}
		return inst.Params[pos], true
	case ir.EBinOp:
		l, ok := reexpressCalleeExpr(callerComp, calleeComp, inst, x.L)
		if !ok {
			return 0, false
		}
		r, ok := reexpressCalleeExpr(callerComp, calleeComp, inst, x.R)
		if !ok {
			return 0, false
		}
		return callerComp.AddExpr(ir.EBinOp{Op: x.Op, L: l, R: r}), true
	case ir.EUnFn:
		v, ok := reexpressCalleeExpr(callerComp, calleeComp, inst, x.X)
		if !ok {
			return 0, false
		}
		return callerComp.AddExpr(ir.EUnFn{Fn: x.Fn, X: v}), true
	default:
		return 0, false
	}
}

func sigParamPos(comp *ir.Component, target ir.ParamIdx) int {
	for i, p := range comp.SigParams() {
		if p == target {
			return i
		}
	}
	return -1
}
