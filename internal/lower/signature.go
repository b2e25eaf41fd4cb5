package lower

import (
	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// lowerSignature lowers a signature's events, parameters, ports, and
// assumes into cc's component, in the order spec §4.2 fixes: events
// first with a placeholder zero delay, then parameters, then each
// event's real delay (which may now reference sibling parameters), then
// inputs, outputs, unannotated ports, and finally assumes. Each step
// accumulates its own errors and continues, so one bad declaration
// doesn't hide problems with the rest of the signature.
func (l *lowerer) lowerSignature(cc *compCtx, sig *ast.Signature) {
	zero := cc.irc.AddExpr(ir.EConcrete{Value: 0})
	placeholder := cc.irc.AddTimeSub(ir.SubUnit{Value: zero})

	for _, ed := range sig.Events {
		if _, dup := cc.events[ed.Name]; dup {
			l.collect(lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(ed.Span), "event %q already declared", ed.Name))
			continue
		}
		idx := cc.irc.AddEvent(ir.Event{Name: ed.Name, Delay: placeholder, HasInterface: ed.HasInterface, Pos: cc.pos(ed.Span)})
		cc.events[ed.Name] = idx
	}

	seenDefault := false
	for _, pd := range sig.Params {
		if _, dup := cc.params[pd.Name]; dup {
			l.collect(lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(pd.Span), "parameter %q already declared", pd.Name))
			continue
		}
		if pd.Default != nil {
			seenDefault = true
		} else if seenDefault {
			l.collect(lowErr(diag.LOW003, diag.KindMalformed, cc.pos(pd.Span),
				"required parameter %q follows a defaulted parameter: defaults must be contiguous at the tail", pd.Name))
			continue
		}
		var (
			defIdx     ir.ExprIdx
			hasDefault bool
		)
		if pd.Default != nil {
			v, err := lowerParamExpr(cc, pd.Default)
			if err != nil {
				l.collect(err)
				continue
			}
			defIdx, hasDefault = v, true
		}
		idx := cc.irc.AddParam(ir.Param{Name: pd.Name, Owner: ir.OwnerSig{}, Default: defIdx, HasDefault: hasDefault, Pos: cc.pos(pd.Span)})
		cc.params[pd.Name] = idx
	}

	for _, ed := range sig.Events {
		evIdx, ok := cc.events[ed.Name]
		if !ok {
			continue // already reported as a duplicate above
		}
		sub, err := lowerDelay(cc, ed.Name, ed.Delay)
		if err != nil {
			l.collect(err)
			continue
		}
		cc.irc.SetEventDelay(evIdx, sub)
	}

	for _, pd := range sig.Inputs {
		l.lowerPortDecl(cc, pd, ir.In, true)
	}
	for _, pd := range sig.Outputs {
		l.lowerPortDecl(cc, pd, ir.Out, true)
	}
	for _, pd := range sig.Unannotated {
		l.lowerPortDecl(cc, pd, irDir(pd.Dir), false)
	}

	for _, pr := range sig.Assumes {
		if !cc.isExt && containsTimeCmp(pr) {
			l.collect(lowErr(diag.IVC008, diag.KindMalformed, diag.NoPos,
				"component %q declares an ordering constraint; only primitives may", cc.irc.Name))
			continue
		}
		propIdx, err := lowerProp(cc, pr)
		if err != nil {
			l.collect(err)
			continue
		}
		cc.irc.AppendCommand(ir.CmdAssume{Prop: propIdx, Pos: diag.NoPos, Reason: "signature assumption"})
	}
}

func irDir(d ast.Direction) ir.Direction {
	if d == ast.Out {
		return ir.Out
	}
	return ir.In
}

// lowerPortDecl lowers one signature port. annotated is false only for
// entries drawn from Signature.Unannotated (clock/reset-style ports with
// no liveness).
func (l *lowerer) lowerPortDecl(cc *compCtx, pd *ast.PortDecl, dir ir.Direction, annotated bool) {
	if _, dup := cc.ports[pd.Name]; dup {
		l.collect(lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(pd.Span), "port %q already declared", pd.Name))
		return
	}
	width, err := lowerParamExpr(cc, pd.Width)
	if err != nil {
		l.collect(err)
		return
	}
	var live ir.Liveness
	if annotated {
		live, err = l.lowerLiveness(cc, pd.Liveness)
		if err != nil {
			l.collect(err)
			return
		}
		live.Annotated = true
	} else {
		live = ir.Liveness{Idx: ir.NoIdx, Len: ir.NoIdx, Annotated: false}
	}
	portIdx := cc.irc.AddPort(ir.Port{Name: pd.Name, Width: width, Live: live, Owner: ir.OwnerPortSig{Dir: dir}, Pos: cc.pos(pd.Span)})
	cc.ports[pd.Name] = portIdx
	if live.Idx != ir.NoIdx {
		cc.irc.PatchBundleOwner(live.Idx, portIdx)
	}
}

// lowerLiveness lowers a liveness annotation, declaring the private
// bundle-index parameter first (if any) so Start/End may reference it,
// per the cyclic-reference resolution in spec §9: the owning port index
// is patched in once AddPort allocates it.
func (l *lowerer) lowerLiveness(cc *compCtx, ld ast.LivenessDecl) (ir.Liveness, error) {
	idx := ir.ParamIdx(ir.NoIdx)
	lenIdx := ir.ExprIdx(ir.NoIdx)
	if ld.BundleParam != "" {
		pidx := cc.irc.AddParam(ir.Param{Name: ld.BundleParam, Owner: ir.OwnerBundle{Port: -1}})
		cc.params[ld.BundleParam] = pidx
		v, err := lowerParamExpr(cc, ld.BundleLen)
		if err != nil {
			return ir.Liveness{}, err
		}
		idx, lenIdx = pidx, v
	}
	start, err := lowerTime(cc, ld.Start)
	if err != nil {
		return ir.Liveness{}, err
	}
	end, err := lowerTime(cc, ld.End)
	if err != nil {
		return ir.Liveness{}, err
	}
	return ir.Liveness{Idx: idx, Len: lenIdx, Range: [2]ir.TimeIdx{start, end}, Exact: ld.Guarantee == ast.Exact}, nil
}
