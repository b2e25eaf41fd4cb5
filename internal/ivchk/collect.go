package ivchk

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// collectObligations walks comp's command tree (recursing into ForLoop
// bodies and both If branches, carrying the enclosing branch conditions
// as each Obligation's antecedent) and returns every SMT-discharged
// obligation alongside any Malformed report decidable without the
// solver's help (spec §7: KindMalformed is "caught without solver help").
func collectObligations(ctx *ir.Context, compIdx ir.CompIdx, comp *ir.Component) (obs []Obligation, immediate []*diag.Report) {
	var walk func(cmds []ir.Command, branch []ir.PropIdx)
	walk = func(cmds []ir.Command, branch []ir.PropIdx) {
		for _, cmd := range cmds {
			switch c := cmd.(type) {
			case ir.CmdConnect:
				o, rep := connectObligations(ctx, comp, c, branch)
				obs = append(obs, o...)
				if rep != nil {
					immediate = append(immediate, rep)
				}
			case ir.CmdInvoke:
				o, reps := invokeObligations(ctx, compIdx, comp, c, branch)
				obs = append(obs, o...)
				immediate = append(immediate, reps...)
			case ir.CmdFsm:
				o, rep := fsmObligations(comp, c, branch)
				obs = append(obs, o...)
				if rep != nil {
					immediate = append(immediate, rep)
				}
			case ir.CmdForLoop:
				walk(c.Body, branch)
			case ir.CmdIf:
				walk(c.Then, append(append([]ir.PropIdx{}, branch...), c.Cond))
				negated := comp.AddProp(ir.PNot{P: c.Cond})
				walk(c.Else, append(append([]ir.PropIdx{}, branch...), negated))
			}
		}
	}
	walk(comp.Commands, nil)
	return obs, immediate
}

// connectObligations generates the containment (and, for a guarded
// connect, guard-availability) obligations for one Connect.
func connectObligations(ctx *ir.Context, comp *ir.Component, c ir.CmdConnect, branch []ir.PropIdx) ([]Obligation, *diag.Report) {
	dstLive, dstOK := resolveLive(ctx, comp, c.Dst)
	srcLive, srcOK := resolveLive(ctx, comp, c.Src)
	if !dstOK || !srcOK || !dstLive.Annotated || !srcLive.Annotated {
		return nil, diag.New(diag.IVC001, diag.KindMalformed, "ivchk",
			fmt.Sprintf("connect to %q: source or destination liveness could not be resolved", comp.Ports[c.Dst].Name), c.Pos)
	}

	if c.Guard == nil {
		if srcLive.Exact && !dstLive.Exact {
			return nil, diag.New(diag.IVC002, diag.KindMalformed, "ivchk",
				fmt.Sprintf("connect to %q: source has an @exact guarantee but destination does not", comp.Ports[c.Dst].Name), c.Pos)
		}
		return containmentObligations(comp, srcLive.Range, dstLive.Range, branch,
			fmt.Sprintf("connect to %q", comp.Ports[c.Dst].Name), c.Pos), nil
	}

	for _, gp := range c.Guard.Ports {
		if gl, ok := resolveLive(ctx, comp, gp); ok && gl.Annotated && !gl.Exact {
			return nil, diag.New(diag.IVC003, diag.KindMalformed, "ivchk",
				fmt.Sprintf("connect to %q: guard operand %q lacks an @exact guarantee", comp.Ports[c.Dst].Name, comp.Ports[gp].Name), c.Pos)
		}
	}
	win, err := guardAvailability(ctx, comp, c.Guard.Ports)
	if err != nil {
		return nil, diag.New(diag.IVC004, diag.KindMalformed, "ivchk",
			fmt.Sprintf("connect to %q: %v", comp.Ports[c.Dst].Name, err), c.Pos)
	}
	guardRange := [2]ir.TimeIdx{win.Start, win.End}
	obs := containmentObligations(comp, srcLive.Range, dstLive.Range, branch,
		fmt.Sprintf("connect to %q", comp.Ports[c.Dst].Name), c.Pos)
	obs = append(obs, containmentObligations(comp, srcLive.Range, guardRange, branch,
		fmt.Sprintf("connect to %q: source must be live whenever its guard fires", comp.Ports[c.Dst].Name), c.Pos)...)
	obs = append(obs, containmentObligations(comp, guardRange, srcLive.Range, branch,
		fmt.Sprintf("connect to %q: guard availability must cover the source's window", comp.Ports[c.Dst].Name), c.Pos)...)
	return obs, nil
}

// containmentObligations builds the two inequalities outer ⊇ inner:
// outer.start <= inner.start and inner.end <= outer.end.
func containmentObligations(comp *ir.Component, outer, inner [2]ir.TimeIdx, branch []ir.PropIdx, context string, pos diag.PosID) []Obligation {
	return []Obligation{
		{
			Cons:    comp.AddProp(ir.PTimeCmp{Op: ir.CmpLe, L: outer[0], R: inner[0]}),
			Branch:  branch, Code: diag.IVC001, Reason: "start of the contained window is before the containing window's start",
			Pos: pos, Context: context,
		},
		{
			Cons:    comp.AddProp(ir.PTimeCmp{Op: ir.CmpLe, L: inner[1], R: outer[1]}),
			Branch:  branch, Code: diag.IVC001, Reason: "end of the contained window is after the containing window's end",
			Pos: pos, Context: context,
		},
	}
}

// invokeObligations generates the event-interface admission obligation
// for each bound event of an Invoke that has an interface signal: the
// bound time's offset from the callee event's own anchor must land on a
// delay-aligned cycle.
func invokeObligations(ctx *ir.Context, compIdx ir.CompIdx, comp *ir.Component, c ir.CmdInvoke, branch []ir.PropIdx) ([]Obligation, []*diag.Report) {
	inv := comp.Invokes[c.Inv]
	inst := comp.Instances[inv.Inst]
	target := ctx.Comp(inst.Comp)

	var obs []Obligation
	for _, eb := range inv.Events {
		tEvent := target.Events[eb.CalleeEvent]
		if !tEvent.HasInterface {
			continue
		}
		delaySub := target.TimeSubs[tEvent.Delay]
		unit, ok := delaySub.(ir.SubUnit)
		if !ok {
			continue // symbolic (cross-event) delays never arise for an event's own Delay; see internal/lower
		}
		delayExpr, ok2 := reexpressCalleeExpr(comp, target, inst, unit.Value)
		if !ok2 {
			continue
		}
		boundTime := comp.Times[eb.Time]
		mod := comp.AddExpr(ir.EBinOp{Op: "mod", L: boundTime.Offset, R: delayExpr})
		zero := comp.AddExpr(ir.EConcrete{Value: 0})
		cons := comp.AddProp(ir.PCmp{Op: ir.CmpEq, L: mod, R: zero})
		obs = append(obs, Obligation{
			Cons: cons, Branch: branch, Code: diag.IVC006,
			Reason:  fmt.Sprintf("invoke binds event %q at a cycle not aligned with its interface delay", tEvent.Name),
			Pos:     inv.Pos,
			Context: fmt.Sprintf("invoke %q", inv.Name),
		})
	}
	return obs, nil
}

// fsmObligations verifies the trigger is exactly one cycle wide, folding
// the check directly when possible and falling back to a solver
// obligation when the offsets are still parametric.
func fsmObligations(comp *ir.Component, c ir.CmdFsm, branch []ir.PropIdx) ([]Obligation, *diag.Report) {
	live := comp.Ports[c.Trigger].Live
	if !live.Annotated {
		return nil, diag.New(diag.IVC005, diag.KindMalformed, "ivchk",
			fmt.Sprintf("fsm %q: trigger has no liveness annotation", c.Name), c.Pos)
	}
	st := comp.Times[live.Range[0]]
	en := comp.Times[live.Range[1]]
	if st.Event != en.Event {
		return nil, diag.New(diag.IVC005, diag.KindMalformed, "ivchk",
			fmt.Sprintf("fsm %q: trigger start/end anchor different events", c.Name), c.Pos)
	}
	sv, sok := ir.EvalConst(comp, st.Offset)
	ev, eok := ir.EvalConst(comp, en.Offset)
	if sok && eok {
		if ev-sv != 1 {
			return nil, diag.New(diag.IVC005, diag.KindMalformed, "ivchk",
				fmt.Sprintf("fsm %q: trigger is %d cycles wide, want exactly 1", c.Name, ev-sv), c.Pos)
		}
		return nil, nil
	}
	want := ir.AddOffsetExpr(comp, st.Offset, 1)
	cons := comp.AddProp(ir.PCmp{Op: ir.CmpEq, L: en.Offset, R: want})
	return []Obligation{{
		Cons: cons, Branch: branch, Code: diag.IVC005,
		Reason: fmt.Sprintf("fsm %q: trigger must be exactly one cycle wide", c.Name),
		Pos:    c.Pos, Context: fmt.Sprintf("fsm %q", c.Name),
	}}, nil
}
