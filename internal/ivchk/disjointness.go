package ivchk

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// checkDisjointness generates the pairwise |bi - bj| >= delay obligation
// for every two invokes of the same Instance bound to the same
// interface-bearing event (spec §4.3: disjointness), so two invocations
// of a shared, stateful resource can never fire close enough together to
// race on its state. A component's own StatelessNote documents the
// decision to skip this reasoning for resources the note attests have no
// meaningful internal state to race on (Open Question #3).
func checkDisjointness(ctx *ir.Context, compIdx ir.CompIdx, comp *ir.Component) ([]Obligation, []*diag.Report) {
	byInst := make(map[ir.InstIdx][]ir.InvIdx)
	for i, inv := range comp.Invokes {
		byInst[inv.Inst] = append(byInst[inv.Inst], ir.InvIdx(i))
	}

	var obs []Obligation
	var reports []*diag.Report
	for instIdx, invs := range byInst {
		if len(invs) < 2 {
			continue
		}
		inst := comp.Instances[instIdx]
		target := ctx.Comp(inst.Comp)
		if target.StatelessNote != "" {
			continue
		}
		for ei, tEvent := range target.Events {
			if !tEvent.HasInterface {
				continue
			}
			delaySub := target.TimeSubs[tEvent.Delay]
			unit, ok := delaySub.(ir.SubUnit)
			if !ok {
				continue
			}
			delayExpr, ok2 := reexpressCalleeExpr(comp, target, inst, unit.Value)
			if !ok2 {
				continue
			}
			for a := 0; a < len(invs); a++ {
				for b := a + 1; b < len(invs); b++ {
					o, r := checkInvokePairDisjoint(comp, invs[a], invs[b], ir.EventIdx(ei), delayExpr)
					obs = append(obs, o...)
					reports = append(reports, r...)
				}
			}
		}
	}
	return obs, reports
}

func checkInvokePairDisjoint(comp *ir.Component, a, b ir.InvIdx, event ir.EventIdx, delay ir.ExprIdx) ([]Obligation, []*diag.Report) {
	ta, foundA := bindTimeForEvent(comp.Invokes[a], event)
	tb, foundB := bindTimeForEvent(comp.Invokes[b], event)
	if !foundA || !foundB {
		return nil, nil
	}
	biTime := comp.Times[ta]
	bjTime := comp.Times[tb]

	sv, sok := ir.EvalConst(comp, biTime.Offset)
	tv, tok := ir.EvalConst(comp, bjTime.Offset)
	dv, dok := ir.EvalConst(comp, delay)
	if sok && tok && dok && biTime.Event == bjTime.Event {
		diff := sv - tv
		if diff < 0 {
			diff = -diff
		}
		if diff < dv {
			return nil, []*diag.Report{diag.New(diag.IVC007, diag.KindMalformed, "ivchk",
				fmt.Sprintf("invokes %q and %q of the same instance fire %d cycles apart, fewer than the required %d",
					comp.Invokes[a].Name, comp.Invokes[b].Name, diff, dv), comp.Invokes[a].Pos)}
		}
		return nil, nil
	}

	shiftedI := comp.AddTime(ir.Time{Event: biTime.Event, Offset: ir.AddExprSum(comp, biTime.Offset, delay)})
	shiftedJ := comp.AddTime(ir.Time{Event: bjTime.Event, Offset: ir.AddExprSum(comp, bjTime.Offset, delay)})
	left := comp.AddProp(ir.PTimeCmp{Op: ir.CmpLe, L: shiftedI, R: tb})
	right := comp.AddProp(ir.PTimeCmp{Op: ir.CmpLe, L: shiftedJ, R: ta})
	cons := orAll(comp, []ir.PropIdx{left, right})
	return []Obligation{{
		Cons: cons, Code: diag.IVC007,
		Reason: fmt.Sprintf("invokes %q and %q of the same instance may fire closer together than the required separation",
			comp.Invokes[a].Name, comp.Invokes[b].Name),
		Pos: comp.Invokes[a].Pos, Context: "disjointness",
	}}, nil
}

func bindTimeForEvent(inv ir.Invoke, event ir.EventIdx) (ir.TimeIdx, bool) {
	for _, eb := range inv.Events {
		if eb.CalleeEvent == event {
			return eb.Time, true
		}
	}
	return 0, false
}
