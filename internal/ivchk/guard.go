package ivchk

import (
	"fmt"
	"sort"

	"github.com/kayagokalp/filament/internal/ir"
)

// guardWindow is the merged (event, start, end) a guard's operand ports
// are claimed to tile together without gap or overlap.
type guardWindow struct {
	Event      ir.EventIdx
	Start, End ir.TimeIdx
}

// guardAvailability computes the merged availability window for a
// guard's operand ports (spec §4.3: "guard-availability union"). Every
// operand must carry an @exact guarantee anchored on the same event;
// when every operand's offset folds to a concrete int, gaplessness is
// verified directly here (IVC004 on a gap or event mismatch). When an
// offset is still parametric (pre-Mono), gaplessness cannot be decided
// in Go — the merged window is still returned, built from the start of
// the first-listed operand and the end of the last-listed one (operands
// are not sorted in this case), and it is the two containment
// obligations generated from it
// (exact(window) subset within(src), within(src) subset exact(window))
// that the solver ultimately stands or falls on; a bogus merge here
// simply produces an obligation the solver correctly refuses to prove.
func guardAvailability(ctx *ir.Context, comp *ir.Component, ports []ir.PortIdx) (*guardWindow, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("guard has no operand ports")
	}
	type win struct {
		ev                 ir.EventIdx
		start, end         int
		startIdx, endIdx   ir.TimeIdx
		foldable           bool
	}
	wins := make([]win, 0, len(ports))
	for _, p := range ports {
		live, ok := resolveLive(ctx, comp, p)
		if !ok || !live.Annotated {
			return nil, fmt.Errorf("guard operand %q has no resolvable liveness", comp.Ports[p].Name)
		}
		if !live.Exact {
			return nil, fmt.Errorf("guard operand %q lacks an @exact guarantee", comp.Ports[p].Name)
		}
		st := comp.Times[live.Range[0]]
		en := comp.Times[live.Range[1]]
		if st.Event != en.Event {
			return nil, fmt.Errorf("guard operand %q anchors different events at its own start/end", comp.Ports[p].Name)
		}
		sv, sok := ir.EvalConst(comp, st.Offset)
		ev, eok := ir.EvalConst(comp, en.Offset)
		wins = append(wins, win{ev: st.Event, start: sv, end: ev, startIdx: live.Range[0], endIdx: live.Range[1], foldable: sok && eok})
	}
	anchor := wins[0].ev
	for _, w := range wins[1:] {
		if w.ev != anchor {
			return nil, fmt.Errorf("guard operands anchor different events")
		}
	}
	allFoldable := true
	for _, w := range wins {
		if !w.foldable {
			allFoldable = false
		}
	}
	if allFoldable {
		sort.Slice(wins, func(i, j int) bool { return wins[i].start < wins[j].start })
		for i := 1; i < len(wins); i++ {
			if wins[i].start != wins[i-1].end {
				return nil, fmt.Errorf("gap or overlap between guard operands at offset %d", wins[i].start)
			}
		}
	}
	first, last := wins[0], wins[len(wins)-1]
	return &guardWindow{Event: anchor, Start: first.startIdx, End: last.endIdx}, nil
}
