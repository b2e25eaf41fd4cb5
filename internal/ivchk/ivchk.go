// Package ivchk is the interval checker (spec §4.3): it walks each
// lowered, non-extern component, generates one proof obligation per
// connect/guard/invoke/fsm/disjointness requirement, and discharges every
// obligation through a caller-supplied Prover. This package never shells
// out itself, and this module contains no SMT-backed Prover
// implementation.
//
// Grounded on original_source/src/interval_checking/{checker,context,
// guard_availability}.rs for the shape of obligation generation, and on
// the teacher's internal/errors accumulate-then-report style: a
// component's obligations are all collected before any is discharged, so
// one failing component still reports everything wrong with it.
package ivchk

import (
	"fmt"
	"sort"

	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// Prover discharges one obligation against a component's known facts. It
// returns ok=false with a model (a counterexample variable binding, when
// the solver can produce one) if the obligation's negation is
// satisfiable; err is reserved for solver-process failures (spec §7:
// KindProofFailed is a normal diagnostic, not an internal error).
type Prover interface {
	Prove(comp *ir.Component, facts []ir.PropIdx, cons ir.PropIdx) (ok bool, model map[string]string, err error)
}

// Obligation is one fact the checker must prove true of a component,
// optionally under a branch antecedent (the conjunction of enclosing If
// conditions it was generated inside).
type Obligation struct {
	Cons    ir.PropIdx
	Branch  []ir.PropIdx // AND-conjunction antecedent; empty = unconditional
	Code    string
	Reason  string
	Pos     diag.PosID
	Context string // human-readable locus, e.g. a connect's destination port
}

// Check runs the interval checker over every non-extern component in ctx,
// discharging every generated obligation through prover. Extern
// components are axiomatic (their Assumes are taken on faith, per spec
// §4.3: "only primitives may declare ordering constraints") and are
// skipped.
func Check(ctx *ir.Context, prover Prover) error {
	var reports []*diag.Report
	for idx, comp := range ctx.Comps {
		if comp.IsExt {
			continue
		}
		reports = append(reports, checkComponent(ctx, ir.CompIdx(idx), comp, prover)...)
	}
	return diag.NewMultiError(reports)
}

func checkComponent(ctx *ir.Context, compIdx ir.CompIdx, comp *ir.Component, prover Prover) []*diag.Report {
	var reports []*diag.Report

	facts := collectFacts(comp)

	obs, immediate := collectObligations(ctx, compIdx, comp)
	reports = append(reports, immediate...)

	disObs, disReports := checkDisjointness(ctx, compIdx, comp)
	obs = append(obs, disObs...)
	reports = append(reports, disReports...)

	reports = append(reports, checkRemainingAssigns(comp)...)

	for _, ob := range obs {
		cons := ob.Cons
		if len(ob.Branch) > 0 {
			cons = comp.AddProp(ir.PImplies{Ant: andAll(comp, ob.Branch), Cons: ob.Cons})
		}
		ok, model, err := prover.Prove(comp, facts, cons)
		if err != nil {
			reports = append(reports, diag.New(diag.INT001, diag.KindInternal, "ivchk",
				fmt.Sprintf("solver failure discharging %s: %v", ob.Context, err), ob.Pos))
			continue
		}
		if !ok {
			rep := diag.New(ob.Code, diag.KindProofFailed, "ivchk",
				fmt.Sprintf("%s: %s", ob.Context, ob.Reason), ob.Pos)
			if len(model) > 0 {
				rep.WithData("model", model)
			}
			reports = append(reports, rep)
		}
	}
	return reports
}

// collectFacts pools every CmdAssume proposition reachable anywhere in
// comp (signature assumes, loop bounds, body assumes), flattened without
// regard to nesting. This is sound — every loop/bundle index is a
// freshly allocated Param, so an assume about one scope's index can only
// ever be a vacuously-irrelevant extra hypothesis elsewhere, never an
// incorrect one — but imprecise: a tighter implementation would thread
// only in-scope assumes through the obligation walk.
func collectFacts(comp *ir.Component) []ir.PropIdx {
	var facts []ir.PropIdx
	var walk func([]ir.Command)
	walk = func(cmds []ir.Command) {
		for _, c := range cmds {
			switch x := c.(type) {
			case ir.CmdAssume:
				facts = append(facts, x.Prop)
			case ir.CmdForLoop:
				walk(x.Body)
			case ir.CmdIf:
				walk(x.Then)
				walk(x.Else)
			}
		}
	}
	walk(comp.Commands)
	return facts
}

// andAll conjoins props into one Prop, returning a single element
// unchanged. props must be non-empty (it indexes props[0]); checkComponent
// only calls it when len(ob.Branch) > 0.
func andAll(comp *ir.Component, props []ir.PropIdx) ir.PropIdx {
	acc := props[0]
	for _, p := range props[1:] {
		acc = comp.AddProp(ir.PAnd{A: acc, B: p})
	}
	return acc
}

// orAll is De Morgan's OR built from the Prop tagged sum's And/Not basis
// (the IR deliberately carries no Or variant, mirroring
// original_source's own obligation connectives).
func orAll(comp *ir.Component, props []ir.PropIdx) ir.PropIdx {
	notAcc := comp.AddProp(ir.PNot{P: props[0]})
	for _, p := range props[1:] {
		notAcc = comp.AddProp(ir.PAnd{A: notAcc, B: comp.AddProp(ir.PNot{P: p})})
	}
	return comp.AddProp(ir.PNot{P: notAcc})
}

func sortedNames(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
