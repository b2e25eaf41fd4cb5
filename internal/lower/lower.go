// Package lower implements the AST-to-IR lowering pass (spec §4.2): a
// two-pass declare/define walk over the whole namespace, grounded on the
// teacher's two-pass elaboration style (internal/elaborate/elaborate.go:
// a Declare pass that allocates every top-level name before a Define
// pass resolves bodies against them, so forward references between
// components work regardless of declaration order).
package lower

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

type lowerer struct {
	table   *diag.Table
	ctx     *ir.Context
	ccByIdx map[ir.CompIdx]*compCtx
	errs    []*diag.Report
}

// compCtx is the per-component lowering scope: the IR component under
// construction plus the name tables used to resolve surface identifiers.
// Params/ports/events start out holding the signature's own names and
// grow (and shrink, via save/restore) as body commands introduce
// loop/bundle-scoped parameters.
type compCtx struct {
	l    *lowerer
	irc  *ir.Component
	idx  ir.CompIdx
	isExt bool

	params    map[string]ir.ParamIdx
	ports     map[string]ir.PortIdx
	events    map[string]ir.EventIdx
	instances map[string]ir.InstIdx
	invokes   map[string]ir.InvIdx
}

func (l *lowerer) collect(err error) {
	if err == nil {
		return
	}
	if r, ok := diag.AsReport(err); ok {
		l.errs = append(l.errs, r)
		return
	}
	l.errs = append(l.errs, diag.New(diag.INT001, diag.KindInternal, "lower", err.Error(), diag.NoPos))
}

func lowErr(code string, kind diag.Kind, pos diag.PosID, format string, args ...any) error {
	return diag.Wrap(diag.New(code, kind, "lower", fmt.Sprintf(format, args...), pos))
}

// Lower translates a parsed Namespace into an ir.Context. Every signature
// in the namespace is declared before any body is lowered, so an
// instance may target a component declared later in the file.
func Lower(ns *ast.Namespace, table *diag.Table) (*ir.Context, error) {
	l := &lowerer{
		table:   table,
		ctx:     ir.NewContext(),
		ccByIdx: make(map[ir.CompIdx]*compCtx),
	}

	order := make([]ir.CompIdx, 0, len(ns.Components))
	for _, comp := range ns.Components {
		irc := ir.NewComponent(comp.Sig.Name)
		irc.IsExt = comp.IsExt
		irc.StatelessNote = comp.StatelessNote
		idx := l.ctx.AddComponent(irc)
		cc := &compCtx{
			l: l, irc: irc, idx: idx, isExt: comp.IsExt,
			params:    make(map[string]ir.ParamIdx),
			ports:     make(map[string]ir.PortIdx),
			events:    make(map[string]ir.EventIdx),
			instances: make(map[string]ir.InstIdx),
			invokes:   make(map[string]ir.InvIdx),
		}
		l.ccByIdx[idx] = cc
		order = append(order, idx)
		l.lowerSignature(cc, comp.Sig)
	}

	for _, ef := range ns.Externs {
		var idxs []ir.CompIdx
		for _, sig := range ef.Signatures {
			idx := l.ctx.FindByName(sig.Name)
			if idx != -1 {
				idxs = append(idxs, idx)
			}
		}
		l.ctx.ExternsByFile[ef.Path] = idxs
	}
	if ns.Entrypoint != nil {
		l.ctx.Entrypoint = l.ctx.FindByName(*ns.Entrypoint)
	}

	for i, comp := range ns.Components {
		idx := order[i]
		cc := l.ccByIdx[idx]
		if !comp.IsExt {
			l.lowerBody(cc, comp.Body)
		}
		if err := cc.irc.Freeze(); err != nil {
			l.collect(err)
		}
	}

	if err := diag.NewMultiError(l.errs); err != nil {
		return nil, err
	}
	return l.ctx, nil
}
