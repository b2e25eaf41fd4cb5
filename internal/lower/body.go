package lower

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// lowerBody lowers a component's top-level command list. Declarations
// (Pass 1) run before definitions (Pass 2, §4.2) at every nesting level a
// command list appears: a program may wire one invoke's output into
// another invoke whose inputs are defined only later, so every invoke's
// output ports must be addressable before any use site is visited.
func (l *lowerer) lowerBody(cc *compCtx, body []ast.Command) {
	cmds := l.lowerCommandList(cc, body)
	for _, c := range cmds {
		cc.irc.AppendCommand(c)
	}
}

// lowerCommandList runs Pass 1 (declare every Instance, then define every
// Invoke's output ports) over cmds, then Pass 2 (define everything,
// recursing into ForLoop/If bodies, which repeat both passes at their own
// nesting level).
func (l *lowerer) lowerCommandList(cc *compCtx, cmds []ast.Command) []ir.Command {
	for _, c := range cmds {
		if id, ok := c.(*ast.InstanceDecl); ok {
			if err := l.declareInstance(cc, id); err != nil {
				l.collect(err)
			}
		}
	}
	for _, c := range cmds {
		if id, ok := c.(*ast.InvokeDecl); ok {
			if err := l.declareInvokeOutputs(cc, id); err != nil {
				l.collect(err)
			}
		}
	}

	out := make([]ir.Command, 0, len(cmds))
	for _, c := range cmds {
		lowered, err := l.defineCommand(cc, c)
		if err != nil {
			l.collect(err)
			continue
		}
		out = append(out, lowered...)
	}
	return out
}

// defineCommand returns one or more ir.Commands for a single surface
// command: almost always one, except an Invoke, which also yields the
// Connects Pass 2 emits for its positional port arguments. Returning
// them together (rather than appending straight to the component) keeps
// them in the right nested command list when the Invoke sits inside a
// ForLoop or If body.
func (l *lowerer) defineCommand(cc *compCtx, cmd ast.Command) ([]ir.Command, error) {
	switch c := cmd.(type) {
	case *ast.InstanceDecl:
		idx, ok := cc.instances[c.Name]
		if !ok {
			return nil, lowErr(diag.LOW001, diag.KindInternal, cc.pos(c.Span), "instance %q was not declared in Pass 1", c.Name)
		}
		return []ir.Command{ir.CmdInstance{Inst: idx}}, nil
	case *ast.InvokeDecl:
		return l.defineInvokeInputs(cc, c)
	case *ast.ConnectDecl:
		cmd, err := l.lowerConnect(cc, c)
		return one(cmd, err)
	case *ast.ForLoopDecl:
		cmd, err := l.lowerForLoop(cc, c)
		return one(cmd, err)
	case *ast.IfDecl:
		cmd, err := l.lowerIf(cc, c)
		return one(cmd, err)
	case *ast.BundleDecl:
		cmd, err := l.lowerBundle(cc, c)
		return one(cmd, err)
	case *ast.AssumeDecl:
		cmd, err := l.lowerAssume(cc, c)
		return one(cmd, err)
	case *ast.FsmDecl:
		cmd, err := l.lowerFsm(cc, c)
		return one(cmd, err)
	default:
		return nil, lowErr(diag.LOW001, diag.KindInternal, diag.NoPos, "unrecognized command %T", cmd)
	}
}

func one(cmd ir.Command, err error) ([]ir.Command, error) {
	if err != nil {
		return nil, err
	}
	return []ir.Command{cmd}, nil
}

// declareInstance is Pass 1's handling of a top-level Instance: resolve
// the target signature, fill trailing defaults, and allocate the
// instance. Instance arguments are parameter expressions only (never
// port accesses), so instances never depend on anything declared later
// in this same pass.
func (l *lowerer) declareInstance(cc *compCtx, id *ast.InstanceDecl) error {
	if _, dup := cc.instances[id.Name]; dup {
		return lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(id.Span), "instance %q already declared", id.Name)
	}
	targetIdx := l.ctx.FindByName(id.Comp)
	if targetIdx == -1 {
		return lowErr(diag.LOW001, diag.KindUndefined, cc.pos(id.Span), "undefined component %q", id.Comp)
	}
	target := l.ctx.Comp(targetIdx)
	sigParams := target.SigParams()
	if len(id.Args) > len(sigParams) {
		return lowErr(diag.LOW005, diag.KindMalformed, cc.pos(id.Span),
			"instance %q of %q: too many parameter arguments (got %d, signature has %d)", id.Name, id.Comp, len(id.Args), len(sigParams))
	}

	env := make(map[string]ir.ExprIdx, len(sigParams))
	args := make([]ir.ExprIdx, len(sigParams))
	for i, pIdx := range sigParams {
		tp := target.Params[pIdx]
		if i < len(id.Args) {
			v, err := lowerParamExpr(cc, id.Args[i])
			if err != nil {
				return err
			}
			args[i] = v
			env[tp.Name] = v
			continue
		}
		if !tp.HasDefault {
			return lowErr(diag.LOW002, diag.KindMalformed, cc.pos(id.Span),
				"instance %q of %q: missing required parameter %q", id.Name, id.Comp, tp.Name)
		}
		v, err := reexpressDefault(cc, target, tp.Default, env)
		if err != nil {
			return err
		}
		args[i] = v
		env[tp.Name] = v
	}

	instIdx := cc.irc.AddInstance(ir.Instance{Name: id.Name, Comp: targetIdx, Params: args, Pos: cc.pos(id.Span)})
	cc.instances[id.Name] = instIdx
	return nil
}

// reexpressDefault translates a default Expr already interned in the
// target component's arena into the invoking component's arena, using
// env to substitute references to the target's own parameters. Defaults
// are restricted to expressions over concrete values and earlier
// parameters of the same signature (never a bundle or loop parameter),
// so every EParam reference found here is guaranteed to resolve in env.
func reexpressDefault(cc *compCtx, target *ir.Component, e ir.ExprIdx, env map[string]ir.ExprIdx) (ir.ExprIdx, error) {
	switch x := target.Exprs[e].(type) {
	case ir.EConcrete:
		return cc.irc.AddExpr(ir.EConcrete{Value: x.Value}), nil
	case ir.EParam:
		name := target.Params[x.Param].Name
		if v, ok := env[name]; ok {
			return v, nil
		}
		return 0, lowErr(diag.LOW002, diag.KindMalformed, diag.NoPos,
			"default expression references parameter %q before it is bound", name)
	case ir.EBinOp:
		l, err := reexpressDefault(cc, target, x.L, env)
		if err != nil {
			return 0, err
		}
		r, err := reexpressDefault(cc, target, x.R, env)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddExpr(ir.EBinOp{Op: x.Op, L: l, R: r}), nil
	case ir.EUnFn:
		v, err := reexpressDefault(cc, target, x.X, env)
		if err != nil {
			return 0, err
		}
		return cc.irc.AddExpr(ir.EUnFn{Fn: x.Fn, X: v}), nil
	default:
		return 0, lowErr(diag.LOW001, diag.KindInternal, diag.NoPos, "unrecognized default expression variant %T", x)
	}
}

// declareInvokeOutputs is Pass 1's handling of a top-level Invoke:
// resolve event arguments, allocate the invocation, and define only its
// output proxy ports — exactly the subset spec §4.2 requires addressable
// before any use site is visited. Input proxy ports are left for Pass 2.
func (l *lowerer) declareInvokeOutputs(cc *compCtx, id *ast.InvokeDecl) error {
	if _, dup := cc.invokes[id.Name]; dup {
		return lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(id.Span), "invocation %q already declared", id.Name)
	}
	instIdx, ok := cc.instances[id.Instance]
	if !ok {
		return lowErr(diag.LOW001, diag.KindUndefined, cc.pos(id.Span), "undefined instance %q", id.Instance)
	}
	inst := cc.irc.Instances[instIdx]
	target := l.ctx.Comp(inst.Comp)

	if len(id.Events) > len(target.Events) {
		return lowErr(diag.LOW005, diag.KindMalformed, cc.pos(id.Span),
			"invoke %q: too many event arguments (got %d, signature has %d)", id.Name, len(id.Events), len(target.Events))
	}
	eventBinds := make([]ir.EventBind, 0, len(target.Events))
	for i, ev := range target.Events {
		if i < len(id.Events) && id.Events[i].Value != nil {
			t, err := lowerTime(cc, id.Events[i].Value)
			if err != nil {
				return err
			}
			eventBinds = append(eventBinds, ir.EventBind{CalleeEvent: ir.EventIdx(i), Time: t})
			continue
		}
		callerEv, ok := cc.events[ev.Name]
		if !ok {
			return lowErr(diag.LOW002, diag.KindMalformed, cc.pos(id.Span),
				"invoke %q: missing argument for event %q and no same-named event in scope to default from", id.Name, ev.Name)
		}
		t := cc.irc.AddTime(ir.Time{Event: callerEv, Offset: cc.irc.AddExpr(ir.EConcrete{Value: 0})})
		eventBinds = append(eventBinds, ir.EventBind{CalleeEvent: ir.EventIdx(i), Time: t})
	}

	invIdx := cc.irc.AddInvoke(ir.Invoke{Name: id.Name, Inst: instIdx, Events: eventBinds, Pos: cc.pos(id.Span)})
	cc.invokes[id.Name] = invIdx

	outputs := target.SigOutputs()
	ports := make([]ir.PortIdx, len(outputs))
	for i, tp := range outputs {
		tport := target.Ports[tp]
		localName := id.Name + "." + tport.Name
		ports[i] = cc.irc.AddPort(ir.Port{
			Name: localName,
			// Width/Live deferred to Base: IvChk runs before Mono, over
			// still-parametric signatures, and resolves a proxy port's
			// declared shape through its Foreign key rather than a local
			// copy (pipeline order EvChk -> Lower -> IvChk -> Mono).
			Width: ir.NoIdx,
			Live:  ir.Liveness{Idx: ir.NoIdx, Len: ir.NoIdx},
			Owner: ir.OwnerPortInv{Inv: invIdx, Dir: ir.Out, Base: ir.Foreign{Target: int(tp), Comp: inst.Comp}},
			Pos:   cc.pos(id.Span),
		})
		cc.ports[localName] = ports[i]
	}
	cc.irc.SetInvokePorts(invIdx, ports)
	return nil
}

// defineInvokeInputs is Pass 2's handling of an Invoke already declared
// in Pass 1: define its input proxy ports and emit a Connect for every
// positional port argument, linking the actual to the just-defined input.
func (l *lowerer) defineInvokeInputs(cc *compCtx, id *ast.InvokeDecl) ([]ir.Command, error) {
	invIdx, ok := cc.invokes[id.Name]
	if !ok {
		return nil, lowErr(diag.LOW001, diag.KindInternal, cc.pos(id.Span), "invocation %q was not declared in Pass 1", id.Name)
	}
	inv := cc.irc.Invokes[invIdx]
	inst := cc.irc.Instances[inv.Inst]
	target := l.ctx.Comp(inst.Comp)
	inputs := target.SigInputs()

	if len(id.Ports) > 0 && len(id.Ports) != len(inputs) {
		return nil, lowErr(diag.LOW005, diag.KindMalformed, cc.pos(id.Span),
			"invoke %q: port argument count (%d) does not match signature input count (%d)", id.Name, len(id.Ports), len(inputs))
	}

	inputPorts := make([]ir.PortIdx, len(inputs))
	connects := make([]ir.Command, 0, len(inputs))
	for i, tp := range inputs {
		tport := target.Ports[tp]
		localName := id.Name + "." + tport.Name
		localIdx := cc.irc.AddPort(ir.Port{
			Name:  localName,
			Width: ir.NoIdx,
			Live:  ir.Liveness{Idx: ir.NoIdx, Len: ir.NoIdx},
			Owner: ir.OwnerPortInv{Inv: invIdx, Dir: ir.In, Base: ir.Foreign{Target: int(tp), Comp: inst.Comp}},
			Pos:   cc.pos(id.Span),
		})
		inputPorts[i] = localIdx
		cc.ports[localName] = localIdx

		if i < len(id.Ports) {
			srcPort, srcIdx, hasSrcIdx, err := resolveAccess(cc, id.Ports[i])
			if err != nil {
				return nil, err
			}
			connects = append(connects, ir.CmdConnect{
				Dst: localIdx, Src: srcPort, SrcIdx: srcIdx, HasSrcIdx: hasSrcIdx, Pos: cc.pos(id.Span),
			})
		}
	}

	// ports field holds outputs (from Pass 1) followed by inputs, so
	// IvChk can address either half without re-deriving the split.
	full := append(append([]ir.PortIdx{}, inv.Ports...), inputPorts...)
	cc.irc.SetInvokePorts(invIdx, full)
	return append([]ir.Command{ir.CmdInvoke{Inv: invIdx}}, connects...), nil
}

func resolveAccess(cc *compCtx, acc *ast.Access) (ir.PortIdx, ir.ExprIdx, bool, error) {
	var (
		portIdx ir.PortIdx
		ok      bool
	)
	if acc.Invoke == "" {
		portIdx, ok = cc.ports[acc.Port]
	} else {
		portIdx, ok = cc.ports[acc.Invoke+"."+acc.Port]
	}
	if !ok {
		return 0, 0, false, lowErr(diag.LOW001, diag.KindUndefined, cc.pos(acc.Span), "undefined port access %q", acc.Port)
	}
	if acc.Index == nil {
		return portIdx, 0, false, nil
	}
	idxExpr, err := lowerParamExpr(cc, acc.Index)
	if err != nil {
		return 0, 0, false, err
	}
	return portIdx, idxExpr, true, nil
}

func (l *lowerer) lowerConnect(cc *compCtx, cd *ast.ConnectDecl) (ir.Command, error) {
	dstPort, dstIdx, hasDstIdx, err := resolveAccess(cc, cd.Dst)
	if err != nil {
		return nil, err
	}
	srcPort, srcIdx, hasSrcIdx, err := resolveAccess(cc, cd.Src)
	if err != nil {
		return nil, err
	}
	var guard *ir.Guard
	if cd.Guard != nil {
		ports := make([]ir.PortIdx, len(cd.Guard.Ports))
		for i, a := range cd.Guard.Ports {
			p, _, _, err := resolveAccess(cc, a)
			if err != nil {
				return nil, err
			}
			ports[i] = p
		}
		guard = &ir.Guard{Ports: ports}
	}
	return ir.CmdConnect{
		Dst: dstPort, DstIdx: dstIdx, HasDstIdx: hasDstIdx,
		Guard: guard,
		Src:   srcPort, SrcIdx: srcIdx, HasSrcIdx: hasSrcIdx,
		Pos: cc.pos(cd.Span),
	}, nil
}

func (l *lowerer) lowerForLoop(cc *compCtx, fd *ast.ForLoopDecl) (ir.Command, error) {
	start, err := lowerParamExpr(cc, fd.Start)
	if err != nil {
		return nil, err
	}
	end, err := lowerParamExpr(cc, fd.End)
	if err != nil {
		return nil, err
	}
	loopIdx := cc.irc.AddParam(ir.Param{Name: fd.Idx, Owner: ir.OwnerLoop{}, Pos: cc.pos(fd.Span)})
	saved, had := cc.params[fd.Idx]
	cc.params[fd.Idx] = loopIdx
	// start <= idx < end is recorded as an assumption for downstream use
	// (spec §4.2), ahead of the loop body so it is visible to it.
	boundProp := cc.irc.AddProp(ir.PAnd{
		A: cc.irc.AddProp(ir.PCmp{Op: ir.CmpLe, L: start, R: cc.irc.AddExpr(ir.EParam{Param: loopIdx})}),
		B: cc.irc.AddProp(ir.PCmp{Op: ir.CmpLt, L: cc.irc.AddExpr(ir.EParam{Param: loopIdx}), R: end}),
	})
	body := l.lowerCommandList(cc, fd.Body)
	body = append([]ir.Command{ir.CmdAssume{Prop: boundProp, Pos: cc.pos(fd.Span), Reason: "loop bound"}}, body...)
	if had {
		cc.params[fd.Idx] = saved
	} else {
		delete(cc.params, fd.Idx)
	}
	return ir.CmdForLoop{Idx: loopIdx, Start: start, End: end, Body: body, Pos: cc.pos(fd.Span)}, nil
}

func (l *lowerer) lowerIf(cc *compCtx, id *ast.IfDecl) (ir.Command, error) {
	cond, err := lowerProp(cc, id.Cond)
	if err != nil {
		return nil, err
	}
	then := l.lowerCommandList(cc, id.Then)
	els := l.lowerCommandList(cc, id.Else)
	return ir.CmdIf{Cond: cond, Then: then, Else: els, Pos: cc.pos(id.Span)}, nil
}

func (l *lowerer) lowerBundle(cc *compCtx, bd *ast.BundleDecl) (ir.Command, error) {
	if _, dup := cc.ports[bd.Name]; dup {
		return nil, lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(bd.Span), "port %q already declared", bd.Name)
	}
	pidx := cc.irc.AddParam(ir.Param{Name: bd.Name, Owner: ir.OwnerBundle{Port: -1}, Pos: cc.pos(bd.Span)})
	saved, had := cc.params[bd.Name]
	cc.params[bd.Name] = pidx

	lenIdx, errLen := lowerParamExpr(cc, bd.Len)
	widthIdx, errWidth := lowerParamExpr(cc, bd.Width)
	startT, errStart := lowerTime(cc, bd.Start)
	endT, errEnd := lowerTime(cc, bd.End)

	if had {
		cc.params[bd.Name] = saved
	} else {
		delete(cc.params, bd.Name)
	}
	for _, err := range []error{errLen, errWidth, errStart, errEnd} {
		if err != nil {
			return nil, err
		}
	}

	portIdx := cc.irc.AddPort(ir.Port{
		Name:  bd.Name,
		Width: widthIdx,
		Live: ir.Liveness{
			Idx: pidx, Len: lenIdx,
			Range: [2]ir.TimeIdx{startT, endT}, Annotated: true,
		},
		Owner: ir.OwnerPortLocal{},
		Pos:   cc.pos(bd.Span),
	})
	cc.irc.PatchBundleOwner(pidx, portIdx)
	cc.ports[bd.Name] = portIdx
	return ir.CmdBundle{Port: portIdx, Pos: cc.pos(bd.Span)}, nil
}

func (l *lowerer) lowerAssume(cc *compCtx, ad *ast.AssumeDecl) (ir.Command, error) {
	propIdx, err := lowerProp(cc, ad.Prop)
	if err != nil {
		return nil, err
	}
	return ir.CmdAssume{Prop: propIdx, Pos: cc.pos(ad.Span), Reason: "body assumption"}, nil
}

// lowerFsm resolves the trigger port and synthesizes one local port per
// FSM state, each live for exactly one cycle of the trigger's own event:
// state i occupies [event+k+i, event+k+i+1) exact, where (event, k) is the
// trigger's own declared window. Synthesizing these here (rather than in
// IvChk) keeps port creation — and therefore Access resolution for any
// Connect that reads a state signal — entirely inside Lower, matching
// every other port-introducing command (Bundle, Invoke).
func (l *lowerer) lowerFsm(cc *compCtx, fd *ast.FsmDecl) (ir.Command, error) {
	trigger, _, _, err := resolveAccess(cc, fd.Trigger)
	if err != nil {
		return nil, err
	}
	live := cc.irc.Ports[trigger].Live
	if !live.Annotated {
		return nil, lowErr(diag.IVC005, diag.KindMalformed, cc.pos(fd.Span),
			"fsm %q: trigger %q has no liveness annotation", fd.Name, fd.Trigger.Port)
	}
	startT := cc.irc.Times[live.Range[0]]
	endT := cc.irc.Times[live.Range[1]]
	if startT.Event != endT.Event {
		return nil, lowErr(diag.IVC005, diag.KindMalformed, cc.pos(fd.Span),
			"fsm %q: trigger's start and end anchor different events", fd.Name)
	}
	for i := 0; i < fd.States; i++ {
		startOff := ir.AddOffsetExpr(cc.irc, startT.Offset, i)
		endOff := ir.AddOffsetExpr(cc.irc, startT.Offset, i+1)
		stateStart := cc.irc.AddTime(ir.Time{Event: startT.Event, Offset: startOff})
		stateEnd := cc.irc.AddTime(ir.Time{Event: startT.Event, Offset: endOff})
		name := fmt.Sprintf("%s.state%d", fd.Name, i)
		if _, dup := cc.ports[name]; dup {
			return nil, lowErr(diag.LOW004, diag.KindAlreadyBound, cc.pos(fd.Span), "port %q already declared", name)
		}
		portIdx := cc.irc.AddPort(ir.Port{
			Name:  name,
			Width: cc.irc.AddExpr(ir.EConcrete{Value: 1}),
			Live: ir.Liveness{
				Idx: ir.NoIdx, Len: ir.NoIdx,
				Range: [2]ir.TimeIdx{stateStart, stateEnd}, Exact: true, Annotated: true,
			},
			Owner: ir.OwnerPortLocal{},
			Pos:   cc.pos(fd.Span),
		})
		cc.ports[name] = portIdx
	}
	return ir.CmdFsm{Name: fd.Name, States: fd.States, Trigger: trigger, Pos: cc.pos(fd.Span)}, nil
}
