package lower

import (
	"testing"

	"github.com/kayagokalp/filament/internal/ast"
	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

func ev(name string) *ast.TEEvent { return &ast.TEEvent{Name: name} }
func natE(v int) *ast.TENat       { return &ast.TENat{Value: &ast.PNat{Value: v}} }
func pnat(v int) *ast.PNat        { return &ast.PNat{Value: v} }

// delayDecl builds a self-referential event delay expression: `G + n`.
func delayDecl(self string, n int) ast.TimeExpr {
	return &ast.TESum{A: ev(self), B: natE(n)}
}

func simpleSig(name string, width int) *ast.Signature {
	return &ast.Signature{
		Name: name,
		Events: []*ast.EventDecl{
			{Name: "G", Delay: delayDecl("G", 1)},
		},
		Inputs: []*ast.PortDecl{
			{Name: "in", Width: pnat(width), Dir: ast.In, Liveness: ast.LivenessDecl{
				Start: ev("G"), End: &ast.TESum{A: ev("G"), B: natE(1)},
			}},
		},
		Outputs: []*ast.PortDecl{
			{Name: "out", Width: pnat(width), Dir: ast.Out, Liveness: ast.LivenessDecl{
				Start: &ast.TESum{A: ev("G"), B: natE(1)}, End: &ast.TESum{A: ev("G"), B: natE(2)},
			}},
		},
	}
}

func TestLowerSimpleDelayComponent(t *testing.T) {
	comp := &ast.Component{
		Sig: simpleSig("D", 32),
		Body: []ast.Command{
			&ast.ConnectDecl{
				Dst: &ast.Access{Port: "out"},
				Src: &ast.Access{Port: "in"},
			},
		},
	}
	ns := &ast.Namespace{Components: []*ast.Component{comp}}
	ctx, err := Lower(ns, diag.NewTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := ctx.FindByName("D")
	if idx == -1 {
		t.Fatalf("component D not found")
	}
	c := ctx.Comp(idx)
	if !c.Frozen() {
		t.Fatalf("component not frozen")
	}
	if len(c.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(c.Commands))
	}
	conn, ok := c.Commands[0].(ir.CmdConnect)
	if !ok {
		t.Fatalf("expected CmdConnect, got %T", c.Commands[0])
	}
	outIdx, ok := c.PortByName("out")
	if !ok || conn.Dst != outIdx {
		t.Fatalf("connect destination is not out port")
	}
}

func TestLowerForwardReference(t *testing.T) {
	// add = new Add[32]<G>(p.out); emitted before p = new Prev[32]<G>(add.out)
	// is NOT how the source reads in scenario 5 of the spec; the point is
	// that declaration order of the *instances* need not match the order
	// their invokes reference one another's outputs.
	addSig := simpleSig("Add", 32)
	prevSig := simpleSig("Prev", 32)
	main := &ast.Component{
		Sig: &ast.Signature{Name: "Main", Events: []*ast.EventDecl{
			{Name: "G", Delay: delayDecl("G", 1)},
		}},
		Body: []ast.Command{
			&ast.InstanceDecl{Name: "p_inst", Comp: "Prev"},
			&ast.InstanceDecl{Name: "add_inst", Comp: "Add"},
			&ast.InvokeDecl{
				Name: "p", Instance: "p_inst",
				Events: []ast.EventArg{{Value: ev("G")}},
				Ports:  []*ast.Access{{Invoke: "add", Port: "out"}},
			},
			&ast.InvokeDecl{
				Name: "add", Instance: "add_inst",
				Events: []ast.EventArg{{Value: ev("G")}},
				Ports:  []*ast.Access{{Invoke: "p", Port: "out"}},
			},
		},
	}
	ns := &ast.Namespace{Components: []*ast.Component{
		{Sig: addSig}, {Sig: prevSig}, main,
	}}
	ctx, err := Lower(ns, diag.NewTable())
	if err != nil {
		t.Fatalf("forward reference should lower cleanly, got: %v", err)
	}
	mainIdx := ctx.FindByName("Main")
	mc := ctx.Comp(mainIdx)
	if _, ok := mc.PortByName("p.out"); ok {
		t.Fatalf("p.out should be an invoke-proxy port, not a signature port")
	}
}

func TestLowerDefaultParamContiguityViolation(t *testing.T) {
	sig := &ast.Signature{
		Name: "Bad",
		Params: []*ast.ParamDecl{
			{Name: "W", Default: pnat(8)},
			{Name: "N"}, // required after a defaulted param: must be rejected
		},
	}
	ns := &ast.Namespace{Components: []*ast.Component{{Sig: sig}}}
	_, err := Lower(ns, diag.NewTable())
	if err == nil {
		t.Fatalf("expected a contiguity error")
	}
	me, ok := err.(*diag.MultiError)
	if !ok {
		t.Fatalf("expected *diag.MultiError, got %T", err)
	}
	found := false
	for _, r := range me.Reports {
		if r.Code == diag.LOW003 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a LOW003 report, got %+v", me.Reports)
	}
}
