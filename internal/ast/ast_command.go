package ast

import "github.com/kayagokalp/filament/internal/diag"

// Command is one statement in a component body.
type Command interface {
	Node
	command()
}

// InstanceDecl creates a named instance of another component, with
// parameter arguments interpreted against the target's declared
// parameter list (trailing defaults fill missing arguments).
type InstanceDecl struct {
	Name string
	Comp string
	Args []ParamExpr
	Span diag.Span
}

func (*InstanceDecl) command()            {}
func (i *InstanceDecl) Position() diag.Span { return i.Span }

// InvokeDecl invokes an instance with event and port arguments.
// Ports is empty when every input is wired later via separate Connect
// commands (spec §8 boundary case).
type InvokeDecl struct {
	Name     string
	Instance string
	Events   []EventArg
	Ports    []*Access
	Span     diag.Span
}

func (*InvokeDecl) command()              {}
func (i *InvokeDecl) Position() diag.Span { return i.Span }

// ConnectDecl wires src into dst, optionally gated by a guard.
type ConnectDecl struct {
	Dst   *Access
	Guard *Guard // nil => unguarded
	Src   *Access
	Span  diag.Span
}

func (*ConnectDecl) command()              {}
func (c *ConnectDecl) Position() diag.Span { return c.Span }

// ForLoopDecl unrolls (at Mono time) or assumes (at IvChk time) a
// parametric range, introducing a fresh loop parameter scoped to Body.
type ForLoopDecl struct {
	Idx        string
	Start, End ParamExpr
	Body       []Command
	Span       diag.Span
}

func (*ForLoopDecl) command()              {}
func (f *ForLoopDecl) Position() diag.Span { return f.Span }

// IfDecl recurses into both arms; Mono prunes one away once Cond is
// concrete.
type IfDecl struct {
	Cond       PropDecl
	Then, Else []Command
	Span       diag.Span
}

func (*IfDecl) command()              {}
func (i *IfDecl) Position() diag.Span { return i.Span }

// BundleDecl defines a group of ports sharing one private bundle-index
// parameter.
type BundleDecl struct {
	Name     string
	Len      ParamExpr
	Width    ParamExpr
	Start    TimeExpr
	End      TimeExpr
	Span     diag.Span
}

func (*BundleDecl) command()              {}
func (b *BundleDecl) Position() diag.Span { return b.Span }

// AssumeDecl introduces a fact the checker may use without proving it,
// carried as a body Command and lowered as a body assumption. Loop bounds
// and signature constraints do not go through this node: Lower emits
// their assumptions directly as ir.CmdAssume.
type AssumeDecl struct {
	Prop PropDecl
	Span diag.Span
}

func (*AssumeDecl) command()              {}
func (a *AssumeDecl) Position() diag.Span { return a.Span }

// FsmDecl declares a finite-state machine pseudo-invocation: states many
// one-bit outputs, silent for the trigger's exact one-cycle window
// (spec §4.3.2).
type FsmDecl struct {
	Name    string
	States  int
	Trigger *Access
	Span    diag.Span
}

func (*FsmDecl) command()              {}
func (f *FsmDecl) Position() diag.Span { return f.Span }
