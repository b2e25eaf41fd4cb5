// Package ir is the typed intermediate representation Lower produces,
// IvChk checks, and Mono specializes (spec §3). Every entity lives in an
// arena owned by its Component and is addressed by a stable index;
// cross-component references are Foreign keys pairing a component index
// with a local index inside that component.
//
// Tagged sums (Expr, Prop, TimeSub, PortOwner, ParamOwner, Command) are
// modeled as closed interfaces with an unexported marker method, mirroring
// the teacher's CoreExpr (internal/core/core.go): dispatch by type switch,
// never by an open subtype hierarchy (spec §9).
package ir

import "github.com/kayagokalp/filament/internal/diag"

// Stable indices. All are plain ints scoped to one Component's arena,
// except CompIdx which scopes to a Context.
type (
	ExprIdx  int
	TimeIdx  int
	SubIdx   int // TimeSub index
	PropIdx  int
	EventIdx int
	ParamIdx int
	PortIdx  int
	InstIdx  int
	InvIdx   int
	CompIdx  int
)

// NoIdx marks "not applicable" for an optional index field, e.g. a
// non-bundled port's liveness index parameter.
const NoIdx = -1

// Foreign is a cross-component reference: an index of kind K inside
// component Comp. Valid iff ctx.Comps[Comp] has an entry at Target of
// the matching kind (spec §3 invariant).
type Foreign struct {
	Target int
	Comp   CompIdx
}

// --- Expr: Concrete(n) | Param(idx) | BinOp(op,l,r) | UnFn(fn,x) ---

type Expr interface{ expr() }

type EConcrete struct{ Value int }
type EParam struct{ Param ParamIdx }
type EBinOp struct {
	Op   string // "+", "-", "*", "/", "mod"
	L, R ExprIdx
}
type EUnFn struct {
	Fn string // "pow2", "log2"
	X  ExprIdx
}

func (EConcrete) expr() {}
func (EParam) expr()    {}
func (EBinOp) expr()    {}
func (EUnFn) expr()     {}

// --- Time: (event, offset) ---

// Time is a pair (EventIdx, ExprIdx offset): the point `event + offset`.
type Time struct {
	Event  EventIdx
	Offset ExprIdx
}

// --- TimeSub: Unit(expr) | Symbolic(time - time) ---

type TimeSub interface{ timeSub() }

type SubUnit struct{ Value ExprIdx }
type SubSymbolic struct{ Minuend, Subtrahend TimeIdx }

func (SubUnit) timeSub()     {}
func (SubSymbolic) timeSub() {}

// --- Prop: Cmp | TimeCmp | Implies | And | Not ---

type Prop interface{ prop() }

type CmpOp string

const (
	CmpEq CmpOp = "="
	CmpNe CmpOp = "!="
	CmpLt CmpOp = "<"
	CmpLe CmpOp = "<="
	CmpGt CmpOp = ">"
	CmpGe CmpOp = ">="
)

type PCmp struct {
	Op   CmpOp
	L, R ExprIdx
}
type PTimeCmp struct {
	Op   CmpOp
	L, R TimeIdx
}
type PImplies struct{ Ant, Cons PropIdx }
type PAnd struct{ A, B PropIdx }
type PNot struct{ P PropIdx }

func (PCmp) prop()      {}
func (PTimeCmp) prop()  {}
func (PImplies) prop()  {}
func (PAnd) prop()      {}
func (PNot) prop()      {}

// Event is a component-owned named event with a delay expressed as a
// TimeSub and an optional interface signal.
type Event struct {
	Name         string
	Delay        SubIdx
	HasInterface bool
	Pos          diag.PosID
}

// --- ParamOwner: Sig | Loop | Bundle(port) | Existential ---

type ParamOwner interface{ paramOwner() }

type OwnerSig struct{}
type OwnerLoop struct{}
type OwnerBundle struct{ Port PortIdx }
type OwnerExistential struct{}

func (OwnerSig) paramOwner()         {}
func (OwnerLoop) paramOwner()        {}
func (OwnerBundle) paramOwner()      {}
func (OwnerExistential) paramOwner() {}

// Param is a component-owned natural-number-valued parameter.
type Param struct {
	Name    string
	Owner   ParamOwner
	Default ExprIdx // NoIdx's Expr equivalent: use HasDefault
	HasDefault bool
	Pos     diag.PosID
}

// Liveness describes when a port carries a meaningful value. Annotated is
// false for clock/reset-style ports declared with no liveness at all, in
// which case Range is meaningless and must not be read.
type Liveness struct {
	Idx       ParamIdx // bundle-index parameter; NoIdx if not bundled
	Len       ExprIdx  // bundle length; only meaningful if Idx != NoIdx
	Range     [2]TimeIdx
	Exact     bool
	Annotated bool
}

// --- PortOwner: Sig(dir) | Inv{inv,dir,base} | Local ---

type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) Invert() Direction {
	if d == In {
		return Out
	}
	return In
}

type PortOwner interface{ portOwner() }

type OwnerPortSig struct{ Dir Direction }
type OwnerPortInv struct {
	Inv  InvIdx
	Dir  Direction
	Base Foreign
}
type OwnerPortLocal struct{}

func (OwnerPortSig) portOwner()   {}
func (OwnerPortInv) portOwner()   {}
func (OwnerPortLocal) portOwner() {}

// Port is a component-owned wire with a width and a liveness interval.
type Port struct {
	Name  string
	Width ExprIdx
	Live  Liveness
	Owner PortOwner
	Pos   diag.PosID
}

// Instance binds a target component to a concrete argument list.
type Instance struct {
	Name   string
	Comp   CompIdx
	Params []ExprIdx
	Pos    diag.PosID
}

// EventBind pairs a callee event with the caller-side Time bound to it.
type EventBind struct {
	CalleeEvent EventIdx // index into the instance's target component
	Time        TimeIdx  // index into the invoking component's arena
}

// Invoke binds event and port arguments to one use of an Instance.
type Invoke struct {
	Name   string
	Inst   InstIdx
	Events []EventBind
	Ports  []PortIdx
	Pos    diag.PosID
}

// --- Command ---

type Command interface{ command() }

type CmdInstance struct{ Inst InstIdx }
type CmdInvoke struct{ Inv InvIdx }
type CmdConnect struct {
	Dst   PortIdx
	DstIdx ExprIdx // NoIdx's Expr equivalent: use HasIdx
	HasDstIdx bool
	Guard *Guard // nil => unguarded
	Src   PortIdx
	SrcIdx ExprIdx
	HasSrcIdx bool
	Pos   diag.PosID
}
type Guard struct {
	Ports []PortIdx
}
type CmdForLoop struct {
	Idx        ParamIdx
	Start, End ExprIdx
	Body       []Command
	Pos        diag.PosID
}
type CmdIf struct {
	Cond       PropIdx
	Then, Else []Command
	Pos        diag.PosID
}
type CmdBundle struct {
	Port PortIdx
	Pos  diag.PosID
}
type CmdAssume struct {
	Prop   PropIdx
	Pos    diag.PosID
	Reason string
}
type CmdFsm struct {
	Name    string
	States  int
	Trigger PortIdx
	Pos     diag.PosID
}

func (CmdInstance) command() {}
func (CmdInvoke) command()   {}
func (CmdConnect) command()  {}
func (CmdForLoop) command()  {}
func (CmdIf) command()       {}
func (CmdBundle) command()   {}
func (CmdAssume) command()   {}
func (CmdFsm) command()      {}
