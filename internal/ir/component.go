package ir

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/diag"
)

// SourceInterfaceMeta optionally records the clock/reset ports a
// component's signature exposes, carried through for the (external,
// out-of-scope) Calyx generator.
type SourceInterfaceMeta struct {
	Clock *PortIdx
	Reset *PortIdx
}

// Component owns one arena per entity kind plus the ordered command
// list. Arenas are append-only while the component is under
// construction (Lower or Mono); Freeze locks them.
type Component struct {
	Name string

	Exprs     []Expr
	Times     []Time
	TimeSubs  []TimeSub
	Props     []Prop
	Events    []Event
	Params    []Param
	Ports     []Port
	Instances []Instance
	Invokes   []Invoke

	Commands []Command

	IsExt         bool
	StatelessNote string
	SrcIface      *SourceInterfaceMeta

	frozen bool

	exprIntern map[string]ExprIdx
	timeIntern map[string]TimeIdx
	propIntern map[string]PropIdx

	// pendingBundleOwners tracks Param indices whose OwnerBundle.Port is
	// still a placeholder (set to -1) because the owning port hasn't
	// been allocated yet (spec §9: "allocate the port with a
	// placeholder owner on the parameter, then patch... once the port
	// index is known"). Finalize rejects any entry still pending.
	pendingBundleOwners map[ParamIdx]bool
}

// NewComponent creates an empty, unfrozen component.
func NewComponent(name string) *Component {
	return &Component{
		Name:                name,
		exprIntern:          make(map[string]ExprIdx),
		timeIntern:          make(map[string]TimeIdx),
		propIntern:          make(map[string]PropIdx),
		pendingBundleOwners: make(map[ParamIdx]bool),
	}
}

func (c *Component) mustNotBeFrozen(op string) {
	if c.frozen {
		panic(fmt.Sprintf("ir: %s called on frozen component %q", op, c.Name))
	}
}

// --- Expr interning ---
// Interned by structure: two structurally-equal Exprs share one ExprIdx
// (spec §3: "Component arena, interned by structure").

func (c *Component) AddExpr(e Expr) ExprIdx {
	c.mustNotBeFrozen("AddExpr")
	key := exprKey(e)
	if idx, ok := c.exprIntern[key]; ok {
		return idx
	}
	c.Exprs = append(c.Exprs, e)
	idx := ExprIdx(len(c.Exprs) - 1)
	c.exprIntern[key] = idx
	return idx
}

func exprKey(e Expr) string {
	switch x := e.(type) {
	case EConcrete:
		return fmt.Sprintf("c:%d", x.Value)
	case EParam:
		return fmt.Sprintf("p:%d", x.Param)
	case EBinOp:
		return fmt.Sprintf("b:%s:%d:%d", x.Op, x.L, x.R)
	case EUnFn:
		return fmt.Sprintf("u:%s:%d", x.Fn, x.X)
	default:
		panic(fmt.Sprintf("ir: unknown Expr variant %T", e))
	}
}

// --- Time / TimeSub ---
// Times are interned the same way Exprs are: a (event, offset) pair with
// identical fields is the same Time, so later equality checks on times
// compare indices directly instead of structurally.

func (c *Component) AddTime(t Time) TimeIdx {
	c.mustNotBeFrozen("AddTime")
	key := fmt.Sprintf("%d+%d", t.Event, t.Offset)
	if idx, ok := c.timeIntern[key]; ok {
		return idx
	}
	c.Times = append(c.Times, t)
	idx := TimeIdx(len(c.Times) - 1)
	c.timeIntern[key] = idx
	return idx
}

func (c *Component) AddTimeSub(s TimeSub) SubIdx {
	c.mustNotBeFrozen("AddTimeSub")
	c.TimeSubs = append(c.TimeSubs, s)
	return SubIdx(len(c.TimeSubs) - 1)
}

// --- Prop interning ---

func (c *Component) AddProp(p Prop) PropIdx {
	c.mustNotBeFrozen("AddProp")
	key := propKey(p)
	if idx, ok := c.propIntern[key]; ok {
		return idx
	}
	c.Props = append(c.Props, p)
	idx := PropIdx(len(c.Props) - 1)
	c.propIntern[key] = idx
	return idx
}

func propKey(p Prop) string {
	switch x := p.(type) {
	case PCmp:
		return fmt.Sprintf("cmp:%s:%d:%d", x.Op, x.L, x.R)
	case PTimeCmp:
		return fmt.Sprintf("tcmp:%s:%d:%d", x.Op, x.L, x.R)
	case PImplies:
		return fmt.Sprintf("impl:%d:%d", x.Ant, x.Cons)
	case PAnd:
		return fmt.Sprintf("and:%d:%d", x.A, x.B)
	case PNot:
		return fmt.Sprintf("not:%d", x.P)
	default:
		panic(fmt.Sprintf("ir: unknown Prop variant %T", p))
	}
}

// --- Events, Params, Ports, Instances, Invokes: plain append-only, no
// interning (identity, not structure, matters for these). ---

func (c *Component) AddEvent(e Event) EventIdx {
	c.mustNotBeFrozen("AddEvent")
	c.Events = append(c.Events, e)
	return EventIdx(len(c.Events) - 1)
}

// SetEventDelay patches an event's delay after its placeholder zero-delay
// allocation (spec §4.2 signature-lowering note: events are declared
// first with a placeholder zero delay so a delay expression may mention
// its own event).
func (c *Component) SetEventDelay(idx EventIdx, delay SubIdx) {
	c.mustNotBeFrozen("SetEventDelay")
	c.Events[idx].Delay = delay
}

func (c *Component) AddParam(p Param) ParamIdx {
	c.mustNotBeFrozen("AddParam")
	c.Params = append(c.Params, p)
	idx := ParamIdx(len(c.Params) - 1)
	if _, ok := p.Owner.(OwnerBundle); ok && p.Owner.(OwnerBundle).Port < 0 {
		c.pendingBundleOwners[idx] = true
	}
	return idx
}

// PatchBundleOwner resolves a previously-placeholder Bundle owner once
// the owning port's index is known (spec §9 cyclic-reference note).
func (c *Component) PatchBundleOwner(param ParamIdx, port PortIdx) {
	c.mustNotBeFrozen("PatchBundleOwner")
	c.Params[param].Owner = OwnerBundle{Port: port}
	delete(c.pendingBundleOwners, param)
}

func (c *Component) AddPort(p Port) PortIdx {
	c.mustNotBeFrozen("AddPort")
	c.Ports = append(c.Ports, p)
	return PortIdx(len(c.Ports) - 1)
}

func (c *Component) AddInstance(i Instance) InstIdx {
	c.mustNotBeFrozen("AddInstance")
	c.Instances = append(c.Instances, i)
	return InstIdx(len(c.Instances) - 1)
}

func (c *Component) AddInvoke(i Invoke) InvIdx {
	c.mustNotBeFrozen("AddInvoke")
	c.Invokes = append(c.Invokes, i)
	return InvIdx(len(c.Invokes) - 1)
}

// SetInvokePorts patches an invoke's port list once its input ports have
// been defined in Pass 2 (outputs were already set in Pass 1).
func (c *Component) SetInvokePorts(idx InvIdx, ports []PortIdx) {
	c.mustNotBeFrozen("SetInvokePorts")
	c.Invokes[idx].Ports = ports
}

// AppendCommand adds one command to the command list.
func (c *Component) AppendCommand(cmd Command) {
	c.mustNotBeFrozen("AppendCommand")
	c.Commands = append(c.Commands, cmd)
}

// Freeze locks the component's arenas against further mutation and
// validates that no Bundle-owner placeholder remains unpatched (spec §9:
// "Validation rejects any remaining placeholder at component-finalize
// time"). Called once Lower has finished this component's command list.
func (c *Component) Freeze() error {
	if c.frozen {
		return nil
	}
	if len(c.pendingBundleOwners) > 0 {
		return diag.Wrap(diag.New(diag.INT002, diag.KindInternal, "lower",
			fmt.Sprintf("component %q has %d unpatched bundle-owner placeholder(s)", c.Name, len(c.pendingBundleOwners)),
			diag.NoPos))
	}
	c.frozen = true
	return nil
}

// Frozen reports whether Freeze has been called.
func (c *Component) Frozen() bool { return c.frozen }
