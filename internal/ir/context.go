package ir

import "fmt"

// Context owns every Component by index and tracks the entrypoint and
// the extern-file grouping (spec §3: "Context owns all components by
// index"; §6: externals-by-file in the output).
type Context struct {
	Comps      []*Component
	Entrypoint CompIdx // -1 if none
	// ExternsByFile preserves which extern file declared which
	// components, in declaration order.
	ExternsByFile map[string][]CompIdx
}

// NewContext creates an empty context with no entrypoint.
func NewContext() *Context {
	return &Context{
		Entrypoint:    -1,
		ExternsByFile: make(map[string][]CompIdx),
	}
}

// AddComponent appends a component and returns its stable index.
func (ctx *Context) AddComponent(c *Component) CompIdx {
	ctx.Comps = append(ctx.Comps, c)
	return CompIdx(len(ctx.Comps) - 1)
}

// Comp dereferences a CompIdx.
func (ctx *Context) Comp(idx CompIdx) *Component {
	return ctx.Comps[idx]
}

// ValidForeignPort reports whether f points at a real port in its target
// component (spec §3 invariant: "Foreign(t, c) is valid iff ctx.comps[c]
// has an entry at index t of the matching kind").
func (ctx *Context) ValidForeignPort(f Foreign) bool {
	if int(f.Comp) < 0 || int(f.Comp) >= len(ctx.Comps) {
		return false
	}
	target := ctx.Comps[f.Comp]
	return f.Target >= 0 && f.Target < len(target.Ports)
}

// ValidForeignEvent reports whether f points at a real event in its
// target component.
func (ctx *Context) ValidForeignEvent(f Foreign) bool {
	if int(f.Comp) < 0 || int(f.Comp) >= len(ctx.Comps) {
		return false
	}
	target := ctx.Comps[f.Comp]
	return f.Target >= 0 && f.Target < len(target.Events)
}

// ResolvePort follows a Foreign port reference and returns the pointed-to
// Port value. Panics if the reference is dangling: a dangling foreign key
// is an Internal-class invariant violation (spec §7), never a
// user-reportable condition, since it can only arise from a bug in Lower
// or Mono.
func (ctx *Context) ResolvePort(f Foreign) Port {
	if !ctx.ValidForeignPort(f) {
		panic(fmt.Sprintf("ir: dangling foreign port key %+v", f))
	}
	return ctx.Comps[f.Comp].Ports[f.Target]
}

// ResolveEvent follows a Foreign event reference.
func (ctx *Context) ResolveEvent(f Foreign) Event {
	if !ctx.ValidForeignEvent(f) {
		panic(fmt.Sprintf("ir: dangling foreign event key %+v", f))
	}
	return ctx.Comps[f.Comp].Events[f.Target]
}

// FindByName returns the index of the component with the given name, or
// -1 if none exists. Used by Lower to resolve instance/invoke target
// names before Foreign keys exist.
func (ctx *Context) FindByName(name string) CompIdx {
	for i, c := range ctx.Comps {
		if c.Name == name {
			return CompIdx(i)
		}
	}
	return -1
}
