package ir

// SigParams returns, in declaration order, the indices of parameters
// owned by the signature (as opposed to a loop, a bundle, or an
// existential). Signature parameters are always declared before any
// command is lowered, so filtering preserves their declaration order.
func (c *Component) SigParams() []ParamIdx {
	var out []ParamIdx
	for i, p := range c.Params {
		if _, ok := p.Owner.(OwnerSig); ok {
			out = append(out, ParamIdx(i))
		}
	}
	return out
}

// SigInputs returns, in declaration order, the indices of signature
// input ports.
func (c *Component) SigInputs() []PortIdx {
	return c.sigPorts(In)
}

// SigOutputs returns, in declaration order, the indices of signature
// output ports.
func (c *Component) SigOutputs() []PortIdx {
	return c.sigPorts(Out)
}

func (c *Component) sigPorts(dir Direction) []PortIdx {
	var out []PortIdx
	for i, p := range c.Ports {
		if o, ok := p.Owner.(OwnerPortSig); ok && o.Dir == dir {
			out = append(out, PortIdx(i))
		}
	}
	return out
}

// PortByName finds a signature port (input or output) by name, or
// returns (-1, false).
func (c *Component) PortByName(name string) (PortIdx, bool) {
	for i, p := range c.Ports {
		if p.Name == name {
			if _, ok := p.Owner.(OwnerPortSig); ok {
				return PortIdx(i), true
			}
		}
	}
	return -1, false
}

// EventByName finds a declared event by name.
func (c *Component) EventByName(name string) (EventIdx, bool) {
	for i, e := range c.Events {
		if e.Name == name {
			return EventIdx(i), true
		}
	}
	return -1, false
}

// ParamByName finds a signature parameter by name.
func (c *Component) ParamByName(name string) (ParamIdx, bool) {
	for _, idx := range c.SigParams() {
		if c.Params[idx].Name == name {
			return idx, true
		}
	}
	return -1, false
}

// InstanceByName finds an instance declared in this component's command
// list by name.
func (c *Component) InstanceByName(name string) (InstIdx, bool) {
	for i, inst := range c.Instances {
		if inst.Name == name {
			return InstIdx(i), true
		}
	}
	return -1, false
}

// InvokeByName finds an invocation declared in this component's command
// list by name.
func (c *Component) InvokeByName(name string) (InvIdx, bool) {
	for i, inv := range c.Invokes {
		if inv.Name == name {
			return InvIdx(i), true
		}
	}
	return -1, false
}
