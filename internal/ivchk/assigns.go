package ivchk

import (
	"fmt"

	"github.com/kayagokalp/filament/internal/diag"
	"github.com/kayagokalp/filament/internal/ir"
)

// checkRemainingAssigns verifies every port this component is
// responsible for driving — its own signature outputs, and every
// invoke's input proxy ports — is the destination of at least one
// Connect somewhere in its body (spec §4.3.1: remaining_assigns starts
// as the full set of required destinations and must be empty by the end
// of the component). Bundle and local ports are intentionally excluded:
// a for-loop typically drives a bundle's elements one index at a time,
// and tracking per-index coverage precisely is out of scope here.
func checkRemainingAssigns(comp *ir.Component) []*diag.Report {
	required := make(map[ir.PortIdx]bool)
	for _, p := range comp.SigOutputs() {
		required[p] = true
	}
	for i, p := range comp.Ports {
		if owner, ok := p.Owner.(ir.OwnerPortInv); ok && owner.Dir == ir.In {
			required[ir.PortIdx(i)] = true
		}
	}

	var walk func([]ir.Command)
	walk = func(cmds []ir.Command) {
		for _, c := range cmds {
			switch x := c.(type) {
			case ir.CmdConnect:
				delete(required, x.Dst)
			case ir.CmdForLoop:
				walk(x.Body)
			case ir.CmdIf:
				walk(x.Then)
				walk(x.Else)
			}
		}
	}
	walk(comp.Commands)

	if len(required) == 0 {
		return nil
	}
	names := make(map[string]bool, len(required))
	for p := range required {
		names[comp.Ports[p].Name] = true
	}
	return []*diag.Report{diag.New(diag.IVC009, diag.KindMalformed, "ivchk",
		fmt.Sprintf("component %q leaves %v undriven", comp.Name, sortedNames(names)), diag.NoPos)}
}
