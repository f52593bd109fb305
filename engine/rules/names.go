package rules

import (
	"strings"

	"github.com/circuitsmith/boardlint/engine/netlist"
)

// NonBlankNames flags components, pins, and nets whose name is empty or
// all-whitespace.
type NonBlankNames struct{}

func (NonBlankNames) Name() string { return "non_blank_names" }

func (NonBlankNames) Evaluate(g *netlist.Graph) []Violation {
	var out []Violation
	for _, c := range g.Components() {
		if strings.TrimSpace(c.Name) == "" {
			out = append(out, violation("non_blank_names", "component name is blank", "component:"+c.ID))
		}
		for _, p := range c.Pins {
			if strings.TrimSpace(p.Name) == "" {
				out = append(out, violation("non_blank_names", "pin name is blank", "component:"+c.ID+".pin:"+p.ID))
			}
		}
	}
	for _, n := range g.Nets() {
		if strings.TrimSpace(n.Name) == "" {
			out = append(out, violation("non_blank_names", "net name is blank", "net:"+n.ID))
		}
	}
	return out
}
