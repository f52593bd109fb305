package rules

import (
	"fmt"

	"github.com/circuitsmith/boardlint/engine/netlist"
)

// DanglingReferences flags connections whose component or pin reference does
// not resolve, and nets touching fewer than two pins.
type DanglingReferences struct{}

func (DanglingReferences) Name() string { return "dangling" }

func (DanglingReferences) Evaluate(g *netlist.Graph) []Violation {
	var out []Violation
	for _, n := range g.Nets() {
		for idx, conn := range n.Connections {
			loc := fmt.Sprintf("net:%s[%d]", n.ID, idx)
			// Component existence first; a pin check against an unknown
			// component would be a second finding for the same defect.
			if _, ok := g.Component(conn.ComponentID); !ok {
				out = append(out, violation("dangling_connection",
					fmt.Sprintf("net references unknown component %q", conn.ComponentID), loc))
			} else if !g.HasPin(conn.ComponentID, conn.PinID) {
				out = append(out, violation("dangling_connection",
					fmt.Sprintf("net references unknown pin %q", conn.ComponentID+"."+conn.PinID), loc))
			}
		}
		if len(n.Connections) < 2 {
			out = append(out, violation("dangling_net",
				"net has fewer than 2 connections", "net:"+n.ID))
		}
	}
	return out
}
