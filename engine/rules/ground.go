package rules

import (
	"strings"

	"github.com/circuitsmith/boardlint/engine/netlist"
)

const (
	groundName    = "GND"
	connectorType = "connector"
)

// GroundConnectivity checks that a ground reference net exists and that
// every component declaring a GND pin actually reaches it. Connector-type
// components are pass-throughs and exempt.
type GroundConnectivity struct{}

func (GroundConnectivity) Name() string { return "gnd_connectivity" }

func (GroundConnectivity) Evaluate(g *netlist.Graph) []Violation {
	gndNets := make(map[string]struct{})
	for _, n := range g.Nets() {
		if strings.EqualFold(n.Name, groundName) {
			gndNets[n.ID] = struct{}{}
		}
	}
	if len(gndNets) == 0 {
		// Without a ground reference the connectivity check is meaningless.
		return []Violation{violation("gnd_present", `no net named "GND"`, "")}
	}

	netsByComp := g.NetsByComponent()

	var out []Violation
	for _, c := range g.Components() {
		if strings.EqualFold(c.Type, connectorType) {
			continue
		}
		declaresGnd := false
		for _, p := range c.Pins {
			if strings.EqualFold(p.Name, groundName) {
				declaresGnd = true
				break
			}
		}
		if !declaresGnd {
			continue
		}

		grounded := false
		for netID := range netsByComp[c.ID] {
			if _, ok := gndNets[netID]; ok {
				grounded = true
				break
			}
		}
		if !grounded {
			out = append(out, violation("gnd_connected",
				"component declares a GND pin but never connects to a GND net",
				"component:"+c.ID))
		}
	}
	return out
}
