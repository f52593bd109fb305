package rules

import (
	"testing"

	"github.com/circuitsmith/boardlint/engine/netlist"
)

func evalGround(doc netlist.Document) []Violation {
	return GroundConnectivity{}.Evaluate(netlist.NewGraph(doc))
}

func TestGround_NoGndNet(t *testing.T) {
	got := evalGround(netlist.Document{
		Components: []netlist.Component{
			{ID: "U1", Name: "MCU", Type: "ic", Pins: []netlist.Pin{{ID: "1", Name: "GND"}}},
		},
		Nets: []netlist.Net{{ID: "N1", Name: "PWR"}},
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %v", got)
	}
	v := got[0]
	if v.Rule != "gnd_present" || v.Location != "" {
		t.Errorf("unexpected violation %+v", v)
	}
}

func TestGround_UnconnectedGndPin(t *testing.T) {
	doc := netlist.Document{
		Components: []netlist.Component{
			// Pin name lowercase on purpose: the match is case-insensitive.
			{ID: "U1", Name: "MCU", Type: "ic", Pins: []netlist.Pin{{ID: "1", Name: "gnd"}}},
		},
		Nets: []netlist.Net{{ID: "N1", Name: "GND"}},
	}
	got := evalGround(doc)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %v", got)
	}
	if got[0].Rule != "gnd_connected" || got[0].Location != "component:U1" {
		t.Errorf("unexpected violation %+v", got[0])
	}
}

func TestGround_ConnectorExempt(t *testing.T) {
	got := evalGround(netlist.Document{
		Components: []netlist.Component{
			{ID: "J1", Name: "Header", Type: "Connector", Pins: []netlist.Pin{{ID: "1", Name: "GND"}}},
		},
		Nets: []netlist.Net{{ID: "N1", Name: "GND"}},
	})
	if len(got) != 0 {
		t.Errorf("connector-type components are exempt, got %v", got)
	}
}

func TestGround_ConnectedGndPin(t *testing.T) {
	got := evalGround(netlist.Document{
		Components: []netlist.Component{
			{ID: "U1", Name: "MCU", Type: "ic", Pins: []netlist.Pin{{ID: "1", Name: "GND"}}},
		},
		Nets: []netlist.Net{
			{ID: "N1", Name: "gnd", Connections: []netlist.Connection{{ComponentID: "U1", PinID: "1"}}},
		},
	})
	if len(got) != 0 {
		t.Errorf("expected no violations, got %v", got)
	}
}

func TestGround_NoGndPinDeclared(t *testing.T) {
	got := evalGround(netlist.Document{
		Components: []netlist.Component{
			{ID: "R1", Name: "Resistor", Type: "passive", Pins: []netlist.Pin{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}},
		},
		Nets: []netlist.Net{{ID: "N1", Name: "GND"}},
	})
	if len(got) != 0 {
		t.Errorf("components without a GND pin are not checked, got %v", got)
	}
}

func TestGround_ComponentWithoutPinsList(t *testing.T) {
	// Absent pins list must behave as empty, not panic.
	got := evalGround(netlist.Document{
		Components: []netlist.Component{{ID: "U1", Name: "Bare", Type: "ic"}},
		Nets:       []netlist.Net{{ID: "N1", Name: "GND"}},
	})
	if len(got) != 0 {
		t.Errorf("expected no violations, got %v", got)
	}
}
