package rules

import (
	"testing"

	"github.com/circuitsmith/boardlint/engine/netlist"
)

func evalDangling(doc netlist.Document) []Violation {
	return DanglingReferences{}.Evaluate(netlist.NewGraph(doc))
}

func twoPinComponent(id string) netlist.Component {
	return netlist.Component{
		ID: id, Name: id, Type: "ic",
		Pins: []netlist.Pin{{ID: "1", Name: "VCC"}, {ID: "2", Name: "GND"}},
	}
}

func TestDangling_HealthyNet(t *testing.T) {
	got := evalDangling(netlist.Document{
		Components: []netlist.Component{twoPinComponent("U1"), twoPinComponent("U2")},
		Nets: []netlist.Net{
			{ID: "N1", Name: "GND", Connections: []netlist.Connection{
				{ComponentID: "U1", PinID: "2"},
				{ComponentID: "U2", PinID: "2"},
			}},
		},
	})
	if len(got) != 0 {
		t.Errorf("expected no violations, got %v", got)
	}
}

func TestDangling_NetWithOneConnection(t *testing.T) {
	got := evalDangling(netlist.Document{
		Components: []netlist.Component{twoPinComponent("U1")},
		Nets: []netlist.Net{
			{ID: "N1", Name: "GND", Connections: []netlist.Connection{{ComponentID: "U1", PinID: "2"}}},
		},
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %v", got)
	}
	if got[0].Rule != "dangling_net" || got[0].Location != "net:N1" {
		t.Errorf("unexpected violation %+v", got[0])
	}
}

func TestDangling_NetWithZeroConnections(t *testing.T) {
	got := evalDangling(netlist.Document{
		Nets: []netlist.Net{{ID: "N1", Name: "GND"}},
	})
	if len(got) != 1 || got[0].Rule != "dangling_net" {
		t.Fatalf("expected exactly 1 dangling_net, got %v", got)
	}
}

func TestDangling_UnknownComponent(t *testing.T) {
	got := evalDangling(netlist.Document{
		Components: []netlist.Component{twoPinComponent("U1")},
		Nets: []netlist.Net{
			{ID: "N1", Name: "GND", Connections: []netlist.Connection{
				{ComponentID: "U1", PinID: "2"},
				{ComponentID: "U9", PinID: "2"},
			}},
		},
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %v", got)
	}
	v := got[0]
	if v.Rule != "dangling_connection" || v.Location != "net:N1[1]" {
		t.Errorf("unexpected violation %+v", v)
	}
}

func TestDangling_UnknownPin(t *testing.T) {
	got := evalDangling(netlist.Document{
		Components: []netlist.Component{twoPinComponent("U1"), twoPinComponent("U2")},
		Nets: []netlist.Net{
			{ID: "N1", Name: "GND", Connections: []netlist.Connection{
				{ComponentID: "U1", PinID: "99"},
				{ComponentID: "U2", PinID: "2"},
			}},
		},
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %v", got)
	}
	if got[0].Location != "net:N1[0]" {
		t.Errorf("location = %q", got[0].Location)
	}
}

func TestDangling_UnknownComponentSuppressesPinCheck(t *testing.T) {
	// An unknown component must never also produce an unknown-pin finding
	// for the same connection.
	got := evalDangling(netlist.Document{
		Nets: []netlist.Net{
			{ID: "N1", Name: "GND", Connections: []netlist.Connection{
				{ComponentID: "ghost", PinID: "ghost-pin"},
				{ComponentID: "ghost2", PinID: "1"},
			}},
		},
	})
	// Two bad connections, one finding each; the 2-connection count means
	// no dangling_net on top.
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 violations, got %v", got)
	}
	for i, v := range got {
		if v.Rule != "dangling_connection" {
			t.Errorf("violation %d rule = %q", i, v.Rule)
		}
	}
}
