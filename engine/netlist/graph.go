package netlist

// Graph is an immutable index over a Document. It is built fresh per
// validation request and discarded with the report; rules only read it.
//
// Construction is nil-tolerant: a component with no pins list or a net with
// no connections list behaves as if the collection were empty.
type Graph struct {
	components []Component
	nets       []Net

	compByID  map[string]*Component
	netByID   map[string]*Net
	pinByComp map[string]map[string]struct{}
}

// NewGraph builds the lookup indexes for a document.
func NewGraph(doc Document) *Graph {
	g := &Graph{
		components: doc.Components,
		nets:       doc.Nets,
		compByID:   make(map[string]*Component, len(doc.Components)),
		netByID:    make(map[string]*Net, len(doc.Nets)),
		pinByComp:  make(map[string]map[string]struct{}, len(doc.Components)),
	}
	for i := range g.components {
		c := &g.components[i]
		g.compByID[c.ID] = c
		pins := make(map[string]struct{}, len(c.Pins))
		for _, p := range c.Pins {
			pins[p.ID] = struct{}{}
		}
		g.pinByComp[c.ID] = pins
	}
	for i := range g.nets {
		g.netByID[g.nets[i].ID] = &g.nets[i]
	}
	return g
}

// Components enumerates components in document order.
func (g *Graph) Components() []Component { return g.components }

// Nets enumerates nets in document order.
func (g *Graph) Nets() []Net { return g.nets }

// Component looks up a component by id.
func (g *Graph) Component(id string) (*Component, bool) {
	c, ok := g.compByID[id]
	return c, ok
}

// Net looks up a net by id.
func (g *Graph) Net(id string) (*Net, bool) {
	n, ok := g.netByID[id]
	return n, ok
}

// HasPin reports whether the component exists and declares the pin.
func (g *Graph) HasPin(componentID, pinID string) bool {
	pins, ok := g.pinByComp[componentID]
	if !ok {
		return false
	}
	_, ok = pins[pinID]
	return ok
}

// NetsByComponent maps each referenced component id to the set of net ids it
// connects to, derived by scanning every net's connections. Unresolved
// component references still appear as keys; rules that need existence
// checks consult Component separately.
func (g *Graph) NetsByComponent() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, n := range g.nets {
		for _, conn := range n.Connections {
			set, ok := out[conn.ComponentID]
			if !ok {
				set = make(map[string]struct{})
				out[conn.ComponentID] = set
			}
			set[n.ID] = struct{}{}
		}
	}
	return out
}
