// Package rules implements the semantic rule engine for netlist hygiene
// checks. Each rule is a pure function of the read-only graph; the runner
// concatenates their findings into one flat, ordered violation list.
package rules

import "github.com/circuitsmith/boardlint/engine/netlist"

// Severity levels. No rule emits a warning yet; the shape reserves room.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// Violation is a single reported defect.
type Violation struct {
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Location string `json:"location"`
	Level    string `json:"level"`
}

// Rule is one semantic check. Evaluate must not mutate the graph, perform
// I/O, or depend on the output of other rules.
type Rule interface {
	// Name identifies the registry entry in logs and metrics. A single
	// entry may emit violations under more than one rule id (the ground
	// rule emits both gnd_present and gnd_connected).
	Name() string
	Evaluate(g *netlist.Graph) []Violation
}

// DefaultRules returns the registry in its canonical order. The order
// determines where each rule's violations appear in the report; the rules
// themselves are independent.
func DefaultRules() []Rule {
	return []Rule{
		NonBlankNames{},
		GroundConnectivity{},
		DanglingReferences{},
	}
}

func violation(rule, message, location string) Violation {
	return Violation{Rule: rule, Message: message, Location: location, Level: LevelError}
}
