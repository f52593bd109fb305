package rules

import (
	"github.com/circuitsmith/boardlint/engine/netlist"
	"github.com/circuitsmith/boardlint/pkg/fn"
)

// Run evaluates every rule in registration order and concatenates the
// findings: no deduplication, no sorting, no short-circuiting. The result
// is never nil so an empty report serializes as [].
func Run(g *netlist.Graph, rules []Rule) []Violation {
	out := []Violation{}
	for _, r := range rules {
		out = append(out, r.Evaluate(g)...)
	}
	return out
}

// RunParallel evaluates independent rules on up to workers goroutines and
// merges their output back into registration order. Output is byte-identical
// to Run for the same graph and registry.
func RunParallel(g *netlist.Graph, rules []Rule, workers int) []Violation {
	if workers <= 1 || len(rules) < 2 {
		return Run(g, rules)
	}
	perRule := fn.ParMap(rules, workers, func(r Rule) []Violation {
		return r.Evaluate(g)
	})
	out := []Violation{}
	for _, vs := range perRule {
		out = append(out, vs...)
	}
	return out
}
