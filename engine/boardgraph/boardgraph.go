// Package boardgraph projects validated netlists into Neo4j for the board
// visualizer: components and nets become nodes, connections become
// relationships. The projection is an optional collaborator; export
// failures never fail a validation request.
package boardgraph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/circuitsmith/boardlint/engine/netlist"
)

// Exporter writes netlist graphs to Neo4j.
type Exporter struct {
	driver neo4j.DriverWithContext
}

// New creates an Exporter on an open driver.
func New(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{driver: driver}
}

const (
	mergeComponentCypher = `MERGE (n:Component {board: $board, id: $id})
		SET n.name = $name, n.type = $type, n.pins = $pins`
	mergeNetCypher = `MERGE (w:Net {board: $board, id: $id}) SET w.name = $name`
	mergeOnNetCypher = `MATCH (c:Component {board: $board, id: $comp}), (w:Net {board: $board, id: $net})
		MERGE (c)-[r:ON_NET {pin: $pin}]->(w)
		SET r.idx = $idx`
	nodeCountsCypher = `MATCH (n) RETURN labels(n)[0] AS label, count(*) AS count`
)

func componentParams(board string, c netlist.Component) map[string]any {
	pins := make([]string, len(c.Pins))
	for i, p := range c.Pins {
		pins[i] = p.Name
	}
	return map[string]any{
		"board": board,
		"id":    c.ID,
		"name":  c.Name,
		"type":  c.Type,
		"pins":  pins,
	}
}

func netParams(board string, n netlist.Net) map[string]any {
	return map[string]any{
		"board": board,
		"id":    n.ID,
		"name":  n.Name,
	}
}

func connectionParams(board, netID string, idx int, conn netlist.Connection) map[string]any {
	return map[string]any{
		"board": board,
		"comp":  conn.ComponentID,
		"net":   netID,
		"pin":   conn.PinID,
		"idx":   idx,
	}
}

// labelCount extracts a (label, count) pair from one count-query record.
func labelCount(rec *neo4j.Record) (string, int64, bool) {
	labelVal, _ := rec.Get("label")
	countVal, _ := rec.Get("count")
	label, ok := labelVal.(string)
	if !ok {
		return "", 0, false
	}
	count, ok := countVal.(int64)
	if !ok {
		return "", 0, false
	}
	return label, count, true
}

// Project writes one submission's netlist in a single transaction. Nodes
// are keyed by (board, id) so re-exporting a submission is idempotent.
func (e *Exporter) Project(ctx context.Context, board string, doc netlist.Document) error {
	sess := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, c := range doc.Components {
			if _, err := tx.Run(ctx, mergeComponentCypher, componentParams(board, c)); err != nil {
				return nil, err
			}
		}
		for _, n := range doc.Nets {
			if _, err := tx.Run(ctx, mergeNetCypher, netParams(board, n)); err != nil {
				return nil, err
			}
			for idx, conn := range n.Connections {
				// Unresolved references are simply skipped by the MATCH;
				// the rule engine already reported them.
				if _, err := tx.Run(ctx, mergeOnNetCypher, connectionParams(board, n.ID, idx, conn)); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	return err
}

// NodeCounts returns projected node counts grouped by label.
func (e *Exporter) NodeCounts(ctx context.Context) (map[string]int64, error) {
	sess := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, nodeCountsCypher, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for result.Next(ctx) {
		if label, count, ok := labelCount(result.Record()); ok {
			counts[label] = count
		}
	}
	return counts, nil
}
