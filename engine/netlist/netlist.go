// Package netlist defines the PCB netlist document model and the read-only
// graph the rule engine traverses.
package netlist

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Component is a part on the board with an ordered list of pins.
type Component struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // free-form category; "connector" is special-cased
	Pins []Pin  `json:"pins"`
}

// Pin is a terminal of a component. IDs are unique within the owning component.
type Pin struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Net is a wire connecting pins across components.
type Net struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Connections []Connection `json:"connections"`
}

// Connection is a reference pair into a component's pin. It is not an owned
// entity and may dangle; the rule engine reports unresolved references.
type Connection struct {
	ComponentID string `json:"componentId"`
	PinID       string `json:"pinId"`
}

// Document is the raw netlist as uploaded.
type Document struct {
	Components []Component `json:"components"`
	Nets       []Net       `json:"nets"`
}

// Decode parses a JSON netlist document.
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode netlist: %w", err)
	}
	return doc, nil
}
