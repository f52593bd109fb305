// Package schema compiles the netlist structural contract once at startup
// and checks raw documents against it. The compiled validator is immutable
// and safe for concurrent use.
package schema

import (
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrStructural marks documents that do not conform to the contract.
var ErrStructural = errors.New("document does not match netlist schema")

// Error describes a single structural failure. It is fatal to the request;
// semantic rules never run on a document that failed the schema check.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "schema: " + e.Message }

func (e *Error) Unwrap() error { return ErrStructural }

// Validator wraps a compiled JSON Schema.
type Validator struct {
	compiled *jsonschema.Schema
}

// Compile builds a Validator from a parsed schema document (typically loaded
// from schema/netlist.schema.jsonc by pkg/jsonc).
func Compile(doc any) (*Validator, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("netlist.schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("netlist.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate checks a decoded JSON value against the contract. A nil return
// means the document is structurally sound; otherwise the returned *Error
// carries a locatable description of the first failure.
func (v *Validator) Validate(doc any) error {
	if err := v.compiled.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &Error{Message: ve.Error()}
		}
		return &Error{Message: err.Error()}
	}
	return nil
}
