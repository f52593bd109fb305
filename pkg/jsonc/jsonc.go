// Package jsonc loads comment-tolerant JSON (JWCC) files, such as the
// netlist schema definition shipped alongside the server.
package jsonc

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// Parse strips comments and trailing commas from b and decodes the result.
func Parse(b []byte) (any, error) {
	std, err := hujson.Standardize(b)
	if err != nil {
		return nil, fmt.Errorf("standardize jsonc: %w", err)
	}
	var v any
	if err := json.Unmarshal(std, &v); err != nil {
		return nil, fmt.Errorf("decode jsonc: %w", err)
	}
	return v, nil
}

// LoadFile reads and parses a .jsonc file.
func LoadFile(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(b)
}
