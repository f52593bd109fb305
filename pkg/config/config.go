// Package config loads server configuration from an optional YAML file and
// BOARDLINT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Server holds HTTP listener settings.
type Server struct {
	Port   string  `koanf:"port"`
	Origin string  `koanf:"origin"` // CORS allow-origin
	RPS    float64 `koanf:"rps"`    // upload rate limit, tokens per second
	Burst  int     `koanf:"burst"`
}

// Schema locates the structural contract.
type Schema struct {
	Path string `koanf:"path"`
}

// Rules tunes the semantic engine.
type Rules struct {
	// Workers > 1 evaluates independent rules concurrently; the report
	// order is identical either way.
	Workers int `koanf:"workers"`
}

// Store holds SQLite settings.
type Store struct {
	Path string `koanf:"path"`
}

// Auth holds the JWT signing secret.
type Auth struct {
	Secret string `koanf:"secret"`
}

// NATS configures the optional validated-event publisher. Empty URL
// disables it.
type NATS struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// Neo4j configures the optional board-graph projection. Empty URL
// disables it.
type Neo4j struct {
	URL  string `koanf:"url"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
}

// Config is the full server configuration.
type Config struct {
	Server Server `koanf:"server"`
	Schema Schema `koanf:"schema"`
	Rules  Rules  `koanf:"rules"`
	Store  Store  `koanf:"store"`
	Auth   Auth   `koanf:"auth"`
	NATS   NATS   `koanf:"nats"`
	Neo4j  Neo4j  `koanf:"neo4j"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{Port: "8080", Origin: "*", RPS: 20, Burst: 40},
		Schema: Schema{Path: "schema/netlist.schema.jsonc"},
		Rules:  Rules{Workers: 1},
		Store:  Store{Path: "boardlint.db"},
		Auth:   Auth{Secret: "dev-only-secret"},
		NATS:   NATS{Subject: "netlist.validated"},
	}
}

const envPrefix = "BOARDLINT_"

// Load reads path (when non-empty and present) and applies environment
// overrides on top of the defaults. BOARDLINT_SERVER_PORT=9090 maps to
// server.port.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
