// Command boardlint validates netlist files offline and prints the
// validation report as JSON. Exit code 0 means every file is valid, 1
// means at least one file has violations, 2 means a file could not be
// validated at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	"github.com/circuitsmith/boardlint/engine/pipeline"
	"github.com/circuitsmith/boardlint/engine/rules"
	"github.com/circuitsmith/boardlint/engine/schema"
	"github.com/circuitsmith/boardlint/pkg/jsonc"
)

func main() {
	var (
		schemaPath = flag.String("schema", "schema/netlist.schema.jsonc", "path to the netlist schema")
		workers    = flag.Int("workers", 1, "rule evaluation workers")
		quiet      = flag.Bool("q", false, "suppress reports, exit code only")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [netlist.json ...]\n\nReads stdin when no files are given.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	doc, err := jsonc.LoadFile(*schemaPath)
	if err != nil {
		logger.Error("load schema", "path", *schemaPath, "err", err)
		os.Exit(2)
	}
	validator, err := schema.Compile(doc)
	if err != nil {
		logger.Error("compile schema", "err", err)
		os.Exit(2)
	}

	pipe := pipeline.New(pipeline.Deps{Schema: validator, Workers: *workers, Logger: logger})

	os.Exit(run(pipe, flag.Args(), *quiet, logger))
}

func run(pipe *pipeline.Pipeline, files []string, quiet bool, logger *slog.Logger) int {
	ctx := context.Background()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	exit := 0
	worst := func(code int) {
		if code > exit {
			exit = code
		}
	}

	validate := func(name string, raw []byte) {
		report, err := pipe.Validate(ctx, raw)
		if err != nil {
			logger.Error("validation failed", "file", name, "err", err)
			worst(2)
			return
		}
		if report.Status != rules.StatusValid {
			worst(1)
		}
		if !quiet {
			enc.Encode(report)
		}
	}

	if len(files) == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("read stdin", "err", err)
			return 2
		}
		validate("stdin", raw)
		return exit
	}

	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			logger.Error("read file", "file", f, "err", err)
			worst(2)
			continue
		}
		validate(f, raw)
	}
	return exit
}
