// Package pipeline composes the two-stage netlist validation: structural
// schema check first, then the semantic rule engine over the parsed graph.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/circuitsmith/boardlint/engine/netlist"
	"github.com/circuitsmith/boardlint/engine/rules"
	"github.com/circuitsmith/boardlint/engine/schema"
	"github.com/circuitsmith/boardlint/pkg/fn"
	"github.com/circuitsmith/boardlint/pkg/metrics"
)

// Deps holds the collaborators of the validation pipeline. Schema is
// required; everything else has a default.
type Deps struct {
	Schema  *schema.Validator
	Rules   []rules.Rule
	Workers int // rule evaluation workers; <=1 evaluates serially
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// Pipeline validates raw netlist documents. It is immutable after New and
// safe for concurrent use; each call builds its own graph.
type Pipeline struct {
	schema  *schema.Validator
	rules   []rules.Rule
	workers int
	metrics *metrics.Registry
	logger  *slog.Logger
}

// New builds a pipeline from deps.
func New(deps Deps) *Pipeline {
	p := &Pipeline{
		schema:  deps.Schema,
		rules:   deps.Rules,
		workers: deps.Workers,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
	if p.rules == nil {
		p.rules = rules.DefaultRules()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Validate runs the full pipeline on one raw document. Structural failures
// come back as an error wrapping *schema.Error; malformed JSON as a plain
// error. Semantic findings are never an error: they are data in the report.
func (p *Pipeline) Validate(ctx context.Context, raw []byte) (rules.Report, error) {
	start := time.Now()

	stage := fn.Then(fn.Then(p.structural(), p.build()), p.evaluate())
	report, err := stage(ctx, raw).Unwrap()

	if err != nil {
		p.logger.Warn("netlist rejected", "err", err)
	} else if report.Status == rules.StatusInvalid {
		p.logger.Info("netlist invalid", "violations", len(report.Violations))
	}

	p.observe(report, err, start)
	return report, err
}

// structural parses the raw bytes and checks them against the compiled
// schema, passing the bytes through untouched on success.
func (p *Pipeline) structural() fn.Stage[[]byte, []byte] {
	return fn.TracedStage("schema.validate", func(_ context.Context, raw []byte) fn.Result[[]byte] {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fn.Err[[]byte](fmt.Errorf("parse document: %w", err))
		}
		if err := p.schema.Validate(value); err != nil {
			return fn.Err[[]byte](err)
		}
		return fn.Ok(raw)
	})
}

func (p *Pipeline) build() fn.Stage[[]byte, *netlist.Graph] {
	return fn.TracedStage("graph.build", func(_ context.Context, raw []byte) fn.Result[*netlist.Graph] {
		doc, err := netlist.Decode(raw)
		if err != nil {
			return fn.Err[*netlist.Graph](err)
		}
		return fn.Ok(netlist.NewGraph(doc))
	})
}

func (p *Pipeline) evaluate() fn.Stage[*netlist.Graph, rules.Report] {
	return fn.TracedStage("rules.run", func(_ context.Context, g *netlist.Graph) fn.Result[rules.Report] {
		return fn.Ok(rules.NewReport(rules.RunParallel(g, p.rules, p.workers)))
	})
}

func (p *Pipeline) observe(report rules.Report, err error, start time.Time) {
	if p.metrics == nil {
		return
	}
	status := report.Status
	if err != nil {
		status = "rejected"
	}
	p.metrics.Counter(
		metrics.WithLabels("netlist_validations_total", "status", status),
		"Validation outcomes by status.",
	).Inc()
	p.metrics.Histogram(
		"netlist_validation_seconds",
		"End-to-end validation pipeline latency.",
		nil,
	).Since(start)
	for _, v := range report.Violations {
		p.metrics.Counter(
			metrics.WithLabels("netlist_violations_total", "rule", v.Rule),
			"Semantic violations by rule.",
		).Inc()
	}
}
