package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/circuitsmith/boardlint/engine/rules"
	"github.com/circuitsmith/boardlint/engine/schema"
	"github.com/circuitsmith/boardlint/pkg/jsonc"
	"github.com/circuitsmith/boardlint/pkg/metrics"
)

func testPipeline(t *testing.T, reg *metrics.Registry) *Pipeline {
	t.Helper()
	doc, err := jsonc.LoadFile("../../schema/netlist.schema.jsonc")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	v, err := schema.Compile(doc)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return New(Deps{Schema: v, Metrics: reg})
}

const cleanNetlist = `{
	"components": [
		{"id":"U1","name":"MCU","type":"ic","pins":[{"id":"1","name":"VCC"},{"id":"2","name":"GND"}]},
		{"id":"U2","name":"Regulator","type":"ic","pins":[{"id":"1","name":"GND"}]}
	],
	"nets": [
		{"id":"N1","name":"GND","connections":[{"componentId":"U1","pinId":"2"},{"componentId":"U2","pinId":"1"}]}
	]
}`

func TestValidate_Clean(t *testing.T) {
	p := testPipeline(t, nil)
	report, err := p.Validate(context.Background(), []byte(cleanNetlist))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Status != rules.StatusValid || len(report.Violations) != 0 {
		t.Errorf("expected clean report, got %+v", report)
	}
}

func TestValidate_SemanticViolations(t *testing.T) {
	p := testPipeline(t, nil)
	raw := []byte(`{
		"components": [{"id":"U1","name":" ","type":"ic","pins":[{"id":"1","name":"GND"}]}],
		"nets": [{"id":"N1","name":"SIG","connections":[{"componentId":"ghost","pinId":"1"}]}]
	}`)
	report, err := p.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("semantic findings must not be errors: %v", err)
	}
	if report.Status != rules.StatusInvalid {
		t.Fatalf("expected invalid, got %+v", report)
	}
	wantRules := []string{"non_blank_names", "gnd_present", "dangling_connection", "dangling_net"}
	got := make([]string, len(report.Violations))
	for i, v := range report.Violations {
		got[i] = v.Rule
	}
	if !reflect.DeepEqual(got, wantRules) {
		t.Errorf("violations %v, want %v", got, wantRules)
	}
}

func TestValidate_StructuralFailure(t *testing.T) {
	p := testPipeline(t, nil)
	_, err := p.Validate(context.Background(), []byte(`{"components": "nope", "nets": []}`))
	var se *schema.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *schema.Error, got %v", err)
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	p := testPipeline(t, nil)
	_, err := p.Validate(context.Background(), []byte(`{"components":`))
	if err == nil {
		t.Fatal("expected error")
	}
	var se *schema.Error
	if errors.As(err, &se) {
		t.Fatalf("malformed JSON is not a structural error: %v", err)
	}
}

func TestValidate_AbsentOptionalCollections(t *testing.T) {
	// Schema-valid but with pins and connections omitted entirely; must not
	// panic and must treat the absent collections as empty.
	p := testPipeline(t, nil)
	raw := []byte(`{"components":[{"id":"U1","name":"Bare","type":"ic"}],"nets":[{"id":"N1","name":"GND"}]}`)
	report, err := p.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	// Only the dangling-net finding for the empty net.
	if len(report.Violations) != 1 || report.Violations[0].Rule != "dangling_net" {
		t.Errorf("expected a single dangling_net, got %+v", report.Violations)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	p := testPipeline(t, nil)
	raw := []byte(`{"components":[],"nets":[{"id":"N1","name":""}]}`)
	first, err1 := p.Validate(context.Background(), raw)
	second, err2 := p.Validate(context.Background(), raw)
	if err1 != nil || err2 != nil {
		t.Fatalf("validate: %v %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestValidate_LogsRejections(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	doc, err := jsonc.LoadFile("../../schema/netlist.schema.jsonc")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	v, err := schema.Compile(doc)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	p := New(Deps{Schema: v, Logger: logger})

	if _, err := p.Validate(context.Background(), []byte(`{"nets": []}`)); err == nil {
		t.Fatal("expected a structural error")
	}
	if !strings.Contains(buf.String(), "netlist rejected") {
		t.Errorf("structural rejection should be logged, got:\n%s", buf.String())
	}
}

func TestValidate_RecordsMetrics(t *testing.T) {
	reg := metrics.New()
	p := testPipeline(t, reg)
	if _, err := p.Validate(context.Background(), []byte(cleanNetlist)); err != nil {
		t.Fatalf("validate: %v", err)
	}
	out := reg.Render()
	if !strings.Contains(out, `netlist_validations_total{status="valid"} 1`) {
		t.Errorf("missing validation counter in:\n%s", out)
	}
}
