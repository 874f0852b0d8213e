package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestZapLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("debug", "json", &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	cause := goerr.New("boom", goerr.V("width", 1400))
	logger.With(String("export_id", "abc")).Error("export failed",
		Int("risks", 3),
		Float64("ratio", 0.5),
		Bool("ok", false),
		Duration("elapsed", 2*time.Second),
		Error("error", cause),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["level"] != "ERROR" || got["message"] != "export failed" {
		t.Fatalf("unexpected entry %v", got)
	}
	if got["export_id"] != "abc" || got["risks"] != float64(3) || got["ok"] != false {
		t.Fatalf("fields not encoded: %v", got)
	}
	if got["error"] != "boom" {
		t.Fatalf("error field %v", got["error"])
	}
	values, ok := got["error.values"].(map[string]any)
	if !ok || values["width"] != float64(1400) {
		t.Fatalf("goerr values not lifted: %v", got["error.values"])
	}
	if caller, _ := got["caller"].(string); !strings.HasPrefix(caller, "observability/observability_test.go") {
		t.Fatalf("caller should point at the call site, got %q", caller)
	}
}

func TestZapLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "console", &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level filter not applied: %q", buf.String())
	}
}

func TestNewLoggerRejectsBadConfig(t *testing.T) {
	if _, err := NewLogger("loud", "json", &bytes.Buffer{}); !errors.Is(err, ErrInvalidLogConfig) {
		t.Fatalf("expected ErrInvalidLogConfig for level, got %v", err)
	}
	if _, err := NewLogger("info", "xml", &bytes.Buffer{}); !errors.Is(err, ErrInvalidLogConfig) {
		t.Fatalf("expected ErrInvalidLogConfig for format, got %v", err)
	}
}

type recorded struct {
	observed map[string][]float64
	counted  map[string][]string
}

func (r *recorded) Observe(m string, v float64) { r.observed[m] = append(r.observed[m], v) }
func (r *recorded) Inc(m, reason string)        { r.counted[m] = append(r.counted[m], reason) }

func TestLogTracer(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("debug", "json", &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	rec := &recorded{observed: map[string][]float64{}, counted: map[string][]string{}}
	tracer := NewLogTracer(logger, rec)

	ctx, parent := tracer.StartSpan(context.Background(), MetricExportTime)
	_, child := tracer.StartSpan(ctx, MetricRenderTime)
	child.SetTag("height", 1200)
	child.SetError(errors.New("no surface"))
	child.Finish()
	child.Finish()
	parent.Finish()

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 span lines, got %d", len(lines))
	}
	if lines[0]["span"] != MetricRenderTime || lines[0]["parent"] != MetricExportTime {
		t.Fatalf("unexpected child span %v", lines[0])
	}
	if lines[0]["height"] != float64(1200) || lines[0]["error"] != "no surface" {
		t.Fatalf("tags missing %v", lines[0])
	}
	if len(rec.observed[MetricRenderTime]) != 1 || len(rec.observed[MetricExportTime]) != 1 {
		t.Fatalf("durations not recorded: %v", rec.observed)
	}
}

func TestPromName(t *testing.T) {
	if got := PromName(MetricExportTime); got != "riskmatrix_export_duration" {
		t.Fatalf("got %q", got)
	}
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.Observe(MetricPDFBytes, 120000)
	rec.Observe(MetricPDFBytes, 90000)
	rec.Inc(MetricExportFailures, "empty_risk_list")
	rec.Inc(MetricExportFailures, "empty_risk_list")

	// a second recorder on the same registry reuses the collectors
	again := NewPrometheusRecorder(reg)
	again.Inc(MetricExportFailures, "image_encoding")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetHistogram() != nil:
				byName[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
			case m.GetCounter() != nil:
				byName[mf.GetName()+"/"+m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if byName["riskmatrix_pdf_bytes"] != 2 {
		t.Fatalf("histogram count %v", byName)
	}
	if byName["riskmatrix_export_failures_total/empty_risk_list"] != 2 ||
		byName["riskmatrix_export_failures_total/image_encoding"] != 1 {
		t.Fatalf("counter values %v", byName)
	}
}
