package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wudi/riskmatrix/export"
	"github.com/wudi/riskmatrix/observability"
	"github.com/wudi/riskmatrix/risk"
	"github.com/wudi/riskmatrix/server"
	"github.com/wudi/riskmatrix/xref"
)

type stubExporter struct {
	got []risk.Risk
	err error
}

func (s *stubExporter) Export(_ context.Context, _ string, risks []risk.Risk) ([]byte, error) {
	s.got = risks
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.3\n"), nil
}

const onePayload = `{"description":"Contratação de TI","risks":[{"risk_description":"Atraso","probability":"Alta","impact":"Alto","mitigation_measure":"Cronograma"}]}`

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &out)).Required()
	return out
}

func TestExportReturnsPDF(t *testing.T) {
	exp, err := export.New()
	gt.NoError(t, err).Required()
	srv := server.New(exp)

	w := post(t, srv, onePayload)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, w.Header().Get("Content-Type")).Equal("application/pdf")
	gt.Value(t, w.Header().Get("Content-Disposition")).Equal(`attachment; filename="matriz-de-riscos.pdf"`)
	gt.Bool(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-1.3\n"))).True()

	report, err := xref.Verify(w.Body.Bytes())
	gt.NoError(t, err).Required()
	if !report.OK() {
		t.Fatalf("issues in served pdf: %v", report.Issues)
	}
}

func TestExportNormalizesPayload(t *testing.T) {
	stub := &stubExporter{}
	srv := server.New(stub, server.WithFilename("relatorio.pdf"))

	body := `[{"risk_description":"  A  ","mitigation_measure":"M"},{"risk_description":"sem mitigação"},42]`
	w := post(t, srv, body)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, w.Header().Get("Content-Disposition")).Equal(`attachment; filename="relatorio.pdf"`)
	gt.Array(t, stub.got).Length(1).Required()
	gt.Value(t, stub.got[0].Description).Equal("A")
	gt.Value(t, stub.got[0].Probability).Equal(risk.DefaultProbability)
}

func TestExportErrors(t *testing.T) {
	testCases := map[string]struct {
		body   string
		err    error
		status int
		msg    string
	}{
		"malformed json": {
			body:   `{"risks":`,
			status: http.StatusBadRequest,
			msg:    "invalid risk payload",
		},
		"empty list": {
			body:   `{"risks":[]}`,
			err:    goerr.Wrap(export.ErrEmptyRiskList, "export failed"),
			status: http.StatusUnprocessableEntity,
			msg:    "no valid risks to export",
		},
		"rendering unavailable": {
			body:   onePayload,
			err:    goerr.Wrap(export.ErrRenderingUnavailable, "export failed"),
			status: http.StatusInternalServerError,
			msg:    "export failed, try again",
		},
		"encoding failed": {
			body:   onePayload,
			err:    goerr.Wrap(export.ErrImageEncoding, "export failed"),
			status: http.StatusInternalServerError,
			msg:    "export failed, try again",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			srv := server.New(&stubExporter{err: tc.err})
			w := post(t, srv, tc.body)
			gt.Value(t, w.Code).Equal(tc.status)
			gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")
			gt.Value(t, decodeError(t, w)["error"]).Equal(tc.msg)
		})
	}
}

func TestExportEmptyListWithRealExporter(t *testing.T) {
	exp, err := export.New()
	gt.NoError(t, err).Required()
	w := post(t, server.New(exp), `[{"risk_description":"","mitigation_measure":"M"}]`)
	gt.Value(t, w.Code).Equal(http.StatusUnprocessableEntity)
}

func TestExportBodyLimit(t *testing.T) {
	srv := server.New(&stubExporter{}, server.WithMaxBodyBytes(16))
	w := post(t, srv, onePayload)
	gt.Value(t, w.Code).Equal(http.StatusRequestEntityTooLarge)
}

func TestExportMethodNotAllowed(t *testing.T) {
	srv := server.New(&stubExporter{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk/export", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	gt.Value(t, w.Code).Equal(http.StatusMethodNotAllowed)
}

func TestRequestID(t *testing.T) {
	srv := server.New(&stubExporter{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, w.Header().Get(server.RequestIDHeader)).Equal("req-123")

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	gt.Number(t, len(w.Header().Get(server.RequestIDHeader))).Equal(36)

	w = post(t, srv, `{"risks":`)
	gt.Value(t, decodeError(t, w)["request_id"]).Equal(w.Header().Get(server.RequestIDHeader))
}

type captureLogger struct {
	observability.NopLogger
	msgs []string
}

func (c *captureLogger) Info(msg string, _ ...observability.Field) { c.msgs = append(c.msgs, msg) }

func TestAccessLog(t *testing.T) {
	logger := &captureLogger{}
	srv := server.New(&stubExporter{}, server.WithLogger(logger))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	gt.Array(t, logger.msgs).Length(1)
	gt.Value(t, logger.msgs[0]).Equal("access")
}

func TestRecoverer(t *testing.T) {
	srv := server.New(panicExporter{})
	w := post(t, srv, onePayload)
	gt.Value(t, w.Code).Equal(http.StatusInternalServerError)
}

type panicExporter struct{}

func (panicExporter) Export(context.Context, string, []risk.Risk) ([]byte, error) {
	panic(errors.New("boom"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := observability.NewPrometheusRecorder(reg)
	rec.Inc(observability.MetricExportFailures, "empty_risk_list")

	srv := server.New(&stubExporter{}, server.WithGatherer(reg))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains("riskmatrix_export_failures")

	w = httptest.NewRecorder()
	server.New(&stubExporter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}
