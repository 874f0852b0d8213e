package cli

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/wudi/riskmatrix/config"
	"github.com/wudi/riskmatrix/export"
	"github.com/wudi/riskmatrix/xref"
)

const payload = `{
  "description": "Aquisição de notebooks para a secretaria",
  "risks": [
    {"risk_description": "Atraso na entrega", "probability": "Alta", "impact": "Alto", "mitigation_measure": "Multa contratual"},
    {"risk_description": "Preço acima do mercado", "probability": "baixa", "impact": "Moderado", "mitigation_measure": "Pesquisa de preços"}
  ]
}`

type result struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	res := result{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	res.err = run(context.Background(), append([]string{"riskmatrix"}, args...), "test", strings.NewReader(stdin), res.stdout, res.stderr)
	return res
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "risks.json")
	out := filepath.Join(dir, "out.pdf")
	gt.NoError(t, os.WriteFile(in, []byte(payload), 0o600)).Required()

	res := runCLI(t, "", "--log-format", "json", "export", "--input", in, "--output", out)
	gt.NoError(t, res.err).Required()
	gt.String(t, res.stderr.String()).Contains(`"message":"exported risk matrix"`)

	data, err := os.ReadFile(out)
	gt.NoError(t, err).Required()
	report, err := xref.Verify(data)
	gt.NoError(t, err).Required()
	gt.Number(t, report.Size).Equal(6)
}

func TestExportStdinToStdout(t *testing.T) {
	res := runCLI(t, payload, "export", "--output", "-", "--description", "Outro objeto")
	gt.NoError(t, res.err).Required()
	gt.Bool(t, bytes.HasPrefix(res.stdout.Bytes(), []byte("%PDF-1.3\n"))).True()
	gt.Bool(t, bytes.HasSuffix(res.stdout.Bytes(), []byte("%%EOF"))).True()
}

func TestExportEmptyList(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.pdf")
	res := runCLI(t, `{"risks": []}`, "export", "--output", out)
	gt.Error(t, res.err).Is(export.ErrEmptyRiskList)

	_, err := os.Stat(out)
	gt.Bool(t, os.IsNotExist(err)).True()
}

func TestExportPreview(t *testing.T) {
	dir := t.TempDir()
	preview := filepath.Join(dir, "preview.png")
	res := runCLI(t, payload, "export", "--output", filepath.Join(dir, "out.pdf"), "--preview", preview)
	gt.NoError(t, res.err).Required()

	f, err := os.Open(preview)
	gt.NoError(t, err).Required()
	defer f.Close()
	img, err := png.Decode(f)
	gt.NoError(t, err).Required()
	gt.Number(t, img.Bounds().Dx()).Equal(previewWidth)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "riskmatrix.toml")
	gt.NoError(t, os.WriteFile(cfgPath, []byte("[export]\nfilename = \""+filepath.Join(dir, "from-config.pdf")+"\"\n"), 0o600)).Required()

	res := runCLI(t, payload, "--config", cfgPath, "export")
	gt.NoError(t, res.err).Required()
	_, err := os.Stat(filepath.Join(dir, "from-config.pdf"))
	gt.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	res := runCLI(t, payload, "--log-level", "loud", "export", "--output", "-")
	gt.Error(t, res.err).Is(config.ErrInvalidConfig)
	gt.Number(t, res.stdout.Len()).Equal(0)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	res := runCLI(t, payload, "export", "--output", good)
	gt.NoError(t, res.err).Required()

	res = runCLI(t, "", "verify", good)
	gt.NoError(t, res.err).Required()
	gt.String(t, res.stdout.String()).Contains("PDF 1.3, 5 objects, root 1 0 R")
	gt.String(t, res.stdout.String()).Contains("ok")

	data, err := os.ReadFile(good)
	gt.NoError(t, err).Required()
	idx := bytes.Index(data, []byte("xref\n"))
	bad := filepath.Join(dir, "bad.pdf")
	gt.NoError(t, os.WriteFile(bad, data[:idx], 0o600)).Required()

	res = runCLI(t, "", "verify", "--repair", bad)
	gt.Error(t, res.err).Is(xref.ErrMalformed)
	gt.String(t, res.stdout.String()).Contains("recovered objects: [1 2 3 4 5]")
}

func TestVerifyMissingArgument(t *testing.T) {
	res := runCLI(t, "", "verify")
	gt.Error(t, res.err).Is(ErrMissingArgument)
}

func TestServeHandler(t *testing.T) {
	rt := &runtime{}
	gt.NoError(t, rt.configure(&bytes.Buffer{})).Required()
	h, err := newHandler(rt)
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/export", strings.NewReader(payload))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, w.Header().Get("Content-Type")).Equal("application/pdf")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains("riskmatrix_export_duration")
	gt.String(t, w.Body.String()).Contains("go_goroutines")
}

func exportedPDF(t *testing.T) []byte {
	t.Helper()
	res := runCLI(t, payload, "export", "--output", "-")
	gt.NoError(t, res.err).Required()
	return res.stdout.Bytes()
}

// sameLength rewrites the first match of old in data with repl, which must
// have the same length so every xref offset stays valid.
func sameLength(t *testing.T, data []byte, old, repl string) []byte {
	t.Helper()
	if len(old) != len(repl) {
		t.Fatalf("replacement changes length: %q -> %q", old, repl)
	}
	idx := bytes.Index(data, []byte(old))
	if idx < 0 {
		t.Fatalf("%q not found", old)
	}
	out := bytes.Clone(data)
	copy(out[idx:], repl)
	return out
}

func TestInspectPageAcceptsExport(t *testing.T) {
	issues, err := inspectPage(context.Background(), exportedPDF(t), 32)
	gt.NoError(t, err).Required()
	gt.Array(t, issues).Length(0)
}

func TestInspectPageFindsDefects(t *testing.T) {
	pdf := exportedPDF(t)

	cmAt := bytes.Index(pdf, []byte(" cm\n"))
	lineStart := bytes.LastIndexByte(pdf[:cmAt], '\n') + 1
	fields := strings.Fields(string(pdf[lineStart:cmAt]))
	gt.Array(t, fields).Length(6).Required()
	fields[4] = "0" + fields[4][1:]
	shifted := bytes.Clone(pdf)
	copy(shifted[lineStart:cmAt], strings.Join(fields, " "))

	testCases := map[string]struct {
		data   []byte
		margin float64
		want   string
	}{
		"declared width differs from jpeg": {
			data: sameLength(t, pdf, "/Width 1400", "/Width 1401"),
			want: "declares 1401x",
		},
		"image pushed into the margin": {
			data: shifted,
			want: "leaves the 32.00 pt margin",
		},
		"wider margin than the page uses": {
			data:   pdf,
			margin: 40,
			want:   "leaves the 40.00 pt margin",
		},
		"unexpected operator": {
			data: sameLength(t, pdf, "/Im0 Do", "/Im0 BI"),
			want: `unexpected operator "BI"`,
		},
		"unknown filter": {
			data: sameLength(t, pdf, "/DCTDecode", "/JPXDecode"),
			want: "is not DCTDecode",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			margin := tc.margin
			if margin == 0 {
				margin = 32
			}
			issues, err := inspectPage(context.Background(), tc.data, margin)
			gt.NoError(t, err).Required()
			if len(issues) == 0 {
				t.Fatalf("no issues reported, want %q", tc.want)
			}
			gt.String(t, strings.Join(issues, "\n")).Contains(tc.want)
		})
	}
}

func TestVerifyReportsPageDefects(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.pdf")
	gt.NoError(t, os.WriteFile(bad, sameLength(t, exportedPDF(t), "/Width 1400", "/Width 1401"), 0o600)).Required()

	res := runCLI(t, "", "verify", bad)
	gt.Error(t, res.err).Is(ErrPageCheck)
	gt.String(t, res.stdout.String()).Contains("declares 1401x")
	gt.Bool(t, strings.Contains(res.stdout.String(), "\nok\n")).False()
}
