package export

import (
	"context"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/filters"
	"github.com/wudi/riskmatrix/observability"
	"github.com/wudi/riskmatrix/raster"
	"github.com/wudi/riskmatrix/risk"
	"github.com/wudi/riskmatrix/scale"
	"github.com/wudi/riskmatrix/writer"
)

const (
	DefaultFilename = "matriz-de-riscos.pdf"
	ContentType     = "application/pdf"
)

// Renderer draws the report bitmap. *raster.Renderer implements it.
type Renderer interface {
	Render(description string, risks []risk.Risk) (*image.RGBA, error)
}

// Exporter runs classify, distribute, render, encode and assemble for one
// report. It keeps no state between calls and is safe for concurrent use.
type Exporter struct {
	renderer  Renderer
	encoder   filters.Encoder
	assembler *writer.Assembler
	logger    observability.Logger
	tracer    observability.Tracer
	recorder  observability.Recorder

	width   int
	quality int
	page    writer.Config
}

type Option func(*Exporter)

func WithLogger(l observability.Logger) Option     { return func(e *Exporter) { e.logger = l } }
func WithTracer(t observability.Tracer) Option     { return func(e *Exporter) { e.tracer = t } }
func WithRecorder(r observability.Recorder) Option { return func(e *Exporter) { e.recorder = r } }

// WithWidth sets the canvas width in pixels.
func WithWidth(px int) Option { return func(e *Exporter) { e.width = px } }

// WithQuality sets the JPEG quality (1..100).
func WithQuality(q int) Option { return func(e *Exporter) { e.quality = q } }

// WithPage overrides the page geometry.
func WithPage(cfg writer.Config) Option { return func(e *Exporter) { e.page = cfg } }

// WithRenderer replaces the raster renderer.
func WithRenderer(r Renderer) Option { return func(e *Exporter) { e.renderer = r } }

// WithEncoder replaces the JPEG encoder.
func WithEncoder(enc filters.Encoder) Option { return func(e *Exporter) { e.encoder = enc } }

func New(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		logger:   observability.NopLogger{},
		tracer:   observability.NopTracer(),
		recorder: observability.NopRecorder{},
		width:    raster.DefaultWidth,
		quality:  filters.DefaultQuality,
		page:     writer.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.renderer == nil {
		r, err := raster.NewRenderer(raster.Options{Width: e.width})
		if err != nil {
			return nil, goerr.Wrap(err, "create renderer", goerr.V("width", e.width))
		}
		e.renderer = r
	}
	if e.encoder == nil {
		e.encoder = filters.NewDCTEncoder(e.quality)
	}
	e.assembler = writer.NewAssembler(e.page)
	return e, nil
}

// Export renders the report for description and risks and returns the PDF
// bytes. ctx scopes logging and tracing only; a started export runs to
// completion. Every failure wraps one of ErrEmptyRiskList,
// ErrRenderingUnavailable or ErrImageEncoding under "export failed".
func (e *Exporter) Export(ctx context.Context, description string, risks []risk.Risk) ([]byte, error) {
	started := time.Now()
	exportID := uuid.NewString()
	logger := e.logger.With(observability.String("export_id", exportID))

	ctx, span := e.tracer.StartSpan(ctx, observability.MetricExportTime)
	defer span.Finish()
	span.SetTag("export_id", exportID)
	span.SetTag("risks", len(risks))

	fail := func(sentinel error, reason string, cause error, values ...goerr.Option) ([]byte, error) {
		opts := append([]goerr.Option{goerr.V("export_id", exportID)}, values...)
		if cause != nil {
			opts = append(opts, goerr.V("cause", cause.Error()))
		}
		err := goerr.Wrap(sentinel, "export failed", opts...)
		fields := []observability.Field{observability.String("reason", reason), observability.Error("error", err)}
		if cause != nil {
			fields = append(fields, observability.Error("cause", cause))
		}
		logger.Error("export failed", fields...)
		span.SetError(err)
		e.recorder.Inc(observability.MetricExportFailures, reason)
		return nil, err
	}

	if len(risks) == 0 {
		return fail(ErrEmptyRiskList, reasonEmptyRiskList, nil)
	}
	e.logDefaults(logger, risks)

	img, err := e.render(ctx, description, risks)
	if err != nil {
		return fail(ErrRenderingUnavailable, reasonRendering, err, goerr.V("risks", len(risks)))
	}
	b := img.Bounds()

	encoded, err := e.encode(ctx, img)
	if err != nil {
		return fail(ErrImageEncoding, reasonEncoding, err, goerr.V("width", b.Dx()), goerr.V("height", b.Dy()))
	}
	if encoded == nil || len(encoded.Data) == 0 {
		return fail(ErrImageEncoding, reasonEncoding, nil, goerr.V("width", b.Dx()), goerr.V("height", b.Dy()))
	}

	pdf := e.assemble(ctx, encoded)

	e.recorder.Observe(observability.MetricRiskCount, float64(len(risks)))
	e.recorder.Observe(observability.MetricPDFBytes, float64(len(pdf)))
	logger.Info("export finished",
		observability.Int("risks", len(risks)),
		observability.Int("canvas_width", b.Dx()),
		observability.Int("canvas_height", b.Dy()),
		observability.Int("jpeg_bytes", len(encoded.Data)),
		observability.Int("pdf_bytes", len(pdf)),
		observability.Duration("elapsed", time.Since(started)),
	)
	return pdf, nil
}

func (e *Exporter) render(ctx context.Context, description string, risks []risk.Risk) (*image.RGBA, error) {
	_, span := e.tracer.StartSpan(ctx, observability.MetricRenderTime)
	defer span.Finish()

	img, err := e.renderer.Render(description, risks)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		err := goerr.Wrap(raster.ErrSurfaceUnavailable, "renderer returned no pixels")
		span.SetError(err)
		return nil, err
	}
	span.SetTag("height", img.Bounds().Dy())
	return img, nil
}

func (e *Exporter) encode(ctx context.Context, img image.Image) (*filters.EncodedImage, error) {
	_, span := e.tracer.StartSpan(ctx, observability.MetricEncodeTime)
	defer span.Finish()

	encoded, err := e.encoder.Encode(img)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if encoded != nil {
		span.SetTag("bytes", len(encoded.Data))
	}
	return encoded, nil
}

func (e *Exporter) assemble(ctx context.Context, img *filters.EncodedImage) []byte {
	_, span := e.tracer.StartSpan(ctx, observability.MetricAssembleTime)
	defer span.Finish()
	return e.assembler.Assemble(img)
}

// logDefaults notes risks whose levels fell back to the middle of the scale.
func (e *Exporter) logDefaults(logger observability.Logger, risks []risk.Risk) {
	for i, r := range risks {
		if _, ok := scale.LookupProbability(r.Probability); !ok {
			logger.Debug("probability defaulted to medium", observability.Int("index", i), observability.String("raw", r.Probability))
		}
		if _, ok := scale.LookupImpact(r.Impact); !ok {
			logger.Debug("impact defaulted to medium", observability.Int("index", i), observability.String("raw", r.Impact))
		}
	}
}
