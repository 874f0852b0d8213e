package writer

import (
	"bytes"

	"github.com/wudi/riskmatrix/contentstream"
	"github.com/wudi/riskmatrix/coords"
	"github.com/wudi/riskmatrix/filters"
	"github.com/wudi/riskmatrix/ir/raw"
)

const (
	DefaultVersion = "1.3"

	// A4 portrait in points.
	A4Width  = 595.28
	A4Height = 841.89

	DefaultMargin = 32.0

	// ImageName is the resource name of the page image.
	ImageName = "Im0"

	numberPrecision = 2
)

// Config describes the single page the image is placed on.
type Config struct {
	Version    string
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

func DefaultConfig() Config {
	return Config{
		Version:    DefaultVersion,
		PageWidth:  A4Width,
		PageHeight: A4Height,
		Margin:     DefaultMargin,
	}
}

// Assembler builds a one-page PDF around one encoded image.
type Assembler struct {
	cfg Config
	w   Writer
}

// NewAssembler fills zero fields of cfg from DefaultConfig.
func NewAssembler(cfg Config) *Assembler {
	def := DefaultConfig()
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.PageWidth <= 0 || cfg.PageHeight <= 0 {
		cfg.PageWidth, cfg.PageHeight = def.PageWidth, def.PageHeight
	}
	if cfg.Margin < 0 {
		cfg.Margin = 0
	}
	return &Assembler{cfg: cfg, w: New()}
}

func (a *Assembler) Config() Config { return a.cfg }

// Placement returns where a wPx x hPx image lands on the page.
func (a *Assembler) Placement(wPx, hPx int) coords.Rect {
	return coords.FitCentered(float64(wPx), float64(hPx), a.cfg.PageWidth, a.cfg.PageHeight, a.cfg.Margin)
}

// Placement uses the default A4 page.
func Placement(wPx, hPx int) coords.Rect {
	return coords.FitCentered(float64(wPx), float64(hPx), A4Width, A4Height, DefaultMargin)
}

// Document builds the object graph: catalog, pages, page, image XObject and
// the content stream that draws the image, numbered 1 to 5.
func (a *Assembler) Document(img *filters.EncodedImage) *raw.Document {
	if img == nil {
		img = &filters.EncodedImage{}
	}
	filter := img.Filter
	if filter == "" {
		filter = "DCTDecode"
	}
	colorSpace := img.ColorSpace
	if colorSpace == "" {
		colorSpace = "DeviceRGB"
	}
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}

	doc := &raw.Document{Version: a.cfg.Version}
	const (
		catalogNum = 1
		pagesNum   = 2
		pageNum    = 3
		imageNum   = 4
		contentNum = 5
	)

	catalog := raw.Dict()
	catalog.Set(raw.NameLiteral("Type"), raw.NameLiteral("Catalog"))
	catalog.Set(raw.NameLiteral("Pages"), raw.Ref(pagesNum, 0))
	doc.Root = doc.Add(catalog)

	pages := raw.Dict()
	pages.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	pages.Set(raw.NameLiteral("Kids"), raw.NewArray(raw.Ref(pageNum, 0)))
	pages.Set(raw.NameLiteral("Count"), raw.NumberInt(1))
	doc.Add(pages)

	xobjects := raw.Dict()
	xobjects.Set(raw.NameLiteral(ImageName), raw.Ref(imageNum, 0))
	resources := raw.Dict()
	resources.Set(raw.NameLiteral("XObject"), xobjects)
	resources.Set(raw.NameLiteral("ProcSet"), raw.NewArray(raw.NameLiteral("PDF"), raw.NameLiteral("ImageC")))

	page := raw.Dict()
	page.Set(raw.NameLiteral("Type"), raw.NameLiteral("Page"))
	page.Set(raw.NameLiteral("Parent"), raw.Ref(pagesNum, 0))
	page.Set(raw.NameLiteral("MediaBox"), raw.NewArray(
		raw.NumberInt(0), raw.NumberInt(0),
		raw.NumberFixed(a.cfg.PageWidth, numberPrecision),
		raw.NumberFixed(a.cfg.PageHeight, numberPrecision),
	))
	page.Set(raw.NameLiteral("Resources"), resources)
	page.Set(raw.NameLiteral("Contents"), raw.Ref(contentNum, 0))
	doc.Add(page)

	imgDict := raw.Dict()
	imgDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
	imgDict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Image"))
	imgDict.Set(raw.NameLiteral("Width"), raw.NumberInt(int64(img.Width)))
	imgDict.Set(raw.NameLiteral("Height"), raw.NumberInt(int64(img.Height)))
	imgDict.Set(raw.NameLiteral("ColorSpace"), raw.NameLiteral(colorSpace))
	imgDict.Set(raw.NameLiteral("BitsPerComponent"), raw.NumberInt(int64(bpc)))
	imgDict.Set(raw.NameLiteral("Filter"), raw.NameLiteral(filter))
	doc.Add(raw.NewStream(imgDict, img.Data))

	placement := a.Placement(img.Width, img.Height)
	content := contentstream.NewBuilder().
		Save().
		Concat(coords.ImagePlacement(placement)).
		Do(ImageName).
		Restore().
		Bytes()
	doc.Add(raw.NewStream(nil, content))

	return doc
}

// Assemble serializes the page around img. It never fails: an empty or nil
// image still yields a structurally valid document.
func (a *Assembler) Assemble(img *filters.EncodedImage) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail and Document numbers objects 1..5.
	_, _ = a.w.Write(a.Document(img), &buf)
	return buf.Bytes()
}

// Assemble places img on an A4 page with the default margin.
func Assemble(img *filters.EncodedImage) []byte {
	return NewAssembler(DefaultConfig()).Assemble(img)
}
