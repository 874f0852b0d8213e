package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/riskmatrix/filters"
)

var ErrSurfaceUnavailable = goerr.New("rendering surface unavailable")

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineTop
	BaselineMiddle
)

// TextStyle mirrors the subset of canvas text state the report uses.
type TextStyle struct {
	Weight   Weight
	Size     float64
	Color    color.Color
	Align    Align
	Baseline Baseline
}

// Canvas is a drawing surface. A canvas without an image only measures,
// which lets the renderer run its layout once to size the real surface.
type Canvas struct {
	img   *image.RGBA
	faces *faceCache
	err   error
}

// NewCanvas allocates a white width x height surface.
func NewCanvas(width, height int) (*Canvas, error) {
	if err := filters.ValidateImageBounds(width, height); err != nil {
		return nil, goerr.Wrap(ErrSurfaceUnavailable, "allocate canvas", goerr.V("width", width), goerr.V("height", height), goerr.V("cause", err.Error()))
	}
	faces, err := newFaceCache()
	if err != nil {
		return nil, goerr.Wrap(ErrSurfaceUnavailable, "load fonts", goerr.V("cause", err.Error()))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &Canvas{img: img, faces: faces}, nil
}

// newMeasureCanvas returns a canvas that lays out text without drawing.
func newMeasureCanvas() (*Canvas, error) {
	faces, err := newFaceCache()
	if err != nil {
		return nil, goerr.Wrap(ErrSurfaceUnavailable, "load fonts", goerr.V("cause", err.Error()))
	}
	return &Canvas{faces: faces}, nil
}

// Image returns the backing pixels, nil for a measuring canvas.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Err returns the first face error met while drawing.
func (c *Canvas) Err() error { return c.err }

func (c *Canvas) Close() { c.faces.Close() }

func (c *Canvas) face(st TextStyle) font.Face {
	f, err := c.faces.face(st.Weight, st.Size)
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return nil
	}
	return f
}

// FillRect paints an axis-aligned rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	if c.img == nil {
		return
	}
	r := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// MeasureText returns the advance width of s in pixels.
func (c *Canvas) MeasureText(s string, st TextStyle) float64 {
	f := c.face(st)
	if f == nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(f, s))
}

// FillText draws s anchored at (x, y) according to the style's alignment
// and baseline.
func (c *Canvas) FillText(s string, x, y float64, st TextStyle) {
	if c.img == nil || s == "" {
		return
	}
	f := c.face(st)
	if f == nil {
		return
	}
	drawString(c.img, f, s, textOrigin(f, s, x, y, st), st.Color)
}

func drawString(dst draw.Image, f font.Face, s string, dot fixed.Point26_6, col color.Color) {
	if col == nil {
		col = color.Black
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: f, Dot: dot}
	d.DrawString(s)
}

// textOrigin converts a canvas anchor into the pen position on the baseline.
func textOrigin(f font.Face, s string, x, y float64, st TextStyle) fixed.Point26_6 {
	switch st.Align {
	case AlignCenter:
		x -= fixedToFloat(font.MeasureString(f, s)) / 2
	case AlignRight:
		x -= fixedToFloat(font.MeasureString(f, s))
	}
	m := f.Metrics()
	switch st.Baseline {
	case BaselineTop:
		y += fixedToFloat(m.Ascent)
	case BaselineMiddle:
		y += (fixedToFloat(m.Ascent) - fixedToFloat(m.Descent)) / 2
	}
	return fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)}
}

// WrapText greedily packs words onto lines no wider than maxWidth, drawing
// each line at x starting at y and stepping lineHeight per line. It returns
// the cursor below the last line. A word wider than maxWidth gets a line of
// its own.
func (c *Canvas) WrapText(text string, x, y, maxWidth, lineHeight float64, st TextStyle) float64 {
	for _, line := range c.WrapLines(text, maxWidth, st) {
		c.FillText(line, x, y, st)
		y += lineHeight
	}
	return y
}

// WrapLines is the line breaking used by WrapText.
func (c *Canvas) WrapLines(text string, maxWidth float64, st TextStyle) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && c.MeasureText(candidate, st) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
