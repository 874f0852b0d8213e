package raster

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// FillTextVertical draws s rotated a quarter turn counter-clockwise so it
// reads bottom to top. The text is centred on cy along its length and its
// baseline sits on x = cx. Align and Baseline are ignored.
func (c *Canvas) FillTextVertical(s string, cx, cy float64, st TextStyle) {
	if c.img == nil || s == "" {
		return
	}
	f := c.face(st)
	if f == nil {
		return
	}
	m := f.Metrics()
	ascent := fixedToFloat(m.Ascent)
	w := math.Ceil(c.MeasureText(s, st))
	h := math.Ceil(ascent + fixedToFloat(m.Descent))
	if w <= 0 || h <= 0 {
		return
	}

	tmp := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	drawString(tmp, f, s, fixed.Point26_6{Y: floatToFixed(ascent)}, st.Color)

	// (u, v) in tmp lands at (cx - ascent + v, cy + w/2 - u).
	s2d := f64.Aff3{
		0, 1, cx - ascent,
		-1, 0, cy + w/2,
	}
	xdraw.BiLinear.Transform(c.img, s2d, tmp, tmp.Bounds(), xdraw.Over, nil)
}
