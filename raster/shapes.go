package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

type roundRect struct {
	x, y, w, h, r float64
}

func (rr roundRect) clampRadius() roundRect {
	limit := math.Min(rr.w, rr.h) / 2
	if rr.r > limit {
		rr.r = limit
	}
	if rr.r < 0 {
		rr.r = 0
	}
	return rr
}

// trace appends the outline to z, offset by (ox, oy). Reverse flips the
// winding so a second call can punch a hole.
func (rr roundRect) trace(z *vector.Rasterizer, ox, oy float64, reverse bool) {
	x0, y0 := float32(rr.x-ox), float32(rr.y-oy)
	x1, y1 := float32(rr.x+rr.w-ox), float32(rr.y+rr.h-oy)
	r := float32(rr.r)
	k := float32(kappa) * r

	if !reverse {
		z.MoveTo(x0+r, y0)
		z.LineTo(x1-r, y0)
		z.CubeTo(x1-r+k, y0, x1, y0+r-k, x1, y0+r)
		z.LineTo(x1, y1-r)
		z.CubeTo(x1, y1-r+k, x1-r+k, y1, x1-r, y1)
		z.LineTo(x0+r, y1)
		z.CubeTo(x0+r-k, y1, x0, y1-r+k, x0, y1-r)
		z.LineTo(x0, y0+r)
		z.CubeTo(x0, y0+r-k, x0+r-k, y0, x0+r, y0)
		z.ClosePath()
		return
	}
	z.MoveTo(x0+r, y0)
	z.CubeTo(x0+r-k, y0, x0, y0+r-k, x0, y0+r)
	z.LineTo(x0, y1-r)
	z.CubeTo(x0, y1-r+k, x0+r-k, y1, x0+r, y1)
	z.LineTo(x1-r, y1)
	z.CubeTo(x1-r+k, y1, x1, y1-r+k, x1, y1-r)
	z.LineTo(x1, y0+r)
	z.CubeTo(x1, y0+r-k, x1-r+k, y0, x1-r, y0)
	z.ClosePath()
}

func (rr roundRect) bounds(pad float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(rr.x-pad)), int(math.Floor(rr.y-pad)),
		int(math.Ceil(rr.x+rr.w+pad)), int(math.Ceil(rr.y+rr.h+pad)),
	)
}

// FillRoundRect paints a rounded rectangle.
func (c *Canvas) FillRoundRect(x, y, w, h, radius float64, col color.Color) {
	if c.img == nil || w <= 0 || h <= 0 {
		return
	}
	rr := roundRect{x, y, w, h, radius}.clampRadius()
	b := rr.bounds(1)
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	rr.trace(z, float64(b.Min.X), float64(b.Min.Y), false)
	c.paintMask(z, b, col)
}

// StrokeRoundRect outlines a rounded rectangle with a line of the given
// width centred on its edge.
func (c *Canvas) StrokeRoundRect(x, y, w, h, radius, lineWidth float64, col color.Color) {
	if c.img == nil || w <= 0 || h <= 0 || lineWidth <= 0 {
		return
	}
	half := lineWidth / 2
	outer := roundRect{x - half, y - half, w + lineWidth, h + lineWidth, radius + half}.clampRadius()
	inner := roundRect{x + half, y + half, w - lineWidth, h - lineWidth, radius - half}.clampRadius()
	b := outer.bounds(1)
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	outer.trace(z, ox, oy, false)
	if inner.w > 0 && inner.h > 0 {
		inner.trace(z, ox, oy, true)
	}
	c.paintMask(z, b, col)
}

// paintMask rasterizes z into a coverage mask and composites it at b,
// clipped to the canvas.
func (c *Canvas) paintMask(z *vector.Rasterizer, b image.Rectangle, col color.Color) {
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(c.img, b, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}
