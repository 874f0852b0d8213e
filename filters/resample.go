package filters

import (
	"image"

	"golang.org/x/image/draw"
)

// Downscale shrinks img to at most maxWidth pixels wide, keeping aspect
// ratio. Images already narrow enough are returned unchanged.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	targetW := maxWidth
	targetH := b.Dy() * maxWidth / b.Dx()
	if targetH < 1 {
		targetH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
