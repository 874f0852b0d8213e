package filters

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDCTEncodeRoundTrip(t *testing.T) {
	enc := NewDCTEncoder(92)
	if enc.Name() != "DCTDecode" {
		t.Fatalf("unexpected filter name %q", enc.Name())
	}
	out, err := enc.Encode(solid(40, 30, color.RGBA{R: 0xfc, G: 0xa5, B: 0xa5, A: 0xff}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out.Width != 40 || out.Height != 30 || out.Filter != "DCTDecode" || out.ColorSpace != "DeviceRGB" || out.BitsPerComponent != 8 {
		t.Fatalf("unexpected metadata: %+v", out)
	}
	if len(out.Data) < 2 || out.Data[0] != 0xFF || out.Data[1] != 0xD8 {
		t.Fatalf("missing JPEG SOI marker")
	}
	w, h, err := ProbeDCT(out.Data)
	if err != nil || w != 40 || h != 30 {
		t.Fatalf("probe: %d x %d, %v", w, h, err)
	}
	img, err := DecodeDCT(out.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, _ := img.At(20, 15).RGBA()
	if r>>8 < 0xf0 || g>>8 < 0x98 || g>>8 > 0xb2 || b>>8 < 0x98 || b>>8 > 0xb2 {
		t.Fatalf("color drifted: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestDCTEncoderQualityFallback(t *testing.T) {
	if enc := NewDCTEncoder(0).(dctEncoder); enc.quality != DefaultQuality {
		t.Fatalf("expected default quality, got %d", enc.quality)
	}
	if enc := NewDCTEncoder(101).(dctEncoder); enc.quality != DefaultQuality {
		t.Fatalf("expected default quality, got %d", enc.quality)
	}
}

func TestDCTEncodeRejectsDegenerateInput(t *testing.T) {
	enc := NewDCTEncoder(DefaultQuality)
	if _, err := enc.Encode(nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 0, 10))); !errors.Is(err, ErrImageBounds) {
		t.Fatalf("expected ErrImageBounds, got %v", err)
	}
}

func TestDecodeDCTRejectsGarbage(t *testing.T) {
	if _, err := DecodeDCT(nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := DecodeDCT([]byte("not a jpeg")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestDownscale(t *testing.T) {
	src := solid(1400, 2000, color.White)
	out := Downscale(src, 350)
	if out.Bounds().Dx() != 350 || out.Bounds().Dy() != 500 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
	if Downscale(src, 2000) != image.Image(src) {
		t.Fatalf("narrow image should be returned unchanged")
	}
}
