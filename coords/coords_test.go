package coords

import (
	"math"
	"testing"
)

const (
	a4W = 595.28
	a4H = 841.89
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestFitCenteredTallImageClampsToHeight(t *testing.T) {
	r := FitCentered(1400, 9480, a4W, a4H, 32)
	if !almost(r.Height, a4H-64) {
		t.Fatalf("expected height clamp, got %v", r.Height)
	}
	if r.Width >= a4W-64 {
		t.Fatalf("width should shrink below %v, got %v", a4W-64, r.Width)
	}
	if !almost(r.Width/r.Height, 1400.0/9480.0) {
		t.Fatalf("aspect ratio not preserved: %v", r.Width/r.Height)
	}
	if !almost(r.X, (a4W-r.Width)/2) || !almost(r.Y, 32) {
		t.Fatalf("not centered: %+v", r)
	}
}

func TestFitCenteredWideImageClampsToWidth(t *testing.T) {
	r := FitCentered(1400, 700, a4W, a4H, 32)
	if !almost(r.Width, a4W-64) {
		t.Fatalf("expected width clamp, got %v", r.Width)
	}
	if !almost(r.Height, (a4W-64)/2) {
		t.Fatalf("unexpected height %v", r.Height)
	}
	if !almost(r.X, 32) || !almost(r.Y, (a4H-r.Height)/2) {
		t.Fatalf("not centered: %+v", r)
	}
}

func TestFitCenteredStaysInsideMargins(t *testing.T) {
	for _, h := range []float64{1, 100, 1200, 1980, 9480, 40000} {
		r := FitCentered(1400, h, a4W, a4H, 32)
		if r.X < 32-1e-9 || r.Y < 32-1e-9 || r.X+r.Width > a4W-32+1e-9 || r.Y+r.Height > a4H-32+1e-9 {
			t.Fatalf("h=%v: placement %+v leaves margins", h, r)
		}
	}
}

func TestImagePlacementMapsUnitSquare(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	m := ImagePlacement(r)
	if m != (Matrix{100, 0, 0, 50, 10, 20}) {
		t.Fatalf("unexpected matrix %v", m)
	}
	p := m.Transform(Point{X: 1, Y: 1})
	if !almost(p.X, 110) || !almost(p.Y, 70) {
		t.Fatalf("unexpected corner %+v", p)
	}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	back := inv.Transform(p)
	if !almost(back.X, 1) || !almost(back.Y, 1) {
		t.Fatalf("inverse round trip %+v", back)
	}
}
