package raster

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects one of the bundled Go font cuts.
type Weight int

const (
	Regular  Weight = 400
	Medium   Weight = 500
	Semibold Weight = 600
	Bold     Weight = 700
)

type parsedFonts struct {
	regular, medium, bold *opentype.Font
}

var (
	fontsOnce sync.Once
	fontsErr  error
	fonts     parsedFonts
)

// loadFonts parses the embedded TTFs once. Parsed fonts are shared; faces
// are not (see faceCache).
func loadFonts() (parsedFonts, error) {
	fontsOnce.Do(func() {
		var err error
		if fonts.regular, err = opentype.Parse(goregular.TTF); err != nil {
			fontsErr = goerr.Wrap(err, "parse goregular")
			return
		}
		if fonts.medium, err = opentype.Parse(gomedium.TTF); err != nil {
			fontsErr = goerr.Wrap(err, "parse gomedium")
			return
		}
		if fonts.bold, err = opentype.Parse(gobold.TTF); err != nil {
			fontsErr = goerr.Wrap(err, "parse gobold")
		}
	})
	return fonts, fontsErr
}

func (p parsedFonts) forWeight(w Weight) *opentype.Font {
	switch {
	case w >= Semibold:
		return p.bold
	case w >= Medium:
		return p.medium
	default:
		return p.regular
	}
}

type faceKey struct {
	weight Weight
	size   float64
}

// faceCache owns the faces of one render call. font.Face values keep glyph
// buffers and must not be shared across goroutines.
type faceCache struct {
	fonts parsedFonts
	faces map[faceKey]font.Face
}

func newFaceCache() (*faceCache, error) {
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &faceCache{fonts: f, faces: make(map[faceKey]font.Face)}, nil
}

// face returns a face where 1pt equals 1px.
func (c *faceCache) face(w Weight, size float64) (font.Face, error) {
	key := faceKey{weight: w, size: size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.fonts.forWeight(w), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "create font face", goerr.V("weight", int(w)), goerr.V("size", size))
	}
	c.faces[key] = f
	return f, nil
}

func (c *faceCache) Close() {
	for k, f := range c.faces {
		_ = f.Close()
		delete(c.faces, k)
	}
}
