package filters

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrImageBounds  = goerr.New("image bounds rejected")
	ErrEmptyImage   = goerr.New("codec produced no data")
	ErrInvalidImage = goerr.New("invalid encoded image")
)

// DefaultQuality mirrors a 0.92 canvas JPEG quality.
const DefaultQuality = 92

// EncodedImage is a compressed raster ready to embed as an image XObject.
type EncodedImage struct {
	Width  int
	Height int
	// Filter is the PDF filter name that decodes Data, e.g. "DCTDecode".
	Filter string
	// ColorSpace is the PDF device color space of the decoded samples.
	ColorSpace       string
	BitsPerComponent int
	Data             []byte
}

// Encoder compresses a raster into a stream a PDF filter can decode.
type Encoder interface {
	Name() string
	Encode(img image.Image) (*EncodedImage, error)
}

type dctEncoder struct{ quality int }

// NewDCTEncoder returns a baseline JPEG encoder. Quality outside 1..100 falls
// back to DefaultQuality.
func NewDCTEncoder(quality int) Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return dctEncoder{quality: quality}
}

func (dctEncoder) Name() string { return "DCTDecode" }

func (e dctEncoder) Encode(img image.Image) (*EncodedImage, error) {
	if img == nil {
		return nil, goerr.Wrap(ErrEmptyImage, "nil image")
	}
	b := img.Bounds()
	if err := ValidateImageBounds(b.Dx(), b.Dy()); err != nil {
		return nil, goerr.Wrap(err, "refusing to encode")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, goerr.Wrap(err, "jpeg encode", goerr.V("quality", e.quality))
	}
	if buf.Len() == 0 {
		return nil, goerr.Wrap(ErrEmptyImage, "jpeg encode", goerr.V("quality", e.quality))
	}
	return &EncodedImage{
		Width:            b.Dx(),
		Height:           b.Dy(),
		Filter:           e.Name(),
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             buf.Bytes(),
	}, nil
}

// DecodeDCT decodes a DCTDecode stream back into an image.
func DecodeDCT(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, goerr.Wrap(ErrEmptyImage, "empty DCT stream")
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidImage, "jpeg decode", goerr.V("error", err.Error()))
	}
	return img, nil
}

// ProbeDCT reads only the JPEG header and returns the image dimensions.
func ProbeDCT(data []byte) (width, height int, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, goerr.Wrap(ErrInvalidImage, "jpeg header", goerr.V("error", err.Error()))
	}
	return cfg.Width, cfg.Height, nil
}
