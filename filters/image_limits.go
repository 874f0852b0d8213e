package filters

import "github.com/m-mizutani/goerr/v2"

const (
	// MaxImageDimension caps width/height of any raster the exporter
	// allocates; it equals the largest canvas edge browsers accept.
	MaxImageDimension = 32767
	// MaxImagePixels bounds the total pixel count (roughly 64MP) which keeps
	// RGBA buffers under 256 MB.
	MaxImagePixels int64 = 64 * 1024 * 1024
)

// ValidateImageBounds reports whether a width x height raster may be allocated.
func ValidateImageBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return goerr.Wrap(ErrImageBounds, "image bounds invalid", goerr.V("width", width), goerr.V("height", height))
	}
	if width > MaxImageDimension || height > MaxImageDimension {
		return goerr.Wrap(ErrImageBounds, "image dimension exceeds limit", goerr.V("width", width), goerr.V("height", height))
	}
	if pixels := int64(width) * int64(height); pixels > MaxImagePixels {
		return goerr.Wrap(ErrImageBounds, "image pixel count exceeds limit", goerr.V("pixels", pixels), goerr.V("limit", MaxImagePixels))
	}
	return nil
}
