package export

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrEmptyRiskList is returned before any rendering when there is
	// nothing to report.
	ErrEmptyRiskList = goerr.New("risk list is empty")
	// ErrRenderingUnavailable means no drawing surface could be acquired.
	ErrRenderingUnavailable = goerr.New("rendering surface unavailable")
	// ErrImageEncoding means the image codec produced no data.
	ErrImageEncoding = goerr.New("image encoding failed")
)

// failure reasons used as metric labels
const (
	reasonEmptyRiskList = "empty_risk_list"
	reasonRendering     = "rendering_unavailable"
	reasonEncoding      = "image_encoding"
)
