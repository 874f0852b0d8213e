package raster

import "image/color"

const (
	DefaultWidth = 1400

	// BaseHeight fits the header, the grid and BaselineRisks listing entries.
	BaseHeight    = 1200
	BaselineRisks = 4
	// HeightPerRisk is added for every risk beyond BaselineRisks.
	HeightPerRisk = 180

	margin       = 96
	headerHeight = 160
	// axisGap keeps the column captions clear of a long description.
	axisGap    = 80
	gridHeight = 560
	rowGutter  = 200
	cellInset  = 4
	cellRadius = 18
	cellStroke = 2

	// MinWidth leaves at least one pixel per grid column.
	MinWidth = 2*margin + rowGutter + 3
)

// CanvasHeight is the minimum canvas height for n risks. It grows
// monotonically with n.
func CanvasHeight(n int) int {
	extra := n - BaselineRisks
	if extra < 0 {
		extra = 0
	}
	return BaseHeight + extra*HeightPerRisk
}

var (
	inkTitle   = color.NRGBA{0x0f, 0x17, 0x2a, 0xff}
	inkBody    = color.NRGBA{0x1f, 0x29, 0x37, 0xff}
	inkMeta    = color.NRGBA{0x33, 0x41, 0x55, 0xff}
	inkCount   = color.NRGBA{0x11, 0x18, 0x27, 0xff}
	inkEmpty   = color.NRGBA{0x6b, 0x72, 0x80, 0xff}
	cellBorder = color.NRGBA{0x11, 0x18, 0x27, 0x1f}
)

var (
	titleStyle       = TextStyle{Weight: Bold, Size: 42, Color: inkTitle, Baseline: BaselineTop}
	labelStyle       = TextStyle{Weight: Medium, Size: 22, Color: inkTitle, Baseline: BaselineTop}
	descriptionStyle = TextStyle{Weight: Regular, Size: 20, Color: inkBody, Baseline: BaselineTop}
	axisStyle        = TextStyle{Weight: Bold, Size: 26, Color: inkTitle, Align: AlignCenter}
	columnStyle      = TextStyle{Weight: Semibold, Size: 22, Color: inkTitle, Align: AlignCenter}
	rowStyle         = TextStyle{Weight: Semibold, Size: 22, Color: inkTitle, Align: AlignRight}
	countStyle       = TextStyle{Weight: Bold, Size: 34, Color: inkCount, Align: AlignCenter, Baseline: BaselineMiddle}
	captionStyle     = TextStyle{Weight: Regular, Size: 18, Color: inkBody, Align: AlignCenter, Baseline: BaselineMiddle}
	emptyStyle       = TextStyle{Weight: Medium, Size: 24, Color: inkEmpty, Align: AlignCenter, Baseline: BaselineMiddle}
	sectionStyle     = TextStyle{Weight: Bold, Size: 32, Color: inkTitle}
	riskTitleStyle   = TextStyle{Weight: Semibold, Size: 22, Color: inkTitle}
	riskMetaStyle    = TextStyle{Weight: Medium, Size: 18, Color: inkMeta}
	riskBodyStyle    = TextStyle{Weight: Regular, Size: 18, Color: inkBody}
)

const (
	titleText       = "Matriz de Riscos"
	descriptionText = "Descrição do Objeto"
	impactAxisText  = "Impacto →"
	probAxisText    = "Probabilidade ↑"
	detailsText     = "Detalhamento dos riscos"
	emptyCellGlyph  = "—"
)

func cellCaption(n int) string {
	if n == 1 {
		return "risco"
	}
	return "riscos"
}
