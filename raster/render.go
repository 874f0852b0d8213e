package raster

import (
	"fmt"
	"image"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/matrix"
	"github.com/wudi/riskmatrix/risk"
	"github.com/wudi/riskmatrix/scale"
)

// Options configures a Renderer.
type Options struct {
	// Width of the canvas in pixels. Zero selects DefaultWidth.
	Width int
}

// Renderer draws the heatmap report. It holds no per-call state and is safe
// for concurrent use.
type Renderer struct {
	width int
}

func NewRenderer(opts Options) (*Renderer, error) {
	w := opts.Width
	if w == 0 {
		w = DefaultWidth
	}
	if w < MinWidth {
		return nil, goerr.Wrap(ErrSurfaceUnavailable, "canvas too narrow", goerr.V("width", w), goerr.V("min", MinWidth))
	}
	return &Renderer{width: w}, nil
}

func (r *Renderer) Width() int { return r.width }

// Height returns the canvas height Render will use for the given input.
func (r *Renderer) Height(description string, risks []risk.Risk) (int, error) {
	mc, err := newMeasureCanvas()
	if err != nil {
		return 0, err
	}
	defer mc.Close()

	bottom := r.layout(mc, description, risks, matrix.Distribute(risks))
	if err := mc.Err(); err != nil {
		return 0, goerr.Wrap(ErrSurfaceUnavailable, "measure layout", goerr.V("cause", err.Error()))
	}
	h := CanvasHeight(len(risks))
	if need := int(bottom) + margin; need > h {
		h = need
	}
	return h, nil
}

// Render lays out the title, the description, the 3x3 grid and the risk
// listing on a white canvas. The canvas is at least CanvasHeight(len(risks))
// tall and grows further when wrapped text needs the room.
func (r *Renderer) Render(description string, risks []risk.Risk) (*image.RGBA, error) {
	h, err := r.Height(description, risks)
	if err != nil {
		return nil, err
	}
	c, err := NewCanvas(r.width, h)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	r.layout(c, description, risks, matrix.Distribute(risks))
	if err := c.Err(); err != nil {
		return nil, goerr.Wrap(ErrSurfaceUnavailable, "draw layout", goerr.V("cause", err.Error()))
	}
	return c.Image(), nil
}

// layout draws the report on c and returns the y just below the listing.
func (r *Renderer) layout(c *Canvas, description string, risks []risk.Risk, g *matrix.Grid) float64 {
	contentWidth := float64(r.width - 2*margin)

	c.FillText(titleText, margin, margin, titleStyle)
	c.FillText(descriptionText, margin, margin+64, labelStyle)
	y := c.WrapText(description, margin, margin+96, contentWidth, 28, descriptionStyle)

	gridY := float64(margin + headerHeight)
	if y+axisGap > gridY {
		gridY = y + axisGap
	}
	r.drawGrid(c, g, gridY)

	y = gridY + gridHeight + 72
	c.FillText(detailsText, margin, y, sectionStyle)
	y += 48

	for i, rk := range risks {
		y = c.WrapText(fmt.Sprintf("%d. %s", i+1, rk.Description), margin, y, contentWidth, 30, riskTitleStyle)
		meta := fmt.Sprintf("Probabilidade: %s   |   Impacto: %s", rk.ProbabilityLabel(), rk.ImpactLabel())
		y = c.WrapText(meta, margin, y, contentWidth, 26, riskMetaStyle)
		y = c.WrapText("Mitigação: "+rk.Mitigation, margin, y, contentWidth, 26, riskBodyStyle)
		y += 28
	}
	return y
}

func (r *Renderer) drawGrid(c *Canvas, g *matrix.Grid, gridY float64) {
	gridX := float64(margin + rowGutter)
	gridWidth := float64(r.width - 2*margin - rowGutter)
	cellW := gridWidth / float64(matrix.Columns)
	cellH := float64(gridHeight) / float64(matrix.Rows)

	c.FillText(impactAxisText, gridX+gridWidth/2, gridY-54, axisStyle)
	c.FillTextVertical(probAxisText, margin+64, gridY+gridHeight/2, axisStyle)

	for col, level := range scale.ImpactLevels {
		c.FillText(level.Label(), gridX+float64(col)*cellW+cellW/2, gridY-24, columnStyle)
	}
	for row, level := range scale.ProbabilityLevels {
		c.FillText(level.Label(), gridX-24, gridY+float64(row)*cellH+cellH/2-12, rowStyle)
	}

	for row := 0; row < matrix.Rows; row++ {
		for col := 0; col < matrix.Columns; col++ {
			x := gridX + float64(col)*cellW
			y := gridY + float64(row)*cellH
			bx, by := x+cellInset, y+cellInset
			bw, bh := cellW-2*cellInset, cellH-2*cellInset
			c.FillRoundRect(bx, by, bw, bh, cellRadius, matrix.SeverityColor(row, col))
			c.StrokeRoundRect(bx, by, bw, bh, cellRadius, cellStroke, cellBorder)

			cx, cy := x+cellW/2, y+cellH/2
			n := g.Count(row, col)
			if n == 0 {
				c.FillText(emptyCellGlyph, cx, cy-12, emptyStyle)
				continue
			}
			c.FillText(strconv.Itoa(n), cx, cy-12, countStyle)
			c.FillText(cellCaption(n), cx, cy+16, captionStyle)
		}
	}
}
