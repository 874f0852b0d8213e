package matrix_test

import (
	"image/color"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/wudi/riskmatrix/matrix"
)

var familyRank = map[string]int{"emerald": 0, "lime": 1, "amber": 2, "orange": 3, "red": 4}

func TestSeverityPalettesAgree(t *testing.T) {
	hexByRank := map[string]int{}
	for row := 0; row < matrix.Rows; row++ {
		for col := 0; col < matrix.Columns; col++ {
			rank := matrix.SeverityRank(row, col)
			family := strings.SplitN(strings.TrimPrefix(matrix.SeverityClass(row, col), "bg-"), "-", 2)[0]
			gt.Number(t, familyRank[family]).Equal(rank)

			hex := matrix.SeverityHex(row, col)
			if prev, ok := hexByRank[hex]; ok {
				gt.Number(t, prev).Equal(rank)
			}
			hexByRank[hex] = rank
		}
	}
}

func TestSeverityIncreasesWithProbabilityAndImpact(t *testing.T) {
	for row := 0; row < matrix.Rows; row++ {
		for col := 1; col < matrix.Columns; col++ {
			gt.Bool(t, matrix.SeverityRank(row, col) >= matrix.SeverityRank(row, col-1)).True()
		}
	}
	for col := 0; col < matrix.Columns; col++ {
		for row := 1; row < matrix.Rows; row++ {
			gt.Bool(t, matrix.SeverityRank(row, col) <= matrix.SeverityRank(row-1, col)).True()
		}
	}
}

func TestSeverityFallbacks(t *testing.T) {
	gt.Value(t, matrix.SeverityClass(5, 0)).Equal(matrix.FallbackClass)
	gt.Value(t, matrix.SeverityHex(0, -1)).Equal(matrix.FallbackHex)
	gt.Number(t, matrix.SeverityRank(-1, 0)).Equal(-1)
}

func TestParseHex(t *testing.T) {
	c, ok := matrix.ParseHex("#fca5a5")
	gt.Bool(t, ok).True()
	gt.Value(t, c).Equal(color.NRGBA{R: 0xfc, G: 0xa5, B: 0xa5, A: 0xff})

	c, ok = matrix.ParseHex("#1118271f")
	gt.Bool(t, ok).True()
	gt.Value(t, c).Equal(color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0x1f})

	c, ok = matrix.ParseHex("#fff")
	gt.Bool(t, ok).True()
	gt.Value(t, c).Equal(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	_, ok = matrix.ParseHex("#zzzzzz")
	gt.Bool(t, ok).False()
	_, ok = matrix.ParseHex("#12345")
	gt.Bool(t, ok).False()

	gt.Value(t, matrix.SeverityColor(0, 2)).Equal(color.NRGBA{R: 0xfc, G: 0xa5, B: 0xa5, A: 0xff})
}
