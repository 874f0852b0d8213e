package matrix

import (
	"image/color"
	"strconv"
	"strings"
)

// Fallbacks for coordinates outside the grid.
const (
	FallbackClass = "bg-muted border-border text-foreground"
	FallbackHex   = "#e5e7eb"
)

// severityRank orders cells from 0 (mildest) to 4 (most severe). Both
// palettes below must agree with it.
var severityRank = [Rows][Columns]int{
	{2, 3, 4},
	{1, 2, 4},
	{0, 1, 3},
}

var severityClasses = [Rows][Columns]string{
	{
		"bg-amber-200 border-amber-300 text-amber-900",
		"bg-orange-200 border-orange-300 text-orange-900",
		"bg-red-200 border-red-300 text-red-900",
	},
	{
		"bg-lime-200 border-lime-300 text-lime-900",
		"bg-amber-200 border-amber-300 text-amber-900",
		"bg-red-200 border-red-300 text-red-900",
	},
	{
		"bg-emerald-100 border-emerald-200 text-emerald-900",
		"bg-lime-100 border-lime-200 text-lime-900",
		"bg-orange-200 border-orange-300 text-orange-900",
	},
}

var severityHex = [Rows][Columns]string{
	{"#fde68a", "#fdba74", "#fca5a5"},
	{"#d9f99d", "#fde68a", "#f87171"},
	{"#bbf7d0", "#d9f99d", "#fdba74"},
}

// SeverityRank returns the cell's severity rank, or -1 outside the grid.
func SeverityRank(row, col int) int {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return -1
	}
	return severityRank[row][col]
}

// SeverityClass returns the UI utility classes for a cell.
func SeverityClass(row, col int) string {
	if SeverityRank(row, col) < 0 {
		return FallbackClass
	}
	return severityClasses[row][col]
}

// SeverityHex returns the raster fill color for a cell.
func SeverityHex(row, col int) string {
	if SeverityRank(row, col) < 0 {
		return FallbackHex
	}
	return severityHex[row][col]
}

// SeverityColor is SeverityHex parsed for drawing.
func SeverityColor(row, col int) color.NRGBA {
	c, _ := ParseHex(SeverityHex(row, col))
	return c
}

// ParseHex parses #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}
