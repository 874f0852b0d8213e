package cli

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/contentstream"
	"github.com/wudi/riskmatrix/coords"
	"github.com/wudi/riskmatrix/filters"
	"github.com/wudi/riskmatrix/xref"
)

// placementTolerance absorbs the two-decimal rounding of cm operands.
const placementTolerance = 0.01

var (
	pageType  = regexp.MustCompile(`/Type\s*/Page\b`)
	mediaBox  = regexp.MustCompile(`/MediaBox\s*\[([^\]]*)\]`)
	contents  = regexp.MustCompile(`/Contents\s+(\d+)\s+\d+\s+R`)
	filterKey = regexp.MustCompile(`/Filter\s*/(\w+)`)
)

// inspectPage checks what a reader renders from an exported file: the page
// content only uses q, cm, Do and Q; every painted image is a DCT XObject
// whose JPEG matches its /Width and /Height, decodes, keeps its aspect ratio
// and stays inside the MediaBox shrunk by margin.
func inspectPage(ctx context.Context, data []byte, margin float64) ([]string, error) {
	tbl, err := xref.NewResolver().Resolve(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	page, err := findPage(data, tbl)
	if err != nil {
		return nil, err
	}

	var issues []string
	addf := func(format string, args ...any) { issues = append(issues, fmt.Sprintf(format, args...)) }

	box, ok := parseNumbers(mediaBox, page.Dict)
	if !ok || len(box) != 4 {
		addf("page %d has no usable /MediaBox", page.Num)
		return issues, nil
	}
	m := contents.FindStringSubmatch(page.Dict)
	if m == nil {
		addf("page %d has no /Contents reference", page.Num)
		return issues, nil
	}
	num, _ := strconv.Atoi(m[1])
	content, err := xref.ReadObject(data, tbl, num)
	if err != nil {
		return nil, err
	}

	for _, op := range contentstream.Parse(content.Stream) {
		switch op.Operator {
		case "q", "Q", "cm", "Do":
		default:
			addf("content stream uses unexpected operator %q", op.Operator)
		}
	}
	placements, err := contentstream.Placements(content.Stream)
	if err != nil {
		addf("content stream: %v", err)
		return issues, nil
	}
	if len(placements) == 0 {
		addf("page paints no image")
	}

	inner := coords.Rect{
		X:      box[0] + margin,
		Y:      box[1] + margin,
		Width:  box[2] - box[0] - 2*margin,
		Height: box[3] - box[1] - 2*margin,
	}
	for _, p := range placements {
		if _, err := p.CTM.Inverse(); err != nil {
			addf("image %s has a degenerate placement", p.Name)
			continue
		}
		b := p.Bounds()
		if !inside(b, inner) {
			addf("image %s at %.2f %.2f (%.2f x %.2f) leaves the %.2f pt margin", p.Name, b.X, b.Y, b.Width, b.Height, margin)
		}

		ref := regexp.MustCompile(`/` + regexp.QuoteMeta(p.Name) + `\s+(\d+)\s+\d+\s+R`).FindStringSubmatch(page.Dict)
		if ref == nil {
			addf("image %s is not in the page resources", p.Name)
			continue
		}
		imgNum, _ := strconv.Atoi(ref[1])
		img, err := xref.ReadObject(data, tbl, imgNum)
		if err != nil {
			return nil, err
		}
		checkImage(p.Name, img, b, addf)
	}
	return issues, nil
}

func checkImage(name string, img *xref.Object, painted coords.Rect, addf func(string, ...any)) {
	if f := filterKey.FindStringSubmatch(img.Dict); f == nil || f[1] != "DCTDecode" {
		addf("image %s is not DCTDecode", name)
		return
	}
	w, okW := dictInt(img.Dict, "Width")
	h, okH := dictInt(img.Dict, "Height")
	if !okW || !okH {
		addf("image %s lacks /Width or /Height", name)
		return
	}
	pw, ph, err := filters.ProbeDCT(img.Stream)
	if err != nil {
		addf("image %s: %v", name, err)
		return
	}
	if pw != w || ph != h {
		addf("image %s declares %dx%d but holds a %dx%d JPEG", name, w, h, pw, ph)
	}
	if _, err := filters.DecodeDCT(img.Stream); err != nil {
		addf("image %s does not decode: %v", name, err)
	}
	if w > 0 && h > 0 && painted.Height > 0 {
		want := float64(w) / float64(h)
		got := painted.Width / painted.Height
		if math.Abs(got-want)/want > 0.01 {
			addf("image %s is painted at ratio %.3f, pixels are %.3f", name, got, want)
		}
	}
}

func findPage(data []byte, tbl xref.Table) (*xref.Object, error) {
	for _, num := range tbl.Objects() {
		obj, err := xref.ReadObject(data, tbl, num)
		if err != nil {
			return nil, err
		}
		if pageType.MatchString(obj.Dict) {
			return obj, nil
		}
	}
	return nil, goerr.Wrap(xref.ErrMalformed, "no page object")
}

func inside(b, box coords.Rect) bool {
	return b.X >= box.X-placementTolerance &&
		b.Y >= box.Y-placementTolerance &&
		b.X+b.Width <= box.X+box.Width+placementTolerance &&
		b.Y+b.Height <= box.Y+box.Height+placementTolerance
}

func parseNumbers(re *regexp.Regexp, dict string) ([]float64, bool) {
	m := re.FindStringSubmatch(dict)
	if m == nil {
		return nil, false
	}
	var out []float64
	for _, f := range strings.Fields(m[1]) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func dictInt(dict, key string) (int, bool) {
	m := regexp.MustCompile(`/` + key + `\s+(\d+)`).FindStringSubmatch(dict)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
