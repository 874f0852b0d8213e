package xref

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/ir/raw"
)

var header = regexp.MustCompile(`^%PDF-(\d\.\d)`)

// Issue is one structural defect.
type Issue struct {
	Object int
	Msg    string
}

func (i Issue) String() string {
	if i.Object > 0 {
		return fmt.Sprintf("object %d: %s", i.Object, i.Msg)
	}
	return i.Msg
}

// ObjectInfo describes an object listed in the xref table.
type ObjectInfo struct {
	Num    int
	Offset int64
	// Actual is where the object header was found by scanning, -1 if absent.
	Actual int64
	// StreamLength is the declared /Length for stream objects, -1 otherwise.
	StreamLength int64
}

// Report is the outcome of Verify.
type Report struct {
	Version    string
	XRefOffset int64
	Size       int
	Root       raw.ObjectRef
	Objects    []ObjectInfo
	Issues     []Issue
}

func (r *Report) OK() bool { return len(r.Issues) == 0 }

func (r *Report) addf(obj int, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Object: obj, Msg: fmt.Sprintf(format, args...)})
}

// Verify checks that data is a PDF a strict reader can open through its
// classic xref table: header, startxref, table and trailer, every in-use
// offset landing on its "N G obj" line, stream lengths, and the final
// %%EOF. The report is returned even when verification fails; the error
// then wraps ErrMalformed.
func Verify(data []byte) (*Report, error) {
	rep := &Report{XRefOffset: -1}

	if m := header.FindSubmatch(data); m != nil {
		rep.Version = string(m[1])
	} else {
		rep.addf(0, "missing %%PDF- header")
	}
	if !bytes.HasSuffix(bytes.TrimRight(data, "\r\n \t"), []byte("%%EOF")) {
		rep.addf(0, "missing %%%%EOF marker")
	}

	tbl, err := parseTable(data)
	if err != nil {
		rep.addf(0, "%v", err)
		return rep, goerr.Wrap(ErrMalformed, "verify", goerr.V("issues", len(rep.Issues)))
	}
	rep.XRefOffset = tbl.offset
	tr := tbl.trailer
	rep.Size, rep.Root = tr.Size, tr.Root

	if tr.Size != tbl.declared {
		rep.addf(0, "trailer /Size %d but xref lists %d entries", tr.Size, tbl.declared)
	}
	if _, gen, ok := tbl.Lookup(tr.Root.Num); !ok || gen != tr.Root.Gen {
		rep.addf(0, "trailer /Root %s is not an in-use xref entry", tr.Root)
	}

	found := make(map[int]located)
	for _, o := range scanObjects(data) {
		found[o.num] = o
	}
	if n := bytes.Count(data[:tbl.offset], []byte("endobj")); n < len(tbl.entries) {
		rep.addf(0, "%d endobj markers for %d objects", n, len(tbl.entries))
	}

	for _, num := range tbl.Objects() {
		off, gen, _ := tbl.Lookup(num)
		info := ObjectInfo{Num: num, Offset: off, Actual: -1, StreamLength: -1}
		if o, ok := found[num]; ok {
			info.Actual = o.offset
			if o.stream != nil {
				info.StreamLength = o.stream.declared
				switch {
				case o.stream.declared < 0:
					rep.addf(num, "stream without a direct /Length")
				case o.stream.declared != o.stream.actual:
					rep.addf(num, "stream /Length %d but %d bytes precede endstream", o.stream.declared, o.stream.actual)
				}
			}
		}
		rep.Objects = append(rep.Objects, info)

		want := []byte(fmt.Sprintf("%d %d obj", num, gen))
		if off < 0 || off >= int64(len(data)) || !bytes.HasPrefix(data[off:], want) {
			if info.Actual >= 0 {
				rep.addf(num, "xref offset %d, object found at %d", off, info.Actual)
			} else {
				rep.addf(num, "xref offset %d does not point at %q", off, want)
			}
		}
	}

	if !rep.OK() {
		return rep, goerr.Wrap(ErrMalformed, "verify", goerr.V("issues", len(rep.Issues)), goerr.V("first", rep.Issues[0].String()))
	}
	return rep, nil
}
