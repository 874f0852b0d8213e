package xref

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

var (
	objHeader   = regexp.MustCompile(`(\d+)[ \t]+(\d+)[ \t]+obj\b`)
	directLen   = regexp.MustCompile(`/Length\s+(\d+)(\s+\d+\s+R)?`)
	trailerDict = regexp.MustCompile(`trailer\s*(<<[^>]*>>)`)
)

// located is an object found by scanning the file body.
type located struct {
	num, gen int
	offset   int64
	stream   *streamSpan
}

type streamSpan struct {
	// declared is the direct /Length value, -1 when absent or indirect.
	declared int64
	// start is the first data byte after the stream keyword's EOL.
	start int64
	// actual is the number of bytes before the EOL preceding endstream.
	actual int64
}

// scanObjects walks the file for "N G obj" headers at line starts, stepping
// over stream data by its declared length so binary payloads are not
// mistaken for objects.
func scanObjects(data []byte) []located {
	var out []located
	pos := 0
	for pos < len(data) {
		m := objHeader.FindSubmatchIndex(data[pos:])
		if m == nil {
			break
		}
		start := pos + m[0]
		headerEnd := pos + m[1]
		if start > 0 && data[start-1] != '\n' && data[start-1] != '\r' {
			pos = headerEnd
			continue
		}
		num, _ := strconv.Atoi(string(data[pos+m[2] : pos+m[3]]))
		gen, _ := strconv.Atoi(string(data[pos+m[4] : pos+m[5]]))
		obj := located{num: num, gen: gen, offset: int64(start)}

		rest := data[headerEnd:]
		endobj := bytes.Index(rest, []byte("endobj"))
		streamKw := bytes.Index(rest, []byte("stream"))
		if streamKw >= 0 && (endobj < 0 || streamKw < endobj) {
			span, after := readStream(data, headerEnd, headerEnd+streamKw)
			obj.stream = span
			endobj = bytes.Index(data[after:], []byte("endobj"))
			if endobj >= 0 {
				endobj += after - headerEnd
			}
		}
		out = append(out, obj)
		if endobj < 0 {
			break
		}
		pos = headerEnd + endobj + len("endobj")
	}
	return out
}

// readStream measures the stream whose keyword starts at kw. It returns the
// span and the offset just past endstream (or past the declared data when
// endstream is missing).
func readStream(data []byte, dictStart, kw int) (*streamSpan, int) {
	span := &streamSpan{declared: -1}
	if m := directLen.FindSubmatch(data[dictStart:kw]); m != nil && len(m[2]) == 0 {
		if n, err := strconv.ParseInt(string(m[1]), 10, 64); err == nil {
			span.declared = n
		}
	}

	p := kw + len("stream")
	if bytes.HasPrefix(data[p:], []byte("\r\n")) {
		p += 2
	} else if p < len(data) && data[p] == '\n' {
		p++
	}
	span.start = int64(p)

	searchFrom := p
	if span.declared >= 0 && int64(p)+span.declared <= int64(len(data)) {
		searchFrom = p + int(span.declared)
	}
	end := bytes.Index(data[searchFrom:], []byte("endstream"))
	if end < 0 {
		span.actual = int64(len(data) - p)
		return span, len(data)
	}
	end += searchFrom
	dataEnd := end
	if dataEnd > p && data[dataEnd-1] == '\n' {
		dataEnd--
		if dataEnd > p && data[dataEnd-1] == '\r' {
			dataEnd--
		}
	} else if dataEnd > p && data[dataEnd-1] == '\r' {
		dataEnd--
	}
	span.actual = int64(dataEnd - p)
	return span, end + len("endstream")
}

// Repair rebuilds a table by scanning the file body instead of trusting the
// xref section. The trailer comes from the last trailer dictionary found.
func Repair(data []byte) (Table, error) {
	objs := scanObjects(data)
	if len(objs) == 0 {
		return nil, goerr.Wrap(ErrMalformed, "repair failed: no objects found")
	}
	tbl := &table{entries: make(map[int]entry, len(objs))}
	for _, o := range objs {
		tbl.entries[o.num] = entry{offset: o.offset, gen: o.gen}
	}

	if all := trailerDict.FindAllSubmatch(data, -1); len(all) > 0 {
		if tr, err := parseTrailer(string(all[len(all)-1][1])); err == nil {
			tbl.trailer = tr
		}
	}
	if tbl.trailer.Size == 0 {
		highest := 0
		for n := range tbl.entries {
			if n > highest {
				highest = n
			}
		}
		tbl.trailer.Size = highest + 1
	}
	if off, err := startXRef(data); err == nil {
		tbl.offset = off
	}
	return tbl, nil
}
