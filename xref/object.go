package xref

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Object is an indirect object read at the offset its xref entry gives.
type Object struct {
	Num, Gen int
	// Dict is the object body before any stream keyword, trimmed.
	Dict string
	// Stream holds the stream data, nil for objects without one.
	Stream []byte
}

// ReadObject reads object num of data through tbl. Stream data is cut by
// the direct /Length when it fits the file, otherwise at endstream.
func ReadObject(data []byte, tbl Table, num int) (*Object, error) {
	off, gen, ok := tbl.Lookup(num)
	if !ok {
		return nil, goerr.Wrap(ErrMalformed, "object not in xref", goerr.V("object", num))
	}
	if off < 0 || off >= int64(len(data)) {
		return nil, goerr.Wrap(ErrMalformed, "xref offset out of range", goerr.V("object", num), goerr.V("offset", off))
	}

	m := objHeader.FindSubmatchIndex(data[off:])
	if m == nil || m[0] != 0 {
		return nil, goerr.Wrap(ErrMalformed, "no object header at xref offset", goerr.V("object", num), goerr.V("offset", off))
	}
	rest := data[off:]
	gotNum, _ := strconv.Atoi(string(rest[m[2]:m[3]]))
	gotGen, _ := strconv.Atoi(string(rest[m[4]:m[5]]))
	if gotNum != num || gotGen != gen {
		return nil, goerr.Wrap(ErrMalformed, "xref offset points at another object",
			goerr.V("object", num), goerr.V("found", gotNum), goerr.V("gen", gotGen))
	}

	bodyStart := int(off) + m[1]
	body := data[bodyStart:]
	obj := &Object{Num: num, Gen: gen}
	endobj := bytes.Index(body, []byte("endobj"))
	streamKw := bytes.Index(body, []byte("stream"))
	if streamKw >= 0 && (endobj < 0 || streamKw < endobj) {
		obj.Dict = strings.TrimSpace(string(body[:streamKw]))
		span, _ := readStream(data, bodyStart, bodyStart+streamKw)
		n := span.actual
		if span.declared >= 0 && span.start+span.declared <= int64(len(data)) {
			n = span.declared
		}
		obj.Stream = data[span.start : span.start+n]
		return obj, nil
	}
	if endobj < 0 {
		return nil, goerr.Wrap(ErrMalformed, "endobj missing", goerr.V("object", num))
	}
	obj.Dict = strings.TrimSpace(string(body[:endobj]))
	return obj, nil
}
