package writer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/ir/raw"
)

// ErrObjectOrder is returned when a document's objects are not numbered
// 1..n in slice order. The xref table has one subsection and relies on it.
var ErrObjectOrder = goerr.New("objects must be numbered 1..n in order")

// Layout records where each object landed in the output.
type Layout struct {
	// Offsets[i] is the byte offset of object i+1's "N 0 obj" line.
	Offsets    []int64
	XRefOffset int64
	Size       int
	Length     int64
}

// Writer serializes a raw document with a classic xref table.
type Writer interface {
	Write(doc *raw.Document, w io.Writer) (*Layout, error)
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

type impl struct{}

func New() Writer { return impl{} }

func (impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func (w impl) Write(doc *raw.Document, out io.Writer) (*Layout, error) {
	for i, obj := range doc.Objects {
		if obj.Ref.Num != i+1 || obj.Ref.Gen != 0 {
			return nil, goerr.Wrap(ErrObjectOrder, "write document", goerr.V("index", i), goerr.V("ref", obj.Ref.String()))
		}
	}
	version := doc.Version
	if version == "" {
		version = DefaultVersion
	}

	c := NewCursor(out)
	fmt.Fprintf(c, "%%PDF-%s\n", version)

	layout := &Layout{Offsets: make([]int64, 0, len(doc.Objects)), Size: doc.Size()}
	for _, obj := range doc.Objects {
		layout.Offsets = append(layout.Offsets, c.Offset())
		data, err := w.SerializeObject(obj.Ref, obj.Body)
		if err != nil {
			return nil, goerr.Wrap(err, "serialize object", goerr.V("ref", obj.Ref.String()))
		}
		c.Write(data)
	}

	layout.XRefOffset = c.Offset()
	fmt.Fprintf(c, "xref\n0 %d\n", layout.Size)
	c.WriteString("0000000000 65535 f \n")
	for _, off := range layout.Offsets {
		fmt.Fprintf(c, "%010d 00000 n \n", off)
	}

	trailer := raw.Dict()
	trailer.Set(raw.NameLiteral("Size"), raw.NumberInt(int64(layout.Size)))
	trailer.Set(raw.NameLiteral("Root"), raw.Ref(doc.Root.Num, doc.Root.Gen))
	c.WriteString("trailer\n")
	c.Write(serializePrimitive(trailer))
	fmt.Fprintf(c, "\nstartxref\n%d\n%%%%EOF", layout.XRefOffset)

	if err := c.Err(); err != nil {
		return nil, goerr.Wrap(err, "write document")
	}
	layout.Length = c.Offset()
	return layout, nil
}
