package contentstream

import (
	"bytes"

	"github.com/wudi/riskmatrix/coords"
)

// Builder accumulates content stream operators, one per line.
type Builder struct {
	buf bytes.Buffer
}

func NewBuilder() *Builder { return &Builder{} }

// Save emits q.
func (b *Builder) Save() *Builder {
	b.buf.WriteString("q\n")
	return b
}

// Restore emits Q.
func (b *Builder) Restore() *Builder {
	b.buf.WriteString("Q\n")
	return b
}

// Concat emits "a b c d e f cm".
func (b *Builder) Concat(m coords.Matrix) *Builder {
	for _, v := range m {
		b.buf.WriteString(formatNumber(v))
		b.buf.WriteByte(' ')
	}
	b.buf.WriteString("cm\n")
	return b
}

// Do paints the named XObject.
func (b *Builder) Do(name string) *Builder {
	b.buf.WriteString("/" + name + " Do\n")
	return b
}

// Bytes returns the accumulated stream. The slice is owned by the caller.
func (b *Builder) Bytes() []byte {
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}
