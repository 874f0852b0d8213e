package writer

import "io"

// Cursor is a sink that knows its own length. Offsets recorded from it are
// byte positions from the start of the output.
type Cursor struct {
	w   io.Writer
	n   int64
	err error
}

func NewCursor(w io.Writer) *Cursor { return &Cursor{w: w} }

// Write forwards p and advances the offset by the bytes accepted. After the
// first error every call is a no-op returning that error.
func (c *Cursor) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	c.err = err
	return n, err
}

func (c *Cursor) WriteString(s string) (int, error) { return c.Write([]byte(s)) }

// Offset is the number of bytes written so far.
func (c *Cursor) Offset() int64 { return c.n }

func (c *Cursor) Err() error { return c.err }
