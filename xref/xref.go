package xref

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/ir/raw"
)

// ErrMalformed marks a file whose classic xref structure cannot be trusted.
var ErrMalformed = goerr.New("malformed pdf structure")

// Trailer holds the trailer keys the verifier cares about.
type Trailer struct {
	Size int
	Root raw.ObjectRef
}

// Table holds object offsets for a classic xref table.
type Table interface {
	Lookup(objNum int) (offset int64, gen int, found bool)
	Objects() []int
	Trailer() Trailer
	// Offset is where the "xref" keyword starts.
	Offset() int64
	Type() string
}

// Resolver locates and parses xref information in a PDF.
type Resolver interface {
	Resolve(ctx context.Context, r io.ReaderAt) (Table, error)
}

// NewResolver returns a classic-table resolver. Cross-reference streams and
// incremental updates are not followed.
func NewResolver() Resolver {
	return &tableResolver{}
}

type tableResolver struct{}

func (t *tableResolver) Resolve(ctx context.Context, r io.ReaderAt) (Table, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}
	return parseTable(data)
}

// startXRef returns the offset after the last startxref keyword.
func startXRef(data []byte) (int64, error) {
	pos := bytes.LastIndex(data, []byte("startxref"))
	if pos < 0 {
		return 0, goerr.Wrap(ErrMalformed, "startxref not found")
	}
	sc := bufio.NewScanner(bytes.NewReader(data[pos+len("startxref"):]))
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		val, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, goerr.Wrap(ErrMalformed, "parse startxref", goerr.V("value", text))
		}
		if val <= 0 || val >= int64(len(data)) {
			return 0, goerr.Wrap(ErrMalformed, "xref offset out of range", goerr.V("offset", val), goerr.V("size", len(data)))
		}
		return val, nil
	}
	return 0, goerr.Wrap(ErrMalformed, "startxref without offset")
}

func parseTable(data []byte) (*table, error) {
	offset, err := startXRef(data)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(bytes.NewReader(data[offset:]))
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "xref" {
		return nil, goerr.Wrap(ErrMalformed, "xref keyword not found at offset", goerr.V("offset", offset))
	}

	tbl := &table{entries: make(map[int]entry), offset: offset}
	var trailerText strings.Builder
	inTrailer := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if inTrailer {
			if strings.HasPrefix(line, "startxref") {
				break
			}
			trailerText.WriteString(line)
			trailerText.WriteByte(' ')
			continue
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "trailer") {
			inTrailer = true
			trailerText.WriteString(strings.TrimPrefix(line, "trailer"))
			trailerText.WriteByte(' ')
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, goerr.Wrap(ErrMalformed, "invalid xref subsection header", goerr.V("line", line))
		}
		startObj, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, goerr.Wrap(ErrMalformed, "parse xref start", goerr.V("line", line))
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil || count < 0 {
			return nil, goerr.Wrap(ErrMalformed, "parse xref count", goerr.V("line", line))
		}

		for i := 0; i < count; i++ {
			if !sc.Scan() {
				return nil, goerr.Wrap(ErrMalformed, "unexpected end of xref section")
			}
			entryLine := sc.Text()
			fields := strings.Fields(entryLine)
			if len(fields) != 3 {
				return nil, goerr.Wrap(ErrMalformed, "invalid xref entry", goerr.V("line", entryLine))
			}
			off, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, goerr.Wrap(ErrMalformed, "parse xref offset", goerr.V("line", entryLine))
			}
			gen, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, goerr.Wrap(ErrMalformed, "parse xref gen", goerr.V("line", entryLine))
			}
			switch fields[2] {
			case "n":
				tbl.entries[startObj+i] = entry{offset: off, gen: gen}
			case "f":
			default:
				return nil, goerr.Wrap(ErrMalformed, "invalid xref entry type", goerr.V("line", entryLine))
			}
			tbl.declared++
		}
	}
	if !inTrailer {
		return nil, goerr.Wrap(ErrMalformed, "trailer not found")
	}
	tr, err := parseTrailer(trailerText.String())
	if err != nil {
		return nil, err
	}
	tbl.trailer = tr
	return tbl, nil
}

// parseTrailer reads /Size and /Root from a flat trailer dictionary.
func parseTrailer(s string) (Trailer, error) {
	s = strings.NewReplacer("<<", " << ", ">>", " >> ", "/", " /").Replace(s)
	toks := strings.Fields(s)
	if len(toks) < 2 || toks[0] != "<<" {
		return Trailer{}, goerr.Wrap(ErrMalformed, "trailer is not a dictionary", goerr.V("trailer", s))
	}

	var tr Trailer
	var haveSize, haveRoot bool
	for i := 1; i < len(toks); i++ {
		switch toks[i] {
		case "/Size":
			if i+1 >= len(toks) {
				break
			}
			n, err := strconv.Atoi(toks[i+1])
			if err != nil {
				return Trailer{}, goerr.Wrap(ErrMalformed, "parse trailer /Size", goerr.V("value", toks[i+1]))
			}
			tr.Size, haveSize = n, true
		case "/Root":
			if i+3 >= len(toks) || toks[i+3] != "R" {
				return Trailer{}, goerr.Wrap(ErrMalformed, "trailer /Root is not a reference")
			}
			num, err1 := strconv.Atoi(toks[i+1])
			gen, err2 := strconv.Atoi(toks[i+2])
			if err1 != nil || err2 != nil {
				return Trailer{}, goerr.Wrap(ErrMalformed, "parse trailer /Root")
			}
			tr.Root, haveRoot = raw.ObjectRef{Num: num, Gen: gen}, true
		}
	}
	if !haveSize {
		return Trailer{}, goerr.Wrap(ErrMalformed, "trailer missing /Size")
	}
	if !haveRoot {
		return Trailer{}, goerr.Wrap(ErrMalformed, "trailer missing /Root")
	}
	return tr, nil
}

type entry struct {
	offset int64
	gen    int
}

type table struct {
	entries  map[int]entry
	declared int
	trailer  Trailer
	offset   int64
}

func (t *table) Lookup(objNum int) (int64, int, bool) {
	e, ok := t.entries[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

func (t *table) Objects() []int {
	out := make([]int, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func (t *table) Trailer() Trailer { return t.trailer }
func (t *table) Offset() int64    { return t.offset }
func (t *table) Type() string     { return "table" }

func readAll(ctx context.Context, r io.ReaderAt) ([]byte, error) {
	var buf bytes.Buffer
	const chunk = int64(32 * 1024)
	tmp := make([]byte, chunk)
	for off := int64(0); ; off += chunk {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "read pdf")
		}
		n, err := r.ReadAt(tmp, off)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err == io.EOF || int64(n) < chunk {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "read pdf", goerr.V("offset", off))
		}
	}
	return buf.Bytes(), nil
}
