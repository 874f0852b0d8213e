package contentstream

import (
	"math"
	"testing"

	"github.com/wudi/riskmatrix/coords"
)

type testHandler struct {
	calls int
	last  []string
}

func (h *testHandler) Handle(_ *ExecutionContext, operands []Operand) error {
	h.calls++
	h.last = make([]string, len(operands))
	for i, op := range operands {
		h.last[i] = op.Type()
	}
	return nil
}

func TestProcessorDispatchesOperators(t *testing.T) {
	p := NewProcessor()
	h := &testHandler{}
	p.RegisterHandler("Do", h)

	if err := p.Process([]byte("/Im0 Do"), NewGraphicsState()); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if h.calls != 1 {
		t.Fatalf("expected handler to be called once, got %d", h.calls)
	}
	if len(h.last) != 1 || h.last[0] != "name" {
		t.Fatalf("unexpected operand types: %v", h.last)
	}
}

func TestBuilderOutput(t *testing.T) {
	got := string(NewBuilder().
		Save().
		Concat(coords.Matrix{531.28, 0, 0, 777.89, 32, 32}).
		Do("Im0").
		Restore().
		Bytes())
	want := "q\n531.28 0.00 0.00 777.89 32.00 32.00 cm\n/Im0 Do\nQ\n"
	if got != want {
		t.Fatalf("unexpected stream:\n%q\nwant\n%q", got, want)
	}
}

func TestParseGroupsOperands(t *testing.T) {
	ops := Parse([]byte("q\n1 0 0 1 5 6 cm\n/Im0 Do\nQ\n"))
	if len(ops) != 4 {
		t.Fatalf("expected 4 ops, got %d", len(ops))
	}
	if ops[1].Operator != "cm" || len(ops[1].Operands) != 6 {
		t.Fatalf("unexpected cm op: %+v", ops[1])
	}
	if ops[2].Operator != "Do" || ops[2].Operands[0].(NameOperand).Value != "Im0" {
		t.Fatalf("unexpected Do op: %+v", ops[2])
	}
}

func TestPlacementsTracksCTM(t *testing.T) {
	stream := NewBuilder().
		Save().
		Concat(coords.Translate(10, 20)).
		Concat(coords.Scale(100, 50)).
		Do("Im0").
		Restore().
		Do("Im1").
		Bytes()
	pl, err := Placements(stream)
	if err != nil {
		t.Fatalf("placements: %v", err)
	}
	if len(pl) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(pl))
	}
	b := pl[0].Bounds()
	if math.Abs(b.X-10) > 1e-9 || math.Abs(b.Y-20) > 1e-9 || math.Abs(b.Width-100) > 1e-9 || math.Abs(b.Height-50) > 1e-9 {
		t.Fatalf("unexpected bounds %+v", b)
	}
	if pl[1].CTM != coords.Identity() {
		t.Fatalf("Q should restore identity, got %v", pl[1].CTM)
	}
}

func TestPlacementsRejectsUnbalancedRestore(t *testing.T) {
	if _, err := Placements([]byte("Q")); err == nil {
		t.Fatalf("expected error for Q without q")
	}
}
