package contentstream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/riskmatrix/coords"
)

type Processor interface {
	Process(stream []byte, state *GraphicsState) error
	RegisterHandler(op string, h OperatorHandler)
}

type OperatorHandler interface {
	Handle(ctx *ExecutionContext, operands []Operand) error
}

// HandlerFunc adapts a function to OperatorHandler.
type HandlerFunc func(ctx *ExecutionContext, operands []Operand) error

func (f HandlerFunc) Handle(ctx *ExecutionContext, operands []Operand) error { return f(ctx, operands) }

type ExecutionContext struct {
	GraphicsState *GraphicsState
}

type GraphicsState struct {
	CTM   coords.Matrix
	stack []coords.Matrix
}

func NewGraphicsState() *GraphicsState { return &GraphicsState{CTM: coords.Identity()} }

func (gs *GraphicsState) Save() { gs.stack = append(gs.stack, gs.CTM) }
func (gs *GraphicsState) Restore() error {
	n := len(gs.stack)
	if n == 0 {
		return errors.New("state stack empty")
	}
	gs.CTM = gs.stack[n-1]
	gs.stack = gs.stack[:n-1]
	return nil
}

type simpleProcessor struct{ handlers map[string]OperatorHandler }

func NewProcessor() Processor                                           { return &simpleProcessor{handlers: make(map[string]OperatorHandler)} }
func (p *simpleProcessor) RegisterHandler(op string, h OperatorHandler) { p.handlers[op] = h }
func (p *simpleProcessor) Process(stream []byte, state *GraphicsState) error {
	ec := &ExecutionContext{GraphicsState: state}
	opStack := []Operand{}

	for _, tok := range tokenize(string(stream)) {
		if num, err := strconv.ParseFloat(tok, 64); err == nil {
			opStack = append(opStack, NumberOperand{Value: num})
			continue
		}
		if strings.HasPrefix(tok, "/") {
			opStack = append(opStack, NameOperand{Value: strings.TrimPrefix(tok, "/")})
			continue
		}
		if h, ok := p.handlers[tok]; ok {
			if err := h.Handle(ec, opStack); err != nil {
				return fmt.Errorf("operator %s: %w", tok, err)
			}
		}
		opStack = opStack[:0]
	}

	if len(opStack) > 0 {
		return fmt.Errorf("dangling operands: %d", len(opStack))
	}
	return nil
}

// Parse splits a stream into operations without interpreting them.
func Parse(stream []byte) []Operation {
	var ops []Operation
	var operands []Operand
	for _, tok := range tokenize(string(stream)) {
		if num, err := strconv.ParseFloat(tok, 64); err == nil {
			operands = append(operands, NumberOperand{Value: num})
			continue
		}
		if strings.HasPrefix(tok, "/") {
			operands = append(operands, NameOperand{Value: strings.TrimPrefix(tok, "/")})
			continue
		}
		ops = append(ops, Operation{Operator: tok, Operands: operands})
		operands = nil
	}
	return ops
}

// Placement records the CTM in effect when an XObject was painted. The image
// occupies the unit square mapped through CTM.
type Placement struct {
	Name string
	CTM  coords.Matrix
}

// Bounds returns the painted rectangle in user space.
func (p Placement) Bounds() coords.Rect {
	ll := p.CTM.Transform(coords.Point{X: 0, Y: 0})
	ur := p.CTM.Transform(coords.Point{X: 1, Y: 1})
	return coords.Rect{X: ll.X, Y: ll.Y, Width: ur.X - ll.X, Height: ur.Y - ll.Y}
}

// Placements runs the graphics-state operators of stream and reports every
// Do with the CTM active at that point.
func Placements(stream []byte) ([]Placement, error) {
	var out []Placement
	p := NewProcessor()
	p.RegisterHandler("q", HandlerFunc(func(ctx *ExecutionContext, _ []Operand) error {
		ctx.GraphicsState.Save()
		return nil
	}))
	p.RegisterHandler("Q", HandlerFunc(func(ctx *ExecutionContext, _ []Operand) error {
		return ctx.GraphicsState.Restore()
	}))
	p.RegisterHandler("cm", HandlerFunc(func(ctx *ExecutionContext, operands []Operand) error {
		if len(operands) != 6 {
			return fmt.Errorf("expected 6 operands, got %d", len(operands))
		}
		var m coords.Matrix
		for i, op := range operands {
			n, ok := op.(NumberOperand)
			if !ok {
				return fmt.Errorf("operand %d is %s", i, op.Type())
			}
			m[i] = n.Value
		}
		ctx.GraphicsState.CTM = m.Multiply(ctx.GraphicsState.CTM)
		return nil
	}))
	p.RegisterHandler("Do", HandlerFunc(func(ctx *ExecutionContext, operands []Operand) error {
		if len(operands) != 1 {
			return fmt.Errorf("expected 1 operand, got %d", len(operands))
		}
		name, ok := operands[0].(NameOperand)
		if !ok {
			return fmt.Errorf("operand is %s", operands[0].Type())
		}
		out = append(out, Placement{Name: name.Value, CTM: ctx.GraphicsState.CTM})
		return nil
	}))
	if err := p.Process(stream, NewGraphicsState()); err != nil {
		return nil, err
	}
	return out, nil
}
