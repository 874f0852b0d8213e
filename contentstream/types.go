package contentstream

import "strconv"

// Operand is a content stream operand. Only the kinds emitted by the
// exporter are modelled: numbers and names.
type Operand interface {
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) Type() string { return "name" }

// Operation is an operator with the operands that precede it.
type Operation struct {
	Operator string
	Operands []Operand
}

// formatNumber renders a real with two decimals, the precision used for
// every coordinate written by the exporter.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
