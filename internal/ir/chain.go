package ir

// TopOperator returns the index into c.Ops of the operator to bracket next:
// the first operator of maximum precedence, or the last one when that
// precedence is right-associative ("^").
//
// Returns -1 if c has no operators.
func (c Chain) TopOperator() int {
	best, bestPrec := -1, 0
	for i, op := range c.Ops {
		p := op.Precedence()
		switch {
		case p > bestPrec:
			best, bestPrec = i, p
		case p == bestPrec && op.RightAssociative():
			best = i
		}
	}
	return best
}

// Bracket groups the operator chosen by TopOperator with its two operands
// and returns the shorter chain. A chain with fewer than two operators is
// returned unchanged.
func (c Chain) Bracket() Chain {
	if len(c.Ops) < 2 {
		return c
	}
	i := c.TopOperator()
	grouped := Group{Inner: Binary{Op: c.Ops[i], Left: c.Operands[i], Right: c.Operands[i+1]}}

	operands := make([]Node, 0, len(c.Operands)-1)
	operands = append(operands, c.Operands[:i]...)
	operands = append(operands, grouped)
	operands = append(operands, c.Operands[i+2:]...)

	ops := make([]Op, 0, len(c.Ops)-1)
	ops = append(ops, c.Ops[:i]...)
	ops = append(ops, c.Ops[i+1:]...)

	return Chain{Operands: operands, Ops: ops}
}

// Collapse turns a chain with at most one operator into the equivalent
// Binary (or its sole operand). Longer chains are returned as is.
func (c Chain) Collapse() Node {
	switch len(c.Ops) {
	case 0:
		return c.Operands[0]
	case 1:
		return Binary{Op: c.Ops[0], Left: c.Operands[0], Right: c.Operands[1]}
	}
	return c
}

// Normalize brackets c until at most one operator remains and collapses it.
// limit caps the number of bracketing passes; a chain still longer after
// limit passes is returned as a Chain with its leading groups in place.
func Normalize(c Chain, limit int) Node {
	for i := 0; i < limit && len(c.Ops) >= 2; i++ {
		c = c.Bracket()
	}
	return c.Collapse()
}
