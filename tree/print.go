package tree

import (
	"strconv"
	"strings"
)

// Print renders h as an S-expression. Constants use up to 6 significant
// digits with trailing zeros trimmed (matching a %.6g-style format);
// left- or right-nested chains of the same commutative-associative operator
// collapse into one variadic form rather than printing nested parens;
// oracle leaves print as a quoted name.
func Print(h Handle) string {
	var sb strings.Builder
	printNode(h, &sb)
	return sb.String()
}

func printNode(h Handle, sb *strings.Builder) {
	switch h.Kind() {
	case KindConstant:
		sb.WriteString(strconv.FormatFloat(float64(h.ConstValue()), 'g', 6, 32))

	case KindAxis:
		sb.WriteString(h.Op().Symbol())

	case KindVarFree:
		sb.WriteString("var-free")

	case KindOracle:
		sb.WriteByte('\'')
		sb.WriteString(h.Oracle().DisplayName())

	case KindConstVar:
		sb.WriteString("(const-var ")
		c := h.Child()
		printNode(c, sb)
		c.Drop()
		sb.WriteByte(')')

	case KindRemap:
		sb.WriteString("(remap ")
		body := h.RemapBody()
		printNode(body, sb)
		body.Drop()
		sb.WriteByte(' ')
		x := h.RemapX()
		printNode(x, sb)
		x.Drop()
		sb.WriteByte(' ')
		y := h.RemapY()
		printNode(y, sb)
		y.Drop()
		sb.WriteByte(' ')
		z := h.RemapZ()
		printNode(z, sb)
		z.Drop()
		sb.WriteByte(')')

	case KindUnary:
		sb.WriteByte('(')
		sb.WriteString(h.Op().Symbol())
		sb.WriteByte(' ')
		c := h.Child()
		printNode(c, sb)
		c.Drop()
		sb.WriteByte(')')

	case KindBinary:
		op := h.Op()
		sb.WriteByte('(')
		sb.WriteString(op.Symbol())

		var args []Handle
		if op.IsCommutative() && op.IsAssociative() {
			args = collectChainArgs(h, op)
		} else {
			args = []Handle{h.Lhs(), h.Rhs()}
		}
		for _, a := range args {
			sb.WriteByte(' ')
			printNode(a, sb)
		}
		for _, a := range args {
			a.Drop()
		}
		sb.WriteByte(')')
	}
}

// collectChainArgs flattens a right- or left-nested chain of binary nodes
// sharing op into a single flat argument list, left to right. h itself is a
// borrowed reference (not owned by this call) and is never dropped; every
// handle returned in the slice is an owned clone the caller must drop.
func collectChainArgs(h Handle, op Opcode) []Handle {
	var args []Handle
	stack := []Handle{h}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.Kind() == KindBinary && cur.Op() == op {
			l := cur.Lhs()
			r := cur.Rhs()
			if !cur.Same(h) {
				cur.Drop()
			}
			stack = append(stack, r, l)
			continue
		}
		args = append(args, cur)
	}
	return args
}
